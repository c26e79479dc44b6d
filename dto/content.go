package dto

// BroadcastRequest carries one in-progress editor change to the live preview.
// Nothing is persisted; publishing is a separate explicit step.
type BroadcastRequest struct {
	PageKey    string `json:"page_key" binding:"required"`
	SectionKey string `json:"section_key" binding:"required"`
	Value      string `json:"value"`
}

// SetDraftRequest carries one slot edit; the page comes from the route.
type SetDraftRequest struct {
	SectionKey string `json:"section_key" binding:"required"`
	Kind       string `json:"kind"`
	Value      string `json:"value"`
}

// CMSUpdate is the wire shape fanned out to preview sockets.
type CMSUpdate struct {
	Type  string `json:"type"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

type DraftEntryResponse struct {
	PageKey    string `json:"page_key"`
	SectionKey string `json:"section_key"`
	Kind       string `json:"kind"`
	Value      string `json:"value"`
	Changed    bool   `json:"changed"`
}
