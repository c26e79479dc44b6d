package model

import "time"

// Content value kinds, resolved at the editor boundary instead of treating
// every slot as an untyped string.
const (
	ContentKindText     = "text"
	ContentKindURL      = "url"
	ContentKindImageURL = "image_url"
)

// ContentEntry is one published content slot on a public page,
// addressed by page_key + section_key.
type ContentEntry struct {
	ID         int64     `db:"id" json:"id"`
	PageKey    string    `db:"page_key" json:"page_key"`
	SectionKey string    `db:"section_key" json:"section_key"`
	Kind       string    `db:"kind" json:"kind"`
	Value      string    `db:"value" json:"value"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SlotKey returns the composite key used by the broadcast bridge.
func (e *ContentEntry) SlotKey() string {
	return e.PageKey + ":" + e.SectionKey
}
