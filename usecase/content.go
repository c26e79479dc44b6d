package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"main/model"
	"main/services"
	"main/utils"
)

// DraftEntry is one slot in an editing session's working set. OriginalValue
// is the published value snapshotted when the set was loaded; the entry is
// dirty exactly when Value differs from it by plain comparison.
type DraftEntry struct {
	PageKey       string
	SectionKey    string
	Kind          string
	Value         string
	OriginalValue string
}

func (d *DraftEntry) Changed() bool {
	return d.Value != d.OriginalValue
}

// WorkingSet holds the unpublished edits for one page in one editing session.
// Nothing in it reaches the public site until Publish.
type WorkingSet struct {
	mu      sync.Mutex
	pageKey string
	entries map[string]*DraftEntry
	uploads []string
}

// ContentStore is the persistence boundary for published slots.
type ContentStore interface {
	GetPageContent(pageKey string) ([]*model.ContentEntry, error)
	UpsertEntries(entries []*model.ContentEntry) error
}

type ContentService struct {
	repo   ContentStore
	assets services.AssetClient

	mu   sync.Mutex
	sets map[string]*WorkingSet // keyed by sessionID:pageKey
}

func NewContentService(repo ContentStore, assets services.AssetClient) *ContentService {
	return &ContentService{
		repo:   repo,
		assets: assets,
		sets:   make(map[string]*WorkingSet),
	}
}

// WorkingSetFor returns the editing session's working set for a page,
// loading a fresh one from the published slots if none is open yet.
func (svc *ContentService) WorkingSetFor(sessionID, pageKey string) (*WorkingSet, error) {
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}
	key := sessionID + ":" + pageKey

	svc.mu.Lock()
	if ws, ok := svc.sets[key]; ok {
		svc.mu.Unlock()
		return ws, nil
	}
	svc.mu.Unlock()

	ws, err := svc.LoadWorkingSet(pageKey)
	if err != nil {
		return nil, err
	}

	svc.mu.Lock()
	if existing, ok := svc.sets[key]; ok {
		// Another request loaded it first
		svc.mu.Unlock()
		return existing, nil
	}
	svc.sets[key] = ws
	svc.mu.Unlock()
	return ws, nil
}

// DropSession discards every open working set for a session. Called when
// the session ends so orphaned uploads get cleaned up.
func (svc *ContentService) DropSession(ctx context.Context, sessionID string) {
	svc.mu.Lock()
	var dropped []*WorkingSet
	for key, ws := range svc.sets {
		if strings.HasPrefix(key, sessionID+":") {
			dropped = append(dropped, ws)
			delete(svc.sets, key)
		}
	}
	svc.mu.Unlock()

	for _, ws := range dropped {
		svc.Discard(ctx, ws)
	}
}

// LoadWorkingSet materializes a draft set from the published slots of a page.
func (svc *ContentService) LoadWorkingSet(pageKey string) (*WorkingSet, error) {
	if pageKey == "" {
		return nil, errors.New("page key is required")
	}

	published, err := svc.repo.GetPageContent(pageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load working set: %w", err)
	}

	ws := &WorkingSet{
		pageKey: pageKey,
		entries: make(map[string]*DraftEntry, len(published)),
	}
	for _, entry := range published {
		ws.entries[entry.SectionKey] = &DraftEntry{
			PageKey:       entry.PageKey,
			SectionKey:    entry.SectionKey,
			Kind:          entry.Kind,
			Value:         entry.Value,
			OriginalValue: entry.Value,
		}
	}

	return ws, nil
}

// PublishedContent returns the published slots for one page, for public reads.
func (svc *ContentService) PublishedContent(pageKey string) ([]*model.ContentEntry, error) {
	if pageKey == "" {
		return nil, errors.New("page key is required")
	}
	return svc.repo.GetPageContent(pageKey)
}

func (ws *WorkingSet) PageKey() string {
	return ws.pageKey
}

// Set records a draft value for one section. Sections unknown to the
// published page start with an empty original so they count as changed.
func (ws *WorkingSet) Set(sectionKey, kind, value string) error {
	if sectionKey == "" {
		return errors.New("section key is required")
	}
	switch kind {
	case model.ContentKindText, model.ContentKindURL, model.ContentKindImageURL:
	default:
		return errors.New("invalid content kind")
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if entry, ok := ws.entries[sectionKey]; ok {
		entry.Kind = kind
		entry.Value = value
		return nil
	}
	ws.entries[sectionKey] = &DraftEntry{
		PageKey:    ws.pageKey,
		SectionKey: sectionKey,
		Kind:       kind,
		Value:      value,
	}
	return nil
}

// TrackUpload remembers an asset uploaded during this editing session so
// Discard can clean it up if the session never publishes.
func (ws *WorkingSet) TrackUpload(assetURL string) {
	if assetURL == "" {
		return
	}
	ws.mu.Lock()
	ws.uploads = append(ws.uploads, assetURL)
	ws.mu.Unlock()
}

// Entries returns every draft entry in stable section order.
func (ws *WorkingSet) Entries() []*DraftEntry {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	out := make([]*DraftEntry, 0, len(ws.entries))
	for _, entry := range ws.entries {
		copied := *entry
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SectionKey < out[j].SectionKey })
	return out
}

// Changed returns only the entries whose value differs from the snapshot.
func (ws *WorkingSet) Changed() []*DraftEntry {
	var changed []*DraftEntry
	for _, entry := range ws.Entries() {
		if entry.Changed() {
			changed = append(changed, entry)
		}
	}
	return changed
}

// Publish persists the changed entries and resets the snapshot to the newly
// published values. Replaced remote images are deleted best-effort after the
// database write succeeds.
func (svc *ContentService) Publish(ctx context.Context, ws *WorkingSet) ([]*DraftEntry, error) {
	if ws == nil {
		return nil, errors.New("working set is required")
	}

	changed := ws.Changed()
	if len(changed) == 0 {
		return nil, nil
	}

	rows := make([]*model.ContentEntry, 0, len(changed))
	for _, entry := range changed {
		rows = append(rows, &model.ContentEntry{
			PageKey:    entry.PageKey,
			SectionKey: entry.SectionKey,
			Kind:       entry.Kind,
			Value:      entry.Value,
		})
	}
	if err := svc.repo.UpsertEntries(rows); err != nil {
		utils.ContentPublishes.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("failed to publish content: %w", err)
	}
	utils.ContentPublishes.WithLabelValues("success").Inc()

	// Replaced images are unreferenced once the new values are live.
	for _, entry := range changed {
		if entry.Kind == model.ContentKindImageURL && entry.OriginalValue != "" && entry.OriginalValue != entry.Value {
			services.CleanupAsset(ctx, svc.assets, entry.OriginalValue)
		}
	}

	ws.mu.Lock()
	for _, entry := range ws.entries {
		entry.OriginalValue = entry.Value
	}
	ws.uploads = nil
	ws.mu.Unlock()

	return changed, nil
}

// Discard drops every unpublished value and best-effort deletes assets
// uploaded during the session that never made it into a published slot.
func (svc *ContentService) Discard(ctx context.Context, ws *WorkingSet) {
	if ws == nil {
		return
	}

	ws.mu.Lock()
	published := make(map[string]bool, len(ws.entries))
	for key, entry := range ws.entries {
		if entry.OriginalValue == "" {
			delete(ws.entries, key)
			continue
		}
		entry.Value = entry.OriginalValue
		published[entry.OriginalValue] = true
	}
	uploads := ws.uploads
	ws.uploads = nil
	ws.mu.Unlock()

	for _, assetURL := range uploads {
		if !published[assetURL] {
			services.CleanupAsset(ctx, svc.assets, assetURL)
		}
	}
}
