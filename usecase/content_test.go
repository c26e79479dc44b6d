package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"main/model"
)

type fakeContentStore struct {
	mu      sync.Mutex
	pages   map[string][]*model.ContentEntry
	upserts [][]*model.ContentEntry
	failUp  bool
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{pages: make(map[string][]*model.ContentEntry)}
}

func (s *fakeContentStore) seed(pageKey string, entries ...*model.ContentEntry) {
	s.mu.Lock()
	s.pages[pageKey] = entries
	s.mu.Unlock()
}

func (s *fakeContentStore) GetPageContent(pageKey string) ([]*model.ContentEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.ContentEntry, 0, len(s.pages[pageKey]))
	for _, e := range s.pages[pageKey] {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (s *fakeContentStore) UpsertEntries(entries []*model.ContentEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUp {
		return errors.New("database unavailable")
	}
	s.upserts = append(s.upserts, entries)
	return nil
}

type fakeAssetClient struct {
	mu      sync.Mutex
	deleted []string
}

func (c *fakeAssetClient) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	return "https://assets.example.com/" + filename, nil
}

func (c *fakeAssetClient) Delete(ctx context.Context, assetURL string) error {
	c.mu.Lock()
	c.deleted = append(c.deleted, assetURL)
	c.mu.Unlock()
	return nil
}

func (c *fakeAssetClient) deletedURLs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deleted...)
}

func seededService(t *testing.T) (*ContentService, *fakeContentStore, *fakeAssetClient) {
	t.Helper()
	store := newFakeContentStore()
	store.seed("home",
		&model.ContentEntry{PageKey: "home", SectionKey: "hero_image", Kind: model.ContentKindImageURL, Value: "https://assets.example.com/old.jpg"},
		&model.ContentEntry{PageKey: "home", SectionKey: "hero_title", Kind: model.ContentKindText, Value: "Welcome"},
		&model.ContentEntry{PageKey: "home", SectionKey: "intro", Kind: model.ContentKindText, Value: "We design interiors"},
	)
	assets := &fakeAssetClient{}
	return NewContentService(store, assets), store, assets
}

func TestWorkingSetForIsPerSessionAndPage(t *testing.T) {
	svc, _, _ := seededService(t)

	ws1, err := svc.WorkingSetFor("session-1", "home")
	if err != nil {
		t.Fatalf("WorkingSetFor() error = %v", err)
	}
	ws1Again, err := svc.WorkingSetFor("session-1", "home")
	if err != nil {
		t.Fatalf("WorkingSetFor() error = %v", err)
	}
	if ws1 != ws1Again {
		t.Error("second call for the same session and page returned a different set")
	}

	ws2, err := svc.WorkingSetFor("session-2", "home")
	if err != nil {
		t.Fatalf("WorkingSetFor() error = %v", err)
	}
	if ws1 == ws2 {
		t.Error("different sessions share a working set")
	}

	if _, err := svc.WorkingSetFor("", "home"); err == nil {
		t.Error("WorkingSetFor() accepted an empty session id")
	}
}

func TestWorkingSetTracksChanges(t *testing.T) {
	svc, _, _ := seededService(t)
	ws, err := svc.WorkingSetFor("session-1", "home")
	if err != nil {
		t.Fatalf("WorkingSetFor() error = %v", err)
	}

	if changed := ws.Changed(); len(changed) != 0 {
		t.Fatalf("fresh working set has %d changed entries, want 0", len(changed))
	}

	if err := ws.Set("hero_title", model.ContentKindText, "Welcome home"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	// A value set back to its snapshot is no longer a change
	if err := ws.Set("intro", model.ContentKindText, "edited"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := ws.Set("intro", model.ContentKindText, "We design interiors"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	// A section the published page never had counts as changed
	if err := ws.Set("footer_note", model.ContentKindText, "Open weekdays"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	changed := ws.Changed()
	if len(changed) != 2 {
		t.Fatalf("Changed() returned %d entries, want 2", len(changed))
	}
	if changed[0].SectionKey != "footer_note" || changed[1].SectionKey != "hero_title" {
		t.Errorf("changed sections = %s, %s, want footer_note, hero_title", changed[0].SectionKey, changed[1].SectionKey)
	}
}

func TestWorkingSetRejectsInvalidInput(t *testing.T) {
	svc, _, _ := seededService(t)
	ws, _ := svc.WorkingSetFor("session-1", "home")

	if err := ws.Set("", model.ContentKindText, "x"); err == nil {
		t.Error("Set() accepted an empty section key")
	}
	if err := ws.Set("hero_title", "markdown", "x"); err == nil {
		t.Error("Set() accepted an unknown content kind")
	}
}

func TestPublishWritesOnlyChangedEntries(t *testing.T) {
	svc, store, _ := seededService(t)
	ws, _ := svc.WorkingSetFor("session-1", "home")

	ws.Set("hero_title", model.ContentKindText, "Welcome home")

	published, err := svc.Publish(context.Background(), ws)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(published) != 1 || published[0].SectionKey != "hero_title" {
		t.Fatalf("Publish() returned %d entries, want only hero_title", len(published))
	}
	if len(store.upserts) != 1 || len(store.upserts[0]) != 1 {
		t.Fatalf("store received %d upsert batches, want 1 batch of 1 row", len(store.upserts))
	}
	if store.upserts[0][0].Value != "Welcome home" {
		t.Errorf("upserted value = %q, want %q", store.upserts[0][0].Value, "Welcome home")
	}

	// The snapshot resets, so an immediate second publish is a no-op
	again, err := svc.Publish(context.Background(), ws)
	if err != nil {
		t.Fatalf("second Publish() error = %v", err)
	}
	if again != nil {
		t.Errorf("second Publish() returned %d entries, want none", len(again))
	}
}

func TestPublishFailureLeavesDraftIntact(t *testing.T) {
	svc, store, assets := seededService(t)
	ws, _ := svc.WorkingSetFor("session-1", "home")

	ws.Set("hero_image", model.ContentKindImageURL, "https://assets.example.com/new.jpg")
	store.failUp = true

	if _, err := svc.Publish(context.Background(), ws); err == nil {
		t.Fatal("Publish() succeeded against a failing store")
	}
	if len(ws.Changed()) != 1 {
		t.Error("failed publish reset the draft snapshot")
	}
	if len(assets.deletedURLs()) != 0 {
		t.Error("failed publish deleted the replaced image")
	}
}

func TestPublishCleansReplacedImages(t *testing.T) {
	svc, _, assets := seededService(t)
	ws, _ := svc.WorkingSetFor("session-1", "home")

	ws.Set("hero_image", model.ContentKindImageURL, "https://assets.example.com/new.jpg")
	ws.Set("hero_title", model.ContentKindText, "Welcome home")

	if _, err := svc.Publish(context.Background(), ws); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	deleted := assets.deletedURLs()
	if len(deleted) != 1 || deleted[0] != "https://assets.example.com/old.jpg" {
		t.Errorf("deleted assets = %v, want only the replaced image", deleted)
	}
}

func TestDiscardRevertsAndCleansOrphanedUploads(t *testing.T) {
	svc, _, assets := seededService(t)
	ws, _ := svc.WorkingSetFor("session-1", "home")

	ws.Set("hero_title", model.ContentKindText, "Welcome home")
	ws.Set("footer_note", model.ContentKindText, "Open weekdays")
	ws.Set("hero_image", model.ContentKindImageURL, "https://assets.example.com/orphan.jpg")
	ws.TrackUpload("https://assets.example.com/orphan.jpg")

	svc.Discard(context.Background(), ws)

	if changed := ws.Changed(); len(changed) != 0 {
		t.Errorf("Discard() left %d changed entries", len(changed))
	}
	entries := ws.Entries()
	for _, e := range entries {
		if e.SectionKey == "footer_note" {
			t.Error("Discard() kept a section the published page never had")
		}
	}

	deleted := assets.deletedURLs()
	if len(deleted) != 1 || deleted[0] != "https://assets.example.com/orphan.jpg" {
		t.Errorf("deleted assets = %v, want only the orphaned upload", deleted)
	}
}

func TestDiscardKeepsPublishedUploads(t *testing.T) {
	store := newFakeContentStore()
	store.seed("home",
		&model.ContentEntry{PageKey: "home", SectionKey: "hero_image", Kind: model.ContentKindImageURL, Value: "https://assets.example.com/live.jpg"},
	)
	assets := &fakeAssetClient{}
	svc := NewContentService(store, assets)

	ws, _ := svc.WorkingSetFor("session-1", "home")
	// An upload whose URL is the published value must survive a discard
	ws.TrackUpload("https://assets.example.com/live.jpg")

	svc.Discard(context.Background(), ws)

	if len(assets.deletedURLs()) != 0 {
		t.Errorf("Discard() deleted a published asset: %v", assets.deletedURLs())
	}
}

func TestDropSessionDiscardsAllSets(t *testing.T) {
	svc, _, assets := seededService(t)

	ws, _ := svc.WorkingSetFor("session-1", "home")
	ws.TrackUpload("https://assets.example.com/orphan.jpg")
	other, _ := svc.WorkingSetFor("session-2", "home")
	other.TrackUpload("https://assets.example.com/other.jpg")

	svc.DropSession(context.Background(), "session-1")

	deleted := assets.deletedURLs()
	if len(deleted) != 1 || deleted[0] != "https://assets.example.com/orphan.jpg" {
		t.Errorf("deleted assets = %v, want only session-1's upload", deleted)
	}

	// A fresh call for the dropped session gets a clean set
	fresh, err := svc.WorkingSetFor("session-1", "home")
	if err != nil {
		t.Fatalf("WorkingSetFor() error = %v", err)
	}
	if fresh == ws {
		t.Error("dropped session still resolves to the old working set")
	}
}
