package repository

import (
	"fmt"
	"main/model"
	"main/utils"

	"github.com/jmoiron/sqlx"
)

type ContentRepo struct {
	DB *sqlx.DB
}

func GetContentRepo(db *sqlx.DB) *ContentRepo {
	return &ContentRepo{DB: db}
}

// GetPageContent returns every published slot for one page.
func (r *ContentRepo) GetPageContent(pageKey string) ([]*model.ContentEntry, error) {
	timer := utils.TrackDBOperation("find", "page_content")
	defer timer.ObserveDuration()

	if pageKey == "" {
		return nil, fmt.Errorf("page key cannot be empty")
	}

	var entries []*model.ContentEntry
	err := r.DB.Select(&entries, `
		SELECT * FROM page_content
		WHERE page_key = $1
		ORDER BY section_key`, pageKey)
	if err != nil {
		utils.TrackError("database", "content_fetch_failed")
		return nil, fmt.Errorf("failed to fetch page content: %w", err)
	}

	return entries, nil
}

// UpsertEntries writes a publish batch in a single transaction so a
// half-applied publish never reaches the public site.
func (r *ContentRepo) UpsertEntries(entries []*model.ContentEntry) error {
	timer := utils.TrackDBOperation("upsert", "page_content")
	defer timer.ObserveDuration()

	if len(entries) == 0 {
		return nil
	}

	tx, err := r.DB.Beginx()
	if err != nil {
		utils.TrackError("database", "content_tx_failed")
		return fmt.Errorf("failed to begin content transaction: %w", err)
	}

	for _, entry := range entries {
		if entry == nil || entry.PageKey == "" || entry.SectionKey == "" {
			tx.Rollback()
			utils.TrackError("database", "invalid_content_entry")
			return fmt.Errorf("invalid content entry: missing page or section key")
		}
		_, err := tx.NamedExec(`
			INSERT INTO page_content (page_key, section_key, kind, value, updated_at)
			VALUES (:page_key, :section_key, :kind, :value, NOW())
			ON CONFLICT (page_key, section_key)
			DO UPDATE SET kind = EXCLUDED.kind, value = EXCLUDED.value, updated_at = NOW()`,
			entry)
		if err != nil {
			tx.Rollback()
			utils.TrackError("database", "content_upsert_failed")
			return fmt.Errorf("failed to upsert content entry %q: %w", entry.SlotKey(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		utils.TrackError("database", "content_commit_failed")
		return fmt.Errorf("failed to commit content transaction: %w", err)
	}

	return nil
}
