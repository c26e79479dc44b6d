package repository

import (
	"fmt"
	"main/model"
	"main/utils"
	"time"

	"github.com/jmoiron/sqlx"
)

// ActivityRepo is the append-only audit trail. Entries are never updated
// or deleted once written.
type ActivityRepo struct {
	DB *sqlx.DB
}

func GetActivityRepo(db *sqlx.DB) *ActivityRepo {
	return &ActivityRepo{DB: db}
}

func (r *ActivityRepo) Record(entry *model.ActivityLogEntry) error {
	timer := utils.TrackDBOperation("insert", "activity_log")
	defer timer.ObserveDuration()

	if entry == nil {
		utils.TrackError("database", "nil_activity_entry")
		return fmt.Errorf("activity entry cannot be nil")
	}
	if entry.Action == "" || entry.Module == "" {
		utils.TrackError("database", "invalid_activity_entry")
		return fmt.Errorf("invalid activity entry: missing required fields")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := r.DB.NamedExec(`
		INSERT INTO activity_log (action, item_label, module, actor_id, actor_email, created_at)
		VALUES (:action, :item_label, :module, :actor_id, :actor_email, :created_at)`,
		entry)
	if err != nil {
		utils.TrackError("database", "activity_write_failed")
		return fmt.Errorf("failed to write activity entry: %w", err)
	}

	return nil
}

func (r *ActivityRepo) List(limit, offset int) ([]*model.ActivityLogEntry, error) {
	timer := utils.TrackDBOperation("find", "activity_log")
	defer timer.ObserveDuration()

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var entries []*model.ActivityLogEntry
	err := r.DB.Select(&entries, `
		SELECT * FROM activity_log
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		utils.TrackError("database", "activity_fetch_failed")
		return nil, fmt.Errorf("failed to fetch activity log: %w", err)
	}

	return entries, nil
}

func (r *ActivityRepo) CountSince(since time.Time) (int, error) {
	timer := utils.TrackDBOperation("count", "activity_log")
	defer timer.ObserveDuration()

	var count int
	err := r.DB.Get(&count, `SELECT COUNT(*) FROM activity_log WHERE created_at >= $1`, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count activity entries: %w", err)
	}
	return count, nil
}
