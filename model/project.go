package model

import (
	"time"

	"github.com/lib/pq"
)

type Project struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title" binding:"required"`
	Slug        string         `db:"slug" json:"slug"`
	Summary     string         `db:"summary" json:"summary"`
	Body        string         `db:"body" json:"body"`
	CoverImage  string         `db:"cover_image" json:"cover_image"`
	Gallery     pq.StringArray `db:"gallery" json:"gallery"`
	IsFeatured  bool           `db:"is_featured" json:"is_featured"`
	IsPublished bool           `db:"is_published" json:"is_published"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
