package model

import (
	"time"

	"github.com/lib/pq"
)

type BlogPost struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title" binding:"required"`
	Slug        string         `db:"slug" json:"slug"`
	Body        string         `db:"body" json:"body"` // markdown source
	BodyHTML    string         `db:"body_html" json:"body_html"`
	CoverImage  string         `db:"cover_image" json:"cover_image"`
	Tags        pq.StringArray `db:"tags" json:"tags,omitempty"`
	IsPublished bool           `db:"is_published" json:"is_published"`
	PublishedAt *time.Time     `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
