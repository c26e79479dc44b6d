package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"main/model"
	"main/utils"

	"github.com/jmoiron/sqlx"
)

type BlogRepo struct {
	DB *sqlx.DB
}

func GetBlogRepo(db *sqlx.DB) *BlogRepo {
	return &BlogRepo{DB: db}
}

func (r *BlogRepo) CreatePost(post *model.BlogPost) error {
	timer := utils.TrackDBOperation("insert", "blog_posts")
	defer timer.ObserveDuration()

	if post == nil {
		utils.TrackError("database", "nil_blog_post")
		return fmt.Errorf("post cannot be nil")
	}
	if post.ID == "" || post.Title == "" || post.Slug == "" {
		utils.TrackError("database", "invalid_blog_post_data")
		return fmt.Errorf("invalid post data: missing required fields")
	}

	_, err := r.DB.NamedExec(`
		INSERT INTO blog_posts (id, title, slug, body, body_html, cover_image, tags,
		                        is_published, published_at, created_at, updated_at)
		VALUES (:id, :title, :slug, :body, :body_html, :cover_image, :tags,
		        :is_published, :published_at, :created_at, :updated_at)`,
		post)
	if err != nil {
		utils.TrackError("database", "blog_post_creation_failed")
		return fmt.Errorf("failed to create blog post in database: %w", err)
	}

	return nil
}

func (r *BlogRepo) GetPost(id string) (*model.BlogPost, error) {
	timer := utils.TrackDBOperation("find", "blog_posts")
	defer timer.ObserveDuration()

	if id == "" {
		return nil, fmt.Errorf("post id cannot be empty")
	}

	var post model.BlogPost
	err := r.DB.Get(&post, `SELECT * FROM blog_posts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		utils.TrackError("database", "blog_post_fetch_failed")
		return nil, fmt.Errorf("failed to fetch blog post from database: %w", err)
	}

	return &post, nil
}

func (r *BlogRepo) GetPostBySlug(slug string) (*model.BlogPost, error) {
	timer := utils.TrackDBOperation("find", "blog_posts")
	defer timer.ObserveDuration()

	if slug == "" {
		return nil, fmt.Errorf("post slug cannot be empty")
	}

	var post model.BlogPost
	err := r.DB.Get(&post, `SELECT * FROM blog_posts WHERE slug = $1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		utils.TrackError("database", "blog_post_fetch_failed")
		return nil, fmt.Errorf("failed to fetch blog post from database: %w", err)
	}

	return &post, nil
}

func (r *BlogRepo) ListPosts() ([]*model.BlogPost, error) {
	timer := utils.TrackDBOperation("find", "blog_posts")
	defer timer.ObserveDuration()

	var posts []*model.BlogPost
	err := r.DB.Select(&posts, `SELECT * FROM blog_posts ORDER BY created_at DESC`)
	if err != nil {
		utils.TrackError("database", "blog_post_fetch_failed")
		return nil, fmt.Errorf("failed to fetch blog posts: %w", err)
	}

	return posts, nil
}

func (r *BlogRepo) ListPublishedPosts(limit, offset int) ([]*model.BlogPost, error) {
	timer := utils.TrackDBOperation("find", "blog_posts")
	defer timer.ObserveDuration()

	if limit <= 0 || limit > 50 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var posts []*model.BlogPost
	err := r.DB.Select(&posts, `
		SELECT * FROM blog_posts WHERE is_published = TRUE
		ORDER BY published_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		utils.TrackError("database", "blog_post_fetch_failed")
		return nil, fmt.Errorf("failed to fetch published posts: %w", err)
	}

	return posts, nil
}

func (r *BlogRepo) UpdatePost(post *model.BlogPost) error {
	timer := utils.TrackDBOperation("update", "blog_posts")
	defer timer.ObserveDuration()

	if post == nil {
		return fmt.Errorf("post cannot be nil")
	}

	result, err := r.DB.NamedExec(`
		UPDATE blog_posts
		SET title = :title, slug = :slug, body = :body, body_html = :body_html,
		    cover_image = :cover_image, tags = :tags,
		    is_published = :is_published, published_at = :published_at,
		    updated_at = NOW()
		WHERE id = :id`, post)
	if err != nil {
		utils.TrackError("database", "blog_post_update_failed")
		return fmt.Errorf("failed to update blog post in database: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("blog post not found")
	}

	return nil
}

func (r *BlogRepo) DeletePost(id string) error {
	timer := utils.TrackDBOperation("delete", "blog_posts")
	defer timer.ObserveDuration()

	if id == "" {
		return fmt.Errorf("post id cannot be empty")
	}

	result, err := r.DB.Exec(`DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		utils.TrackError("database", "blog_post_deletion_failed")
		return fmt.Errorf("failed to delete blog post from database: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("blog post not found")
	}

	return nil
}
