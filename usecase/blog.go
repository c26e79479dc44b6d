package usecase

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"main/model"
	"main/repository"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Markdown is rendered once at write time and the sanitized HTML stored
// alongside the source, so public reads never pay for rendering.
var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	sanitize = bluemonday.UGCPolicy()
)

type BlogService struct {
	repo *repository.BlogRepo
}

func NewBlogService(repo *repository.BlogRepo) *BlogService {
	return &BlogService{repo: repo}
}

// Slugify derives a URL slug from a title.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// RenderMarkdown converts markdown to sanitized HTML.
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return string(sanitize.SanitizeBytes(buf.Bytes())), nil
}

// Create Post
func (svc *BlogService) CreatePost(post *model.BlogPost) error {
	if post == nil {
		return errors.New("post is required")
	}
	if post.Title == "" {
		return errors.New("post title is required")
	}

	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if post.Slug == "" {
		post.Slug = Slugify(post.Title)
	}
	if post.Slug == "" {
		return errors.New("post title produces an empty slug")
	}

	html, err := RenderMarkdown(post.Body)
	if err != nil {
		return err
	}
	post.BodyHTML = html

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.IsPublished && post.PublishedAt == nil {
		post.PublishedAt = &now
	}

	return svc.repo.CreatePost(post)
}

// Update Post
func (svc *BlogService) UpdatePost(id string, updates *model.BlogPost) (*model.BlogPost, error) {
	existing, err := svc.repo.GetPost(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("post not found")
	}

	if updates.Title != "" {
		existing.Title = updates.Title
	}
	if updates.Slug != "" {
		existing.Slug = Slugify(updates.Slug)
	}
	if updates.Body != existing.Body {
		existing.Body = updates.Body
		html, err := RenderMarkdown(updates.Body)
		if err != nil {
			return nil, err
		}
		existing.BodyHTML = html
	}
	if updates.CoverImage != "" {
		existing.CoverImage = updates.CoverImage
	}
	if updates.Tags != nil {
		existing.Tags = updates.Tags
	}

	// First publish stamps the timestamp; unpublishing keeps it so a
	// republish does not rewrite history.
	if updates.IsPublished && !existing.IsPublished && existing.PublishedAt == nil {
		now := time.Now()
		existing.PublishedAt = &now
	}
	existing.IsPublished = updates.IsPublished
	existing.UpdatedAt = time.Now()

	if err := svc.repo.UpdatePost(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Get Published Post by Slug
func (svc *BlogService) GetPublishedPost(slug string) (*model.BlogPost, error) {
	post, err := svc.repo.GetPostBySlug(slug)
	if err != nil {
		return nil, err
	}
	if post == nil || !post.IsPublished {
		return nil, nil
	}
	return post, nil
}

func (svc *BlogService) ListPublished(limit, offset int) ([]*model.BlogPost, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return svc.repo.ListPublishedPosts(limit, offset)
}

func (svc *BlogService) ListAll() ([]*model.BlogPost, error) {
	return svc.repo.ListPosts()
}

func (svc *BlogService) GetPost(id string) (*model.BlogPost, error) {
	return svc.repo.GetPost(id)
}

func (svc *BlogService) DeletePost(id string) error {
	existing, err := svc.repo.GetPost(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.New("post not found")
	}
	return svc.repo.DeletePost(id)
}
