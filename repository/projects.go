package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"main/model"
	"main/utils"

	"github.com/jmoiron/sqlx"
)

type ProjectsRepo struct {
	DB *sqlx.DB
}

func GetProjectsRepo(db *sqlx.DB) *ProjectsRepo {
	return &ProjectsRepo{DB: db}
}

func (r *ProjectsRepo) CreateProject(project *model.Project) error {
	timer := utils.TrackDBOperation("insert", "projects")
	defer timer.ObserveDuration()

	if project == nil {
		utils.TrackError("database", "nil_project")
		return fmt.Errorf("project cannot be nil")
	}
	if project.ID == "" || project.Title == "" || project.Slug == "" {
		utils.TrackError("database", "invalid_project_data")
		return fmt.Errorf("invalid project data: missing required fields")
	}

	_, err := r.DB.NamedExec(`
		INSERT INTO projects (id, title, slug, summary, body, cover_image, gallery,
		                      is_featured, is_published, created_at, updated_at)
		VALUES (:id, :title, :slug, :summary, :body, :cover_image, :gallery,
		        :is_featured, :is_published, :created_at, :updated_at)`,
		project)
	if err != nil {
		utils.TrackError("database", "project_creation_failed")
		return fmt.Errorf("failed to create project in database: %w", err)
	}

	return nil
}

func (r *ProjectsRepo) GetProject(id string) (*model.Project, error) {
	timer := utils.TrackDBOperation("find", "projects")
	defer timer.ObserveDuration()

	if id == "" {
		return nil, fmt.Errorf("project id cannot be empty")
	}

	var project model.Project
	err := r.DB.Get(&project, `SELECT * FROM projects WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		utils.TrackError("database", "project_fetch_failed")
		return nil, fmt.Errorf("failed to fetch project from database: %w", err)
	}

	return &project, nil
}

func (r *ProjectsRepo) GetProjectBySlug(slug string) (*model.Project, error) {
	timer := utils.TrackDBOperation("find", "projects")
	defer timer.ObserveDuration()

	if slug == "" {
		return nil, fmt.Errorf("project slug cannot be empty")
	}

	var project model.Project
	err := r.DB.Get(&project, `SELECT * FROM projects WHERE slug = $1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		utils.TrackError("database", "project_fetch_failed")
		return nil, fmt.Errorf("failed to fetch project from database: %w", err)
	}

	return &project, nil
}

// ListProjects returns every project for the admin listing.
func (r *ProjectsRepo) ListProjects() ([]*model.Project, error) {
	timer := utils.TrackDBOperation("find", "projects")
	defer timer.ObserveDuration()

	var projects []*model.Project
	err := r.DB.Select(&projects, `SELECT * FROM projects ORDER BY created_at DESC`)
	if err != nil {
		utils.TrackError("database", "project_fetch_failed")
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	return projects, nil
}

// ListPublishedProjects returns the public-facing set, featured first.
func (r *ProjectsRepo) ListPublishedProjects() ([]*model.Project, error) {
	timer := utils.TrackDBOperation("find", "projects")
	defer timer.ObserveDuration()

	var projects []*model.Project
	err := r.DB.Select(&projects, `
		SELECT * FROM projects WHERE is_published = TRUE
		ORDER BY is_featured DESC, created_at DESC`)
	if err != nil {
		utils.TrackError("database", "project_fetch_failed")
		return nil, fmt.Errorf("failed to fetch published projects: %w", err)
	}

	return projects, nil
}

func (r *ProjectsRepo) UpdateProject(project *model.Project) error {
	timer := utils.TrackDBOperation("update", "projects")
	defer timer.ObserveDuration()

	if project == nil {
		return fmt.Errorf("project cannot be nil")
	}

	result, err := r.DB.NamedExec(`
		UPDATE projects
		SET title = :title, slug = :slug, summary = :summary, body = :body,
		    cover_image = :cover_image, gallery = :gallery,
		    is_featured = :is_featured, is_published = :is_published,
		    updated_at = NOW()
		WHERE id = :id`, project)
	if err != nil {
		utils.TrackError("database", "project_update_failed")
		return fmt.Errorf("failed to update project in database: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("project not found")
	}

	return nil
}

func (r *ProjectsRepo) DeleteProject(id string) error {
	timer := utils.TrackDBOperation("delete", "projects")
	defer timer.ObserveDuration()

	if id == "" {
		return fmt.Errorf("project id cannot be empty")
	}

	result, err := r.DB.Exec(`DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		utils.TrackError("database", "project_deletion_failed")
		return fmt.Errorf("failed to delete project from database: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("project not found")
	}

	return nil
}

func (r *ProjectsRepo) ToggleFeatured(id string) (bool, error) {
	timer := utils.TrackDBOperation("update", "projects")
	defer timer.ObserveDuration()

	if id == "" {
		return false, fmt.Errorf("project id cannot be empty")
	}

	var featured bool
	err := r.DB.Get(&featured, `
		UPDATE projects SET is_featured = NOT is_featured, updated_at = NOW()
		WHERE id = $1
		RETURNING is_featured`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("project not found")
	}
	if err != nil {
		utils.TrackError("database", "project_toggle_failed")
		return false, fmt.Errorf("failed to toggle featured flag: %w", err)
	}

	return featured, nil
}

func (r *ProjectsRepo) CountProjects() (int, error) {
	var count int
	if err := r.DB.Get(&count, `SELECT COUNT(*) FROM projects`); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}
