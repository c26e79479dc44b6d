package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"main/model"
	"main/utils"

	"github.com/jmoiron/sqlx"
)

type ServicesRepo struct {
	DB *sqlx.DB
}

func GetServicesRepo(db *sqlx.DB) *ServicesRepo {
	return &ServicesRepo{DB: db}
}

func (r *ServicesRepo) CreateService(service *model.Service) error {
	timer := utils.TrackDBOperation("insert", "services")
	defer timer.ObserveDuration()

	if service == nil {
		utils.TrackError("database", "nil_service")
		return fmt.Errorf("service cannot be nil")
	}
	if service.ID == "" || service.Title == "" || service.Slug == "" {
		utils.TrackError("database", "invalid_service_data")
		return fmt.Errorf("invalid service data: missing required fields")
	}

	_, err := r.DB.NamedExec(`
		INSERT INTO services (id, title, slug, description, icon, display_order,
		                      is_active, created_at, updated_at)
		VALUES (:id, :title, :slug, :description, :icon, :display_order,
		        :is_active, :created_at, :updated_at)`,
		service)
	if err != nil {
		utils.TrackError("database", "service_creation_failed")
		return fmt.Errorf("failed to create service in database: %w", err)
	}

	return nil
}

func (r *ServicesRepo) GetService(id string) (*model.Service, error) {
	timer := utils.TrackDBOperation("find", "services")
	defer timer.ObserveDuration()

	if id == "" {
		return nil, fmt.Errorf("service id cannot be empty")
	}

	var service model.Service
	err := r.DB.Get(&service, `SELECT * FROM services WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		utils.TrackError("database", "service_fetch_failed")
		return nil, fmt.Errorf("failed to fetch service from database: %w", err)
	}

	return &service, nil
}

func (r *ServicesRepo) ListServices() ([]*model.Service, error) {
	timer := utils.TrackDBOperation("find", "services")
	defer timer.ObserveDuration()

	var list []*model.Service
	err := r.DB.Select(&list, `SELECT * FROM services ORDER BY display_order ASC, created_at ASC`)
	if err != nil {
		utils.TrackError("database", "service_fetch_failed")
		return nil, fmt.Errorf("failed to fetch services: %w", err)
	}

	return list, nil
}

func (r *ServicesRepo) ListActiveServices() ([]*model.Service, error) {
	timer := utils.TrackDBOperation("find", "services")
	defer timer.ObserveDuration()

	var list []*model.Service
	err := r.DB.Select(&list, `
		SELECT * FROM services WHERE is_active = TRUE
		ORDER BY display_order ASC, created_at ASC`)
	if err != nil {
		utils.TrackError("database", "service_fetch_failed")
		return nil, fmt.Errorf("failed to fetch active services: %w", err)
	}

	return list, nil
}

func (r *ServicesRepo) UpdateService(service *model.Service) error {
	timer := utils.TrackDBOperation("update", "services")
	defer timer.ObserveDuration()

	if service == nil {
		return fmt.Errorf("service cannot be nil")
	}

	result, err := r.DB.NamedExec(`
		UPDATE services
		SET title = :title, slug = :slug, description = :description, icon = :icon,
		    display_order = :display_order, is_active = :is_active, updated_at = NOW()
		WHERE id = :id`, service)
	if err != nil {
		utils.TrackError("database", "service_update_failed")
		return fmt.Errorf("failed to update service in database: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("service not found")
	}

	return nil
}

func (r *ServicesRepo) DeleteService(id string) error {
	timer := utils.TrackDBOperation("delete", "services")
	defer timer.ObserveDuration()

	if id == "" {
		return fmt.Errorf("service id cannot be empty")
	}

	result, err := r.DB.Exec(`DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		utils.TrackError("database", "service_deletion_failed")
		return fmt.Errorf("failed to delete service from database: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("service not found")
	}

	return nil
}

func (r *ServicesRepo) ToggleActive(id string) (bool, error) {
	timer := utils.TrackDBOperation("update", "services")
	defer timer.ObserveDuration()

	if id == "" {
		return false, fmt.Errorf("service id cannot be empty")
	}

	var active bool
	err := r.DB.Get(&active, `
		UPDATE services SET is_active = NOT is_active, updated_at = NOW()
		WHERE id = $1
		RETURNING is_active`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("service not found")
	}
	if err != nil {
		utils.TrackError("database", "service_toggle_failed")
		return false, fmt.Errorf("failed to toggle active flag: %w", err)
	}

	return active, nil
}
