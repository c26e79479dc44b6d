package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"main/model"
	"main/utils"

	"github.com/jmoiron/sqlx"
)

type EnquiriesRepo struct {
	DB *sqlx.DB
}

func GetEnquiriesRepo(db *sqlx.DB) *EnquiriesRepo {
	return &EnquiriesRepo{DB: db}
}

func (r *EnquiriesRepo) CreateEnquiry(enquiry *model.Enquiry) error {
	timer := utils.TrackDBOperation("insert", "enquiries")
	defer timer.ObserveDuration()

	if enquiry == nil {
		utils.TrackError("database", "nil_enquiry")
		return fmt.Errorf("enquiry cannot be nil")
	}
	if enquiry.ID == "" || enquiry.Name == "" || enquiry.Email == "" || enquiry.Message == "" {
		utils.TrackError("database", "invalid_enquiry_data")
		return fmt.Errorf("invalid enquiry data: missing required fields")
	}

	_, err := r.DB.NamedExec(`
		INSERT INTO enquiries (id, name, email, phone, message, is_handled, created_at)
		VALUES (:id, :name, :email, :phone, :message, :is_handled, :created_at)`,
		enquiry)
	if err != nil {
		utils.TrackError("database", "enquiry_creation_failed")
		return fmt.Errorf("failed to create enquiry in database: %w", err)
	}

	return nil
}

func (r *EnquiriesRepo) GetEnquiry(id string) (*model.Enquiry, error) {
	timer := utils.TrackDBOperation("find", "enquiries")
	defer timer.ObserveDuration()

	if id == "" {
		return nil, fmt.Errorf("enquiry id cannot be empty")
	}

	var enquiry model.Enquiry
	err := r.DB.Get(&enquiry, `SELECT * FROM enquiries WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		utils.TrackError("database", "enquiry_fetch_failed")
		return nil, fmt.Errorf("failed to fetch enquiry from database: %w", err)
	}

	return &enquiry, nil
}

func (r *EnquiriesRepo) ListEnquiries(onlyUnhandled bool) ([]*model.Enquiry, error) {
	timer := utils.TrackDBOperation("find", "enquiries")
	defer timer.ObserveDuration()

	query := `SELECT * FROM enquiries ORDER BY created_at DESC`
	if onlyUnhandled {
		query = `SELECT * FROM enquiries WHERE is_handled = FALSE ORDER BY created_at DESC`
	}

	var enquiries []*model.Enquiry
	if err := r.DB.Select(&enquiries, query); err != nil {
		utils.TrackError("database", "enquiry_fetch_failed")
		return nil, fmt.Errorf("failed to fetch enquiries: %w", err)
	}

	return enquiries, nil
}

func (r *EnquiriesRepo) ToggleHandled(id string) (bool, error) {
	timer := utils.TrackDBOperation("update", "enquiries")
	defer timer.ObserveDuration()

	if id == "" {
		return false, fmt.Errorf("enquiry id cannot be empty")
	}

	var handled bool
	err := r.DB.Get(&handled, `
		UPDATE enquiries SET is_handled = NOT is_handled
		WHERE id = $1
		RETURNING is_handled`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("enquiry not found")
	}
	if err != nil {
		utils.TrackError("database", "enquiry_toggle_failed")
		return false, fmt.Errorf("failed to toggle handled flag: %w", err)
	}

	return handled, nil
}

func (r *EnquiriesRepo) DeleteEnquiry(id string) error {
	timer := utils.TrackDBOperation("delete", "enquiries")
	defer timer.ObserveDuration()

	if id == "" {
		return fmt.Errorf("enquiry id cannot be empty")
	}

	result, err := r.DB.Exec(`DELETE FROM enquiries WHERE id = $1`, id)
	if err != nil {
		utils.TrackError("database", "enquiry_deletion_failed")
		return fmt.Errorf("failed to delete enquiry from database: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("enquiry not found")
	}

	return nil
}
