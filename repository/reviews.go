package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"main/model"
	"main/utils"

	"github.com/jmoiron/sqlx"
)

type ReviewsRepo struct {
	DB *sqlx.DB
}

func GetReviewsRepo(db *sqlx.DB) *ReviewsRepo {
	return &ReviewsRepo{DB: db}
}

func (r *ReviewsRepo) CreateReview(review *model.Review) error {
	timer := utils.TrackDBOperation("insert", "reviews")
	defer timer.ObserveDuration()

	if review == nil {
		utils.TrackError("database", "nil_review")
		return fmt.Errorf("review cannot be nil")
	}
	if review.ID == "" || review.Author == "" || review.Quote == "" {
		utils.TrackError("database", "invalid_review_data")
		return fmt.Errorf("invalid review data: missing required fields")
	}
	if review.Rating < 1 || review.Rating > 5 {
		return fmt.Errorf("review rating must be between 1 and 5")
	}

	_, err := r.DB.NamedExec(`
		INSERT INTO reviews (id, author, quote, rating, is_approved, created_at)
		VALUES (:id, :author, :quote, :rating, :is_approved, :created_at)`,
		review)
	if err != nil {
		utils.TrackError("database", "review_creation_failed")
		return fmt.Errorf("failed to create review in database: %w", err)
	}

	return nil
}

func (r *ReviewsRepo) GetReview(id string) (*model.Review, error) {
	timer := utils.TrackDBOperation("find", "reviews")
	defer timer.ObserveDuration()

	if id == "" {
		return nil, fmt.Errorf("review id cannot be empty")
	}

	var review model.Review
	err := r.DB.Get(&review, `SELECT * FROM reviews WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		utils.TrackError("database", "review_fetch_failed")
		return nil, fmt.Errorf("failed to fetch review from database: %w", err)
	}

	return &review, nil
}

func (r *ReviewsRepo) ListReviews() ([]*model.Review, error) {
	timer := utils.TrackDBOperation("find", "reviews")
	defer timer.ObserveDuration()

	var reviews []*model.Review
	err := r.DB.Select(&reviews, `SELECT * FROM reviews ORDER BY created_at DESC`)
	if err != nil {
		utils.TrackError("database", "review_fetch_failed")
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return reviews, nil
}

func (r *ReviewsRepo) ListApprovedReviews() ([]*model.Review, error) {
	timer := utils.TrackDBOperation("find", "reviews")
	defer timer.ObserveDuration()

	var reviews []*model.Review
	err := r.DB.Select(&reviews, `
		SELECT * FROM reviews WHERE is_approved = TRUE
		ORDER BY created_at DESC`)
	if err != nil {
		utils.TrackError("database", "review_fetch_failed")
		return nil, fmt.Errorf("failed to fetch approved reviews: %w", err)
	}

	return reviews, nil
}

func (r *ReviewsRepo) ToggleApproved(id string) (bool, error) {
	timer := utils.TrackDBOperation("update", "reviews")
	defer timer.ObserveDuration()

	if id == "" {
		return false, fmt.Errorf("review id cannot be empty")
	}

	var approved bool
	err := r.DB.Get(&approved, `
		UPDATE reviews SET is_approved = NOT is_approved
		WHERE id = $1
		RETURNING is_approved`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("review not found")
	}
	if err != nil {
		utils.TrackError("database", "review_toggle_failed")
		return false, fmt.Errorf("failed to toggle approved flag: %w", err)
	}

	return approved, nil
}

func (r *ReviewsRepo) DeleteReview(id string) error {
	timer := utils.TrackDBOperation("delete", "reviews")
	defer timer.ObserveDuration()

	if id == "" {
		return fmt.Errorf("review id cannot be empty")
	}

	result, err := r.DB.Exec(`DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		utils.TrackError("database", "review_deletion_failed")
		return fmt.Errorf("failed to delete review from database: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("review not found")
	}

	return nil
}
