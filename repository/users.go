package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"main/model"
	"main/utils"
	"time"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct {
	DB *sqlx.DB
}

func GetUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{DB: db}
}

func (r *UserRepo) AddUser(user *model.User) error {
	timer := utils.TrackDBOperation("insert", "users")
	defer timer.ObserveDuration()

	if user == nil {
		utils.TrackError("database", "nil_user")
		return fmt.Errorf("user cannot be nil")
	}
	if user.UserID == "" || user.Username == "" {
		utils.TrackError("database", "invalid_user_data")
		return fmt.Errorf("invalid user data: missing required fields")
	}

	_, err := r.DB.NamedExec(`
		INSERT INTO users (user_id, username, email, password, two_factor_secret, two_factor_enabled, created_at)
		VALUES (:user_id, :username, :email, :password, :two_factor_secret, :two_factor_enabled, :created_at)`,
		user)
	if err != nil {
		utils.TrackError("database", "user_creation_failed")
		return fmt.Errorf("failed to create user in database: %w", err)
	}

	return nil
}

func (r *UserRepo) FindUser(userID string) (*model.User, error) {
	timer := utils.TrackDBOperation("find", "users")
	defer timer.ObserveDuration()

	if userID == "" {
		utils.TrackError("database", "empty_user_id")
		return nil, fmt.Errorf("userID cannot be empty")
	}

	var user model.User
	err := r.DB.Get(&user, `SELECT * FROM users WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		utils.TrackError("database", "user_fetch_failed")
		return nil, fmt.Errorf("failed to fetch user from database: %w", err)
	}

	return &user, nil
}

func (r *UserRepo) FindUserByUsername(username string) (*model.User, error) {
	timer := utils.TrackDBOperation("find", "users")
	defer timer.ObserveDuration()

	if username == "" {
		utils.TrackError("database", "empty_username")
		return nil, fmt.Errorf("username cannot be empty")
	}

	var user model.User
	err := r.DB.Get(&user, `SELECT * FROM users WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		utils.TrackError("database", "user_fetch_failed")
		return nil, fmt.Errorf("failed to fetch user from database: %w", err)
	}

	return &user, nil
}

func (r *UserRepo) UpdatePassword(userID, hashedPassword string) error {
	timer := utils.TrackDBOperation("update", "users")
	defer timer.ObserveDuration()

	if userID == "" || hashedPassword == "" {
		return fmt.Errorf("userID and password cannot be empty")
	}

	result, err := r.DB.Exec(`UPDATE users SET password = $1 WHERE user_id = $2`, hashedPassword, userID)
	if err != nil {
		utils.TrackError("database", "password_update_failed")
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

func (r *UserRepo) Enable2FA(userID, secret string) error {
	timer := utils.TrackDBOperation("update", "users")
	defer timer.ObserveDuration()

	if userID == "" || secret == "" {
		return fmt.Errorf("userID and secret cannot be empty")
	}

	result, err := r.DB.Exec(`
		UPDATE users SET two_factor_secret = $1, two_factor_enabled = TRUE
		WHERE user_id = $2`, secret, userID)
	if err != nil {
		utils.TrackError("database", "2fa_enable_failed")
		return fmt.Errorf("failed to enable 2FA: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

func (r *UserRepo) Disable2FA(userID string) error {
	timer := utils.TrackDBOperation("update", "users")
	defer timer.ObserveDuration()

	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}

	result, err := r.DB.Exec(`
		UPDATE users SET two_factor_secret = '', two_factor_enabled = FALSE
		WHERE user_id = $1`, userID)
	if err != nil {
		utils.TrackError("database", "2fa_disable_failed")
		return fmt.Errorf("failed to disable 2FA: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

func (r *UserRepo) CountUsers() (int, error) {
	timer := utils.TrackDBOperation("count", "users")
	defer timer.ObserveDuration()

	var count int
	if err := r.DB.Get(&count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Touch helper for seeding the first admin account
func (r *UserRepo) EnsureAdmin(username, email, hashedPassword string, newID func() string) (*model.User, error) {
	existing, err := r.FindUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	user := &model.User{
		UserID:    newID(),
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		CreatedAt: time.Now(),
	}
	if err := r.AddUser(user); err != nil {
		return nil, err
	}
	return user, nil
}
