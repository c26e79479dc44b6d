package model

import "time"

type User struct {
	UserID           string    `db:"user_id" json:"user_id"`                                     // Unique ID number
	Username         string    `db:"username" json:"username" validate:"required, min=4 max=20"` // Username field
	Email            string    `db:"email" json:"email" validate:"email, required" `             // Email field
	Password         string    `db:"password" json:"-" validate:"required, min=6"`               // Hashed password field
	CreatedAt        time.Time `db:"created_at" json:"created_at"`                               // Time created for account life
	TwoFactorSecret  string    `db:"two_factor_secret" json:"-"`
	TwoFactorEnabled bool      `db:"two_factor_enabled" json:"two_factor_enabled"`
}

type LoginRequest struct {
	Username      string `json:"username" binding:"required"`
	Password      string `json:"password" binding:"required"`
	TwoFactorCode string `json:"two_factor_code"`
}
