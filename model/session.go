package model

import "time"

type Session struct {
	SessionID      string    `db:"session_id" json:"session_id"`
	UserID         string    `db:"user_id" json:"user_id"`
	DisplayName    string    `db:"display_name" json:"display_name"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	ExpiresAt      time.Time `db:"expires_at" json:"expires_at"`
	LastActivityAt time.Time `db:"last_activity_at" json:"last_activity_at"`
	DeviceInfo     string    `db:"device_info" json:"device_info"`
	IPAddress      string    `db:"ip_address" json:"ip_address"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	Protected      bool      `db:"protected" json:"protected"`
}
