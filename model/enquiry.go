package model

import "time"

type Enquiry struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name" binding:"required"`
	Email     string    `db:"email" json:"email" binding:"required,email"`
	Phone     string    `db:"phone" json:"phone"`
	Message   string    `db:"message" json:"message" binding:"required"`
	IsHandled bool      `db:"is_handled" json:"is_handled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
