package model

import "time"

type Review struct {
	ID         string    `db:"id" json:"id"`
	Author     string    `db:"author" json:"author" binding:"required"`
	Quote      string    `db:"quote" json:"quote" binding:"required"`
	Rating     int       `db:"rating" json:"rating"`
	IsApproved bool      `db:"is_approved" json:"is_approved"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
