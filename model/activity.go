package model

import "time"

// Action kinds recorded in the activity log. Entries are append-only:
// every mutating admin action and every login/logout/timeout writes exactly one.
const (
	ActionCreate  = "CREATE"
	ActionUpdate  = "UPDATE"
	ActionDelete  = "DELETE"
	ActionToggle  = "TOGGLE"
	ActionLogin   = "LOGIN"
	ActionLogout  = "LOGOUT"
	ActionTimeout = "TIMEOUT"
)

type ActivityLogEntry struct {
	ID         int64     `db:"id" json:"id"`
	Action     string    `db:"action" json:"action"`
	ItemLabel  string    `db:"item_label" json:"item_label"`
	Module     string    `db:"module" json:"module"`
	ActorID    string    `db:"actor_id" json:"actor_id"`
	ActorEmail string    `db:"actor_email" json:"actor_email"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
