package dto

// SessionStatusResponse reports the idle guard state for the current session.
type SessionStatusResponse struct {
	Phase            string `json:"phase"`
	SecondsRemaining int    `json:"seconds_remaining"`
}
