package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"main/model"
	"main/services"
	"main/utils"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
)

type SessionRepo struct {
	DB *sqlx.DB
}

func GetSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{DB: db}
}

func (r *SessionRepo) CreateSession(session *model.Session) error {
	timer := utils.TrackDBOperation("insert", "sessions")
	defer timer.ObserveDuration()

	if session == nil {
		utils.TrackError("database", "nil_session")
		return fmt.Errorf("session cannot be nil")
	}

	if session.SessionID == "" || session.UserID == "" {
		utils.TrackError("database", "invalid_session_data")
		return fmt.Errorf("invalid session data: missing required fields")
	}

	_, err := r.DB.NamedExec(`
		INSERT INTO sessions (session_id, user_id, display_name, device_info, ip_address,
		                      is_active, protected, created_at, expires_at, last_activity_at)
		VALUES (:session_id, :user_id, :display_name, :device_info, :ip_address,
		        :is_active, :protected, :created_at, :expires_at, :last_activity_at)`,
		session)
	if err != nil {
		utils.TrackError("database", "session_creation_failed")
		return fmt.Errorf("failed to create session in database: %w", err)
	}

	if services.GlobalSessionCache != nil {
		if err := services.GlobalSessionCache.SetSession(session); err != nil {
			utils.TrackError("cache", "session_cache_set_failed")
			log.Printf("Warning: Failed to cache session: %v", err)
		}
		utils.TrackCacheOperation("session", true)

		if err := services.GlobalSessionCache.IncrementSessionVersion(session.UserID); err != nil {
			utils.TrackError("cache", "session_version_increment_failed")
			log.Printf("Warning: Failed to increment session version: %v", err)
		}
	}

	return nil
}

func (r *SessionRepo) GetSession(sessionID string) (*model.Session, error) {
	timer := utils.TrackDBOperation("find", "sessions")
	defer timer.ObserveDuration()

	if sessionID == "" {
		utils.TrackError("database", "empty_session_id")
		return nil, fmt.Errorf("sessionID cannot be empty")
	}

	if services.GlobalSessionCache != nil {
		if session, err := services.GlobalSessionCache.GetSession(sessionID); err == nil && session != nil {
			utils.TrackCacheOperation("session", true) // Cache hit
			return session, nil
		}
		utils.TrackCacheOperation("session", false) // Cache miss
	}

	var session model.Session
	err := r.DB.Get(&session, `SELECT * FROM sessions WHERE session_id = $1`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		utils.TrackError("database", "session_not_found")
		return nil, nil
	}
	if err != nil {
		utils.TrackError("database", "session_fetch_failed")
		return nil, fmt.Errorf("failed to fetch session from database: %w", err)
	}

	if services.GlobalSessionCache != nil {
		if err := services.GlobalSessionCache.SetSession(&session); err != nil {
			utils.TrackError("cache", "session_cache_set_failed")
			log.Printf("Warning: Failed to cache session: %v", err)
		}
	}

	return &session, nil
}

func (r *SessionRepo) UpdateSession(session *model.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	result, err := r.DB.Exec(`
		UPDATE sessions
		SET last_activity_at = NOW(),
		    is_active = $1,
		    expires_at = $2,
		    device_info = $3,
		    ip_address = $4
		WHERE session_id = $5`,
		session.IsActive, session.ExpiresAt, session.DeviceInfo, session.IPAddress, session.SessionID)
	if err != nil {
		return fmt.Errorf("failed to update session in database: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("session not found")
	}

	if services.GlobalSessionCache != nil {
		if err := services.GlobalSessionCache.SetSession(session); err != nil {
			log.Printf("Warning: Failed to update session cache: %v", err)
		}

		if err := services.GlobalSessionCache.IncrementSessionVersion(session.UserID); err != nil {
			log.Printf("Warning: Failed to increment session version: %v", err)
		}
	}

	return nil
}

func (r *SessionRepo) DeleteSession(sessionID string) error {
	timer := utils.TrackDBOperation("delete", "sessions")
	defer timer.ObserveDuration()

	if sessionID == "" {
		utils.TrackError("database", "empty_session_id")
		return fmt.Errorf("sessionID cannot be empty")
	}

	session, err := r.GetSession(sessionID)
	if err != nil {
		utils.TrackError("database", "session_fetch_failed")
		return fmt.Errorf("failed to fetch session for deletion: %w", err)
	}
	if session == nil {
		utils.TrackError("database", "session_not_found")
		return fmt.Errorf("session not found")
	}

	if session.Protected {
		utils.TrackError("database", "protected_session_deletion_attempt")
		return fmt.Errorf("cannot delete protected session")
	}

	result, err := r.DB.Exec(`DELETE FROM sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		utils.TrackError("database", "session_deletion_failed")
		return fmt.Errorf("failed to delete session from database: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		utils.TrackError("database", "session_not_found")
		return fmt.Errorf("session not found")
	}

	if services.GlobalSessionCache != nil {
		if err := services.GlobalSessionCache.DeleteSession(sessionID); err != nil {
			utils.TrackError("cache", "session_cache_delete_failed")
			log.Printf("Warning: Failed to delete session from cache: %v", err)
		}

		if err := services.GlobalSessionCache.IncrementSessionVersion(session.UserID); err != nil {
			utils.TrackError("cache", "session_version_increment_failed")
			log.Printf("Warning: Failed to increment session version: %v", err)
		}
	}

	return nil
}

func (r *SessionRepo) GetUserActiveSessions(userID string) ([]*model.Session, error) {
	timer := utils.TrackDBOperation("find", "sessions")
	defer timer.ObserveDuration()

	if userID == "" {
		utils.TrackError("database", "empty_user_id")
		return nil, fmt.Errorf("userID cannot be empty")
	}

	if services.GlobalSessionCache != nil {
		sessions, isStale, err := services.GlobalSessionCache.GetUserSessions(userID)
		if err == nil && sessions != nil && !isStale {
			utils.TrackCacheOperation("user_sessions", true)
			return sessions, nil
		}
		utils.TrackCacheOperation("user_sessions", false)

		needsRefresh, _ := services.GlobalSessionCache.NeedsRefresh(userID)
		if isStale || needsRefresh {
			sessions, err = r.fetchAndCacheActiveSessions(userID)
			if err != nil {
				if isStale {
					return sessions, nil
				}
				utils.TrackError("database", "session_fetch_failed")
				return nil, err
			}
			return sessions, nil
		}
	}

	return r.fetchAndCacheActiveSessions(userID)
}

func (r *SessionRepo) fetchAndCacheActiveSessions(userID string) ([]*model.Session, error) {
	var sessions []*model.Session
	err := r.DB.Select(&sessions, `
		SELECT * FROM sessions
		WHERE user_id = $1 AND is_active = TRUE AND expires_at > NOW()
		ORDER BY last_activity_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active sessions: %w", err)
	}

	// Cache the fresh data if caching is enabled
	if services.GlobalSessionCache != nil {
		if err := services.GlobalSessionCache.CacheUserSessions(userID, sessions); err != nil {
			log.Printf("Warning: Failed to cache user sessions: %v", err)
		}
	}

	return sessions, nil
}

func (r *SessionRepo) CountActiveSessions(userID string) (int, error) {
	timer := utils.TrackDBOperation("count", "sessions")
	defer timer.ObserveDuration()

	if userID == "" {
		return 0, fmt.Errorf("userID cannot be empty")
	}

	var count int
	err := r.DB.Get(&count, `
		SELECT COUNT(*) FROM sessions
		WHERE user_id = $1 AND is_active = TRUE AND expires_at > NOW()`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}

	return count, nil
}

func (r *SessionRepo) EndAllUserSessions(userID string) error {
	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}

	result, err := r.DB.Exec(`
		UPDATE sessions SET is_active = FALSE, last_activity_at = NOW()
		WHERE user_id = $1 AND is_active = TRUE`, userID)
	if err != nil {
		return fmt.Errorf("failed to end user sessions: %w", err)
	}

	if services.GlobalSessionCache != nil {
		if err := services.GlobalSessionCache.IncrementSessionVersion(userID); err != nil {
			log.Printf("Warning: Failed to increment session version: %v", err)
		}
	}

	rows, _ := result.RowsAffected()
	log.Printf("Ended %d active sessions for user %s", rows, userID)
	return nil
}

func (r *SessionRepo) EndLeastActiveSession(userID string) error {
	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}

	sessions, err := r.GetUserActiveSessions(userID)
	if err != nil {
		return fmt.Errorf("failed to fetch active sessions: %w", err)
	}

	if len(sessions) == 0 {
		return fmt.Errorf("no active sessions found")
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastActivityAt.Before(sessions[j].LastActivityAt)
	})

	leastActive := sessions[0]
	result, err := r.DB.Exec(`
		UPDATE sessions SET is_active = FALSE, last_activity_at = NOW()
		WHERE session_id = $1`, leastActive.SessionID)
	if err != nil {
		return fmt.Errorf("failed to end least active session: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("failed to end session: session not found")
	}

	if services.GlobalSessionCache != nil {
		if err := services.GlobalSessionCache.DeleteSession(leastActive.SessionID); err != nil {
			log.Printf("Warning: Failed to delete session from cache: %v", err)
		}
		if err := services.GlobalSessionCache.IncrementSessionVersion(userID); err != nil {
			log.Printf("Warning: Failed to increment session version: %v", err)
		}
	}

	return nil
}

// ValidateSession reports whether the session still exists, is active and
// has not passed its hard expiry. The idle guard uses this for extend
// requests; local guard state alone is not trusted.
func (r *SessionRepo) ValidateSession(sessionID string) (bool, error) {
	session, err := r.GetSession(sessionID)
	if err != nil {
		return false, err
	}
	if session == nil || !session.IsActive {
		return false, nil
	}
	if time.Now().After(session.ExpiresAt) {
		return false, nil
	}
	return true, nil
}

// TerminateSession deactivates a session. Used by the idle guard's expiry
// sequence and by explicit logout.
func (r *SessionRepo) TerminateSession(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}

	result, err := r.DB.Exec(`
		UPDATE sessions SET is_active = FALSE, last_activity_at = NOW()
		WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to terminate session: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("session not found")
	}

	if services.GlobalSessionCache != nil {
		if err := services.GlobalSessionCache.DeleteSession(sessionID); err != nil {
			log.Printf("Warning: Failed to delete session from cache: %v", err)
		}
	}

	return nil
}
