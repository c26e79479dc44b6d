package middleware

import (
	"fmt"
	"net/http"
	"time"

	"main/model"
	"main/repository"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SessionCookieName = "session_id"

// SessionMiddleware loads the server-side session behind the cookie, keeps
// the idle guard for it running and feeds it ambient activity. A session the
// guard has expired answers 401 with a session_expired code so the client
// hard-redirects to login instead of retrying.
func SessionMiddleware(sessionRepo *repository.SessionRepo, userRepo *repository.UserRepo, guards *services.GuardManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || sessionID == "" {
			utils.Unauthorized(c, "Missing session")
			c.Abort()
			return
		}

		session, err := sessionRepo.GetSession(sessionID)
		if err != nil {
			utils.InternalError(c, "Failed to load session")
			c.Abort()
			return
		}
		if session == nil || !session.IsActive || time.Now().After(session.ExpiresAt) {
			guards.Drop(sessionID)
			ClearSessionCookie(c)
			expiredResponse(c)
			return
		}

		guard, ok := guards.Get(sessionID)
		if !ok {
			// First authenticated request since the process started: resume
			// the guard, which re-runs the re-entry validation.
			actorEmail := ""
			if user, err := userRepo.FindUser(session.UserID); err == nil && user != nil {
				actorEmail = user.Email
			}
			guard = guards.Ensure(sessionID, session.UserID, actorEmail)
		}

		if guard.Phase() == services.PhaseExpired {
			guards.Drop(sessionID)
			ClearSessionCookie(c)
			expiredResponse(c)
			return
		}

		// Ambient activity. The guard ignores this once the warning is up.
		guard.OnActivity()

		session.LastActivityAt = time.Now()
		sessionRepo.UpdateSession(session)

		c.Set("session", session)
		c.Next()
	}
}

func expiredResponse(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": "Session has expired",
		"code":  "session_expired",
	})
	c.Abort()
}

// CreateSession builds and persists a session row for a fresh login and sets
// the cookie.
func CreateSession(c *gin.Context, userID string, sessionRepo *repository.SessionRepo) (*model.Session, error) {
	userAgent := c.Request.UserAgent()
	browser, os, device := utils.ParseUserAgent(userAgent)

	session := &model.Session{
		SessionID:      uuid.New().String(),
		UserID:         userID,
		DisplayName:    utils.GenerateSessionName(userAgent),
		DeviceInfo:     fmt.Sprintf("%s on %s (%s)", browser, os, device),
		CreatedAt:      time.Now(),
		ExpiresAt:      time.Now().Add(24 * time.Hour),
		LastActivityAt: time.Now(),
		IPAddress:      c.ClientIP(),
		IsActive:       true,
	}

	if err := sessionRepo.CreateSession(session); err != nil {
		return nil, err
	}

	c.SetCookie(
		SessionCookieName,
		session.SessionID,
		int(24*time.Hour.Seconds()),
		"/",
		"",
		true,
		true,
	)

	return session, nil
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(c *gin.Context) {
	c.SetCookie(SessionCookieName, "", -1, "/", "", true, true)
}
