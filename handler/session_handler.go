package handler

import (
	"errors"
	"net/http"

	"main/dto"
	"main/middleware"
	"main/model"
	"main/repository"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
)

func sessionFromContext(c *gin.Context) *model.Session {
	value, exists := c.Get("session")
	if !exists {
		return nil
	}
	session, ok := value.(*model.Session)
	if !ok {
		return nil
	}
	return session
}

// SessionStatusHandler reports the guard phase and, during the countdown,
// the seconds left. The client renders its warning dialog from this alone.
func SessionStatusHandler(c *gin.Context, guards *services.GuardManager) {
	session := sessionFromContext(c)
	if session == nil {
		utils.Unauthorized(c, "Missing session")
		return
	}

	guard, ok := guards.Get(session.SessionID)
	if !ok {
		utils.Unauthorized(c, "Missing session")
		return
	}

	utils.Success(c, dto.SessionStatusResponse{
		Phase:            string(guard.Phase()),
		SecondsRemaining: guard.SecondsRemaining(),
	})
}

// SessionExtendHandler is the explicit "stay signed in" action from the
// countdown dialog.
func SessionExtendHandler(c *gin.Context, guards *services.GuardManager) {
	session := sessionFromContext(c)
	if session == nil {
		utils.Unauthorized(c, "Missing session")
		return
	}

	guard, ok := guards.Get(session.SessionID)
	if !ok {
		utils.Unauthorized(c, "Missing session")
		return
	}

	if err := guard.Extend(); err != nil {
		if errors.Is(err, services.ErrGuardExpired) {
			guards.Drop(session.SessionID)
			middleware.ClearSessionCookie(c)
			expiredExtendResponse(c)
			return
		}
		// Transient validation failure: the countdown keeps running and
		// the user may retry.
		utils.InternalError(c, "Failed to extend session")
		return
	}

	utils.Success(c, dto.SessionStatusResponse{
		Phase:            string(guard.Phase()),
		SecondsRemaining: guard.SecondsRemaining(),
	})
}

func expiredExtendResponse(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": "Session has expired",
		"code":  "session_expired",
	})
}

// SessionHeartbeatHandler only exists for its side effect: passing through
// SessionMiddleware already fed the activity clock.
func SessionHeartbeatHandler(c *gin.Context) {
	utils.Success(c, gin.H{"message": "ok"})
}

// ActiveSessionsHandler lists the caller's active sessions for the
// back-office security page.
func ActiveSessionsHandler(c *gin.Context, sessionRepo *repository.SessionRepo) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	sessions, err := sessionRepo.GetUserActiveSessions(userID.(string))
	if err != nil {
		utils.InternalError(c, "Failed to fetch sessions")
		return
	}

	current := ""
	if session := sessionFromContext(c); session != nil {
		current = session.SessionID
	}

	utils.Success(c, gin.H{
		"sessions":   sessions,
		"current_id": current,
	})
}

// LogoutAllHandler ends every active session for the caller, including the
// current one.
func LogoutAllHandler(c *gin.Context, sessionRepo *repository.SessionRepo, guards *services.GuardManager) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	sessions, err := sessionRepo.GetUserActiveSessions(userID.(string))
	if err != nil {
		utils.InternalError(c, "Failed to fetch sessions")
		return
	}

	if err := sessionRepo.EndAllUserSessions(userID.(string)); err != nil {
		utils.TrackError("session", "logout_all_failed")
		utils.InternalError(c, "Failed to end sessions")
		return
	}

	for _, s := range sessions {
		guards.Drop(s.SessionID)
	}

	middleware.ClearSessionCookie(c)
	utils.Success(c, gin.H{
		"message":        "All sessions ended",
		"sessions_ended": len(sessions),
	})
}
