package handler

import (
	"fmt"
	"strings"

	"main/middleware"
	"main/model"
	"main/services"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// LogoutHandler blacklists the caller's tokens and signs the guard out,
// which terminates the session, clears the activity clock and writes the
// LOGOUT audit entry. Open content working sets are discarded.
func LogoutHandler(c *gin.Context, guards *services.GuardManager, contentService *usecase.ContentService) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}
	accessToken := strings.TrimPrefix(authHeader, "Bearer ")

	_, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(utils.JWTSecretKey), nil
	})
	if err != nil {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	refreshToken := c.GetHeader("Refresh-Token")
	if refreshToken == "" {
		utils.BadRequest(c, "Missing refresh token")
		return
	}

	if err := services.BlacklistTokens(accessToken, refreshToken); err != nil {
		utils.TrackError("auth", "blacklist_failed")
		utils.InternalError(c, "Failed to logout")
		return
	}
	utils.TokenUsage.WithLabelValues("access", "revoked").Inc()
	utils.TokenUsage.WithLabelValues("refresh", "revoked").Inc()

	if session, exists := c.Get("session"); exists {
		if s, ok := session.(*model.Session); ok {
			if guard, running := guards.Get(s.SessionID); running {
				guard.SignOut()
			}
			guards.Drop(s.SessionID)
			contentService.DropSession(c.Request.Context(), s.SessionID)
		}
	}

	middleware.ClearSessionCookie(c)
	utils.Success(c, gin.H{"message": "Successfully logged out"})
}
