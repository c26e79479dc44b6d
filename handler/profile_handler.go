package handler

import (
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// ProfileHandler returns the signed-in admin's account details.
func ProfileHandler(c *gin.Context, userService *usecase.UserService) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	user, err := userService.GetUser(userID.(string))
	if err != nil {
		utils.InternalError(c, "Failed to fetch user")
		return
	}
	if user == nil {
		utils.NotFound(c, "User not found")
		return
	}

	utils.Success(c, gin.H{
		"id":                 user.UserID,
		"username":           user.Username,
		"email":              user.Email,
		"two_factor_enabled": user.TwoFactorEnabled,
		"created_at":         user.CreatedAt,
	})
}
