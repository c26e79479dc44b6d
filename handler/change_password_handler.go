package handler

import (
	"errors"

	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

func ChangePasswordHandler(c *gin.Context, userService *usecase.UserService) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	err := userService.ChangePassword(userID.(string), req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrWrongPassword):
			utils.TrackAuthAttempt("failure", "password_change")
			utils.Unauthorized(c, "Current password is incorrect")
		case errors.Is(err, usecase.ErrSamePassword):
			utils.BadRequest(c, "New password must differ from the current one")
		case errors.Is(err, usecase.ErrWeakPassword):
			utils.BadRequest(c, "Password does not meet requirements")
		default:
			utils.TrackError("auth", "password_change_failed")
			utils.InternalError(c, "Failed to change password")
		}
		return
	}

	utils.TrackAuthAttempt("success", "password_change")
	utils.Success(c, gin.H{"message": "Password changed successfully"})
}
