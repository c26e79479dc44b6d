package handler

import (
	"errors"

	"main/model"
	"main/services"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// RegistrationHandler creates an additional admin account. It sits behind
// auth: only a signed-in admin can add another.
func RegistrationHandler(c *gin.Context, userService *usecase.UserService) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}

	if err := userService.CreateUser(user); err != nil {
		switch {
		case errors.Is(err, usecase.ErrUsernameTaken):
			utils.Conflict(c, "Username already exists")
		case errors.Is(err, usecase.ErrWeakPassword):
			utils.BadRequest(c, "Password does not meet requirements")
		default:
			utils.TrackError("auth", "registration_failed")
			utils.InternalError(c, "Failed to register user")
		}
		return
	}

	token, err := services.GenerateToken(user.UserID)
	if err != nil {
		utils.InternalError(c, "Failed to generate token")
		return
	}
	refreshToken, err := services.GenerateRefreshToken(user.UserID)
	if err != nil {
		utils.InternalError(c, "Failed to generate refresh token")
		return
	}

	utils.Created(c, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"refresh": refreshToken,
		"user": gin.H{
			"id":       user.UserID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}
