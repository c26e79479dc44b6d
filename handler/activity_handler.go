package handler

import (
	"strconv"

	"main/repository"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// ActivityFeedHandler serves the back-office activity feed, newest first.
func ActivityFeedHandler(c *gin.Context, activityRepo *repository.ActivityRepo) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := activityRepo.List(limit, offset)
	if err != nil {
		utils.InternalError(c, "Failed to fetch activity log")
		return
	}

	utils.Success(c, gin.H{"entries": entries})
}
