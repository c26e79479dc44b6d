package handler

import (
	"log"
	"time"

	"main/model"
	"main/repository"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// recordAudit writes one activity-log entry for a mutating admin action.
// Best-effort: a failed write never blocks the action it accompanies.
func recordAudit(activityRepo *repository.ActivityRepo, c *gin.Context, action, itemLabel, module string) {
	actorID := ""
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			actorID = id
		}
	}

	entry := &model.ActivityLogEntry{
		Action:    action,
		ItemLabel: itemLabel,
		Module:    module,
		ActorID:   actorID,
		CreatedAt: time.Now(),
	}
	if err := activityRepo.Record(entry); err != nil {
		utils.TrackError("audit", "write_failed")
		log.Printf("Warning: Failed to write %s audit entry for %s: %v", action, itemLabel, err)
	}
}
