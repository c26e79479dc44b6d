package handler

import (
	"log"
	"time"

	"main/repository"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/mem"
)

type StatsHandler struct {
	projectsRepo  *repository.ProjectsRepo
	enquiriesRepo *repository.EnquiriesRepo
	activityRepo  *repository.ActivityRepo
	sessionRepo   *repository.SessionRepo
}

func NewStatsHandler(
	projectsRepo *repository.ProjectsRepo,
	enquiriesRepo *repository.EnquiriesRepo,
	activityRepo *repository.ActivityRepo,
	sessionRepo *repository.SessionRepo,
) *StatsHandler {
	return &StatsHandler{
		projectsRepo:  projectsRepo,
		enquiriesRepo: enquiriesRepo,
		activityRepo:  activityRepo,
		sessionRepo:   sessionRepo,
	}
}

// GetDashboardStats feeds the admin dashboard's summary cards.
func (h *StatsHandler) GetDashboardStats(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}

	totalProjects, err := h.projectsRepo.CountProjects()
	if err != nil {
		log.Printf("Error counting projects: %v", err)
		utils.InternalError(c, "Failed to count projects")
		return
	}

	unhandled, err := h.enquiriesRepo.ListEnquiries(true)
	if err != nil {
		log.Printf("Error listing enquiries: %v", err)
		utils.InternalError(c, "Failed to count enquiries")
		return
	}

	recentActivity, err := h.activityRepo.CountSince(time.Now().Add(-7 * 24 * time.Hour))
	if err != nil {
		log.Printf("Error counting activity: %v", err)
		utils.InternalError(c, "Failed to count activity")
		return
	}

	sessions, err := h.sessionRepo.GetUserActiveSessions(userID.(string))
	if err != nil {
		log.Printf("Error getting sessions: %v", err)
		utils.InternalError(c, "Failed to get sessions")
		return
	}

	utils.Success(c, gin.H{
		"stats": gin.H{
			"total_projects":      totalProjects,
			"unhandled_enquiries": len(unhandled),
			"activity_this_week":  recentActivity,
			"active_sessions":     len(sessions),
		},
	})
}

// GetSystemStats reports process-host usage for the admin dashboard.
func (h *StatsHandler) GetSystemStats(c *gin.Context) {
	stats := gin.H{
		"cpu_percent": utils.GetCPUUsage(),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats["memory_percent"] = vm.UsedPercent
		stats["memory_total"] = vm.Total
		stats["memory_used"] = vm.Used
	}

	utils.Success(c, gin.H{"system": stats})
}

// HealthHandler reports dependency health. Degraded dependencies still
// answer 200: the process is up, the payload says what isn't.
func HealthHandler(c *gin.Context) {
	health := gin.H{"status": "ok"}

	if err := utils.DB.Ping(); err != nil {
		health["status"] = "degraded"
		health["postgres"] = "down"
	} else {
		health["postgres"] = "up"
	}

	redisStatus := "down"
	if services.TokenBlacklist != nil && services.TokenBlacklist.IsConnected() {
		redisStatus = "up"
	}
	if redisStatus == "down" {
		health["status"] = "degraded"
	}
	health["redis"] = redisStatus

	utils.Success(c, health)
}
