package handler

import (
	"time"

	"main/model"
	"main/repository"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func ListActiveServicesHandler(c *gin.Context, servicesRepo *repository.ServicesRepo) {
	services, err := servicesRepo.ListActiveServices()
	if err != nil {
		utils.InternalError(c, "Failed to fetch services")
		return
	}
	utils.Success(c, gin.H{"services": services})
}

func ListServicesHandler(c *gin.Context, servicesRepo *repository.ServicesRepo) {
	services, err := servicesRepo.ListServices()
	if err != nil {
		utils.InternalError(c, "Failed to fetch services")
		return
	}
	utils.Success(c, gin.H{"services": services})
}

func CreateServiceHandler(c *gin.Context, servicesRepo *repository.ServicesRepo, activityRepo *repository.ActivityRepo) {
	var service model.Service
	if err := c.ShouldBindJSON(&service); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	service.ID = uuid.New().String()
	if service.Slug == "" {
		service.Slug = usecase.Slugify(service.Title)
	}
	now := time.Now()
	service.CreatedAt = now
	service.UpdatedAt = now

	if err := servicesRepo.CreateService(&service); err != nil {
		utils.InternalError(c, "Failed to create service")
		return
	}

	recordAudit(activityRepo, c, model.ActionCreate, service.Title, "services")
	utils.Created(c, service)
}

func UpdateServiceHandler(c *gin.Context, servicesRepo *repository.ServicesRepo, activityRepo *repository.ActivityRepo) {
	existing, err := servicesRepo.GetService(c.Param("id"))
	if err != nil {
		utils.InternalError(c, "Failed to fetch service")
		return
	}
	if existing == nil {
		utils.NotFound(c, "Service not found")
		return
	}

	var updates model.Service
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	existing.Title = updates.Title
	if updates.Slug != "" {
		existing.Slug = usecase.Slugify(updates.Slug)
	}
	existing.Description = updates.Description
	existing.Icon = updates.Icon
	existing.DisplayOrder = updates.DisplayOrder
	existing.IsActive = updates.IsActive
	existing.UpdatedAt = time.Now()

	if err := servicesRepo.UpdateService(existing); err != nil {
		utils.InternalError(c, "Failed to update service")
		return
	}

	recordAudit(activityRepo, c, model.ActionUpdate, existing.Title, "services")
	utils.Success(c, existing)
}

func ToggleServiceActiveHandler(c *gin.Context, servicesRepo *repository.ServicesRepo, activityRepo *repository.ActivityRepo) {
	id := c.Param("id")
	active, err := servicesRepo.ToggleActive(id)
	if err != nil {
		utils.NotFound(c, "Service not found")
		return
	}

	recordAudit(activityRepo, c, model.ActionToggle, id, "services")
	utils.Success(c, gin.H{"is_active": active})
}

func DeleteServiceHandler(c *gin.Context, servicesRepo *repository.ServicesRepo, activityRepo *repository.ActivityRepo) {
	existing, err := servicesRepo.GetService(c.Param("id"))
	if err != nil {
		utils.InternalError(c, "Failed to fetch service")
		return
	}
	if existing == nil {
		utils.NotFound(c, "Service not found")
		return
	}

	if err := servicesRepo.DeleteService(existing.ID); err != nil {
		utils.InternalError(c, "Failed to delete service")
		return
	}

	recordAudit(activityRepo, c, model.ActionDelete, existing.Title, "services")
	utils.Success(c, gin.H{"message": "Service deleted"})
}
