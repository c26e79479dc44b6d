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

// Public endpoints

func ListPublishedProjectsHandler(c *gin.Context, projectsRepo *repository.ProjectsRepo) {
	projects, err := projectsRepo.ListPublishedProjects()
	if err != nil {
		utils.InternalError(c, "Failed to fetch projects")
		return
	}
	utils.Success(c, gin.H{"projects": projects})
}

func GetProjectBySlugHandler(c *gin.Context, projectsRepo *repository.ProjectsRepo) {
	project, err := projectsRepo.GetProjectBySlug(c.Param("slug"))
	if err != nil {
		utils.InternalError(c, "Failed to fetch project")
		return
	}
	if project == nil || !project.IsPublished {
		utils.NotFound(c, "Project not found")
		return
	}
	utils.Success(c, project)
}

// Admin endpoints

func ListProjectsHandler(c *gin.Context, projectsRepo *repository.ProjectsRepo) {
	projects, err := projectsRepo.ListProjects()
	if err != nil {
		utils.InternalError(c, "Failed to fetch projects")
		return
	}
	utils.Success(c, gin.H{"projects": projects})
}

func CreateProjectHandler(c *gin.Context, projectsRepo *repository.ProjectsRepo, activityRepo *repository.ActivityRepo) {
	var project model.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	project.ID = uuid.New().String()
	if project.Slug == "" {
		project.Slug = usecase.Slugify(project.Title)
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	if err := projectsRepo.CreateProject(&project); err != nil {
		utils.InternalError(c, "Failed to create project")
		return
	}

	recordAudit(activityRepo, c, model.ActionCreate, project.Title, "projects")
	utils.Created(c, project)
}

func UpdateProjectHandler(c *gin.Context, projectsRepo *repository.ProjectsRepo, activityRepo *repository.ActivityRepo) {
	existing, err := projectsRepo.GetProject(c.Param("id"))
	if err != nil {
		utils.InternalError(c, "Failed to fetch project")
		return
	}
	if existing == nil {
		utils.NotFound(c, "Project not found")
		return
	}

	var updates model.Project
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	existing.Title = updates.Title
	if updates.Slug != "" {
		existing.Slug = usecase.Slugify(updates.Slug)
	}
	existing.Summary = updates.Summary
	existing.Body = updates.Body
	existing.CoverImage = updates.CoverImage
	if updates.Gallery != nil {
		existing.Gallery = updates.Gallery
	}
	existing.IsPublished = updates.IsPublished
	existing.UpdatedAt = time.Now()

	if err := projectsRepo.UpdateProject(existing); err != nil {
		utils.InternalError(c, "Failed to update project")
		return
	}

	recordAudit(activityRepo, c, model.ActionUpdate, existing.Title, "projects")
	utils.Success(c, existing)
}

func ToggleProjectFeaturedHandler(c *gin.Context, projectsRepo *repository.ProjectsRepo, activityRepo *repository.ActivityRepo) {
	id := c.Param("id")
	featured, err := projectsRepo.ToggleFeatured(id)
	if err != nil {
		utils.NotFound(c, "Project not found")
		return
	}

	recordAudit(activityRepo, c, model.ActionToggle, id, "projects")
	utils.Success(c, gin.H{"is_featured": featured})
}

func DeleteProjectHandler(c *gin.Context, projectsRepo *repository.ProjectsRepo, activityRepo *repository.ActivityRepo) {
	existing, err := projectsRepo.GetProject(c.Param("id"))
	if err != nil {
		utils.InternalError(c, "Failed to fetch project")
		return
	}
	if existing == nil {
		utils.NotFound(c, "Project not found")
		return
	}

	if err := projectsRepo.DeleteProject(existing.ID); err != nil {
		utils.InternalError(c, "Failed to delete project")
		return
	}

	recordAudit(activityRepo, c, model.ActionDelete, existing.Title, "projects")
	utils.Success(c, gin.H{"message": "Project deleted"})
}
