package handler

import (
	"strconv"

	"main/model"
	"main/repository"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

func ListPublishedPostsHandler(c *gin.Context, blogService *usecase.BlogService) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	posts, err := blogService.ListPublished(limit, offset)
	if err != nil {
		utils.InternalError(c, "Failed to fetch posts")
		return
	}
	utils.Success(c, gin.H{"posts": posts})
}

func GetPublishedPostHandler(c *gin.Context, blogService *usecase.BlogService) {
	post, err := blogService.GetPublishedPost(c.Param("slug"))
	if err != nil {
		utils.InternalError(c, "Failed to fetch post")
		return
	}
	if post == nil {
		utils.NotFound(c, "Post not found")
		return
	}
	utils.Success(c, post)
}

func ListPostsHandler(c *gin.Context, blogService *usecase.BlogService) {
	posts, err := blogService.ListAll()
	if err != nil {
		utils.InternalError(c, "Failed to fetch posts")
		return
	}
	utils.Success(c, gin.H{"posts": posts})
}

func GetPostHandler(c *gin.Context, blogService *usecase.BlogService) {
	post, err := blogService.GetPost(c.Param("id"))
	if err != nil {
		utils.InternalError(c, "Failed to fetch post")
		return
	}
	if post == nil {
		utils.NotFound(c, "Post not found")
		return
	}
	utils.Success(c, post)
}

func CreatePostHandler(c *gin.Context, blogService *usecase.BlogService, activityRepo *repository.ActivityRepo) {
	var post model.BlogPost
	if err := c.ShouldBindJSON(&post); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	if err := blogService.CreatePost(&post); err != nil {
		utils.TrackError("blog", "creation_failed")
		utils.BadRequest(c, "Failed to create post")
		return
	}

	recordAudit(activityRepo, c, model.ActionCreate, post.Title, "blog")
	utils.Created(c, post)
}

func UpdatePostHandler(c *gin.Context, blogService *usecase.BlogService, activityRepo *repository.ActivityRepo) {
	var updates model.BlogPost
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	post, err := blogService.UpdatePost(c.Param("id"), &updates)
	if err != nil {
		if err.Error() == "post not found" {
			utils.NotFound(c, "Post not found")
			return
		}
		utils.InternalError(c, "Failed to update post")
		return
	}

	recordAudit(activityRepo, c, model.ActionUpdate, post.Title, "blog")
	utils.Success(c, post)
}

func DeletePostHandler(c *gin.Context, blogService *usecase.BlogService, activityRepo *repository.ActivityRepo) {
	id := c.Param("id")
	post, err := blogService.GetPost(id)
	if err != nil {
		utils.InternalError(c, "Failed to fetch post")
		return
	}
	if post == nil {
		utils.NotFound(c, "Post not found")
		return
	}

	if err := blogService.DeletePost(id); err != nil {
		utils.InternalError(c, "Failed to delete post")
		return
	}

	recordAudit(activityRepo, c, model.ActionDelete, post.Title, "blog")
	utils.Success(c, gin.H{"message": "Post deleted"})
}
