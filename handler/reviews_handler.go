package handler

import (
	"time"

	"main/model"
	"main/repository"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func ListApprovedReviewsHandler(c *gin.Context, reviewsRepo *repository.ReviewsRepo) {
	reviews, err := reviewsRepo.ListApprovedReviews()
	if err != nil {
		utils.InternalError(c, "Failed to fetch reviews")
		return
	}
	utils.Success(c, gin.H{"reviews": reviews})
}

func ListReviewsHandler(c *gin.Context, reviewsRepo *repository.ReviewsRepo) {
	reviews, err := reviewsRepo.ListReviews()
	if err != nil {
		utils.InternalError(c, "Failed to fetch reviews")
		return
	}
	utils.Success(c, gin.H{"reviews": reviews})
}

func CreateReviewHandler(c *gin.Context, reviewsRepo *repository.ReviewsRepo, activityRepo *repository.ActivityRepo) {
	var review model.Review
	if err := c.ShouldBindJSON(&review); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	review.ID = uuid.New().String()
	if review.Rating == 0 {
		review.Rating = 5
	}
	// New reviews wait for approval before appearing publicly.
	review.IsApproved = false
	review.CreatedAt = time.Now()

	if err := reviewsRepo.CreateReview(&review); err != nil {
		utils.BadRequest(c, "Failed to create review")
		return
	}

	recordAudit(activityRepo, c, model.ActionCreate, review.Author, "reviews")
	utils.Created(c, review)
}

func ToggleReviewApprovedHandler(c *gin.Context, reviewsRepo *repository.ReviewsRepo, activityRepo *repository.ActivityRepo) {
	id := c.Param("id")
	approved, err := reviewsRepo.ToggleApproved(id)
	if err != nil {
		utils.NotFound(c, "Review not found")
		return
	}

	recordAudit(activityRepo, c, model.ActionToggle, id, "reviews")
	utils.Success(c, gin.H{"is_approved": approved})
}

func DeleteReviewHandler(c *gin.Context, reviewsRepo *repository.ReviewsRepo, activityRepo *repository.ActivityRepo) {
	existing, err := reviewsRepo.GetReview(c.Param("id"))
	if err != nil {
		utils.InternalError(c, "Failed to fetch review")
		return
	}
	if existing == nil {
		utils.NotFound(c, "Review not found")
		return
	}

	if err := reviewsRepo.DeleteReview(existing.ID); err != nil {
		utils.InternalError(c, "Failed to delete review")
		return
	}

	recordAudit(activityRepo, c, model.ActionDelete, existing.Author, "reviews")
	utils.Success(c, gin.H{"message": "Review deleted"})
}
