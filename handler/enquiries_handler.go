package handler

import (
	"time"

	"main/model"
	"main/repository"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubmitEnquiryHandler is the public contact-form endpoint. The notification
// email is best-effort: the enquiry is stored either way.
func SubmitEnquiryHandler(c *gin.Context, enquiriesRepo *repository.EnquiriesRepo, mailer *services.Mailer) {
	var enquiry model.Enquiry
	if err := c.ShouldBindJSON(&enquiry); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	enquiry.ID = uuid.New().String()
	enquiry.IsHandled = false
	enquiry.CreatedAt = time.Now()

	if err := enquiriesRepo.CreateEnquiry(&enquiry); err != nil {
		utils.InternalError(c, "Failed to submit enquiry")
		return
	}

	mailer.NotifyEnquiry(&enquiry)

	utils.Created(c, gin.H{"message": "Thank you for your enquiry. We will be in touch."})
}

func ListEnquiriesHandler(c *gin.Context, enquiriesRepo *repository.EnquiriesRepo) {
	onlyUnhandled := c.Query("unhandled") == "true"
	enquiries, err := enquiriesRepo.ListEnquiries(onlyUnhandled)
	if err != nil {
		utils.InternalError(c, "Failed to fetch enquiries")
		return
	}
	utils.Success(c, gin.H{"enquiries": enquiries})
}

func ToggleEnquiryHandledHandler(c *gin.Context, enquiriesRepo *repository.EnquiriesRepo, activityRepo *repository.ActivityRepo) {
	id := c.Param("id")
	handled, err := enquiriesRepo.ToggleHandled(id)
	if err != nil {
		utils.NotFound(c, "Enquiry not found")
		return
	}

	recordAudit(activityRepo, c, model.ActionToggle, id, "enquiries")
	utils.Success(c, gin.H{"is_handled": handled})
}

func DeleteEnquiryHandler(c *gin.Context, enquiriesRepo *repository.EnquiriesRepo, activityRepo *repository.ActivityRepo) {
	existing, err := enquiriesRepo.GetEnquiry(c.Param("id"))
	if err != nil {
		utils.InternalError(c, "Failed to fetch enquiry")
		return
	}
	if existing == nil {
		utils.NotFound(c, "Enquiry not found")
		return
	}

	if err := enquiriesRepo.DeleteEnquiry(existing.ID); err != nil {
		utils.InternalError(c, "Failed to delete enquiry")
		return
	}

	recordAudit(activityRepo, c, model.ActionDelete, existing.Name, "enquiries")
	utils.Success(c, gin.H{"message": "Enquiry deleted"})
}
