package handler

import (
	"fmt"

	"main/dto"
	"main/model"
	"main/repository"
	"main/services"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// GetPageContentHandler serves the published slots of one page to the
// public site.
func GetPageContentHandler(c *gin.Context, contentService *usecase.ContentService) {
	entries, err := contentService.PublishedContent(c.Param("page"))
	if err != nil {
		utils.InternalError(c, "Failed to fetch page content")
		return
	}
	utils.Success(c, gin.H{"entries": entries})
}

// GetDraftsHandler loads (or resumes) the editing session's working set for
// a page and returns every draft entry with its dirty flag.
func GetDraftsHandler(c *gin.Context, contentService *usecase.ContentService) {
	session := sessionFromContext(c)
	if session == nil {
		utils.Unauthorized(c, "Missing session")
		return
	}

	ws, err := contentService.WorkingSetFor(session.SessionID, c.Param("page"))
	if err != nil {
		utils.InternalError(c, "Failed to load drafts")
		return
	}

	entries := ws.Entries()
	drafts := make([]dto.DraftEntryResponse, 0, len(entries))
	for _, entry := range entries {
		drafts = append(drafts, dto.DraftEntryResponse{
			PageKey:    entry.PageKey,
			SectionKey: entry.SectionKey,
			Kind:       entry.Kind,
			Value:      entry.Value,
			Changed:    entry.Changed(),
		})
	}
	utils.Success(c, gin.H{"drafts": drafts})
}

// SetDraftHandler stores one draft value and broadcasts it to any open
// preview, without persisting anything.
func SetDraftHandler(c *gin.Context, contentService *usecase.ContentService, hub *PreviewHub) {
	session := sessionFromContext(c)
	if session == nil {
		utils.Unauthorized(c, "Missing session")
		return
	}

	pageKey := c.Param("page")

	var req dto.SetDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}
	kind := req.Kind
	if kind == "" {
		kind = model.ContentKindText
	}

	ws, err := contentService.WorkingSetFor(session.SessionID, pageKey)
	if err != nil {
		utils.InternalError(c, "Failed to load drafts")
		return
	}
	if err := ws.Set(req.SectionKey, kind, req.Value); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	key := services.SlotKey(pageKey, req.SectionKey)
	services.GetBridge().Send(key, req.Value)
	hub.BroadcastToPage(pageKey, dto.CMSUpdate{
		Type:  "CMS_UPDATE",
		Key:   key,
		Value: req.Value,
	})

	utils.Success(c, gin.H{"message": "Draft saved"})
}

// PublishContentHandler persists the changed entries of a page's working
// set and audits the publish.
func PublishContentHandler(c *gin.Context, contentService *usecase.ContentService, activityRepo *repository.ActivityRepo) {
	session := sessionFromContext(c)
	if session == nil {
		utils.Unauthorized(c, "Missing session")
		return
	}

	pageKey := c.Param("page")
	ws, err := contentService.WorkingSetFor(session.SessionID, pageKey)
	if err != nil {
		utils.InternalError(c, "Failed to load drafts")
		return
	}

	published, err := contentService.Publish(c.Request.Context(), ws)
	if err != nil {
		utils.InternalError(c, "Failed to publish content")
		return
	}
	if len(published) == 0 {
		utils.Success(c, gin.H{"message": "Nothing to publish", "published": 0})
		return
	}

	recordAudit(activityRepo, c, model.ActionUpdate, fmt.Sprintf("Page content: %s", pageKey), "content")
	utils.Success(c, gin.H{
		"message":   "Content published",
		"published": len(published),
	})
}

// DiscardContentHandler drops the working set's unpublished values.
func DiscardContentHandler(c *gin.Context, contentService *usecase.ContentService) {
	session := sessionFromContext(c)
	if session == nil {
		utils.Unauthorized(c, "Missing session")
		return
	}

	ws, err := contentService.WorkingSetFor(session.SessionID, c.Param("page"))
	if err != nil {
		utils.InternalError(c, "Failed to load drafts")
		return
	}

	contentService.Discard(c.Request.Context(), ws)
	utils.Success(c, gin.H{"message": "Draft changes discarded"})
}
