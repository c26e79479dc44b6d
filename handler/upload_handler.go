package handler

import (
	"fmt"
	"path/filepath"

	"main/services"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// UploadHandler streams a multipart upload through the asset host client
// and returns the public URL. When the upload belongs to an open content
// working set (page_key form field) it is tracked there so a discarded
// editing session cleans it up.
func UploadHandler(c *gin.Context, assets services.AssetClient, contentService *usecase.ContentService) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "Missing file")
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		utils.BadRequest(c, "File too large")
		return
	}

	// Server-generated name: the original filename is untrusted input.
	filename := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(header.Filename))

	assetURL, err := assets.Upload(c.Request.Context(), file, filename)
	if err != nil {
		utils.TrackError("assets", "upload_failed")
		utils.InternalError(c, "Failed to upload asset")
		return
	}

	if pageKey := c.PostForm("page_key"); pageKey != "" {
		if session := sessionFromContext(c); session != nil {
			if ws, err := contentService.WorkingSetFor(session.SessionID, pageKey); err == nil {
				ws.TrackUpload(assetURL)
			}
		}
	}

	utils.Created(c, gin.H{"url": assetURL})
}
