package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"time"

	"main/utils"
)

// AssetClient is the boundary to the external image host. Delete failures
// are janitor work: callers log and move on, they never block a save.
type AssetClient interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
	Delete(ctx context.Context, assetURL string) error
}

// HTTPAssetClient talks to the image-hosting service over its HTTP API.
type HTTPAssetClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAssetClient builds the client from environment configuration.
func NewAssetClient() *HTTPAssetClient {
	return &HTTPAssetClient{
		BaseURL: utils.GetEnvAsString("ASSET_HOST_URL", "https://assets.example.com"),
		APIKey:  utils.GetEnvAsString("ASSET_HOST_API_KEY", ""),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload streams the file to the asset host and returns its public URL.
func (c *HTTPAssetClient) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to read upload data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("asset host rejected upload: status %d", resp.StatusCode)
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if uploaded.URL == "" {
		return "", fmt.Errorf("asset host returned empty URL")
	}

	return uploaded.URL, nil
}

// Delete removes a previously uploaded asset by its public URL.
func (c *HTTPAssetClient) Delete(ctx context.Context, assetURL string) error {
	parsed, err := url.Parse(assetURL)
	if err != nil {
		return fmt.Errorf("invalid asset URL: %w", err)
	}

	id := path.Base(parsed.Path)
	if id == "" || id == "/" || id == "." {
		return fmt.Errorf("cannot derive asset id from URL %q", assetURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.BaseURL+"/files/"+id, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("asset host rejected delete: status %d", resp.StatusCode)
	}

	return nil
}

// CleanupAsset deletes a remote asset, logging and swallowing any failure.
// An orphaned remote file is not a data-integrity problem.
func CleanupAsset(ctx context.Context, client AssetClient, assetURL string) {
	if client == nil || assetURL == "" {
		return
	}
	if err := client.Delete(ctx, assetURL); err != nil {
		utils.TrackError("assets", "cleanup_failed")
		log.Printf("Warning: Failed to clean up asset %s: %v", assetURL, err)
	}
}
