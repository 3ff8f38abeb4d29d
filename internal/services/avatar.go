package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"time"
)

// ImgurResponse is the image host's upload response.
type ImgurResponse struct {
	Data struct {
		ID         string `json:"id"`
		Link       string `json:"link"`
		DeleteHash string `json:"deletehash"`
		Type       string `json:"type"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

const imgurUploadURL = "https://api.imgur.com/3/image"

// UploadAvatar sends the image bytes to the configured image host and returns
// the public URL. The stored value is an opaque reference; nothing else in
// the service dereferences it.
func UploadAvatar(file multipart.File, header *multipart.FileHeader) (string, error) {
	clientID := os.Getenv("IMGUR_CLIENT_ID")
	if clientID == "" {
		return "", fmt.Errorf("IMGUR_CLIENT_ID not configured")
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	base64Image := base64.StdEncoding.EncodeToString(fileBytes)

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	if err := writer.WriteField("image", base64Image); err != nil {
		return "", fmt.Errorf("build request body: %w", err)
	}
	if err := writer.WriteField("type", "base64"); err != nil {
		return "", fmt.Errorf("build request body: %w", err)
	}
	writer.Close()

	req, err := http.NewRequest("POST", uploadEndpoint(), &requestBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+clientID)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	var result ImgurResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if !result.Success || result.Data.Link == "" {
		return "", fmt.Errorf("upload rejected with status %d", result.Status)
	}

	return result.Data.Link, nil
}

// uploadEndpoint allows tests to point uploads at a local server.
func uploadEndpoint() string {
	if u := os.Getenv("IMAGE_UPLOAD_URL"); u != "" {
		return u
	}
	return imgurUploadURL
}

// IdenticonURL returns a deterministic generated avatar for users who never
// upload one, seeded by their username.
func IdenticonURL(seed string) string {
	return "https://api.dicebear.com/9.x/identicon/svg?seed=" + url.QueryEscape(seed)
}
