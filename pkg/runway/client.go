// Package runway is a direct client for the Runway API, used by the
// passthrough generation path that bypasses the KIE gateway.
package runway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const apiVersion = "2024-11-06"

type Client struct {
	baseURL     string
	taskBaseURL string
	apiKey      string
	httpClient  *http.Client
}

func NewClient(apiKey, baseURL, taskBaseURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		taskBaseURL: taskBaseURL,
		apiKey:      apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type ImageToVideoRequest struct {
	Model       string `json:"model"`
	PromptImage string `json:"promptImage"`
	PromptText  string `json:"promptText"`
	Duration    int    `json:"duration"`
	Ratio       string `json:"ratio"`
	Watermark   bool   `json:"watermark"`
}

type Task struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	Progress float64  `json:"progress"`
	Output   []string `json:"output"`
	Failure  string   `json:"failure"`
}

// UploadAsset uploads raw image bytes and returns the Runway asset id.
func (c *Client) UploadAsset(ctx context.Context, data []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/assets", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("runway asset upload failed: status %d: %s", resp.StatusCode, string(raw))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode asset response: %w", err)
	}
	return result.ID, nil
}

// CreateImageToVideo starts a generation task and returns it.
func (c *Client) CreateImageToVideo(ctx context.Context, req ImageToVideoRequest) (*Task, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/image_to_video", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Runway-Version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("runway generation failed: status %d: %s", resp.StatusCode, string(raw))
	}

	var task Task
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("failed to decode task response: %w", err)
	}
	return &task, nil
}

// GetTask fetches task state from the production task endpoint.
func (c *Client) GetTask(ctx context.Context, taskID string) (*Task, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.taskBaseURL+"/v1/tasks/"+taskID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Runway-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("runway status check failed: status %d: %s", resp.StatusCode, string(raw))
	}

	var task Task
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("failed to decode task response: %w", err)
	}
	return &task, nil
}
