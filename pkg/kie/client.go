// Package kie is a client for the KIE Runway gateway, the intermediary
// that fronts the video generation provider.
package kie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Provider job states as reported by record-detail.
const (
	StateSubmitted  = "submitted"
	StateQueued     = "queued"
	StateGenerating = "generating"
	StateSuccess    = "success"
	StateFailed     = "failed"
	StateFail       = "fail"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// APIError covers both transport-level failures (non-2xx HTTP status) and
// envelope-level failures (HTTP 200 with code != 200).
type APIError struct {
	HTTPStatus int
	Code       int
	Msg        string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("kie api error: code %d: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("kie api error: status %d: %s", e.HTTPStatus, e.Msg)
}

// EnvelopeFailure reports whether the gateway itself rejected the request
// inside a successful HTTP response.
func (e *APIError) EnvelopeFailure() bool {
	return e.HTTPStatus == http.StatusOK && e.Code != 0 && e.Code != http.StatusOK
}

type GenerateRequest struct {
	Prompt      string `json:"prompt"`
	ImageURL    string `json:"imageUrl,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
	Duration    int    `json:"duration"`
	Quality     string `json:"quality"`
	WaterMark   string `json:"waterMark"`
}

type VideoInfo struct {
	VideoURL string `json:"videoUrl"`
	ImageURL string `json:"imageUrl"`
}

type RecordDetail struct {
	TaskID    string     `json:"taskId"`
	State     string     `json:"state"`
	FailMsg   string     `json:"failMsg"`
	VideoInfo *VideoInfo `json:"videoInfo"`
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Generate submits a video generation and returns the provider task id.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	data, err := c.do(ctx, http.MethodPost, "/api/v1/runway/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	var result struct {
		TaskID string `json:"taskId"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}
	if result.TaskID == "" {
		return "", fmt.Errorf("kie generate response missing taskId")
	}
	return result.TaskID, nil
}

// RecordDetail fetches the current provider-reported state of a task.
func (c *Client) RecordDetail(ctx context.Context, taskID string) (*RecordDetail, error) {
	path := "/api/v1/runway/record-detail?taskId=" + url.QueryEscape(taskID)
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var detail RecordDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, fmt.Errorf("failed to decode record detail: %w", err)
	}
	return &detail, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{HTTPStatus: resp.StatusCode, Msg: string(raw)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode kie response: %w", err)
	}
	if env.Code != http.StatusOK {
		return nil, &APIError{HTTPStatus: resp.StatusCode, Code: env.Code, Msg: env.Msg}
	}
	return env.Data, nil
}
