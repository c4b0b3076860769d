// Package aigateway is a client for the OpenAI-compatible AI gateway used
// for inline image generation and prompt text completion.
package aigateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	ImageModel = "google/gemini-2.5-flash-image-preview"
	TextModel  = "google/gemini-2.5-flash"
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
			Timeout: 120 * time.Second,
		},
	}
}

type message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model      string    `json:"model"`
	Messages   []message `json:"messages"`
	Modalities []string  `json:"modalities,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Images  []struct {
				ImageURL imageRef `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateImage runs one synchronous image generation. When a source
// image is supplied the prompt and image go as a multimodal message.
func (c *Client) GenerateImage(ctx context.Context, prompt, imageURL string) (string, error) {
	var msg message
	if imageURL != "" {
		msg = message{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageRef{URL: imageURL}},
			},
		}
	} else {
		msg = message{Role: "user", Content: prompt}
	}

	resp, err := c.chat(ctx, chatRequest{
		Model:      ImageModel,
		Messages:   []message{msg},
		Modalities: []string{"image", "text"},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.Images) == 0 {
		return "", fmt.Errorf("no image returned from AI gateway")
	}
	return resp.Choices[0].Message.Images[0].ImageURL.URL, nil
}

// Complete runs a plain text completion.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.chat(ctx, chatRequest{
		Model: TextModel,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no completion returned from AI gateway")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) chat(ctx context.Context, payload chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
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

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ai gateway error: status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode ai gateway response: %w", err)
	}
	return &parsed, nil
}
