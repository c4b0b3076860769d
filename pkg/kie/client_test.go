package kie

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	var gotBody GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/runway/generate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 200,
			"msg":  "success",
			"data": map[string]string{"taskId": "abc123"},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	taskID, err := client.Generate(context.Background(), GenerateRequest{
		Prompt:      "a cat on a branch at sunset",
		AspectRatio: "16:9",
		Duration:    5,
		Quality:     "720p",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", taskID)
	assert.Equal(t, "16:9", gotBody.AspectRatio)
	assert.Equal(t, 5, gotBody.Duration)
}

func TestGenerateEnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 402,
			"msg":  "insufficient credits",
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.EnvelopeFailure())
	assert.Equal(t, 402, apiErr.Code)
	assert.Contains(t, apiErr.Msg, "insufficient credits")
}

func TestGenerateHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.False(t, apiErr.EnvelopeFailure())
	assert.Equal(t, http.StatusBadGateway, apiErr.HTTPStatus)
}

func TestRecordDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/runway/record-detail", r.URL.Path)
		assert.Equal(t, "abc123", r.URL.Query().Get("taskId"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 200,
			"msg":  "success",
			"data": map[string]interface{}{
				"taskId": "abc123",
				"state":  "success",
				"videoInfo": map[string]string{
					"videoUrl": "https://cdn.example.com/out.mp4",
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	detail, err := client.RecordDetail(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, detail.State)
	require.NotNil(t, detail.VideoInfo)
	assert.Equal(t, "https://cdn.example.com/out.mp4", detail.VideoInfo.VideoURL)
}

func TestRecordDetailNoVideoYet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 200,
			"msg":  "success",
			"data": map[string]interface{}{"taskId": "abc123", "state": "queued"},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	detail, err := client.RecordDetail(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, StateQueued, detail.State)
	assert.Nil(t, detail.VideoInfo)
}
