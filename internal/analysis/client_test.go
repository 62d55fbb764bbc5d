package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"backoffice-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_DisabledWithoutKey(t *testing.T) {
	assert.Nil(t, NewClient(Config{BaseURL: "http://example"}))
}

func TestAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "2025-06-01")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]string{
					"role":    "assistant",
					"content": `{"summary":"Cash short by 300","anomalies":[{"severity":"high","type":"cash","description":"drawer short"}]}`,
				},
			}},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "key", Model: "test-model"})
	res, err := c.Analyze(context.Background(), &domain.ShiftSummary{ShiftDate: "2025-06-01"}, &domain.ReconciliationReport{})

	require.NoError(t, err)
	assert.Equal(t, "Cash short by 300", res.Summary)
	require.Len(t, res.Anomalies, 1)
	assert.Equal(t, "high", res.Anomalies[0].Severity)
	assert.Equal(t, "test-model", res.Model)
}

func TestAnalyze_PlainTextContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"All good."}}]}`))
	}))
	defer srv.Close()

	res, err := NewClient(Config{BaseURL: srv.URL, APIKey: "key"}).Analyze(context.Background(), &domain.ShiftSummary{}, nil)

	require.NoError(t, err)
	assert.Equal(t, "All good.", res.Summary)
}

func TestAnalyze_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL, APIKey: "key"}).Analyze(context.Background(), &domain.ShiftSummary{}, nil)
	assert.Error(t, err)
}
