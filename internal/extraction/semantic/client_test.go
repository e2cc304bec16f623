package semantic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questbank/questbank-backend/pkg/config"
	"github.com/questbank/questbank-backend/pkg/errors"
	"github.com/questbank/questbank-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("semantic-test", "test")
}

func TestExtractQuestionsNotConfigured(t *testing.T) {
	client := New(config.GenerativeConfig{}, testLogger())

	_, err := client.ExtractQuestions(context.Background(), "some text", "Physics")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrServiceUnavailable))
}

func TestExtractQuestionsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		assert.InDelta(t, 0.05, req.Temperature, 1e-9)
		assert.Equal(t, 8000, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "Newton's laws")
		assert.Contains(t, req.Messages[1].Content, "Subject: Physics")

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{
					"role":    "assistant",
					"content": "```json\n[{\"question\": \"State Newton's first law.\", \"question_difficulty\": \"Easy\"}]\n```",
				}},
			},
		})
	}))
	defer srv.Close()

	client := New(config.GenerativeConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL + "/v1",
		Model:   "gpt-4o",
	}, testLogger())

	candidates, err := client.ExtractQuestions(context.Background(), "Chapter on Newton's laws", "Physics")

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "State Newton's first law.", candidates[0]["question"])
}

func TestExtractQuestionsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := New(config.GenerativeConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o"}, testLogger())

	_, err := client.ExtractQuestions(context.Background(), "text", "Math")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUpstream))
	assert.Contains(t, err.Error(), "429")
}

func TestExtractQuestionsMalformedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "I could not find any questions."}},
			},
		})
	}))
	defer srv.Close()

	client := New(config.GenerativeConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o"}, testLogger())

	_, err := client.ExtractQuestions(context.Background(), "text", "Math")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDataShape))
}

func TestExtractQuestionsNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	client := New(config.GenerativeConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o"}, testLogger())

	_, err := client.ExtractQuestions(context.Background(), "text", "Math")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDataShape))
}
