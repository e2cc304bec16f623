package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/questbank/questbank-backend/internal/extraction/domain"
	"github.com/questbank/questbank-backend/pkg/config"
	"github.com/questbank/questbank-backend/pkg/errors"
	"github.com/questbank/questbank-backend/pkg/logger"
)

// Deliberately conservative: extraction should transcribe, not paraphrase.
const (
	requestTemperature = 0.05
	requestMaxTokens   = 8000
)

// Client turns page text into candidate question records through an OpenAI
// chat-completions shaped REST API. One attempt per page; retry policy
// belongs to the caller.
type Client struct {
	cfg        config.GenerativeConfig
	httpClient *http.Client
	log        *logger.Logger
}

func New(cfg config.GenerativeConfig, log *logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // dense pages can take over a minute
		},
		log: log.WithComponent("semantic"),
	}
}

// ExtractQuestions asks the generative service for the questions on one page.
// The returned candidates are untrusted; the sanitizer owns validation.
func (c *Client) ExtractQuestions(ctx context.Context, pageText, subjectName string) ([]domain.Candidate, error) {
	if !c.cfg.Configured() {
		return nil, errors.ServiceUnavailable("generative extraction service")
	}

	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Temperature: requestTemperature,
		MaxTokens:   requestMaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(pageText, subjectName)},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Upstream(err, "semantic: encode request")
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Upstream(err, "semantic: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Upstream(err, "semantic: completion request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Upstream(err, "semantic: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.UpstreamMsg(fmt.Sprintf("semantic: completion returned %d: %s", resp.StatusCode, truncate(body, 512)))
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, errors.Upstream(err, "semantic: parse response")
	}
	if len(completion.Choices) == 0 {
		return nil, errors.DataShape("semantic: completion has no choices")
	}

	candidates, err := parseCandidates(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Int("candidates", len(candidates)).
		Str("model", c.cfg.Model).
		Msg("page extraction completed")

	return candidates, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
