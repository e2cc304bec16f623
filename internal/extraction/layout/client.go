package layout

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

// Client analyzes document layout through an Azure Document Intelligence
// shaped REST API: submit the document, receive an operation URL, poll until
// the analysis settles.
type Client struct {
	cfg        config.LayoutConfig
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a layout client. The client is safe to construct with empty
// credentials; Analyze reports ServiceUnavailable before touching the network.
func New(cfg config.LayoutConfig, log *logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // submit and poll calls; long documents settle over many polls
		},
		log: log.WithComponent("layout"),
	}
}

// Analyze submits the document bytes for layout analysis and blocks until the
// operation settles or the poll window expires. Page numbers and order are
// passed through exactly as the service reports them.
func (c *Client) Analyze(ctx context.Context, document []byte) (*domain.LayoutResult, error) {
	if !c.cfg.Configured() {
		return nil, errors.ServiceUnavailable("layout analysis service")
	}

	opURL, err := c.submit(ctx, document)
	if err != nil {
		return nil, err
	}

	result, err := c.poll(ctx, opURL)
	if err != nil {
		return nil, err
	}

	return normalize(result), nil
}

func (c *Client) submit(ctx context.Context, document []byte) (string, error) {
	url := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.ModelID, c.cfg.APIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(document))
	if err != nil {
		return "", errors.Upstream(err, "layout: create analyze request")
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Upstream(err, "layout: analyze request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", errors.UpstreamMsg(fmt.Sprintf("layout: analyze returned %d: %s", resp.StatusCode, string(body)))
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", errors.UpstreamMsg("layout: analyze response missing Operation-Location header")
	}
	return opURL, nil
}

func (c *Client) poll(ctx context.Context, opURL string) (*analyzeResult, error) {
	deadline := time.Now().Add(c.cfg.PollTimeout)
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		op, err := c.fetchOperation(ctx, opURL)
		if err != nil {
			return nil, err
		}

		switch op.Status {
		case "succeeded":
			if op.AnalyzeResult == nil {
				return nil, errors.UpstreamMsg("layout: operation succeeded without a result document")
			}
			return op.AnalyzeResult, nil
		case "failed":
			msg := "layout: analysis failed"
			if op.Error != nil && op.Error.Message != "" {
				msg = fmt.Sprintf("layout: analysis failed: %s", op.Error.Message)
			}
			return nil, errors.UpstreamMsg(msg)
		}

		if time.Now().After(deadline) {
			return nil, errors.UpstreamMsg("layout: analysis did not settle within the poll window")
		}

		select {
		case <-ctx.Done():
			return nil, errors.Upstream(ctx.Err(), "layout: polling canceled")
		case <-ticker.C:
		}
	}
}

func (c *Client) fetchOperation(ctx context.Context, opURL string) (*operationResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return nil, errors.Upstream(err, "layout: create poll request")
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Upstream(err, "layout: poll request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Upstream(err, "layout: read poll response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.UpstreamMsg(fmt.Sprintf("layout: poll returned %d: %s", resp.StatusCode, string(body)))
	}

	var op operationResponse
	if err := json.Unmarshal(body, &op); err != nil {
		return nil, errors.Upstream(err, "layout: parse poll response")
	}
	return &op, nil
}

// normalize flattens the service payload into per-page text. Text resolution
// falls back in order: the page's own content, span reconstruction from the
// full document content, paragraph concatenation by page number, empty string.
func normalize(ar *analyzeResult) *domain.LayoutResult {
	result := &domain.LayoutResult{
		PageCount: len(ar.Pages),
		Pages:     make([]domain.ExtractedPage, 0, len(ar.Pages)),
	}
	for _, lang := range ar.Languages {
		if lang.Locale != "" {
			result.Languages = append(result.Languages, lang.Locale)
		}
	}

	for _, page := range ar.Pages {
		text := page.Content
		if text == "" {
			text = textFromSpans(ar.Content, page.Spans)
		}
		if text == "" {
			text = textFromParagraphs(ar.Paragraphs, page.PageNumber)
		}
		result.Pages = append(result.Pages, domain.ExtractedPage{
			Number: page.PageNumber,
			Text:   text,
		})
	}
	return result
}

// textFromSpans rebuilds page text from byte offsets into the full document
// content. Spans that run past the content are clamped rather than dropped.
func textFromSpans(content string, spans []span) string {
	if content == "" || len(spans) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range spans {
		if s.Offset < 0 || s.Offset >= len(content) || s.Length <= 0 {
			continue
		}
		end := s.Offset + s.Length
		if end > len(content) {
			end = len(content)
		}
		b.WriteString(content[s.Offset:end])
	}
	return b.String()
}

func textFromParagraphs(paragraphs []paragraph, pageNumber int) string {
	var parts []string
	for _, p := range paragraphs {
		for _, region := range p.BoundingRegions {
			if region.PageNumber == pageNumber && p.Content != "" {
				parts = append(parts, p.Content)
				break
			}
		}
	}
	return strings.Join(parts, "\n")
}

// Wire types mirroring the analysis service's operation document.

type operationResponse struct {
	Status        string         `json:"status"`
	AnalyzeResult *analyzeResult `json:"analyzeResult"`
	Error         *operationErr  `json:"error"`
}

type operationErr struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type analyzeResult struct {
	Content    string      `json:"content"`
	Pages      []pageDoc   `json:"pages"`
	Paragraphs []paragraph `json:"paragraphs"`
	Languages  []language  `json:"languages"`
}

type pageDoc struct {
	PageNumber int    `json:"pageNumber"`
	Content    string `json:"content"`
	Spans      []span `json:"spans"`
}

type span struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

type paragraph struct {
	Content         string           `json:"content"`
	BoundingRegions []boundingRegion `json:"boundingRegions"`
}

type boundingRegion struct {
	PageNumber int `json:"pageNumber"`
}

type language struct {
	Locale     string  `json:"locale"`
	Confidence float64 `json:"confidence"`
}
