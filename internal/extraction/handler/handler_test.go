package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questbank/questbank-backend/internal/extraction/domain"
	"github.com/questbank/questbank-backend/pkg/config"
	"github.com/questbank/questbank-backend/pkg/errors"
	"github.com/questbank/questbank-backend/pkg/logger"
	"github.com/questbank/questbank-backend/pkg/testutil"
)

type fakeRunner struct {
	lastReq domain.ExtractionRequest
	summary *domain.RunSummary
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, req domain.ExtractionRequest, document []byte) (*domain.RunSummary, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func newHandler(runner Runner) *Handler {
	return NewHandler(runner, config.ExtractionConfig{
		DefaultUploadedBy: "system",
	}, logger.New("handler-test", "test"))
}

func extract(t *testing.T, h *Handler, fileName string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	if fileName != "" {
		data = []byte("%PDF-1.7 test")
	}
	req := testutil.NewMultipartRequest(t, "/api/v1/extract", fileName, data, fields)
	return testutil.ExecuteRequest(http.HandlerFunc(h.Extract), req)
}

func TestExtractSuccess(t *testing.T) {
	runner := &fakeRunner{summary: &domain.RunSummary{
		TotalPagesDetected: 2,
		PagesWithContent:   2,
		QuestionsStored:    5,
		Pages: []domain.PageSummary{
			{PageNumber: 1, QuestionsExtracted: 3, Status: domain.PageProcessed},
			{PageNumber: 2, QuestionsExtracted: 2, Status: domain.PageProcessed},
		},
	}}
	h := newHandler(runner)

	rec := extract(t, h, "exam.pdf", map[string]string{
		"subject_name": "Biology",
		"uploaded_by":  "teacher@school.edu",
	})

	testutil.AssertStatus(t, rec, http.StatusOK)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Status  string            `json:"status"`
			Message string            `json:"message"`
			Summary domain.RunSummary `json:"summary"`
		} `json:"data"`
	}
	testutil.ParseJSONBody(t, rec, &envelope)
	assert.True(t, envelope.Success)
	assert.Equal(t, "success", envelope.Data.Status)
	assert.Equal(t, "Processed 2 page(s); stored 5 question(s).", envelope.Data.Message)
	assert.Equal(t, 2, envelope.Data.Summary.TotalPagesDetected)
	assert.Equal(t, 5, envelope.Data.Summary.QuestionsStored)
	assert.Len(t, envelope.Data.Summary.Pages, 2)

	assert.Equal(t, "exam.pdf", runner.lastReq.FileName)
	assert.Equal(t, "Biology", runner.lastReq.SubjectName)
	assert.Equal(t, "teacher@school.edu", runner.lastReq.UploadedBy)
}

func TestExtractFormOverridesMetadata(t *testing.T) {
	runner := &fakeRunner{summary: &domain.RunSummary{}}
	h := newHandler(runner)

	rec := extract(t, h, "exam.pdf", map[string]string{
		"metadata":     `{"subject_name": "Chemistry", "class_name": "Grade 10", "uploaded_by": "meta@school.edu"}`,
		"subject_name": "Physics",
	})

	testutil.AssertStatus(t, rec, http.StatusOK)
	assert.Equal(t, "Physics", runner.lastReq.SubjectName)
	assert.Equal(t, "Grade 10", runner.lastReq.ClassName)
	assert.Equal(t, "meta@school.edu", runner.lastReq.UploadedBy)
}

func TestExtractUploadedByFallsBackToDefault(t *testing.T) {
	runner := &fakeRunner{summary: &domain.RunSummary{}}
	h := newHandler(runner)

	rec := extract(t, h, "exam.pdf", map[string]string{"subject_name": "Math"})

	testutil.AssertStatus(t, rec, http.StatusOK)
	assert.Equal(t, "system", runner.lastReq.UploadedBy)
}

func TestExtractMalformedMetadata(t *testing.T) {
	h := newHandler(&fakeRunner{})

	rec := extract(t, h, "exam.pdf", map[string]string{"metadata": "{not json"})

	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	testutil.AssertBodyContains(t, rec, "metadata is not valid JSON")
}

func TestExtractMissingFile(t *testing.T) {
	h := newHandler(&fakeRunner{})

	rec := extract(t, h, "", map[string]string{"subject_name": "Math"})

	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	testutil.AssertBodyContains(t, rec, "missing file")
}

func TestExtractRunnerErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", errors.Validation("only PDF documents are accepted"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not configured", errors.ServiceUnavailable("layout analysis service"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"upstream", errors.UpstreamMsg("analysis failed"), http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"data shape", errors.DataShape("not an array"), http.StatusBadGateway, "DATA_SHAPE_ERROR"},
		{"persistence", errors.Persistence(assert.AnError), http.StatusInternalServerError, "PERSISTENCE_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(&fakeRunner{err: tt.err})

			rec := extract(t, h, "exam.pdf", map[string]string{"subject_name": "Math"})

			testutil.AssertStatus(t, rec, tt.wantStatus)

			var envelope struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			testutil.ParseJSONBody(t, rec, &envelope)
			require.Equal(t, tt.wantCode, envelope.Error.Code)
		})
	}
}
