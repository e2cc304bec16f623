package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/questbank/questbank-backend/internal/extraction/domain"
	"github.com/questbank/questbank-backend/pkg/config"
	"github.com/questbank/questbank-backend/pkg/errors"
	"github.com/questbank/questbank-backend/pkg/httputil"
	"github.com/questbank/questbank-backend/pkg/logger"
)

const maxUploadSize = 50 << 20 // 50MB

// Runner executes one extraction run.
type Runner interface {
	Run(ctx context.Context, req domain.ExtractionRequest, document []byte) (*domain.RunSummary, error)
}

// Handler handles HTTP requests for question extraction
type Handler struct {
	runner Runner
	cfg    config.ExtractionConfig
	log    *logger.Logger
}

func NewHandler(runner Runner, cfg config.ExtractionConfig, log *logger.Logger) *Handler {
	return &Handler{
		runner: runner,
		cfg:    cfg,
		log:    log,
	}
}

// runResponse is the success payload for one extraction run.
type runResponse struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Summary *domain.RunSummary `json:"summary"`
}

// requestMetadata is the optional metadata JSON blob accompanying the upload.
// Individual form fields take precedence over it.
type requestMetadata struct {
	SubjectName    string `json:"subject_name"`
	ClassName      string `json:"class_name"`
	Specialization string `json:"specialization"`
	UploadedBy     string `json:"uploaded_by"`
	UpdatedBy      string `json:"updated_by"`
}

// Extract handles POST /api/v1/extract
// Accepts multipart form with:
// - file: the PDF document (required)
// - metadata: JSON blob of request fields (optional)
// - subject_name, class_name, specialization, uploaded_by, updated_by:
//   individual form fields, overriding the metadata blob
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httputil.Error(w, errors.Validation("file too large or invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, errors.Validation("missing file in request"))
		return
	}
	defer file.Close()

	document, err := io.ReadAll(file)
	if err != nil {
		httputil.Error(w, errors.Internal("failed to read uploaded file"))
		return
	}

	req, err := h.resolveRequest(r, header.Filename)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	log := h.log.WithRequestID(httputil.GetRequestID(r.Context())).WithDocument(req.FileName)
	log.Info().Str("subject_name", req.SubjectName).Msg("extraction run requested")

	summary, err := h.runner.Run(r.Context(), req, document)
	if err != nil {
		log.Error().Err(err).Msg("extraction run failed")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, runResponse{
		Status: "success",
		Message: fmt.Sprintf("Processed %d page(s); stored %d question(s).",
			summary.PagesWithContent, summary.QuestionsStored),
		Summary: summary,
	})
}

// resolveRequest merges the metadata blob, the individual form fields, and
// the configured defaults into one request. Precedence per field: form value,
// then metadata, then configured default.
func (h *Handler) resolveRequest(r *http.Request, fileName string) (domain.ExtractionRequest, error) {
	var meta requestMetadata
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return domain.ExtractionRequest{}, errors.Validation("metadata is not valid JSON")
		}
	}

	req := domain.ExtractionRequest{
		FileName:       fileName,
		SubjectName:    firstNonEmpty(r.FormValue("subject_name"), meta.SubjectName),
		ClassName:      firstNonEmpty(r.FormValue("class_name"), meta.ClassName),
		Specialization: firstNonEmpty(r.FormValue("specialization"), meta.Specialization),
		UploadedBy:     firstNonEmpty(r.FormValue("uploaded_by"), meta.UploadedBy, h.cfg.DefaultUploadedBy),
		UpdatedBy:      firstNonEmpty(r.FormValue("updated_by"), meta.UpdatedBy, h.cfg.DefaultUpdatedBy),
	}
	return req, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
