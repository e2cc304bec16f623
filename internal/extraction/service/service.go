package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/questbank/questbank-backend/internal/extraction/domain"
	"github.com/questbank/questbank-backend/internal/extraction/events"
	"github.com/questbank/questbank-backend/internal/extraction/sanitize"
	"github.com/questbank/questbank-backend/pkg/errors"
	"github.com/questbank/questbank-backend/pkg/httputil"
	"github.com/questbank/questbank-backend/pkg/logger"
)

var pdfMagic = []byte("%PDF")

// LayoutAnalyzer converts a document into per-page text.
type LayoutAnalyzer interface {
	Analyze(ctx context.Context, document []byte) (*domain.LayoutResult, error)
}

// QuestionExtractor proposes candidate question records for one page of text.
type QuestionExtractor interface {
	ExtractQuestions(ctx context.Context, pageText, subjectName string) ([]domain.Candidate, error)
}

// BatchWriter stores one page's sanitized questions atomically.
type BatchWriter interface {
	SaveBatch(ctx context.Context, questions []*domain.Question) (int, error)
}

// Service runs the extraction pipeline: layout analysis, then a strict
// in-order page loop of semantic extraction, sanitization, and persistence.
type Service struct {
	layout    LayoutAnalyzer
	semantic  QuestionExtractor
	writer    BatchWriter
	sanitizer *sanitize.Sanitizer
	notifier  *events.Notifier
	log       *logger.Logger
}

func New(layout LayoutAnalyzer, semantic QuestionExtractor, writer BatchWriter, sanitizer *sanitize.Sanitizer, notifier *events.Notifier, log *logger.Logger) *Service {
	return &Service{
		layout:    layout,
		semantic:  semantic,
		writer:    writer,
		sanitizer: sanitizer,
		notifier:  notifier,
		log:       log.WithComponent("service"),
	}
}

// Run processes one uploaded document end to end and returns the run summary.
// Pages are processed strictly in the order the layout service reports them;
// the first page failure aborts the run. Batches committed for earlier pages
// are not rolled back.
func (s *Service) Run(ctx context.Context, req domain.ExtractionRequest, document []byte) (*domain.RunSummary, error) {
	log := s.log.WithDocument(req.FileName)

	scr, err := newScratch()
	if err != nil {
		return nil, errors.Internal("failed to prepare working directory")
	}
	defer func() {
		if err := scr.Cleanup(); err != nil {
			log.Warn().Err(err).Msg("failed to remove scratch directory")
		}
	}()

	// The upload is staged before validation so a rejected request still
	// leaves through the same cleanup path as an accepted one.
	path, err := scr.WriteDocument(req.FileName, document)
	if err != nil {
		return nil, errors.Internal("failed to stage uploaded document")
	}
	staged, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Internal("failed to read staged document")
	}

	if err := s.validateRequest(req, staged); err != nil {
		return nil, err
	}

	layoutResult, err := s.layout.Analyze(ctx, staged)
	if err != nil {
		s.notifier.RunFailed(ctx, req, 0, err)
		return nil, err
	}
	if layoutResult.PageCount == 0 {
		err := errors.UpstreamMsg("layout analysis produced no content")
		s.notifier.RunFailed(ctx, req, 0, err)
		return nil, err
	}

	log.Info().
		Int("pages", layoutResult.PageCount).
		Strs("languages", layoutResult.Languages).
		Msg("layout analysis completed")

	summary := &domain.RunSummary{
		TotalPagesDetected: layoutResult.PageCount,
		Pages:              make([]domain.PageSummary, 0, layoutResult.PageCount),
	}

	for _, page := range layoutResult.Pages {
		if strings.TrimSpace(page.Text) == "" {
			summary.PagesSkipped++
			summary.Pages = append(summary.Pages, domain.PageSummary{
				PageNumber: page.Number,
				Status:     domain.PageSkippedEmptyContent,
			})
			continue
		}

		summary.PagesWithContent++

		stored, pageErr := s.processPage(ctx, req, page)
		if pageErr != nil {
			annotated := annotatePage(pageErr, page.Number)
			summary.Pages = append(summary.Pages, domain.PageSummary{
				PageNumber: page.Number,
				Status:     domain.PageFailed,
				Error:      annotated.Error(),
			})
			log.Error().Err(annotated).Int("page", page.Number).Msg("page processing failed, aborting run")
			s.notifier.RunFailed(ctx, req, page.Number, annotated)
			return nil, annotated
		}

		status := domain.PageProcessed
		if stored == 0 {
			status = domain.PageProcessedNoQuestions
		}
		summary.QuestionsStored += stored
		summary.Pages = append(summary.Pages, domain.PageSummary{
			PageNumber:         page.Number,
			QuestionsExtracted: stored,
			Status:             status,
		})
	}

	log.Info().
		Int("pages_with_content", summary.PagesWithContent).
		Int("pages_skipped", summary.PagesSkipped).
		Int("questions_stored", summary.QuestionsStored).
		Msg("extraction run completed")

	s.notifier.RunCompleted(ctx, req, summary)
	return summary, nil
}

// processPage runs one page through extraction, sanitization, and a single
// transactional write. Any error fails the page.
func (s *Service) processPage(ctx context.Context, req domain.ExtractionRequest, page domain.ExtractedPage) (int, error) {
	candidates, err := s.semantic.ExtractQuestions(ctx, page.Text, req.SubjectName)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	pc := domain.PageContext{Request: req, PageNumber: page.Number}
	questions := make([]*domain.Question, 0, len(candidates))
	for _, c := range candidates {
		q, err := s.sanitizer.Sanitize(c, pc)
		if err != nil {
			return 0, err
		}
		questions = append(questions, q)
	}

	return s.writer.SaveBatch(ctx, questions)
}

func (s *Service) validateRequest(req domain.ExtractionRequest, document []byte) error {
	if err := httputil.Validate(req); err != nil {
		return err
	}
	if !strings.EqualFold(filepath.Ext(req.FileName), ".pdf") {
		return errors.Validation("only PDF documents are accepted")
	}
	if !bytes.HasPrefix(document, pdfMagic) {
		return errors.Validation("uploaded file is not a valid PDF")
	}
	return nil
}

// annotatePage tags an error with the page it occurred on. Non-AppError
// causes are wrapped as upstream failures first.
func annotatePage(err error, page int) error {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return appErr.WithPage(page)
	}
	return errors.Upstream(err, "page processing failed").WithPage(page)
}
