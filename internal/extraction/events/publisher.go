package events

import (
	"context"

	"github.com/questbank/questbank-backend/internal/extraction/domain"
	"github.com/questbank/questbank-backend/pkg/logger"
	"github.com/questbank/questbank-backend/pkg/messaging"
)

// publisher is the subset of the messaging publisher the notifier needs.
type publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// Notifier emits run lifecycle events. Publishing is best effort: a bus
// failure is logged and never fails the run, and a nil underlying publisher
// (bus not available at startup) turns every emit into a no-op.
type Notifier struct {
	pub publisher
	log *logger.Logger
}

func NewNotifier(pub *messaging.Publisher, log *logger.Logger) *Notifier {
	n := &Notifier{log: log.WithComponent("events")}
	if pub != nil {
		n.pub = pub
	}
	return n
}

// RunCompleted announces a finished extraction run.
func (n *Notifier) RunCompleted(ctx context.Context, req domain.ExtractionRequest, summary *domain.RunSummary) {
	if n.pub == nil {
		return
	}

	err := n.pub.Publish(ctx, messaging.EventRunCompleted, messaging.RunCompletedEvent{
		FileName:       req.FileName,
		SubjectName:    req.SubjectName,
		UploadedBy:     req.UploadedBy,
		PagesDetected:  summary.TotalPagesDetected,
		PagesProcessed: summary.PagesWithContent,
		QuestionsSaved: summary.QuestionsStored,
	})
	if err != nil {
		n.log.Warn().Err(err).Str("file_name", req.FileName).Msg("failed to publish run completed event")
	}
}

// RunFailed announces a run that terminated with an error. pageNumber is zero
// when the failure happened before any page was reached.
func (n *Notifier) RunFailed(ctx context.Context, req domain.ExtractionRequest, pageNumber int, runErr error) {
	if n.pub == nil {
		return
	}

	err := n.pub.Publish(ctx, messaging.EventRunFailed, messaging.RunFailedEvent{
		FileName:    req.FileName,
		SubjectName: req.SubjectName,
		UploadedBy:  req.UploadedBy,
		PageNumber:  pageNumber,
		Error:       runErr.Error(),
	})
	if err != nil {
		n.log.Warn().Err(err).Str("file_name", req.FileName).Msg("failed to publish run failed event")
	}
}
