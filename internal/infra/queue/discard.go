package queue

import (
	"context"

	"github.com/rs/zerolog"

	"citizen-ai/internal/domain"
)

// Discard принимает отзывы и ничего с ними не делает.
type Discard struct {
	log zerolog.Logger
}

var _ domain.FeedbackSink = Discard{}

// NewDiscard создаёт sink, который только пишет отладочный лог.
func NewDiscard(logger zerolog.Logger) Discard {
	return Discard{log: logger}
}

// Publish отбрасывает отзыв.
func (d Discard) Publish(_ context.Context, job domain.FeedbackJob) error {
	d.log.Debug().Str("job_id", job.ID).Str("category", string(job.Submission.Category)).Msg("feedback discarded")
	return nil
}
