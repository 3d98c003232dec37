package bookingform

import (
	"context"

	"bookingform/internal/domain"
)

// SubmissionReader exposes the outbox for operator endpoints.
type SubmissionReader interface {
	ListByForm(ctx context.Context, formID string) ([]domain.Submission, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Submission, error)
}
