package gateway

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"bookingform/internal/domain"
	"bookingform/internal/form"
)

// SubmissionStore is the persistence the outbox needs.
type SubmissionStore interface {
	Create(ctx context.Context, s *domain.Submission) error
	MarkDelivered(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}

// Outbox records every payload before forwarding it to next. With a nil
// next the row stays pending for an external relay to pick up.
type Outbox struct {
	store SubmissionStore
	next  Gateway
	now   func() time.Time
}

func NewOutbox(store SubmissionStore, next Gateway) *Outbox {
	return &Outbox{store: store, next: next, now: time.Now}
}

func (o *Outbox) Send(ctx context.Context, p form.Payload) error {
	ref, _ := FormFrom(ctx)
	row := &domain.Submission{
		FormID:       ref.ID,
		Attempt:      ref.Attempt,
		UserName:     p.UserName,
		Email:        p.Email,
		RoomType:     string(p.RoomType),
		CheckInDate:  p.CheckInDate,
		CheckOutDate: p.CheckOutDate,
		Status:       domain.SubmissionPending,
	}
	if err := o.store.Create(ctx, row); err != nil {
		return err
	}

	if o.next == nil {
		return nil
	}

	entry := log.WithFields(log.Fields{"submission_id": row.ID, "form_id": ref.ID, "attempt": ref.Attempt})
	if err := o.next.Send(ctx, p); err != nil {
		if markErr := o.store.MarkFailed(ctx, row.ID, err.Error()); markErr != nil {
			entry.WithError(markErr).Error("mark submission failed")
		}
		return err
	}
	if err := o.store.MarkDelivered(ctx, row.ID, o.now()); err != nil {
		entry.WithError(err).Error("mark submission delivered")
	}
	return nil
}
