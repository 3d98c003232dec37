package gateway

import (
	"context"

	log "github.com/sirupsen/logrus"

	"bookingform/internal/form"
)

// Log only records payloads in the application log.
type Log struct{}

func (Log) Send(ctx context.Context, p form.Payload) error {
	fields := log.Fields{
		"user_name": p.UserName,
		"room_type": p.RoomType,
		"check_in":  p.CheckInDate.Format(form.DateLayout),
		"check_out": p.CheckOutDate.Format(form.DateLayout),
		"nights":    p.Nights(),
	}
	if ref, ok := FormFrom(ctx); ok {
		fields["form_id"] = ref.ID
		fields["attempt"] = ref.Attempt
	}
	log.WithFields(fields).Info("booking submitted")
	return nil
}
