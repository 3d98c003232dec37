package gateway

import (
	"context"
	"errors"

	"bookingform/internal/form"
)

// Fanout sends each payload to every gateway in order and joins the errors.
type Fanout []Gateway

func (f Fanout) Send(ctx context.Context, p form.Payload) error {
	var errs []error
	for _, g := range f {
		if err := g.Send(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
