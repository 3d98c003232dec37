// Package gateway delivers finalized booking payloads to the outside world.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bookingform/internal/form"
	"bookingform/internal/pkg/validator"
)

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrQueueFull        = errors.New("submission queue is full")
	ErrClosed           = errors.New("gateway is closed")
)

type Gateway interface {
	Send(ctx context.Context, p form.Payload) error
}

// Func adapts a plain function to Gateway.
type Func func(ctx context.Context, p form.Payload) error

func (f Func) Send(ctx context.Context, p form.Payload) error { return f(ctx, p) }

// wirePayload is the JSON body expected by the booking receiver.
type wirePayload struct {
	UserName     string `json:"userName"`
	Email        string `json:"email"`
	RoomType     string `json:"roomType"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
}

// Encode checks p structurally and renders the wire body.
func Encode(p form.Payload) ([]byte, error) {
	if errs := validator.Validate(p); errs != nil {
		fields := make([]string, 0, len(errs))
		for f, tag := range errs {
			fields = append(fields, f+"="+tag)
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, strings.Join(fields, ","))
	}
	return json.Marshal(wirePayload{
		UserName:     p.UserName,
		Email:        p.Email,
		RoomType:     string(p.RoomType),
		CheckInDate:  p.CheckInDate.Format(form.DateLayout),
		CheckOutDate: p.CheckOutDate.Format(form.DateLayout),
	})
}

// Decode is the inverse of Encode, used by receivers and tests.
func Decode(body []byte) (form.Payload, error) {
	var w wirePayload
	if err := json.Unmarshal(body, &w); err != nil {
		return form.Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	rt, err := form.ParseRoomType(w.RoomType)
	if err != nil {
		return form.Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	in, err := form.ParseDay(w.CheckInDate)
	if err != nil {
		return form.Payload{}, fmt.Errorf("%w: checkInDate: %v", ErrMalformedPayload, err)
	}
	out, err := form.ParseDay(w.CheckOutDate)
	if err != nil {
		return form.Payload{}, fmt.Errorf("%w: checkOutDate: %v", ErrMalformedPayload, err)
	}
	return form.Payload{
		UserName:     w.UserName,
		Email:        w.Email,
		RoomType:     rt,
		CheckInDate:  in,
		CheckOutDate: out,
	}, nil
}

type formKey struct{}

// FormRef identifies the form session and submit attempt a payload came from.
type FormRef struct {
	ID      string
	Attempt int
}

func WithForm(ctx context.Context, id string, attempt int) context.Context {
	return context.WithValue(ctx, formKey{}, FormRef{ID: id, Attempt: attempt})
}

func FormFrom(ctx context.Context) (FormRef, bool) {
	ref, ok := ctx.Value(formKey{}).(FormRef)
	return ref, ok
}
