package bookingform

import "errors"

var (
	ErrSessionNotFound = errors.New("form session not found")
	ErrBadValue        = errors.New("malformed field value")
	ErrOutboxDisabled  = errors.New("submission outbox is disabled")
)
