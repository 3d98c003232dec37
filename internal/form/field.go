package form

import (
	"fmt"
	"strings"
	"time"
)

// Field identifies one input of the booking form.
type Field string

const (
	FieldUserName     Field = "userName"
	FieldEmail        Field = "email"
	FieldCheckInDate  Field = "checkInDate"
	FieldCheckOutDate Field = "checkOutDate"
	FieldRoomType     Field = "roomType"
)

// Fields lists every form field in display order.
var Fields = []Field{
	FieldUserName,
	FieldEmail,
	FieldCheckInDate,
	FieldCheckOutDate,
	FieldRoomType,
}

// Known reports whether f is one of the form's fields.
func (f Field) Known() bool {
	switch f {
	case FieldUserName, FieldEmail, FieldCheckInDate, FieldCheckOutDate, FieldRoomType:
		return true
	}
	return false
}

// IsDate reports whether f is edited through a date picker.
func (f Field) IsDate() bool {
	return f == FieldCheckInDate || f == FieldCheckOutDate
}

type RoomType string

const (
	RoomStandard RoomType = "standard"
	RoomLuxury   RoomType = "luxury"
	RoomFamily   RoomType = "family"
)

// RoomTypes is the closed set offered by the room selector.
var RoomTypes = []RoomType{RoomStandard, RoomLuxury, RoomFamily}

// Label is the human readable name shown by selectors.
func (r RoomType) Label() string {
	switch r {
	case RoomStandard:
		return "Standard"
	case RoomLuxury:
		return "Luxury"
	case RoomFamily:
		return "Family"
	}
	return string(r)
}

func ParseRoomType(s string) (RoomType, error) {
	switch r := RoomType(strings.ToLower(strings.TrimSpace(s))); r {
	case RoomStandard, RoomLuxury, RoomFamily:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown room type %q", ErrValueType, s)
}

// DateLayout is the wire format of calendar days.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar day at 00:00 UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a calendar day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrValueType, err)
	}
	return t, nil
}
