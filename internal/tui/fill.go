package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"bookingform/internal/form"
)

var fieldLabels = map[form.Field]string{
	form.FieldUserName:     "Name",
	form.FieldEmail:        "E-mail",
	form.FieldCheckInDate:  "Check-In Date",
	form.FieldCheckOutDate: "Check-Out Date",
	form.FieldRoomType:     "Room Type",
}

// Fill walks every field of eng through p, showing the field's message after
// each answer until it is valid, then offers to submit. Declining restarts the
// walk with the current answers as defaults.
func Fill(ctx context.Context, p Prompter, eng *form.Engine) (form.Payload, error) {
	for {
		for _, f := range form.Fields {
			if err := askField(ctx, p, eng, f); err != nil {
				return form.Payload{}, err
			}
		}
		if !eng.IsFormValid() {
			// An earlier answer was invalidated by a later one; walk again.
			continue
		}

		ok, err := p.Confirm(ctx, ConfirmConfig{Message: "Submit booking?", Default: true})
		if err != nil {
			return form.Payload{}, err
		}
		if !ok {
			again, err := p.Confirm(ctx, ConfirmConfig{Message: "Edit the answers?", Default: true})
			if err != nil {
				return form.Payload{}, err
			}
			if !again {
				return form.Payload{}, ErrAborted
			}
			continue
		}
		return eng.Submit(ctx)
	}
}

func askField(ctx context.Context, p Prompter, eng *form.Engine, f form.Field) error {
	for {
		if err := answer(ctx, p, eng, f); err != nil {
			if !errors.Is(err, form.ErrValueType) {
				return err
			}
			if err := p.Info(ctx, "  ✗ "+hint(f)); err != nil {
				return err
			}
			continue
		}

		var fe *form.FieldError
		if err := eng.ValidateField(f); errors.As(err, &fe) {
			if err := p.Info(ctx, "  ✗ "+fe.Message); err != nil {
				return err
			}
			continue
		}
		return nil
	}
}

func answer(ctx context.Context, p Prompter, eng *form.Engine, f form.Field) error {
	v := eng.Values()
	switch f {
	case form.FieldRoomType:
		idx, err := p.Select(ctx, SelectConfig{
			Message:      fieldLabels[f],
			Options:      lo.Map(form.RoomTypes, func(r form.RoomType, _ int) string { return r.Label() }),
			DefaultIndex: lo.IndexOf(form.RoomTypes, v.RoomType),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(form.RoomTypes) {
			return fmt.Errorf("%w: room option %d", form.ErrValueType, idx)
		}
		return eng.SetField(f, form.RoomTypes[idx])

	case form.FieldCheckInDate, form.FieldCheckOutDate:
		current := v.CheckInDate
		if f == form.FieldCheckOutDate {
			current = v.CheckOutDate
		}
		def := ""
		if current != nil {
			def = current.Format(form.DateLayout)
		}
		s, err := p.Input(ctx, InputConfig{Message: fieldLabels[f], Default: def, Help: "YYYY-MM-DD"})
		if err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return eng.SetField(f, nil)
		}
		d, err := form.ParseDay(s)
		if err != nil {
			return err
		}
		return eng.SetField(f, d)

	default:
		def := v.UserName
		if f == form.FieldEmail {
			def = v.Email
		}
		s, err := p.Input(ctx, InputConfig{Message: fieldLabels[f], Default: def})
		if err != nil {
			return err
		}
		return eng.SetField(f, s)
	}
}

func hint(f form.Field) string {
	if f.IsDate() {
		return "Use the YYYY-MM-DD format"
	}
	return "Pick one of the listed options"
}
