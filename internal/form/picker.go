package form

import "time"

// DateSelection is what a date picker reports when it closes.
type DateSelection struct {
	Date      time.Time
	Dismissed bool
}

func Selected(t time.Time) DateSelection { return DateSelection{Date: t} }

func Dismissed() DateSelection { return DateSelection{Dismissed: true} }

// OpenPicker marks the picker of a date field as shown and returns the day it
// should start on: the current value, or today when the field is empty.
// Opening an already open picker is a no-op.
func (e *Engine) OpenPicker(f Field) (time.Time, error) {
	if !f.IsDate() {
		return time.Time{}, ErrNotDateField
	}
	e.pickers[f] = true

	if cur := e.dateValue(f); cur != nil {
		return *cur, nil
	}
	return e.today(), nil
}

func (e *Engine) PickerOpen(f Field) bool {
	return e.pickers[f]
}

// ApplyDateSelection closes the picker of f. A dismissed selection leaves the
// field untouched; an accepted one without a date keeps the current value.
func (e *Engine) ApplyDateSelection(f Field, sel DateSelection) error {
	if !f.IsDate() {
		return ErrNotDateField
	}
	delete(e.pickers, f)

	if sel.Dismissed {
		e.log.WithField("field", f).Debug("date picker dismissed")
		return nil
	}
	if sel.Date.IsZero() {
		return nil
	}
	return e.SetField(f, sel.Date)
}

func (e *Engine) dateValue(f Field) *time.Time {
	switch f {
	case FieldCheckInDate:
		return e.values.CheckInDate
	case FieldCheckOutDate:
		return e.values.CheckOutDate
	}
	return nil
}
