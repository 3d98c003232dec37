package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPicker_StartsOnCurrentValueOrToday(t *testing.T) {
	e := newEngine(nil)

	start, err := e.OpenPicker(FieldCheckOutDate)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 5, 20), start)
	assert.True(t, e.PickerOpen(FieldCheckOutDate))

	e.SetCheckInDate(day(2024, 7, 1))
	start, err = e.OpenPicker(FieldCheckInDate)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 7, 1), start)
	assert.ElementsMatch(t, []Field{FieldCheckInDate, FieldCheckOutDate}, e.Snapshot().OpenPickers)
}

func TestOpenPicker_RejectsNonDateFields(t *testing.T) {
	e := newEngine(nil)
	_, err := e.OpenPicker(FieldEmail)
	assert.ErrorIs(t, err, ErrNotDateField)
}

func TestApplyDateSelection_DismissedKeepsValue(t *testing.T) {
	e := newEngine(nil)
	e.SetCheckOutDate(day(2024, 6, 5))
	_, err := e.OpenPicker(FieldCheckOutDate)
	require.NoError(t, err)

	require.NoError(t, e.ApplyDateSelection(FieldCheckOutDate, Dismissed()))

	assert.Equal(t, day(2024, 6, 5), *e.Values().CheckOutDate)
	assert.False(t, e.PickerOpen(FieldCheckOutDate))
}

func TestApplyDateSelection_DismissedDoesNotTouch(t *testing.T) {
	e := newEngine(nil)
	require.NoError(t, e.ApplyDateSelection(FieldCheckOutDate, Dismissed()))

	assert.NotContains(t, e.Snapshot().Errors, FieldCheckOutDate)
}

func TestApplyDateSelection_AcceptedUpdatesAndRevalidates(t *testing.T) {
	e := newEngine(nil)
	e.SetCheckOutDate(day(2024, 6, 5))

	require.NoError(t, e.ApplyDateSelection(FieldCheckInDate, Selected(day(2024, 6, 7))))

	assert.Equal(t, day(2024, 6, 7), *e.Values().CheckInDate)
	assert.Equal(t, MsgCheckOutOrder, e.Snapshot().Errors[FieldCheckOutDate])
}

func TestApplyDateSelection_ZeroDateKeepsValue(t *testing.T) {
	e := newEngine(nil)
	require.NoError(t, e.ApplyDateSelection(FieldCheckInDate, DateSelection{}))

	assert.Equal(t, day(2024, 5, 20), *e.Values().CheckInDate)
}

func TestApplyDateSelection_RejectsNonDateFields(t *testing.T) {
	e := newEngine(nil)
	assert.ErrorIs(t, e.ApplyDateSelection(FieldRoomType, Selected(day(2024, 6, 7))), ErrNotDateField)
}
