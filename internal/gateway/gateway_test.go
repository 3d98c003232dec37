package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingform/internal/form"
)

func samplePayload() form.Payload {
	return form.Payload{
		UserName:     "Alice",
		Email:        "alice@example.com",
		RoomType:     form.RoomLuxury,
		CheckInDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestEncode_WireFormat(t *testing.T) {
	body, err := Encode(samplePayload())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"userName": "Alice",
		"email": "alice@example.com",
		"roomType": "luxury",
		"checkInDate": "2024-06-01",
		"checkOutDate": "2024-06-05"
	}`, string(body))
}

func TestEncode_RejectsMalformed(t *testing.T) {
	p := samplePayload()
	p.CheckOutDate = p.CheckInDate
	_, err := Encode(p)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	p = samplePayload()
	p.RoomType = "penthouse"
	_, err = Encode(p)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestDecode_RoundTrip(t *testing.T) {
	body, err := Encode(samplePayload())
	require.NoError(t, err)

	got, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, samplePayload(), got)
}

func TestDecode_BadDate(t *testing.T) {
	_, err := Decode([]byte(`{"userName":"Alice","email":"a@b.cd","roomType":"family","checkInDate":"June 1","checkOutDate":"2024-06-05"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestFormContext(t *testing.T) {
	_, ok := FormFrom(context.Background())
	assert.False(t, ok)

	ref, ok := FormFrom(WithForm(context.Background(), "form-1", 3))
	require.True(t, ok)
	assert.Equal(t, FormRef{ID: "form-1", Attempt: 3}, ref)
}

func TestFanout_JoinsErrors(t *testing.T) {
	errA := errors.New("a down")
	var calls int
	f := Fanout{
		Func(func(context.Context, form.Payload) error { calls++; return errA }),
		Func(func(context.Context, form.Payload) error { calls++; return nil }),
		Log{},
	}

	err := f.Send(context.Background(), samplePayload())
	assert.ErrorIs(t, err, errA)
	assert.Equal(t, 2, calls)
}
