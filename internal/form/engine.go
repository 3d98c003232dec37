package form

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Gateway receives finalized payloads. The engine does not react to the
// outcome of Send beyond logging it.
type Gateway interface {
	Send(ctx context.Context, p Payload) error
}

type Option func(*Engine)

// WithClock overrides the clock used for the default check-in date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l *log.Entry) Option {
	return func(e *Engine) { e.log = l }
}

// Engine holds the state of one booking form instance. It is not safe for
// concurrent use; callers sharing an engine must serialise access.
type Engine struct {
	values  Values
	errs    map[Field]string
	touched map[Field]bool
	pickers map[Field]bool

	attempted   bool
	submissions int

	gateway Gateway
	now     func() time.Time
	log     *log.Entry
}

func New(gw Gateway, opts ...Option) *Engine {
	e := &Engine{
		errs:    make(map[Field]string, len(Fields)),
		touched: make(map[Field]bool, len(Fields)),
		pickers: make(map[Field]bool, 2),
		gateway: gw,
		now:     time.Now,
		log:     log.WithField("component", "form"),
	}
	for _, opt := range opts {
		opt(e)
	}

	today := e.today()
	e.values = Values{
		CheckInDate: &today,
		RoomType:    RoomStandard,
	}
	for _, f := range Fields {
		e.errs[f] = rules[f].check(e.values)
	}
	return e
}

func (e *Engine) today() time.Time {
	return Day(e.now())
}

// SetField stores v into f and re-runs the rule of f plus every rule that
// depends on f, all against the new value. Unknown fields are ignored.
func (e *Engine) SetField(f Field, v any) error {
	if !f.Known() {
		e.log.WithField("field", f).Debug("ignoring unknown field")
		return nil
	}

	next := e.values
	switch f {
	case FieldUserName, FieldEmail:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: %s expects text, got %T", ErrValueType, f, v)
		}
		if f == FieldUserName {
			next.UserName = s
		} else {
			next.Email = s
		}

	case FieldCheckInDate, FieldCheckOutDate:
		d, err := toDay(v)
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		if f == FieldCheckInDate {
			next.CheckInDate = d
		} else {
			next.CheckOutDate = d
		}

	case FieldRoomType:
		var raw string
		switch r := v.(type) {
		case RoomType:
			raw = string(r)
		case string:
			raw = r
		default:
			return fmt.Errorf("%w: %s expects a room type, got %T", ErrValueType, f, v)
		}
		rt, err := ParseRoomType(raw)
		if err != nil {
			return err
		}
		next.RoomType = rt
	}

	e.values = next
	e.touched[f] = true
	for _, g := range dependents(f) {
		e.errs[g] = rules[g].check(e.values)
	}
	return nil
}

func toDay(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		d := Day(t)
		return &d, nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		d := Day(*t)
		return &d, nil
	}
	return nil, fmt.Errorf("%w: expects a date, got %T", ErrValueType, v)
}

func (e *Engine) SetUserName(s string)         { _ = e.SetField(FieldUserName, s) }
func (e *Engine) SetEmail(s string)            { _ = e.SetField(FieldEmail, s) }
func (e *Engine) SetCheckInDate(t time.Time)   { _ = e.SetField(FieldCheckInDate, t) }
func (e *Engine) SetCheckOutDate(t time.Time)  { _ = e.SetField(FieldCheckOutDate, t) }
func (e *Engine) SetRoomType(r RoomType) error { return e.SetField(FieldRoomType, r) }

// ValidateField evaluates the rule of f against the current values. It
// returns nil when the field is valid and a *FieldError otherwise.
func (e *Engine) ValidateField(f Field) error {
	r, ok := rules[f]
	if !ok {
		return nil
	}
	if msg := r.check(e.values); msg != "" {
		return &FieldError{Field: f, Message: msg}
	}
	return nil
}

// IsFormValid re-derives aggregate validity from the current values.
func (e *Engine) IsFormValid() bool {
	for _, f := range Fields {
		if e.ValidateField(f) != nil {
			return false
		}
	}
	return true
}

// Errors returns every field currently failing its rule, touched or not.
func (e *Engine) Errors() map[Field]string {
	out := make(map[Field]string)
	for f, msg := range e.errs {
		if msg != "" {
			out[f] = msg
		}
	}
	return out
}

func (e *Engine) Values() Values {
	return e.values.clone()
}

// Submit hands a payload built from the current values to the gateway when
// the form is valid. An invalid form reveals all messages and returns
// ErrFormInvalid without contacting the gateway. Form state is kept as is.
func (e *Engine) Submit(ctx context.Context) (Payload, error) {
	e.attempted = true
	if !e.IsFormValid() {
		e.log.WithField("errors", len(e.Errors())).Debug("submit blocked by invalid form")
		return Payload{}, ErrFormInvalid
	}

	p := Payload{
		UserName:     e.values.UserName,
		Email:        e.values.Email,
		RoomType:     e.values.RoomType,
		CheckInDate:  *e.values.CheckInDate,
		CheckOutDate: *e.values.CheckOutDate,
	}
	e.submissions++

	if e.gateway == nil {
		return p, nil
	}
	if err := e.gateway.Send(ctx, p); err != nil {
		e.log.WithError(err).Warn("submission gateway failed")
	}
	return p, nil
}

func (e *Engine) Snapshot() State {
	st := State{
		Values:      e.values.clone(),
		Errors:      make(map[Field]string),
		Valid:       e.IsFormValid(),
		Submissions: e.submissions,
	}
	for _, f := range Fields {
		msg := e.errs[f]
		if msg != "" && (e.touched[f] || e.attempted) {
			st.Errors[f] = msg
		}
		if e.pickers[f] {
			st.OpenPickers = append(st.OpenPickers, f)
		}
	}
	return st
}
