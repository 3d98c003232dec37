package bookingform

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/zekroTJA/timedmap"

	"bookingform/internal/domain"
	"bookingform/internal/form"
	"bookingform/internal/gateway"
	"bookingform/internal/pkg/validator"
)

// session is one mounted booking form. The engine is single-threaded, so
// every access goes through mu.
type session struct {
	id     string
	mu     sync.Mutex
	engine *form.Engine
	subs   map[chan form.State]struct{}
	// gone is set once the session is discarded or expired.
	gone bool
}

// publish replaces whatever a watcher has not read yet with st, so a slow
// watcher skips intermediate states but always ends on the newest one.
// Callers hold s.mu.
func (s *session) publish(st form.State) {
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}

// close ends the session for every watcher. Callers hold s.mu.
func (s *session) close() {
	s.gone = true
	for ch := range s.subs {
		close(ch)
		delete(s.subs, ch)
	}
}

type Service struct {
	sessions    *timedmap.TimedMap
	ttl         time.Duration
	gateway     form.Gateway
	submissions SubmissionReader
	now         func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSubmissions enables the outbox read endpoints.
func WithSubmissions(r SubmissionReader) Option {
	return func(s *Service) { s.submissions = r }
}

func NewService(gw form.Gateway, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		sessions: timedmap.New(time.Minute),
		ttl:      ttl,
		gateway:  gw,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close stops the session expiry loop.
func (s *Service) Close() {
	s.sessions.StopCleaner()
}

func (s *Service) Create() (string, form.State) {
	id := uuid.NewString()
	sess := &session{
		id: id,
		engine: form.New(s.gateway,
			form.WithClock(s.now),
			form.WithLogger(log.WithField("form_id", id)),
		),
		subs: make(map[chan form.State]struct{}),
	}
	s.sessions.Set(id, sess, s.ttl, s.expire)

	log.WithField("form_id", id).Info("form session mounted")
	return id, sess.engine.Snapshot()
}

func (s *Service) expire(v interface{}) {
	sess := v.(*session)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.close()
	log.WithField("form_id", sess.id).Info("form session expired")
}

// lookup returns the session and pushes its expiry back by the TTL. An entry
// that expired in the meantime is not revived.
func (s *Service) lookup(id string) (*session, error) {
	sess, ok := s.sessions.GetValue(id).(*session)
	if !ok || sess == nil {
		return nil, ErrSessionNotFound
	}
	if err := s.sessions.SetExpires(id, s.ttl); err != nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// acquire looks the session up and locks it. The caller unlocks sess.mu.
func (s *Service) acquire(id string) (*session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	if sess.gone {
		sess.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) Get(id string) (form.State, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return form.State{}, err
	}
	defer sess.mu.Unlock()
	return sess.engine.Snapshot(), nil
}

// SetField decodes raw according to the field kind and applies it.
func (s *Service) SetField(id string, f form.Field, raw json.RawMessage) (form.State, error) {
	v, err := decodeValue(f, raw)
	if err != nil {
		return form.State{}, err
	}
	return s.mutate(id, func(e *form.Engine) error {
		return e.SetField(f, v)
	})
}

func (s *Service) OpenPicker(id string, f form.Field) (form.State, error) {
	return s.mutate(id, func(e *form.Engine) error {
		_, err := e.OpenPicker(f)
		return err
	})
}

func (s *Service) ClosePicker(id string, f form.Field, req PickerRequest) (form.State, error) {
	sel := form.DateSelection{Dismissed: req.Dismissed}
	if !req.Dismissed {
		if err := validator.Var(req.Date, "omitempty,datetime="+form.DateLayout); err != nil {
			return form.State{}, fmt.Errorf("%w: date expects YYYY-MM-DD", ErrBadValue)
		}
		if req.Date != "" {
			d, err := form.ParseDay(req.Date)
			if err != nil {
				return form.State{}, fmt.Errorf("%w: %v", ErrBadValue, err)
			}
			sel.Date = d
		}
	}
	return s.mutate(id, func(e *form.Engine) error {
		return e.ApplyDateSelection(f, sel)
	})
}

func (s *Service) mutate(id string, fn func(*form.Engine) error) (form.State, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return form.State{}, err
	}
	defer sess.mu.Unlock()

	if err := fn(sess.engine); err != nil {
		return sess.engine.Snapshot(), err
	}
	st := sess.engine.Snapshot()
	sess.publish(st)
	return st, nil
}

// Submit runs the engine's submit. The returned state is valid for both
// outcomes so callers can render the revealed messages.
func (s *Service) Submit(ctx context.Context, id string) (form.Payload, form.State, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return form.Payload{}, form.State{}, err
	}
	defer sess.mu.Unlock()

	attempt := sess.engine.Snapshot().Submissions + 1
	p, err := sess.engine.Submit(gateway.WithForm(ctx, id, attempt))
	st := sess.engine.Snapshot()
	sess.publish(st)
	if err != nil {
		return form.Payload{}, st, err
	}

	log.WithFields(log.Fields{
		"form_id":   id,
		"attempt":   attempt,
		"room_type": p.RoomType,
		"nights":    p.Nights(),
	}).Info("booking form submitted")
	return p, st, nil
}

// Discard unmounts a form session.
func (s *Service) Discard(id string) error {
	sess, ok := s.sessions.GetValue(id).(*session)
	if !ok || sess == nil {
		return ErrSessionNotFound
	}
	s.sessions.Remove(id)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.close()
	log.WithField("form_id", id).Info("form session discarded")
	return nil
}

// Watch subscribes to state changes of a session. The channel holds at most
// the newest unread state and is closed when the session goes away; cancel
// unsubscribes.
func (s *Service) Watch(id string) (<-chan form.State, func(), error) {
	sess, err := s.acquire(id)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan form.State, 1)
	sess.subs[ch] = struct{}{}
	ch <- sess.engine.Snapshot()
	sess.mu.Unlock()

	cancel := func() {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		if _, ok := sess.subs[ch]; ok {
			delete(sess.subs, ch)
			close(ch)
		}
	}
	return ch, cancel, nil
}

func (s *Service) RecentSubmissions(ctx context.Context, limit int) ([]domain.Submission, error) {
	if s.submissions == nil {
		return nil, ErrOutboxDisabled
	}
	return s.submissions.ListRecent(ctx, limit)
}

func (s *Service) FormSubmissions(ctx context.Context, id string) ([]domain.Submission, error) {
	if s.submissions == nil {
		return nil, ErrOutboxDisabled
	}
	return s.submissions.ListByForm(ctx, id)
}

func RoomTypeOptions() []RoomTypeOption {
	out := make([]RoomTypeOption, 0, len(form.RoomTypes))
	for _, rt := range form.RoomTypes {
		out = append(out, RoomTypeOption{Value: rt, Label: rt.Label()})
	}
	return out
}

// decodeValue turns the JSON value of a field change into the Go type the
// engine expects. Unknown fields decode to nil; the engine ignores them.
func decodeValue(f form.Field, raw json.RawMessage) (any, error) {
	if !f.Known() {
		return nil, nil
	}

	var v *string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %s expects a string or null", ErrBadValue, f)
		}
	}

	switch {
	case f.IsDate():
		if v == nil || *v == "" {
			return nil, nil
		}
		d, err := form.ParseDay(*v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects YYYY-MM-DD", ErrBadValue, f)
		}
		return d, nil
	case v == nil:
		if f == form.FieldRoomType {
			return nil, fmt.Errorf("%w: %s is required", ErrBadValue, f)
		}
		return "", nil
	}
	return *v, nil
}

func formatDay(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(form.DateLayout)
	return &s
}
