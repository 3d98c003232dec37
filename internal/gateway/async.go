package gateway

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"bookingform/internal/form"
)

type job struct {
	ctx context.Context
	p   form.Payload
}

// Async hands payloads to a single worker goroutine so callers never wait on
// the transport. Delivery errors are logged by the worker.
type Async struct {
	next  Gateway
	queue chan job
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewAsync(next Gateway, size int) *Async {
	if size <= 0 {
		size = 64
	}
	a := &Async{
		next:  next,
		queue: make(chan job, size),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) Send(ctx context.Context, p form.Payload) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	// The request that triggered the submit may finish before delivery.
	select {
	case a.queue <- job{ctx: context.WithoutCancel(ctx), p: p}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	for j := range a.queue {
		if err := a.next.Send(j.ctx, j.p); err != nil {
			fields := log.Fields{"room_type": j.p.RoomType}
			if ref, ok := FormFrom(j.ctx); ok {
				fields["form_id"] = ref.ID
				fields["attempt"] = ref.Attempt
			}
			log.WithFields(fields).WithError(err).Warn("async submission failed")
		}
	}
}

// Close stops accepting payloads and waits until queued ones are delivered.
func (a *Async) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()
	<-a.done
}
