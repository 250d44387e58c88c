package rendezvous

import (
	"context"
	"errors"
	"sync"

	"replay-doctor/internal/diagnosis"
)

// ErrConflict is returned when a second waiter tries to arm the broker
// while another is still waiting. The first waiter keeps its slot.
var ErrConflict = errors.New("rendezvous already armed by another waiter")

// Broker is the single-slot rendezvous between a blocked tool invocation
// and the next HTTP-triggered diagnosis. The whole process shares one
// slot: Idle, or Armed with exactly one waiter. Delivery happens exactly
// once, after which the slot is Idle again.
type Broker struct {
	mu     sync.Mutex
	waiter chan diagnosis.Result
}

func New() *Broker {
	return &Broker{}
}

// Handle is the pending side of an armed rendezvous. It never leaves the
// waiter that armed it.
type Handle struct {
	b  *Broker
	ch chan diagnosis.Result
}

// Arm registers the caller as the waiter for the next fulfilled diagnosis.
// Arming while armed is a contract violation and is rejected with
// ErrConflict.
func (b *Broker) Arm() (*Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.waiter != nil {
		return nil, ErrConflict
	}
	ch := make(chan diagnosis.Result, 1)
	b.waiter = ch
	return &Handle{b: b, ch: ch}, nil
}

// Fulfill hands the result to the armed waiter, if any, and resets the
// slot. With no waiter it is a no-op: the result still flows back through
// the normal response path, there is just nobody to wake. Reports whether
// a waiter was fed. Safe to call concurrently; exactly one caller wins.
func (b *Broker) Fulfill(res diagnosis.Result) bool {
	b.mu.Lock()
	ch := b.waiter
	b.waiter = nil
	b.mu.Unlock()

	if ch == nil {
		return false
	}
	ch <- res // buffered, never blocks
	return true
}

// Armed reports whether a waiter is currently registered.
func (b *Broker) Armed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.waiter != nil
}

// Await blocks until the rendezvous is fulfilled or ctx expires. On
// cancellation the slot is released so a later tool call can arm again; a
// result that raced the cancellation is still delivered.
func (h *Handle) Await(ctx context.Context) (diagnosis.Result, error) {
	select {
	case res := <-h.ch:
		return res, nil
	case <-ctx.Done():
		h.b.disarm(h.ch)
		select {
		case res := <-h.ch:
			return res, nil
		default:
			return diagnosis.Result{}, ctx.Err()
		}
	}
}

func (b *Broker) disarm(ch chan diagnosis.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.waiter == ch {
		b.waiter = nil
	}
}
