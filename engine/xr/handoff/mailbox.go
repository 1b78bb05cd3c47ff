package handoff

import (
	"context"
)

// Mailbox is a single-slot rendezvous between two contexts. At most one value is
// in flight: Send blocks until the previous value was received.
type Mailbox[T any] struct {
	ch chan T
}

// NewMailbox creates an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{ch: make(chan T, 1)}
}

// Send places v in the slot, blocking while it is occupied.
//
// Parameters:
//   - ctx: cancels the wait for a free slot
//   - v: the value
//
// Returns:
//   - error: ctx.Err() if ctx ended first
func (m *Mailbox[T]) Send(ctx context.Context, v T) error {
	select {
	case m.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend places v in the slot if it is free.
//
// Returns:
//   - bool: false if the slot was occupied
func (m *Mailbox[T]) TrySend(v T) bool {
	select {
	case m.ch <- v:
		return true
	default:
		return false
	}
}

// Receive takes the value out of the slot, blocking while it is empty.
//
// Parameters:
//   - ctx: cancels the wait
//
// Returns:
//   - T: the value
//   - error: ctx.Err() if ctx ended first
func (m *Mailbox[T]) Receive(ctx context.Context) (T, error) {
	select {
	case v := <-m.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryReceive takes the value out of the slot if there is one.
//
// Returns:
//   - T: the value
//   - bool: false if the slot was empty
func (m *Mailbox[T]) TryReceive() (T, bool) {
	select {
	case v := <-m.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Pending reports whether a value waits in the slot.
func (m *Mailbox[T]) Pending() bool {
	return len(m.ch) > 0
}
