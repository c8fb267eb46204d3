package catalog

import (
	"context"
	"sync"
)

// FetchState is the lifecycle of a lazily fetched value.
type FetchState int

const (
	Unfetched FetchState = iota
	Pending
	Ready
	Failed
)

// String returns the lowercase state name.
func (s FetchState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unfetched"
}

// Slot caches a value fetched at most once per successful load.
//
// Concurrent [Slot.Load] calls share a single in-flight fetch. A failed
// fetch moves the slot to Failed and the next Load retries it; a Ready
// slot never fetches again. The zero value is an Unfetched slot.
// A Slot must not be copied after first use.
type Slot[T any] struct {
	mu    sync.Mutex
	state FetchState
	value T
	err   error
	call  *slotCall[T]
}

// slotCall is one in-flight fetch and its outcome.
type slotCall[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Load returns the cached value, calling fetch if the slot is not Ready.
//
// The fetch runs detached from the cancellation of the caller that started
// it, so one caller giving up never fails the others; fetch must bound
// itself (e.g. with a per-call timeout). Every caller, including the one
// that started the fetch, waits only as long as its own ctx allows.
func (s *Slot[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	s.mu.Lock()
	if s.state == Ready {
		v := s.value
		s.mu.Unlock()
		return v, nil
	}
	call := s.call
	if s.state != Pending {
		call = &slotCall[T]{done: make(chan struct{})}
		s.state = Pending
		s.call = call
		go s.run(context.WithoutCancel(ctx), call, fetch)
	}
	s.mu.Unlock()

	select {
	case <-call.done:
		return call.value, call.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (s *Slot[T]) run(ctx context.Context, call *slotCall[T], fetch func(context.Context) (T, error)) {
	call.value, call.err = fetch(ctx)

	s.mu.Lock()
	if call.err != nil {
		s.state = Failed
		s.err = call.err
	} else {
		s.state = Ready
		s.value = call.value
		s.err = nil
	}
	s.call = nil
	s.mu.Unlock()
	close(call.done)
}

// Get returns the value if the slot is Ready.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ready {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Set stores v and marks the slot Ready. A concurrent Load still completes
// with its own result.
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.err = nil
	if s.state != Pending {
		s.state = Ready
	}
}

// State returns the current fetch state.
func (s *Slot[T]) State() FetchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error of the last failed fetch.
func (s *Slot[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Failed {
		return nil
	}
	return s.err
}
