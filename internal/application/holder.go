package application

import "sync"

// ClientHolder lazily constructs and caches a single backend client per
// server process. The first Get that succeeds fixes the client for the
// process lifetime; concurrent first calls construct at most once.
//
// A failed construction is not cached: the holder stays uninitialized and
// the next Get retries, so a transient startup problem does not wedge the
// server. A client that goes bad after construction is never replaced;
// dead sessions surface as ordinary tool-call failures.
type ClientHolder[C any] struct {
	mu        sync.Mutex
	construct func() (C, error)
	client    C
	ready     bool
}

// NewClientHolder creates a holder around a client constructor.
func NewClientHolder[C any](construct func() (C, error)) *ClientHolder[C] {
	return &ClientHolder[C]{construct: construct}
}

// Get returns the cached client, constructing it on first use.
func (h *ClientHolder[C]) Get() (C, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ready {
		return h.client, nil
	}

	client, err := h.construct()
	if err != nil {
		var zero C
		return zero, err
	}

	h.client = client
	h.ready = true
	return h.client, nil
}
