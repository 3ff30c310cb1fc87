package loanappl

import (
	"context"
	"sync"
)

// lookupRegistry tracks one in-flight lookup per (scope, kind). Starting a
// new one cancels the previous.
type lookupRegistry struct {
	mu       sync.Mutex
	seq      uint64
	inflight map[string]inflightLookup
}

type inflightLookup struct {
	seq    uint64
	cancel context.CancelFunc
}

func newLookupRegistry() *lookupRegistry {
	return &lookupRegistry{inflight: make(map[string]inflightLookup)}
}

func (r *lookupRegistry) begin(parent context.Context, key string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	r.mu.Lock()
	if prev, ok := r.inflight[key]; ok {
		prev.cancel()
	}
	r.seq++
	mine := r.seq
	r.inflight[key] = inflightLookup{seq: mine, cancel: cancel}
	r.mu.Unlock()

	return ctx, func() {
		r.mu.Lock()
		if cur, ok := r.inflight[key]; ok && cur.seq == mine {
			delete(r.inflight, key)
		}
		r.mu.Unlock()
		cancel()
	}
}

func (r *lookupRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}
