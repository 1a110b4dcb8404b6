package usecase

import (
	"sync"
	"time"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/entities"
)

// FocusCallback is invoked when a focus request is answered, released or expires
type FocusCallback func(req entities.FocusRequest)

type focusEntry struct {
	request  *entities.FocusRequest
	callback FocusCallback
}

// FocusTokens tracks the renderer's focus exchanges by token.
// Tokens are minted locally and never reused while the process runs.
type FocusTokens struct {
	mu      sync.Mutex
	next    uint64
	entries map[uint64]*focusEntry
}

// NewFocusTokens creates an empty token table
func NewFocusTokens() *FocusTokens {
	return &FocusTokens{entries: make(map[uint64]*focusEntry)}
}

// Mint records a pending request for channelName under a fresh token
func (t *FocusTokens) Mint(channelName string, cb FocusCallback) entities.FocusRequest {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	req := entities.NewFocusRequest(t.next, channelName)
	t.entries[req.Token] = &focusEntry{request: req, callback: cb}
	return *req
}

// Get returns the request recorded for token
func (t *FocusTokens) Get(token uint64) (entities.FocusRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[token]
	if !ok {
		return entities.FocusRequest{}, false
	}
	return *e.request, true
}

// Len returns the number of tracked tokens
func (t *FocusTokens) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Resolve applies the host's answer. Denied requests are dropped.
// The callback is returned rather than called so callers run it unlocked.
func (t *FocusTokens) Resolve(token uint64, granted bool) (entities.FocusRequest, FocusCallback, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[token]
	if !ok || !e.request.IsPending() {
		return entities.FocusRequest{}, nil, false
	}
	e.request.Resolve(granted)
	if !granted {
		delete(t.entries, token)
	}
	return *e.request, e.callback, true
}

// SetChannelState records a channel state change. A NONE state ends the exchange.
func (t *FocusTokens) SetChannelState(token uint64, state string) (entities.FocusRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[token]
	if !ok {
		return entities.FocusRequest{}, false
	}
	e.request.ChannelState = state
	if state == entities.ChannelStateNone {
		delete(t.entries, token)
	}
	return *e.request, true
}

// Release drops token and marks its request released
func (t *FocusTokens) Release(token uint64) (entities.FocusRequest, FocusCallback, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[token]
	if !ok {
		return entities.FocusRequest{}, nil, false
	}
	delete(t.entries, token)
	e.request.Release()
	return *e.request, e.callback, true
}

// Forget drops token without changing its status
func (t *FocusTokens) Forget(token uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, token)
}

type expired struct {
	request  entities.FocusRequest
	callback FocusCallback
}

// expireStale drops pending requests older than ttl
func (t *FocusTokens) expireStale(now time.Time, ttl time.Duration) []expired {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []expired
	for token, e := range t.entries {
		if !e.request.IsStale(now, ttl) {
			continue
		}
		delete(t.entries, token)
		e.request.Expire()
		out = append(out, expired{request: *e.request, callback: e.callback})
	}
	return out
}
