package adapters

import (
	"context"
	"errors"
	"sync"

	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/entities"
	"github.com/longjinxiang/alexa-smart-screen-sdk/domain/repositories"
)

var ErrEmptyChannel = errors.New("channel name is required")

// MemoryFocusManager is an in-memory implementation of FocusManager.
// Every acquire is granted; a channel held by another token is taken over and
// the previous holder is told its state is NONE.
type MemoryFocusManager struct {
	mu          sync.Mutex
	owners      map[string]uint64 // channel -> token
	unconfirmed map[uint64]string // token -> last reported channel state
}

// NewMemoryFocusManager creates a new in-memory focus manager
func NewMemoryFocusManager() *MemoryFocusManager {
	return &MemoryFocusManager{
		owners:      make(map[string]uint64),
		unconfirmed: make(map[uint64]string),
	}
}

// AcquireFocus implements FocusManager interface
func (m *MemoryFocusManager) AcquireFocus(ctx context.Context, channelName string, token uint64) (repositories.FocusResult, error) {
	if channelName == "" {
		return repositories.FocusResult{}, ErrEmptyChannel
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var changes []repositories.FocusChange
	if current, held := m.owners[channelName]; held {
		if current == token {
			return repositories.FocusResult{Granted: true}, nil
		}
		changes = append(changes, m.report(current, entities.ChannelStateNone))
	}

	m.owners[channelName] = token
	changes = append(changes, m.report(token, entities.ChannelStateForeground))

	return repositories.FocusResult{Granted: true, Changes: changes}, nil
}

// ReleaseFocus implements FocusManager interface
func (m *MemoryFocusManager) ReleaseFocus(ctx context.Context, channelName string, token uint64) (repositories.FocusResult, error) {
	if channelName == "" {
		return repositories.FocusResult{}, ErrEmptyChannel
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, held := m.owners[channelName]
	if !held || current != token {
		return repositories.FocusResult{Granted: false}, nil
	}

	delete(m.owners, channelName)
	return repositories.FocusResult{
		Granted: true,
		Changes: []repositories.FocusChange{m.report(token, entities.ChannelStateNone)},
	}, nil
}

// ConfirmFocusChanged implements FocusManager interface
func (m *MemoryFocusManager) ConfirmFocusChanged(ctx context.Context, token uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.unconfirmed, token)
	return nil
}

// Owner returns the token holding channelName
func (m *MemoryFocusManager) Owner(channelName string) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.owners[channelName]
	return token, ok
}

// Unconfirmed returns the number of channel changes the renderer has not acknowledged
func (m *MemoryFocusManager) Unconfirmed() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.unconfirmed)
}

// report must be called with mu held
func (m *MemoryFocusManager) report(token uint64, state string) repositories.FocusChange {
	m.unconfirmed[token] = state
	return repositories.FocusChange{Token: token, ChannelState: state}
}
