// Package registry tracks which relay connections are currently alive.
//
// The relay adds a connection id when a websocket opens and removes it when
// it closes. Membership is the only state: there is no game logic here.
package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/wricardo/footprints/game/config"
)

var ErrUnknownRegistry = errors.New("unknown registry")

// Registry is the set of tracked connection ids.
type Registry interface {
	// Add starts tracking id. Adding a tracked id is a no-op.
	Add(ctx context.Context, id string) error

	// Remove stops tracking id. Removing an unknown id is a no-op.
	Remove(ctx context.Context, id string) error

	// Members returns the tracked ids in ascending order.
	Members(ctx context.Context) ([]string, error)

	// Reset forgets every tracked id.
	Reset(ctx context.Context) error

	// Close releases the backing store.
	Close() error
}

// Open builds the registry named by kind.
func Open(ctx context.Context, kind, databaseURL, relayName string) (Registry, error) {
	switch kind {
	case config.RegistryMemory, "":
		return NewMemory(), nil
	case config.RegistryPostgres:
		return NewPostgres(ctx, databaseURL, relayName)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRegistry, kind)
}

// Memory is an in-process Registry.
type Memory struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{ids: make(map[string]struct{})}
}

func (m *Memory) Add(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id] = struct{}{}
	return nil
}

func (m *Memory) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ids, id)
	return nil
}

func (m *Memory) Members(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.ids))
	for id := range m.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = make(map[string]struct{})
	return nil
}

func (m *Memory) Close() error { return nil }
