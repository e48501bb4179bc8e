// Package store provides the persistent key-value backends the layout engine
// writes through, plus the change-notification bus consumers subscribe to.
//
// Three backends are provided:
//   - Memory: map-backed, for tests and ephemeral runs
//   - File: one JSON file per namespace key in a directory
//   - Redis: shared store for multi-client setups
//
// All access is synchronous; last write wins. Failures at this boundary are
// reported to the caller, who logs and carries on with in-memory state.
package store

import "context"

// KV is the injected key-value contract. Keys are fixed namespace names
// ("positions", "groups", ...), values are JSON blobs of the whole namespace.
type KV interface {
	// Get returns the stored value, with ok == false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores the value, replacing any previous one.
	Set(ctx context.Context, key string, val []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Memory is a map-backed KV for tests and ephemeral sessions.
type Memory struct {
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get implements KV.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set implements KV.
func (m *Memory) Set(_ context.Context, key string, val []byte) error {
	cp := make([]byte, len(val))
	copy(cp, val)
	m.data[key] = cp
	return nil
}

// Delete implements KV.
func (m *Memory) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// Close implements KV.
func (m *Memory) Close() error { return nil }

var _ KV = (*Memory)(nil)
