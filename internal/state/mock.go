// internal/state/mock.go
package state

import "database/sql"

// Mock is a test double for Manager.
type Mock struct {
	player *PlayerState
	saved  []PlayerState
	closed bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) GetPlayer() (*PlayerState, error) {
	return m.player, nil
}

func (m *Mock) SavePlayer(state PlayerState) error {
	m.player = &state
	m.saved = append(m.saved, state)
	return nil
}

func (m *Mock) Close() error {
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetPlayer(state *PlayerState) { m.player = state }

func (m *Mock) Saved() []PlayerState { return m.saved }

func (m *Mock) IsClosed() bool { return m.closed }

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
