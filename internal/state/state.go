// Package state persists player settings across runs in a SQLite
// database under the XDG data directory.
package state

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "mediahost"
	dbFileName = "mediahost.db"
)

// Interface defines the state manager contract for dependency injection
// and testing.
type Interface interface {
	DB() *sql.DB
	GetPlayer() (*PlayerState, error)
	SavePlayer(state PlayerState) error
	Close() error
}

type Manager struct {
	db *sql.DB
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)

func Open() (*Manager, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

// GetPlayer returns the saved player state.
func (m *Manager) GetPlayer() (*PlayerState, error) {
	return getPlayer(m.db)
}

// SavePlayer persists the player state.
func (m *Manager) SavePlayer(state PlayerState) error {
	return savePlayer(m.db, state)
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
