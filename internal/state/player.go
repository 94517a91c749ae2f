package state

import "database/sql"

// PlayerState represents the saved player settings.
type PlayerState struct {
	Volume       float64
	Muted        bool
	PlaybackRate float64
	LastURL      string
	LastPosition float64
}

// getPlayer returns the saved player state, or nil if nothing was ever
// saved. Callers use nil to tell a first run from a restored one.
func getPlayer(db *sql.DB) (*PlayerState, error) {
	var s PlayerState

	row := db.QueryRow(`
		SELECT volume, muted, playback_rate, last_url, last_position
		FROM player_state WHERE id = 1
	`)
	err := row.Scan(&s.Volume, &s.Muted, &s.PlaybackRate, &s.LastURL, &s.LastPosition)
	if err == sql.ErrNoRows {
		return nil, nil //nolint:nilnil // nil state means never saved, not an error
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// savePlayer upserts the player state row.
func savePlayer(db *sql.DB, s PlayerState) error {
	_, err := db.Exec(`
		INSERT INTO player_state (id, volume, muted, playback_rate, last_url, last_position)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			muted = excluded.muted,
			playback_rate = excluded.playback_rate,
			last_url = excluded.last_url,
			last_position = excluded.last_position
	`, s.Volume, s.Muted, s.PlaybackRate, s.LastURL, s.LastPosition)
	return err
}
