package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/smarttodo/internal/model"
)

// settingsKey is the fixed row key of the settings singleton.
const settingsKey = "app_settings"

// GetSettings returns the saved settings, or nil when none were saved yet.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*model.Settings, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", settingsKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("reading settings", err)
	}

	var settings model.Settings
	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		return nil, unavailable("decoding settings", err)
	}
	return &settings, nil
}

// SaveSettings replaces the settings singleton.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings model.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return invalidf("encoding settings: %v", err)
	}

	return s.write(ctx, "saving settings", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)",
			settingsKey, string(data))
		if err != nil {
			return unavailable("saving settings", err)
		}
		return nil
	}, kindSettings)
}
