package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/smarttodo/internal/model"
)

// messageRow mirrors the messages table.
type messageRow struct {
	ID          string         `db:"id"`
	Role        string         `db:"role"`
	Content     string         `db:"content"`
	Timestamp   string         `db:"timestamp"`
	Suggestions sql.NullString `db:"suggestions"`
}

func (r messageRow) toModel() (model.Message, error) {
	ts, err := parseTime(r.Timestamp)
	if err != nil {
		return model.Message{}, err
	}
	msg := model.Message{
		ID:        r.ID,
		Role:      model.Role(r.Role),
		Content:   r.Content,
		Timestamp: ts,
	}
	if r.Suggestions.Valid && r.Suggestions.String != "" {
		if err := json.Unmarshal([]byte(r.Suggestions.String), &msg.Suggestions); err != nil {
			return model.Message{}, err
		}
	}
	return msg, nil
}

// SaveMessage inserts or replaces a message by id. Saving the same message
// twice leaves one row.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg model.Message) error {
	if strings.TrimSpace(msg.ID) == "" {
		return invalidf("message id must not be empty")
	}
	if !msg.Role.Valid() {
		return invalidf("unknown message role %q", msg.Role)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}

	var suggestions sql.NullString
	if len(msg.Suggestions) > 0 {
		data, err := json.Marshal(msg.Suggestions)
		if err != nil {
			return invalidf("encoding suggestions of message %s: %v", msg.ID, err)
		}
		suggestions = sql.NullString{String: string(data), Valid: true}
	}

	return s.write(ctx, "saving message", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO messages (id, role, content, timestamp, suggestions)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				role = excluded.role,
				content = excluded.content,
				timestamp = excluded.timestamp,
				suggestions = excluded.suggestions`,
			msg.ID, string(msg.Role), msg.Content, formatTime(msg.Timestamp), suggestions,
		)
		if err != nil {
			return unavailable("saving message "+msg.ID, err)
		}
		return nil
	}, kindMessages)
}

// GetMessage retrieves a single message by id.
func (s *SQLiteStore) GetMessage(ctx context.Context, id string) (*model.Message, error) {
	var row messageRow
	err := s.db.GetContext(ctx, &row,
		"SELECT id, role, content, timestamp, suggestions FROM messages WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("message", id)
	}
	if err != nil {
		return nil, unavailable("getting message "+id, err)
	}

	msg, err := row.toModel()
	if err != nil {
		return nil, unavailable("scanning message row", err)
	}
	return &msg, nil
}

// ListMessages returns the conversation by timestamp ascending.
func (s *SQLiteStore) ListMessages(ctx context.Context) ([]model.Message, error) {
	var rows []messageRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, role, content, timestamp, suggestions FROM messages ORDER BY timestamp ASC, rowid ASC")
	if err != nil {
		return nil, unavailable("querying messages", err)
	}

	messages := make([]model.Message, 0, len(rows))
	for _, r := range rows {
		msg, err := r.toModel()
		if err != nil {
			return nil, unavailable("scanning message row", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
