package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ticket-bot/ticket"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists tickets in a local SQLite file. The partial
// unique index on (user_id, family) for open rows makes AddTicket the
// atomic enforcement point for the one-open-ticket-per-user invariant;
// there is no separate check-then-act window.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tickets (
	id          INTEGER PRIMARY KEY,
	channel_id  TEXT NOT NULL UNIQUE,
	user_id     TEXT NOT NULL,
	username    TEXT NOT NULL,
	family      TEXT NOT NULL,
	status      TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	closed_at   TEXT NOT NULL DEFAULT '',
	details     TEXT NOT NULL DEFAULT '{}'
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_open_user_family
	ON tickets(user_id, family) WHERE status = 'open';
`

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	_ = os.MkdirAll(filepath.Dir(path), 0755)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	log.Printf("[DB] SQLite initialised at %s", path)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AddTicket(t ticket.Ticket) error {
	details, err := json.Marshal(t.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO tickets (id, channel_id, user_id, username, family, status, created_at, closed_at, details) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.ChannelID, t.UserID, t.Username, string(t.Family), string(t.Status),
		t.CreatedAt.UTC().Format(time.RFC3339), formatClosedAt(t.ClosedAt), string(details),
	)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "tickets.id"):
			return ticket.ErrDuplicateID
		case strings.Contains(msg, "idx_tickets_open_user_family") ||
			(strings.Contains(msg, "tickets.user_id") && strings.Contains(msg, "tickets.family")):
			return ticket.ErrDuplicateOpen
		}
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTicketByChannelID(channelID string) (*ticket.Ticket, error) {
	row := s.db.QueryRow(
		"SELECT id, channel_id, user_id, username, family, status, created_at, closed_at, details FROM tickets WHERE channel_id = ?",
		channelID,
	)
	return scanTicket(row)
}

func (s *SQLiteStore) OpenTicketForUser(userID string, family ticket.Family) (*ticket.Ticket, error) {
	row := s.db.QueryRow(
		"SELECT id, channel_id, user_id, username, family, status, created_at, closed_at, details FROM tickets WHERE user_id = ? AND family = ? AND status = 'open'",
		userID, string(family),
	)
	return scanTicket(row)
}

func (s *SQLiteStore) UpdateTicketDetails(id int, d ticket.Details) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRow("SELECT details FROM tickets WHERE id = ?", id).Scan(&raw)
	if err == sql.ErrNoRows {
		return ticket.ErrNotFound
	}
	if err != nil {
		return err
	}

	var current ticket.Details
	if err := json.Unmarshal([]byte(raw), &current); err != nil {
		return fmt.Errorf("decode details: %w", err)
	}
	current.Merge(d)

	merged, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}
	if _, err := tx.Exec("UPDATE tickets SET details = ? WHERE id = ?", string(merged), id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) CloseTicket(id int, closedAt time.Time) error {
	res, err := s.db.Exec(
		"UPDATE tickets SET status = 'closed', closed_at = ? WHERE id = ? AND status = 'open'",
		closedAt.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Nothing updated: either the ticket is already closed (no-op) or
	// it does not exist.
	var exists int
	err = s.db.QueryRow("SELECT 1 FROM tickets WHERE id = ?", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return ticket.ErrNotFound
	}
	return err
}

func (s *SQLiteStore) ReadAll() ([]ticket.Ticket, error) {
	rows, err := s.db.Query(
		"SELECT id, channel_id, user_id, username, family, status, created_at, closed_at, details FROM tickets ORDER BY created_at",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []ticket.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, *t)
	}
	return all, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*ticket.Ticket, error) {
	var t ticket.Ticket
	var family, status, createdAt, closedAt, details string
	err := row.Scan(&t.ID, &t.ChannelID, &t.UserID, &t.Username, &family, &status, &createdAt, &closedAt, &details)
	if err == sql.ErrNoRows {
		return nil, ticket.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Family = ticket.Family(family)
	t.Status = ticket.Status(status)
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		t.CreatedAt = ts
	}
	if closedAt != "" {
		if ts, err := time.Parse(time.RFC3339, closedAt); err == nil {
			t.ClosedAt = ts
		}
	}
	if err := json.Unmarshal([]byte(details), &t.Details); err != nil {
		return nil, fmt.Errorf("decode details: %w", err)
	}
	return &t, nil
}

func formatClosedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
