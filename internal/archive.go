package internal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS turns (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT    NOT NULL,
	seq         INTEGER NOT NULL,
	kind        TEXT    NOT NULL,
	user_name   TEXT    NOT NULL,
	bot_name    TEXT    NOT NULL,
	input       TEXT    NOT NULL,
	reply       TEXT    NOT NULL,
	latency_ms  REAL    NOT NULL DEFAULT 0,
	attempts    INTEGER NOT NULL DEFAULT 0,
	outcome     TEXT    NOT NULL,
	created_at  TEXT    NOT NULL
)`

// Archive appends turns to a SQLite file. It is write-only: nothing is ever
// loaded back, so each process still starts with an empty transcript.
type Archive struct {
	db        *sql.DB
	path      string
	sessionID string
}

// OpenArchive opens (creating if needed) the archive at path
func OpenArchive(path, sessionID string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &ArchiveError{Path: path, Op: "open", Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &ArchiveError{Path: path, Op: "open", Err: err}
	}

	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, &ArchiveError{Path: path, Op: "migrate", Err: err}
	}

	return &Archive{db: db, path: path, sessionID: sessionID}, nil
}

// Record implements TurnRecorder
func (a *Archive) Record(ctx context.Context, rec TurnRecord) error {
	at := rec.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO turns (session_id, seq, kind, user_name, bot_name, input, reply, latency_ms, attempts, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.sessionID, rec.Seq, rec.Kind.String(), rec.UserName, rec.BotName,
		rec.Turn.Input, rec.Turn.Reply, Milliseconds(rec.Latency), rec.Attempts,
		rec.Outcome.String(), at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return &ArchiveError{Path: a.path, Op: "insert", Err: err}
	}
	LogDebug("Archived turn %d of session %s", rec.Seq, a.sessionID)
	return nil
}

// Count returns how many turns the archive holds for this session
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM turns WHERE session_id = ?", a.sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return n, nil
}

// Close closes the underlying database
func (a *Archive) Close() error {
	if err := a.db.Close(); err != nil {
		return &ArchiveError{Path: a.path, Op: "close", Err: err}
	}
	return nil
}
