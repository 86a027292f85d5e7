// Package journal keeps a small sqlite record of every boot of the
// image: when it started, what mode it ran in, how long the switch took
// to come up, and how it ended. Purely diagnostic; a broken journal must
// never break a boot.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Outcomes for a recorded boot.
const (
	OutcomeStarted     = "started"     // chain up, payload handed off via exec
	OutcomeExited      = "exited"      // supervised payload finished
	OutcomeBootFailed  = "boot_failed" // switching service never became ready
	OutcomeInterrupted = "interrupted" // signal before hand-off
)

type Entry struct {
	BootID        string
	StartedAt     time.Time
	Nested        bool
	DBReadyMs     int64
	SwitchReadyMs int64
	Payload       string
	Outcome       string
	ExitCode      int
}

type Journal struct {
	db *sql.DB
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS boots (
	boot_id         TEXT PRIMARY KEY,
	started_at      DATETIME NOT NULL,
	nested          INTEGER NOT NULL DEFAULT 0,
	db_ready_ms     INTEGER NOT NULL DEFAULT 0,
	switch_ready_ms INTEGER NOT NULL DEFAULT 0,
	payload         TEXT NOT NULL DEFAULT '',
	outcome         TEXT NOT NULL DEFAULT 'started',
	exit_code       INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_boots_started_at ON boots(started_at);
`

// dsnWithPragmas applies WAL and a busy timeout per connection; the
// driver applies DSN pragmas to every new connection.
func dsnWithPragmas(path string) string {
	return path + "?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)"
}

func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", dsnWithPragmas(path))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record inserts a boot entry. Called once per boot, before hand-off.
func (j *Journal) Record(e Entry) error {
	_, err := j.db.Exec(`
		INSERT INTO boots (boot_id, started_at, nested, db_ready_ms, switch_ready_ms, payload, outcome, exit_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.BootID, e.StartedAt.UTC(), boolToInt(e.Nested),
		e.DBReadyMs, e.SwitchReadyMs, e.Payload, e.Outcome, e.ExitCode,
	)
	if err != nil {
		return fmt.Errorf("record boot: %w", err)
	}
	return nil
}

// SetOutcome updates the outcome of a recorded boot, used by supervised
// mode once the payload's exit code is known.
func (j *Journal) SetOutcome(bootID, outcome string, exitCode int) error {
	_, err := j.db.Exec(`UPDATE boots SET outcome = ?, exit_code = ? WHERE boot_id = ?`,
		outcome, exitCode, bootID)
	if err != nil {
		return fmt.Errorf("update boot outcome: %w", err)
	}
	return nil
}

// Recent returns the latest n boots, newest first.
func (j *Journal) Recent(n int) ([]Entry, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := j.db.Query(`
		SELECT boot_id, started_at, nested, db_ready_ms, switch_ready_ms, payload, outcome, exit_code
		FROM boots ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("list boots: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var nested int
		if err := rows.Scan(&e.BootID, &e.StartedAt, &nested,
			&e.DBReadyMs, &e.SwitchReadyMs, &e.Payload, &e.Outcome, &e.ExitCode); err != nil {
			return nil, fmt.Errorf("scan boot: %w", err)
		}
		e.Nested = nested != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FormatPayload joins an argv for storage.
func FormatPayload(argv []string) string {
	return strings.Join(argv, " ")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
