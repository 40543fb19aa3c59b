// Package index handles the SQLite command index.
package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pbk-dev/pbk/internal/parser"
	"github.com/pbk-dev/pbk/internal/playbook"
)

// ErrCommandNotFound indicates the requested command is not in the index.
var ErrCommandNotFound = errors.New("command not found in index")

// CurrentDBVersion is the current database schema version.
// v2: Added fts_commands virtual table for body search
const CurrentDBVersion = 2

// Database is the SQLite index handle.
type Database struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for advanced queries.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Open opens or creates the index under <playbookRoot>/.pbk/index.db.
func Open(playbookRoot string) (*Database, error) {
	dbDir := filepath.Join(playbookRoot, ".pbk")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .pbk directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dbDir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d := &Database{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// OpenInMemory opens an in-memory index (for testing).
func OpenInMemory() (*Database, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}

	d := &Database{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database.
func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) initialize() error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS commands (
			name TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			file_path TEXT NOT NULL,
			title TEXT,
			purpose TEXT,
			model_hint TEXT,
			difficulty TEXT,
			frequency TEXT,
			last_reviewed TEXT,
			version TEXT,
			related TEXT NOT NULL DEFAULT '[]',   -- JSON array
			tags TEXT NOT NULL DEFAULT '[]',      -- JSON array
			has_examples INTEGER NOT NULL DEFAULT 0,
			has_checklist INTEGER NOT NULL DEFAULT 0,
			indexed_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_commands_category ON commands(category);
		CREATE INDEX IF NOT EXISTS idx_commands_model ON commands(model_hint);
		CREATE INDEX IF NOT EXISTS idx_commands_reviewed ON commands(last_reviewed);

		CREATE VIRTUAL TABLE IF NOT EXISTS fts_commands USING fts5(
			name,
			title,
			body,
			tokenize='porter unicode61'
		);
	`
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	_, err := d.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
		fmt.Sprintf("%d", CurrentDBVersion))
	if err != nil {
		return fmt.Errorf("failed to set database version: %w", err)
	}
	return nil
}

// IndexCommand writes one command into the index, replacing any existing
// row and its search entry.
func (d *Database) IndexCommand(cmd *playbook.Command) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM commands WHERE name = ?`, cmd.Name); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM fts_commands WHERE name = ?`, cmd.Name); err != nil {
		return err
	}

	var meta parser.Metadata
	related, tags := "[]", "[]"
	if cmd.Frontmatter != nil {
		meta = cmd.Frontmatter.Metadata()
		related = jsonList(meta.RelatedCommands)
		tags = jsonList(meta.Tags)
	}

	title := meta.Title
	if title == "" {
		title = parser.ExtractTitle(cmd.Body)
	}
	purpose := parser.ExtractPurpose(cmd.Body)
	frequency := parser.ExtractFrequency(cmd.Body)

	_, err = tx.Exec(`
		INSERT INTO commands (
			name, category, file_path, title, purpose, model_hint,
			difficulty, frequency, last_reviewed, version, related, tags,
			has_examples, has_checklist, indexed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cmd.Name, cmd.Category, cmd.RelPath, title, purpose, meta.ModelHint,
		meta.Difficulty, frequency, meta.LastReviewed, meta.Version, related, tags,
		boolInt(parser.HasCodeFence(cmd.Body)), boolInt(parser.HasChecklist(cmd.Body)),
		time.Now().Unix(),
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO fts_commands (name, title, body) VALUES (?, ?, ?)`,
		cmd.Name, title, cmd.Body)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Reindex rebuilds the whole index from the given commands.
// Returns the number of commands indexed.
func (d *Database) Reindex(cmds []*playbook.Command) (int, error) {
	if _, err := d.db.Exec(`DELETE FROM commands`); err != nil {
		return 0, err
	}
	if _, err := d.db.Exec(`DELETE FROM fts_commands`); err != nil {
		return 0, err
	}

	count := 0
	for _, cmd := range cmds {
		if err := d.IndexCommand(cmd); err != nil {
			return count, fmt.Errorf("index %s: %w", cmd.Name, err)
		}
		count++
	}

	// Update query planner statistics after a bulk rebuild.
	if _, err := d.db.Exec("ANALYZE"); err != nil {
		return count, err
	}
	return count, nil
}

func jsonList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
