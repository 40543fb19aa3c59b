package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// CommandRow is one indexed command.
type CommandRow struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	FilePath     string   `json:"file_path"`
	Title        string   `json:"title,omitempty"`
	Purpose      string   `json:"purpose,omitempty"`
	ModelHint    string   `json:"model_hint,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
	Frequency    string   `json:"frequency,omitempty"`
	LastReviewed string   `json:"last_reviewed,omitempty"`
	Version      string   `json:"version,omitempty"`
	Related      []string `json:"related_commands"`
	Tags         []string `json:"tags"`
	HasExamples  bool     `json:"has_examples"`
	HasChecklist bool     `json:"has_checklist"`
}

// ListFilter narrows List results. Zero values mean no filtering.
type ListFilter struct {
	Category   string
	ModelHint  string
	Difficulty string
	Tag        string
}

const commandColumns = `name, category, file_path, title, purpose, model_hint,
	difficulty, frequency, last_reviewed, version, related, tags,
	has_examples, has_checklist`

// List returns indexed commands matching the filter, ordered by category
// then name.
func (d *Database) List(filter ListFilter) ([]CommandRow, error) {
	query := `SELECT ` + commandColumns + ` FROM commands`
	var conds []string
	var args []interface{}

	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.ModelHint != "" {
		conds = append(conds, "model_hint = ?")
		args = append(args, filter.ModelHint)
	}
	if filter.Difficulty != "" {
		conds = append(conds, "difficulty = ?")
		args = append(args, filter.Difficulty)
	}
	if filter.Tag != "" {
		// Tags are stored as a JSON array of strings.
		conds = append(conds, `tags LIKE ?`)
		args = append(args, `%"`+filter.Tag+`"%`)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY category ASC, name ASC"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCommands(rows)
}

// Get returns one indexed command by name.
func (d *Database) Get(name string) (*CommandRow, error) {
	row := d.db.QueryRow(`SELECT `+commandColumns+` FROM commands WHERE name = ?`, name)

	cmd, err := scanCommand(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommandNotFound
	}
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

// SearchResult is one full-text search hit.
type SearchResult struct {
	Name  string  `json:"name"`
	Title string  `json:"title,omitempty"`
	Rank  float64 `json:"rank"`
}

// Search runs a full-text query over command bodies and titles.
func (d *Database) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.db.Query(`
		SELECT name, title, rank
		FROM fts_commands
		WHERE fts_commands MATCH ?
		ORDER BY rank
		LIMIT ?`, escapeFTS(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var title sql.NullString
		if err := rows.Scan(&r.Name, &title, &r.Rank); err != nil {
			return nil, err
		}
		r.Title = title.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// Stats summarizes the index contents.
type Stats struct {
	TotalCommands int            `json:"total_commands"`
	ByCategory    map[string]int `json:"by_category"`
	ByModel       map[string]int `json:"by_model"`
	WithExamples  int            `json:"with_examples"`
	WithChecklist int            `json:"with_checklist"`
	StaleReviews  int            `json:"stale_reviews"`
}

// Stats returns aggregate counts. staleBefore is the last_reviewed cutoff
// date (YYYY-MM-DD) for the stale counter.
func (d *Database) Stats(staleBefore string) (*Stats, error) {
	stats := &Stats{
		ByCategory: map[string]int{},
		ByModel:    map[string]int{},
	}

	err := d.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(has_examples), 0),
		       COALESCE(SUM(has_checklist), 0)
		FROM commands`).Scan(&stats.TotalCommands, &stats.WithExamples, &stats.WithChecklist)
	if err != nil {
		return nil, err
	}

	if err := d.countBy("category", stats.ByCategory); err != nil {
		return nil, err
	}
	if err := d.countBy("model_hint", stats.ByModel); err != nil {
		return nil, err
	}

	err = d.db.QueryRow(`
		SELECT COUNT(*) FROM commands
		WHERE last_reviewed != '' AND last_reviewed < ?`, staleBefore).Scan(&stats.StaleReviews)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (d *Database) countBy(column string, into map[string]int) error {
	rows, err := d.db.Query(`
		SELECT ` + column + `, COUNT(*) FROM commands
		WHERE ` + column + ` != ''
		GROUP BY ` + column)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCommand(row rowScanner) (*CommandRow, error) {
	var cmd CommandRow
	var title, purpose, model, difficulty, frequency, reviewed, version sql.NullString
	var related, tags string
	var hasExamples, hasChecklist int

	err := row.Scan(&cmd.Name, &cmd.Category, &cmd.FilePath, &title, &purpose,
		&model, &difficulty, &frequency, &reviewed, &version,
		&related, &tags, &hasExamples, &hasChecklist)
	if err != nil {
		return nil, err
	}

	cmd.Title = title.String
	cmd.Purpose = purpose.String
	cmd.ModelHint = model.String
	cmd.Difficulty = difficulty.String
	cmd.Frequency = frequency.String
	cmd.LastReviewed = reviewed.String
	cmd.Version = version.String
	cmd.Related = parseJSONList(related)
	cmd.Tags = parseJSONList(tags)
	cmd.HasExamples = hasExamples != 0
	cmd.HasChecklist = hasChecklist != 0
	return &cmd, nil
}

func scanCommands(rows *sql.Rows) ([]CommandRow, error) {
	var results []CommandRow
	for rows.Next() {
		cmd, err := scanCommand(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *cmd)
	}
	return results, rows.Err()
}

func parseJSONList(raw string) []string {
	list := []string{}
	if raw == "" {
		return list
	}
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return []string{}
	}
	return list
}

// escapeFTS quotes each term so user input cannot break FTS5 syntax.
func escapeFTS(query string) string {
	terms := strings.Fields(query)
	for i, term := range terms {
		terms[i] = `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}
