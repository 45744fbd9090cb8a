package kb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite schema for the interventions catalogue. List-valued columns hold
// semicolon-delimited strings, matching the CSV export convention.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS interventions (
    id               INTEGER PRIMARY KEY,
    issue_keywords   TEXT NOT NULL,
    road_types       TEXT NOT NULL DEFAULT '',
    environment_tags TEXT NOT NULL DEFAULT '',
    intervention     TEXT NOT NULL,
    reference        TEXT NOT NULL DEFAULT '',
    rationale        TEXT NOT NULL DEFAULT '',
    priority         TEXT NOT NULL
);`

// LoadSQLite reads intervention records from a SQLite catalogue and builds a
// store.
func LoadSQLite(ctx context.Context, path string) (*Store, error) {
	records, err := ReadSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewStore(records)
}

// ReadSQLite reads intervention records from a SQLite catalogue.
func ReadSQLite(ctx context.Context, path string) ([]Record, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open kb database: %w", err)
	}
	defer db.Close()

	return readSQLite(ctx, db)
}

func readSQLite(ctx context.Context, db *sql.DB) ([]Record, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, issue_keywords, road_types, environment_tags,
		       intervention, reference, rationale, priority
		FROM interventions
		ORDER BY rowid`)
	if err != nil {
		return nil, &LoadError{Reason: fmt.Sprintf("query interventions: %v", err)}
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec      Record
			keywords string
			roads    string
			envs     string
			priority string
		)
		if err := rows.Scan(&rec.ID, &keywords, &roads, &envs,
			&rec.Intervention, &rec.Reference, &rec.Rationale, &priority); err != nil {
			return nil, &LoadError{Reason: fmt.Sprintf("scan intervention row: %v", err)}
		}
		rec.IssueKeywords = splitList(keywords)
		rec.RoadTypes = splitList(roads)
		rec.EnvironmentTags = splitList(envs)
		rec.Assumptions = defaultAssumptions

		p, err := ParsePriority(priority)
		if err != nil {
			return nil, &LoadError{RecordID: rec.ID, Reason: err.Error()}
		}
		rec.Priority = p
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &LoadError{Reason: fmt.Sprintf("read interventions: %v", err)}
	}
	return records, nil
}

// ImportSQLite writes records into a SQLite catalogue at path, creating the
// table if needed and replacing any existing rows. Each record written is
// reported through onRecord, which may be nil.
func ImportSQLite(ctx context.Context, path string, records []Record, onRecord func(Record)) error {
	// Validate before touching the target so a bad source leaves it intact.
	if _, err := buildSnapshot(records); err != nil {
		return err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open kb database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create interventions table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM interventions`); err != nil {
		return fmt.Errorf("clear interventions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO interventions
		(id, issue_keywords, road_types, environment_tags, intervention, reference, rationale, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		rec = normalizeRecord(rec)
		_, err := stmt.ExecContext(ctx, rec.ID,
			joinList(rec.IssueKeywords), joinList(rec.RoadTypes), joinList(rec.EnvironmentTags),
			rec.Intervention, rec.Reference, rec.Rationale, string(rec.Priority))
		if err != nil {
			return fmt.Errorf("insert intervention %d: %w", rec.ID, err)
		}
		if onRecord != nil {
			onRecord(rec)
		}
	}

	return tx.Commit()
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ";")
}

func joinList(items []string) string {
	return strings.Join(items, ";")
}
