package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mr1hm/go-cyber-patrol/internal/models"

	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// one connection keeps ":memory:" databases shared and serializes writes
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			platform TEXT NOT NULL,
			category TEXT NOT NULL,
			risk_score REAL,
			priority TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			timestamp TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			details TEXT NOT NULL DEFAULT '',
			snippet TEXT NOT NULL DEFAULT '',
			keywords TEXT NOT NULL DEFAULT '[]',
			domain TEXT NOT NULL DEFAULT '',
			claimed_hotel TEXT NOT NULL DEFAULT '',
			detected_issues TEXT NOT NULL DEFAULT '[]',
			evidence TEXT NOT NULL DEFAULT '{}',
			ingested_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_records_kind ON records(kind);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

const recordColumns = `id, kind, platform, category, risk_score, priority, status, timestamp,
	message, details, snippet, keywords, domain, claimed_hotel, detected_issues, evidence`

func (s *SQLiteDB) Add(ctx context.Context, r *models.Record) error {
	keywords, err := json.Marshal(nonNil(r.Keywords))
	if err != nil {
		return fmt.Errorf("error encoding keywords: %w", err)
	}
	issues, err := json.Marshal(nonNil(r.DetectedIssues))
	if err != nil {
		return fmt.Errorf("error encoding detected issues: %w", err)
	}
	evidence := []byte("{}")
	if len(r.Evidence) > 0 {
		if evidence, err = json.Marshal(r.Evidence); err != nil {
			return fmt.Errorf("error encoding evidence: %w", err)
		}
	}

	var score sql.NullFloat64
	if r.RiskScore != nil {
		score = sql.NullFloat64{Float64: *r.RiskScore, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Kind, r.Platform, r.Category, score, r.Priority, r.Status, r.Timestamp,
		r.Message, r.Details, r.Snippet, string(keywords), r.Domain, r.ClaimedHotel, string(issues), string(evidence),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("error inserting record %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading record %s: %w", id, err)
	}
	return r, nil
}

func (s *SQLiteDB) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM records WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error checking record %s: %w", id, err)
	}
	return n > 0, nil
}

// ListRecords returns records in insertion order.
func (s *SQLiteDB) ListRecords(ctx context.Context, opts Filter) ([]models.Record, error) {
	var (
		where []string
		args  []any
	)
	if opts.Kind != nil {
		where = append(where, "kind = ?")
		args = append(args, string(*opts.Kind))
	}

	query := `SELECT ` + recordColumns + ` FROM records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq ASC"
	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing records: %w", err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.Record, error) {
	var (
		r                        models.Record
		score                    sql.NullFloat64
		keywords, issues, evid   string
		kind, platform, priority string
	)
	err := row.Scan(&r.ID, &kind, &platform, &r.Category, &score, &priority, &r.Status, &r.Timestamp,
		&r.Message, &r.Details, &r.Snippet, &keywords, &r.Domain, &r.ClaimedHotel, &issues, &evid)
	if err != nil {
		return nil, err
	}

	r.Kind = models.Kind(kind)
	r.Platform = models.Platform(platform)
	r.Priority = models.Severity(priority)
	if score.Valid {
		r.RiskScore = models.Score(score.Float64)
	}
	if err := json.Unmarshal([]byte(keywords), &r.Keywords); err != nil {
		return nil, fmt.Errorf("error decoding keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(issues), &r.DetectedIssues); err != nil {
		return nil, fmt.Errorf("error decoding detected issues: %w", err)
	}
	if err := json.Unmarshal([]byte(evid), &r.Evidence); err != nil {
		return nil, fmt.Errorf("error decoding evidence: %w", err)
	}
	if len(r.Keywords) == 0 {
		r.Keywords = nil
	}
	if len(r.DetectedIssues) == 0 {
		r.DetectedIssues = nil
	}
	if len(r.Evidence) == 0 {
		r.Evidence = nil
	}
	return &r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
