package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"opentrade/internal/models"
)

// SQLiteStore implements DecisionStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the decision database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		ticker TEXT NOT NULL,
		run_date DATETIME NOT NULL,
		signal TEXT NOT NULL,
		confidence REAL NOT NULL,
		risk_verdict TEXT NOT NULL,
		debate_outcome TEXT,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_ticker ON decisions(ticker);
	CREATE INDEX IF NOT EXISTS idx_decisions_run_date ON decisions(run_date);
	CREATE INDEX IF NOT EXISTS idx_decisions_signal ON decisions(signal);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveDecision persists one pipeline run and returns its assigned ID. The
// full decision is stored as a JSON payload alongside the indexed columns.
func (s *SQLiteStore) SaveDecision(ctx context.Context, decision *models.TradingDecision) (string, error) {
	payload, err := json.Marshal(decision)
	if err != nil {
		return "", fmt.Errorf("failed to encode decision: %w", err)
	}

	id := uuid.NewString()[:12]
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decisions (id, ticker, run_date, signal, confidence, risk_verdict, debate_outcome, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, decision.Ticker, decision.Date, string(decision.Signal), decision.Confidence,
		string(decision.RiskVerdict), string(decision.DebateOutcome), string(payload))
	if err != nil {
		return "", fmt.Errorf("failed to save decision: %w", err)
	}
	return id, nil
}

// GetDecision retrieves a single decision by ID.
func (s *SQLiteStore) GetDecision(ctx context.Context, id string) (*DecisionRecord, error) {
	var record DecisionRecord
	var payload string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, payload FROM decisions WHERE id = ?
	`, id).Scan(&record.ID, &record.CreatedAt, &payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("decision %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}

	record.Decision = &models.TradingDecision{}
	if err := json.Unmarshal([]byte(payload), record.Decision); err != nil {
		return nil, fmt.Errorf("failed to decode decision payload: %w", err)
	}
	return &record, nil
}

// ListDecisions retrieves decision history, newest first.
func (s *SQLiteStore) ListDecisions(ctx context.Context, filter DecisionFilter) ([]DecisionRecord, error) {
	query := "SELECT id, created_at, payload FROM decisions WHERE 1=1"
	args := []interface{}{}

	if filter.Ticker != "" {
		query += " AND ticker = ?"
		args = append(args, filter.Ticker)
	}
	if filter.Signal != "" {
		query += " AND signal = ?"
		args = append(args, string(filter.Signal))
	}
	if !filter.StartDate.IsZero() {
		query += " AND run_date >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND run_date <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var records []DecisionRecord
	for rows.Next() {
		var record DecisionRecord
		var payload string
		if err := rows.Scan(&record.ID, &record.CreatedAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		record.Decision = &models.TradingDecision{}
		if err := json.Unmarshal([]byte(payload), record.Decision); err != nil {
			return nil, fmt.Errorf("failed to decode decision payload: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

var _ DecisionStore = (*SQLiteStore)(nil)
