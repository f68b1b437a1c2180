package db

import (
	"context"
	_ "embed"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muletrace/forensics-engine/pkg/models"
)

// schemaSQL is compiled into the binary at build time so schema init works
// inside the Docker runtime image, which does not ship the source tree.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore persists completed analysis runs. The graph itself is
// never persisted — only the result bundle, so past runs stay queryable
// while every analysis recomputes from scratch.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect initializes the pgx connection pool.
func Connect(connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %v", err)
	}
	log.Println("[DB] Connected to PostgreSQL for forensics run storage")
	return &PostgresStore{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema executes the embedded schema.sql DDL statements.
func (s *PostgresStore) InitSchema() error {
	if _, err := s.pool.Exec(context.Background(), schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema migrations: %v", err)
	}
	log.Println("[DB] Forensics schema initialized")
	return nil
}

// SaveAnalysis persists one run: the summary row plus its suspicious
// accounts and rings, atomically.
func (s *PostgresStore) SaveAnalysis(ctx context.Context, result *models.AnalysisResponse) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insertRunSQL := `
		INSERT INTO analysis_runs
			(analysis_id, total_accounts, total_transactions, flagged_accounts,
			 rings_detected, avg_risk_score, processing_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (analysis_id) DO NOTHING;
	`
	sum := result.Summary
	_, err = tx.Exec(ctx, insertRunSQL, result.AnalysisID,
		sum.TotalAccountsAnalyzed, sum.TotalTransactions, sum.SuspiciousAccountsFlagged,
		sum.FraudRingsDetected, sum.AvgRiskScore, sum.ProcessingTimeSeconds)
	if err != nil {
		return fmt.Errorf("failed to insert analysis run: %v", err)
	}

	insertAccountSQL := `
		INSERT INTO suspicious_accounts
			(analysis_id, account_id, suspicion_score, detected_patterns, ring_id, explanation)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for _, acc := range result.SuspiciousAccounts {
		_, err = tx.Exec(ctx, insertAccountSQL, result.AnalysisID,
			acc.AccountID, acc.SuspicionScore, acc.DetectedPatterns, acc.RingID, acc.Explanation)
		if err != nil {
			return fmt.Errorf("failed to insert suspicious account: %v", err)
		}
	}

	insertRingSQL := `
		INSERT INTO fraud_rings
			(analysis_id, ring_id, member_accounts, pattern_type, risk_score)
		VALUES ($1, $2, $3, $4, $5);
	`
	for _, ring := range result.FraudRings {
		_, err = tx.Exec(ctx, insertRingSQL, result.AnalysisID,
			ring.RingID, ring.MemberAccounts, ring.PatternType, ring.RiskScore)
		if err != nil {
			return fmt.Errorf("failed to insert fraud ring: %v", err)
		}
	}

	return tx.Commit(ctx)
}

// RunInfo is one persisted analysis run summary.
type RunInfo struct {
	AnalysisID        string  `json:"analysis_id"`
	TotalAccounts     int     `json:"total_accounts"`
	TotalTransactions int     `json:"total_transactions"`
	FlaggedAccounts   int     `json:"flagged_accounts"`
	RingsDetected     int     `json:"rings_detected"`
	AvgRiskScore      float64 `json:"avg_risk_score"`
	CreatedAt         string  `json:"created_at"`
}

// ListRuns returns the most recent persisted runs, newest first.
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	if limit <= 0 || limit > 500 {
		limit = 20
	}
	sql := `
		SELECT analysis_id, total_accounts, total_transactions, flagged_accounts,
		       rings_detected, avg_risk_score, to_char(created_at, 'YYYY-MM-DD HH24:MI:SS')
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunInfo, 0)
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.AnalysisID, &r.TotalAccounts, &r.TotalTransactions,
			&r.FlaggedAccounts, &r.RingsDetected, &r.AvgRiskScore, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return runs, nil
}
