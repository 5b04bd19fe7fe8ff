package eventlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventledger/eventledger/internal/ledger"
)

// PostgresStore persists account histories in PostgreSQL.
type PostgresStore struct {
	db      *pgxpool.Pool
	logger  *slog.Logger
	corrupt quarantine
}

// NewPostgresStore constructs a Postgres-backed store and ensures its table
// exists.
func NewPostgresStore(ctx context.Context, db *pgxpool.Pool, logger *slog.Logger) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres pool is required")
	}
	if _, err := db.Exec(ctx, PostgresSchema); err != nil {
		return nil, fmt.Errorf("apply postgres schema: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PostgresStore{db: db, logger: logger}, nil
}

// Load returns the ordered history of accountID.
func (s *PostgresStore) Load(ctx context.Context, accountID string) ([]ledger.Event, error) {
	const query = `
        SELECT event_id, occurred_at, event_type, transaction_id, amount
        FROM ledger_events
        WHERE account_id = $1
        ORDER BY seq`
	rows, err := s.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.EventID, &r.OccurredAt, &r.EventType, &r.TransactionID, &r.Amount); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	events, corrupt, err := decodeRows(out)
	if err != nil {
		return nil, err
	}
	if corrupt {
		s.logger.Warn("corrupt event rows treated as empty history", slog.String("account_id", accountID))
		s.corrupt.mark(accountID)
	}
	return events, nil
}

// Append inserts evt after every existing event of accountID.
func (s *PostgresStore) Append(ctx context.Context, accountID string, evt ledger.Event) error {
	r, err := toRow(evt)
	if err != nil {
		return fmt.Errorf("%w: %w", ledger.ErrPersistence, err)
	}
	if s.corrupt.take(accountID) {
		aside := quarantineName(accountID, time.Now())
		if _, err := s.db.Exec(ctx, `UPDATE ledger_events SET account_id = $1 WHERE account_id = $2`, aside, accountID); err != nil {
			s.corrupt.mark(accountID)
			return fmt.Errorf("%w: quarantine corrupt events: %w", ledger.ErrPersistence, err)
		}
		s.logger.Warn("corrupt event rows moved aside",
			slog.String("account_id", accountID), slog.String("moved_to", aside))
	}
	if _, err := s.db.Exec(ctx, `INSERT INTO ledger_events (account_id, event_id, occurred_at, event_type, transaction_id, amount)
        VALUES ($1, $2, $3, $4, $5, $6)`, accountID, r.EventID, r.OccurredAt, r.EventType, r.TransactionID, r.Amount); err != nil {
		return fmt.Errorf("%w: insert event: %w", ledger.ErrPersistence, err)
	}
	return nil
}

// Ping checks connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
