package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eventledger/eventledger/internal/ledger"
)

// SQLiteStore keeps all account histories in one SQLite table ordered by an
// autoincrement sequence.
type SQLiteStore struct {
	db      *sql.DB
	logger  *slog.Logger
	corrupt quarantine
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps append order identical to commit order.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Load returns the ordered history of accountID.
func (s *SQLiteStore) Load(ctx context.Context, accountID string) ([]ledger.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, occurred_at, event_type, transaction_id, amount
		FROM ledger_events
		WHERE account_id = ?
		ORDER BY seq`, accountID)
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
func (s *SQLiteStore) Append(ctx context.Context, accountID string, evt ledger.Event) error {
	r, err := toRow(evt)
	if err != nil {
		return fmt.Errorf("%w: %w", ledger.ErrPersistence, err)
	}
	if s.corrupt.take(accountID) {
		aside := quarantineName(accountID, time.Now())
		if _, err := s.db.ExecContext(ctx, `UPDATE ledger_events SET account_id = ? WHERE account_id = ?`, aside, accountID); err != nil {
			s.corrupt.mark(accountID)
			return fmt.Errorf("%w: quarantine corrupt events: %w", ledger.ErrPersistence, err)
		}
		s.logger.Warn("corrupt event rows moved aside",
			slog.String("account_id", accountID), slog.String("moved_to", aside))
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ledger_events (account_id, event_id, occurred_at, event_type, transaction_id, amount)
		VALUES (?, ?, ?, ?, ?, ?)`,
		accountID, r.EventID, r.OccurredAt, r.EventType, r.TransactionID, r.Amount)
	if err != nil {
		return fmt.Errorf("%w: insert event: %w", ledger.ErrPersistence, err)
	}
	return nil
}

// Ping checks the database handle.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
