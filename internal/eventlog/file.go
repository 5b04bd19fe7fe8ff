package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/eventledger/eventledger/internal/ledger"
)

const fileNamePrefix = "wallet_events_"

// FileStore keeps each account's history as a JSON array in its own file
// under dir. Appends rewrite the whole document through a temporary file and
// an atomic rename; existing records are carried over verbatim.
type FileStore struct {
	mu     sync.Mutex
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewFileStore builds a file-backed store rooted at dir. The directory is
// created on first append.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("event log directory is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileStore{dir: filepath.Clean(dir), logger: logger, now: time.Now}, nil
}

// Path returns the file holding accountID's history.
func (s *FileStore) Path(accountID string) string {
	return filepath.Join(s.dir, fileNamePrefix+accountID+".json")
}

// Load reads the account history. A missing, empty or malformed file is an
// empty history.
func (s *FileStore) Load(ctx context.Context, accountID string) ([]ledger.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ledger.ValidateAccountID(accountID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path(accountID))
	if errors.Is(err, fs.ErrNotExist) {
		return []ledger.Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}

	events, err := ledger.UnmarshalHistory(data)
	if err != nil {
		if ledger.IsCorrupt(err) {
			s.logger.Warn("corrupt event log treated as empty",
				slog.String("account_id", accountID),
				slog.String("path", s.Path(accountID)),
				slog.Any("error", err))
			return []ledger.Event{}, nil
		}
		return nil, err
	}
	return events, nil
}

// Append adds evt to the end of the account history. A corrupt file is moved
// aside before the new history is written so its bytes are never lost.
func (s *FileStore) Append(ctx context.Context, accountID string, evt ledger.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ledger.ValidateAccountID(accountID); err != nil {
		return err
	}
	record, err := ledger.MarshalRecord(evt)
	if err != nil {
		return fmt.Errorf("%w: %w", ledger.ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create event log dir: %w", ledger.ErrPersistence, err)
	}

	path := s.Path(accountID)
	existing, err := s.readExisting(accountID, path)
	if err != nil {
		return err
	}

	doc, err := json.MarshalIndent(append(existing, record), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode event log: %w", ledger.ErrPersistence, err)
	}
	if err := writeFileAtomic(path, doc); err != nil {
		return fmt.Errorf("%w: %w", ledger.ErrPersistence, err)
	}
	return nil
}

// readExisting returns the raw records currently stored at path, quarantining
// a corrupt file.
func (s *FileStore) readExisting(accountID, path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read event log: %w", ledger.ErrPersistence, err)
	}

	raw, err := ledger.SplitHistory(data)
	if err == nil {
		_, err = ledger.UnmarshalHistory(data)
	}
	switch {
	case err == nil:
		return raw, nil
	case ledger.IsCorrupt(err):
		quarantine := quarantineName(path, s.now())
		if renameErr := os.Rename(path, quarantine); renameErr != nil {
			return nil, fmt.Errorf("%w: quarantine corrupt event log: %w", ledger.ErrPersistence, renameErr)
		}
		s.logger.Warn("corrupt event log moved aside",
			slog.String("account_id", accountID),
			slog.String("path", quarantine))
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %w", ledger.ErrPersistence, err)
	}
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename event log: %w", err)
	}
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		d.Close()
	}
	return nil
}
