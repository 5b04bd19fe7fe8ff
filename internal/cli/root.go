// Package cli implements the ledgerctl command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/eventledger/eventledger/internal/config"
	"github.com/eventledger/eventledger/internal/infra"
	"github.com/eventledger/eventledger/internal/logging"
	"github.com/eventledger/eventledger/internal/notification"
	"github.com/eventledger/eventledger/internal/wallet"
)

// RootConfig carries settings shared by every subcommand. Flags override the
// values loaded from the environment.
type RootConfig struct {
	Store   string
	DataDir string
	SQLite  string
	Verbose bool

	loadConfig func() (config.Config, error)
	logOut     io.Writer
}

// NewRootCmd builds ledgerctl.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&RootConfig{loadConfig: config.Load, logOut: os.Stderr})
}

func newRootCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Inspect and move funds in the event-sourced account ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&rc.Store, "store", "", "event store driver (file, sqlite, postgres, redis, memory)")
	cmd.PersistentFlags().StringVar(&rc.DataDir, "data-dir", "", "directory for the file store")
	cmd.PersistentFlags().StringVar(&rc.SQLite, "sqlite", "", "database path for the sqlite store")
	cmd.PersistentFlags().BoolVarP(&rc.Verbose, "verbose", "v", false, "log at debug level to stderr")

	cmd.AddCommand(
		newMovementCmd(rc, movementCredit),
		newMovementCmd(rc, movementDebit),
		newBalanceCmd(rc),
		newHistoryCmd(rc),
	)
	return cmd
}

// Execute runs ledgerctl with os.Args and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}

// session is an opened store plus the wallet service over it.
type session struct {
	cfg     config.Config
	backend *infra.Backend
	service *wallet.Service
}

func (rc *RootConfig) open(ctx context.Context) (*session, error) {
	cfg, err := rc.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if rc.Store != "" {
		cfg.StoreDriver = rc.Store
	}
	if rc.DataDir != "" {
		cfg.DataDir = rc.DataDir
	}
	if rc.SQLite != "" {
		cfg.SQLitePath = rc.SQLite
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if rc.Verbose {
		level = "debug"
	}
	logger := logging.NewWithWriter(rc.logOut, level)

	backend, err := infra.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	registry := wallet.NewRegistry(backend.Store, wallet.WithLogger(logger))
	svc := wallet.NewService(registry, notification.NewLoggerNotifier(logger.With(slog.String("source", "ledgerctl"))))
	return &session{cfg: cfg, backend: backend, service: svc}, nil
}

func (s *session) Close() error {
	return s.backend.Close()
}
