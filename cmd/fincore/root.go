// Command fincore is the terminal front end for the expense dashboard core:
// spreadsheet imports, budget edits, review filtering and the aggregated
// reports, all against device-local JSON state.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/financecore/finance-core/internal/domain/auth"
	"github.com/financecore/finance-core/internal/domain/budget"
	"github.com/financecore/finance-core/internal/domain/expense"
	"github.com/financecore/finance-core/internal/domain/ingest"
	"github.com/financecore/finance-core/internal/domain/ingest/classifier"
	"github.com/financecore/finance-core/internal/domain/ingest/fetcher"
	"github.com/financecore/finance-core/internal/domain/insights"
	"github.com/financecore/finance-core/pkg/config"
	"github.com/financecore/finance-core/pkg/kvstore"
)

// app holds the wired services shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	expenses *expense.Store
	budgets  *budget.Store
	ingest   *ingest.Service
	engine   *insights.Engine
	auth     *auth.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "fincore",
		Short:         "Expense dashboard core: imports, budgets and reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.AddCommand(
		newImportCmd(a),
		newReviewCmd(a),
		newBudgetCmd(a),
		newReportCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newPermissionsCmd(a),
	)

	return root
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.Log)

	kv, err := kvstore.NewLocalStore(cfg.State.Dir)
	if err != nil {
		return fmt.Errorf("failed to open state dir: %w", err)
	}

	a.expenses = expense.NewStore(kv, a.logger)
	a.budgets = budget.NewStore(kv, a.logger)
	a.auth = auth.NewService(kv, a.logger)
	a.engine = insights.NewEngine(a.expenses, a.budgets, a.logger)

	f := fetcher.New(
		time.Duration(cfg.Import.FetchTimeoutSeconds)*time.Second,
		cfg.Import.MaxDownloadBytes,
		a.logger,
	)
	a.ingest = ingest.NewService(a.expenses, f, classifier.RandomIDStrategy{}, a.logger)

	return nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// requirePermission gates a subcommand on the current session's grants.
func (a *app) requirePermission(perm auth.Permission) error {
	ok, err := a.auth.HasPermission(perm)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("permission %q denied; log in with a role that grants it", perm)
	}
	return nil
}

// parseMonthFlag accepts a month abbreviation (Jan..Dez) or a 1-based
// number. Empty means the whole year.
func parseMonthFlag(value string) (int, error) {
	if value == "" {
		return -1, nil
	}
	for i, key := range expense.MonthKeys {
		if strings.EqualFold(key, value) {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(value); err == nil && n >= 1 && n <= 12 {
		return n - 1, nil
	}
	return 0, fmt.Errorf("unknown month %q (use Jan..Dez or 1..12)", value)
}
