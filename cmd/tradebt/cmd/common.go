package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rustyeddy/tradebt/config"
	"github.com/rustyeddy/tradebt/journal"
	"github.com/rustyeddy/tradebt/market"
	"github.com/rustyeddy/tradebt/metrics"
	"github.com/rustyeddy/tradebt/optimize"
)

// Split names accepted by --split.
const (
	splitFull       = "full"
	splitTrain      = "train"
	splitTest       = "test"
	splitValidation = "validation"
)

func loadBars(cfg *config.Config, dataPath string) (market.Bars, error) {
	if dataPath != "" {
		cfg.Data.Path = dataPath
	}
	if cfg.Data.Path == "" {
		return nil, fmt.Errorf("no data file: pass --data or set data.path")
	}
	bars, err := market.LoadCSV(cfg.Data.Path)
	if err != nil {
		return nil, err
	}
	slog.Info("bars loaded", "path", cfg.Data.Path, "bars", len(bars),
		"start", bars.Start(), "end", bars.End())
	return bars, nil
}

func selectSplit(cfg *config.Config, bars market.Bars, name string) (market.Bars, error) {
	if name == "" || name == splitFull {
		return bars, nil
	}
	train, test, val, err := market.Split(bars, cfg.Data.TrainFrac, cfg.Data.TestFrac)
	if err != nil {
		return nil, err
	}
	switch name {
	case splitTrain:
		return train, nil
	case splitTest:
		return test, nil
	case splitValidation:
		return val, nil
	}
	return nil, fmt.Errorf("unknown split %q (want full, train, test or validation)", name)
}

func evaluatorFor(cfg *config.Config) optimize.Evaluator {
	return optimize.Evaluator{
		InitialCash:    cfg.Account.Cash,
		Commission:     cfg.Account.Commission,
		PeriodsPerYear: cfg.Data.PeriodsPerYear,
		Rule:           cfg.Rule,
	}
}

// saveRun journals r and writes an Org report to orgPath, or to the
// configured org_dir when orgPath is empty.
func saveRun(ctx context.Context, w io.Writer, j journal.Journal, cfg *config.Config, r journal.RunRecord,
	trades []journal.TradeRecord, equity []journal.EquityPoint, orgPath string) error {
	if err := journal.Save(ctx, j, r, trades, equity); err != nil {
		return err
	}

	if orgPath == "" && cfg.Journal.OrgDir != "" {
		if err := os.MkdirAll(cfg.Journal.OrgDir, 0o755); err != nil {
			return fmt.Errorf("create org dir: %w", err)
		}
		orgPath = filepath.Join(cfg.Journal.OrgDir, r.RunID+".org")
	}
	if orgPath != "" {
		rep := journal.OrgReport{Run: r, Trades: trades}
		if err := rep.WriteOrg(orgPath); err != nil {
			return fmt.Errorf("write org report: %w", err)
		}
		fmt.Fprintf(w, "✓ Org report written: %s\n", orgPath)
	}
	return nil
}

func printReturns(w io.Writer, tbl metrics.Table) {
	sections := []struct {
		name string
		rows []metrics.PeriodReturn
	}{
		{"Monthly", tbl.Monthly},
		{"Quarterly", tbl.Quarterly},
		{"Annual", tbl.Annual},
	}
	for _, s := range sections {
		if len(s.rows) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s returns:\n", s.name)
		for _, r := range s.rows {
			fmt.Fprintf(w, "  %-8s %8.2f%%\n", r.Label, r.Return*100)
		}
	}
}
