package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebt/journal"
	"github.com/rustyeddy/tradebt/metrics"
	"github.com/rustyeddy/tradebt/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run one backtest with the configured parameters",
	Long: `Run the long/short simulator over a CSV of bars using the params
section of the configuration, print the metrics and journal the run.

Examples:
  tradebt backtest --data btc_1h.csv
  tradebt backtest --data btc_1h.csv --split test --returns
  tradebt backtest --data btc_1h.csv --split validation --study <study-id>
  tradebt backtest --data btc_1h.csv --set rsi_window=10 --set stop_loss=0.03`,
	RunE: runBacktest,
}

var (
	btData    string
	btSplit   string
	btRule    string
	btOrg     string
	btSet     []string
	btStudy   string
	btReturns bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btData, "data", "d", "", "CSV file of bars (overrides data.path)")
	backtestCmd.Flags().StringVar(&btSplit, "split", splitFull, "bars to use: full, train, test or validation")
	backtestCmd.Flags().StringVar(&btRule, "rule", "", "signal rule: "+strings.Join(strategies.RuleNames(), ", "))
	backtestCmd.Flags().StringVar(&btOrg, "org", "", "write an Org-mode report to this file")
	backtestCmd.Flags().StringArrayVar(&btSet, "set", nil, "override a parameter, key=value (repeatable)")
	backtestCmd.Flags().StringVar(&btStudy, "study", "", "start from the best params of a journaled study")
	backtestCmd.Flags().BoolVar(&btReturns, "returns", false, "print monthly, quarterly and annual returns")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if btRule != "" {
		cfg.Rule = btRule
	}
	params := cfg.Params
	if btStudy != "" {
		if params, err = studyParams(cfg.Journal.DBPath, btStudy); err != nil {
			return err
		}
	}
	params, err = overrideParams(params, btSet)
	if err != nil {
		return err
	}

	bars, err := loadBars(cfg, btData)
	if err != nil {
		return err
	}
	bars, err = selectSplit(cfg, bars, btSplit)
	if err != nil {
		return err
	}

	run, err := evaluatorFor(cfg).Run(bars, params)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	j, err := journal.Open(cfg.Journal.Options())
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	out := cmd.OutOrStdout()
	rec, trades, equity := journal.FromRun(run, cfg.Data.Path, btSplit)
	journal.PrintRun(out, rec)
	if btReturns {
		printReturns(out, metrics.ReturnsTable(run.Result.Times, run.Result.Values))
	}

	return saveRun(context.Background(), out, j, cfg, rec, trades, equity, btOrg)
}

func studyParams(dbPath, studyID string) (strategies.Params, error) {
	j, err := journal.NewSQLite(dbPath)
	if err != nil {
		return strategies.Params{}, fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	best, err := j.BestTrial(context.Background(), studyID)
	if err != nil {
		return strategies.Params{}, fmt.Errorf("study %s: %w", studyID, err)
	}
	slog.Info("using study params", "study", studyID, "trial", best.Number, "score", best.Score)
	return best.Params, nil
}

// overrideParams applies key=value pairs on top of p.
func overrideParams(p strategies.Params, sets []string) (strategies.Params, error) {
	if len(sets) == 0 {
		return p, nil
	}
	m := p.Map()
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		if !ok {
			return p, fmt.Errorf("--set %q: want key=value", s)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return p, fmt.Errorf("--set %q: %w", s, err)
		}
		k = strings.TrimSpace(k)
		// the two sizing keys are exclusive
		switch k {
		case strategies.KeyNShares:
			delete(m, strategies.KeyCashPct)
		case strategies.KeyCashPct:
			delete(m, strategies.KeyNShares)
		}
		m[k] = x
	}
	return strategies.ParamsFromMap(m)
}
