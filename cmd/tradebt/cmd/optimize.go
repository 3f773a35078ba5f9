package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebt/journal"
	"github.com/rustyeddy/tradebt/market"
	"github.com/rustyeddy/tradebt/metrics"
	"github.com/rustyeddy/tradebt/optimize"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Search strategy parameters for the best Calmar ratio",
	Long: `Split the bars into train, test and validation windows, run a seeded
random search over the configured space on the train window, then evaluate
the best parameters on all three windows.

With walk-forward enabled each trial is scored as the mean Calmar ratio of
the test folds of a time-series split of the train window.

Examples:
  tradebt optimize --data btc_1h.csv
  tradebt optimize --data btc_1h.csv --trials 500 --workers 8 --seed 7
  tradebt optimize --data btc_1h.csv --folds 0`,
	RunE: runOptimize,
}

var (
	optData    string
	optRule    string
	optTrials  int
	optWorkers int
	optSeed    int64
	optFolds   int
	optReturns bool
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringVarP(&optData, "data", "d", "", "CSV file of bars (overrides data.path)")
	optimizeCmd.Flags().StringVar(&optRule, "rule", "", "signal rule (overrides rule)")
	optimizeCmd.Flags().IntVarP(&optTrials, "trials", "n", 0, "number of trials (overrides optimize.trials)")
	optimizeCmd.Flags().IntVarP(&optWorkers, "workers", "w", 0, "concurrent trials (overrides optimize.workers)")
	optimizeCmd.Flags().Int64Var(&optSeed, "seed", 0, "random seed (overrides optimize.seed)")
	optimizeCmd.Flags().IntVar(&optFolds, "folds", -1, "walk-forward folds, 0 disables (overrides optimize.folds)")
	optimizeCmd.Flags().BoolVar(&optReturns, "returns", false, "print period returns of the validation run")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if optRule != "" {
		cfg.Rule = optRule
	}
	if flags.Changed("trials") {
		cfg.Optimize.Trials = optTrials
	}
	if flags.Changed("workers") {
		cfg.Optimize.Workers = optWorkers
	}
	if flags.Changed("seed") {
		cfg.Optimize.Seed = optSeed
	}
	if flags.Changed("folds") {
		cfg.Optimize.Folds = optFolds
		cfg.Optimize.WalkForward = optFolds > 0
	}

	bars, err := loadBars(cfg, optData)
	if err != nil {
		return err
	}
	train, test, val, err := market.Split(bars, cfg.Data.TrainFrac, cfg.Data.TestFrac)
	if err != nil {
		return err
	}
	slog.Info("split", "train", len(train), "test", len(test), "validation", len(val))

	ev := evaluatorFor(cfg)
	folds := 0
	if cfg.Optimize.WalkForward {
		folds = cfg.Optimize.Folds
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opt := optimize.Optimizer{
		Space:   cfg.Search,
		Trials:  cfg.Optimize.Trials,
		Workers: cfg.Optimize.Workers,
		Seed:    cfg.Optimize.Seed,
		Logger:  slog.Default(),
	}
	study, studyErr := opt.Optimize(ctx, ev.Objective(train, folds))
	if studyErr != nil && !errors.Is(studyErr, context.Canceled) {
		return studyErr
	}
	if study.Best.Number < 0 {
		return fmt.Errorf("no trial finished: %w", studyErr)
	}

	j, jerr := journal.Open(cfg.Journal.Options())
	if jerr != nil {
		return fmt.Errorf("open journal: %w", jerr)
	}
	defer j.Close()

	// a cancelled study is still journaled and evaluated
	saveCtx := context.Background()
	for _, t := range journal.FromStudy(study) {
		if err := j.RecordTrial(saveCtx, t); err != nil {
			return fmt.Errorf("record trial %d: %w", t.Number, err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Study: %s (seed=%d trials=%d failed=%d)\n",
		study.ID, study.Seed, len(study.Trials), study.Failed())
	fmt.Fprintf(out, "Best trial: #%d score=%.4f\n", study.Best.Number, study.Best.Score)
	fmt.Fprintf(out, "Best params: %s\n\n", study.Best.Params)

	windows := []struct {
		name string
		bars market.Bars
	}{
		{splitTrain, train},
		{splitTest, test},
		{splitValidation, val},
	}
	for _, w := range windows {
		run, err := ev.Run(w.bars, study.Best.Params)
		if err != nil {
			slog.Warn("evaluation failed", "split", w.name, "err", err)
			fmt.Fprintf(out, "%s: %v\n\n", w.name, err)
			continue
		}
		rec, trades, equity := journal.FromRun(run, cfg.Data.Path, w.name)
		rec.StudyID = study.ID
		journal.PrintRun(out, rec)
		if optReturns && w.name == splitValidation {
			printReturns(out, metrics.ReturnsTable(run.Result.Times, run.Result.Values))
		}
		fmt.Fprintln(out)
		if err := saveRun(saveCtx, out, j, cfg, rec, trades, equity, ""); err != nil {
			return err
		}
	}

	if studyErr != nil {
		slog.Warn("study interrupted", "completed", len(study.Trials), "requested", cfg.Optimize.Trials)
	}
	return nil
}
