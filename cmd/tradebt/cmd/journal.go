package cmd

import (
	"context"
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebt/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journaled runs, trades and trials",
	Long: `Query and display records from the SQLite journal.

Subcommands:
  runs    - List recent runs
  run     - Show one run
  trades  - List the trades of a run
  trials  - List the trials of a study
  org     - Write an Org-mode report for a run

Examples:
  tradebt journal runs --limit 20
  tradebt journal run <run-id>
  tradebt journal org <run-id> report.org`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show the summary of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List the trades of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalTrialsCmd = &cobra.Command{
	Use:   "trials <study-id>",
	Short: "List the trials of a study",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrials,
}

var journalOrgCmd = &cobra.Command{
	Use:   "org <run-id> <file>",
	Short: "Write an Org-mode report for a run",
	Args:  cobra.ExactArgs(2),
	RunE:  runJournalOrg,
}

var (
	journalDBPath string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalTrialsCmd)
	journalCmd.AddCommand(journalOrgCmd)

	journalCmd.PersistentFlags().StringVar(&journalDBPath, "db", "", "path to SQLite journal DB (default journal.db_path)")
	journalRunsCmd.Flags().IntVarP(&journalLimit, "limit", "l", 20, "maximum number of runs")
}

func openReader() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Journal.DBPath
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := openReader()
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListRuns(context.Background(), journalLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs journaled.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tSPLIT\tRULE\tTRADES\tRETURN\tCALMAR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f%%\t%.4f\n",
			r.RunID, r.Created.Local().Format("2006-01-02 15:04"), r.Split, r.Rule,
			r.Trades, r.TotalReturn*100, r.Calmar)
	}
	return tw.Flush()
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := openReader()
	if err != nil {
		return err
	}
	defer j.Close()

	r, err := j.GetRun(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	journal.PrintRun(cmd.OutOrStdout(), r)
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openReader()
	if err != nil {
		return err
	}
	defer j.Close()

	trades, err := j.ListTradesByRunID(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SIDE\tENTRY\tEXIT\tENTRY PX\tEXIT PX\tSHARES\tR:R\tPNL\tNET PNL\tREASON")
	for _, t := range trades {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\t%.4f\t%.4f\t%.2f\t%s\t%s\t%s\n",
			t.Side, t.EntryTime.Format("2006-01-02 15:04"), t.ExitTime.Format("2006-01-02 15:04"),
			t.EntryPrice, t.ExitPrice, t.Shares, t.RR, journal.Money(t.PnL), journal.Money(t.NetPnL), t.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d trades\n", len(trades))
	return nil
}

func runJournalTrials(cmd *cobra.Command, args []string) error {
	j, err := openReader()
	if err != nil {
		return err
	}
	defer j.Close()

	trials, err := j.ListTrialsByStudy(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("list trials: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRIAL\tSCORE\tPARAMS")
	for _, t := range trials {
		score := "failed"
		if !math.IsNaN(t.Score) {
			score = fmt.Sprintf("%.4f", t.Score)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", t.Number, score, t.Params)
	}
	return tw.Flush()
}

func runJournalOrg(cmd *cobra.Command, args []string) error {
	j, err := openReader()
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := context.Background()
	r, err := j.GetRun(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	trades, err := j.ListTradesByRunID(ctx, r.RunID)
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	rep := journal.OrgReport{Run: r, Trades: trades}
	if err := rep.WriteOrg(args[1]); err != nil {
		return fmt.Errorf("write org report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Org report written: %s\n", args[1])
	return nil
}
