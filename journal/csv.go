package journal

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSVJournal appends trades and equity points to two CSV files. Run and
// trial summaries are not kept; use the SQLite journal for those.
type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

var (
	tradeHeader  = []string{"trade_id", "run_id", "side", "entry_time", "exit_time", "entry_price", "exit_price", "shares", "pnl", "net_pnl", "rr", "reason"}
	equityHeader = []string{"run_id", "time", "value"}
)

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		_ = tf.Close()
		return nil, err
	}

	j := &CSVJournal{trades: csv.NewWriter(tf), equity: csv.NewWriter(ef), tf: tf, ef: ef}
	if err := j.write(j.trades, tradeHeader); err != nil {
		_ = j.Close()
		return nil, err
	}
	if err := j.write(j.equity, equityHeader); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) write(w *csv.Writer, rec []string) error {
	if err := w.Write(rec); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) RecordRun(context.Context, RunRecord) error     { return nil }
func (j *CSVJournal) RecordTrial(context.Context, TrialRecord) error { return nil }

func (j *CSVJournal) RecordTrade(_ context.Context, t TradeRecord) error {
	return j.write(j.trades, []string{
		t.TradeID,
		t.RunID,
		t.Side,
		t.EntryTime.UTC().Format(time.RFC3339),
		t.ExitTime.UTC().Format(time.RFC3339),
		f(t.EntryPrice),
		f(t.ExitPrice),
		f(t.Shares),
		f(t.PnL),
		f(t.NetPnL),
		f(t.RR),
		t.Reason,
	})
}

func (j *CSVJournal) RecordEquity(_ context.Context, points []EquityPoint) error {
	for _, p := range points {
		if err := j.equity.Write([]string{p.RunID, p.Time.UTC().Format(time.RFC3339), f(p.Value)}); err != nil {
			return err
		}
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	j.equity.Flush()
	var firstErr error
	for _, err := range []error{j.trades.Error(), j.equity.Error(), j.tf.Close(), j.ef.Close()} {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
