// Package journal persists backtest runs, their trades and equity curves,
// and optimizer trials.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/tradebt/strategies"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("journal: not found")

// RunRecord is the summary row of one engine run.
type RunRecord struct {
	RunID   string
	StudyID string // empty for a standalone backtest
	Created time.Time

	Dataset string // input file
	Split   string // full | train | test | validation
	Rule    string
	Params  strategies.Params

	Start time.Time
	End   time.Time
	Bars  int

	InitialCash float64
	FinalCash   float64
	Commission  float64

	Trades  int
	Wins    int
	Losses  int
	WinRate float64

	Sharpe      float64
	Sortino     float64
	MaxDrawdown float64
	Calmar      float64
	TotalReturn float64

	Notes []string
}

func (r RunRecord) NetPnL() float64 { return r.FinalCash - r.InitialCash }

// TradeRecord is one closed position.
type TradeRecord struct {
	TradeID    string
	RunID      string
	Side       string
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Shares     float64
	PnL        float64 // decides win or loss
	NetPnL     float64 // cash delta after both commissions
	RR         float64 // bracket reward-to-risk
	Reason     string
}

// EquityPoint is the portfolio value at one bar.
type EquityPoint struct {
	RunID string
	Time  time.Time
	Value float64
}

// TrialRecord is one scored parameter set of a study.
type TrialRecord struct {
	StudyID  string
	Number   int
	Params   strategies.Params
	Score    float64 // NaN is stored as NULL
	Err      string
	Duration time.Duration
}

type Journal interface {
	RecordRun(ctx context.Context, r RunRecord) error
	RecordTrade(ctx context.Context, t TradeRecord) error
	RecordEquity(ctx context.Context, points []EquityPoint) error
	RecordTrial(ctx context.Context, t TrialRecord) error
	Close() error
}

// Reader is implemented by journals that can be queried.
type Reader interface {
	GetRun(ctx context.Context, runID string) (RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	ListTradesByRunID(ctx context.Context, runID string) ([]TradeRecord, error)
	ListEquityByRunID(ctx context.Context, runID string) ([]EquityPoint, error)
	ListTrialsByStudy(ctx context.Context, studyID string) ([]TrialRecord, error)
}

// Save records a run together with its trades and equity curve.
func Save(ctx context.Context, j Journal, r RunRecord, trades []TradeRecord, equity []EquityPoint) error {
	if err := j.RecordRun(ctx, r); err != nil {
		return fmt.Errorf("record run %s: %w", r.RunID, err)
	}
	for _, t := range trades {
		if err := j.RecordTrade(ctx, t); err != nil {
			return fmt.Errorf("record trade %s: %w", t.TradeID, err)
		}
	}
	if err := j.RecordEquity(ctx, equity); err != nil {
		return fmt.Errorf("record equity for %s: %w", r.RunID, err)
	}
	return nil
}

// Options selects and configures a journal backend.
type Options struct {
	Type       string // sqlite | csv | none
	DBPath     string
	TradesFile string
	EquityFile string
}

// Open returns the backend named by opts.Type.
func Open(opts Options) (Journal, error) {
	switch opts.Type {
	case "sqlite", "":
		return NewSQLite(opts.DBPath)
	case "csv":
		return NewCSV(opts.TradesFile, opts.EquityFile)
	case "none":
		return Nop{}, nil
	}
	return nil, fmt.Errorf("journal: unknown type %q (want sqlite, csv or none)", opts.Type)
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRun(context.Context, RunRecord) error        { return nil }
func (Nop) RecordTrade(context.Context, TradeRecord) error    { return nil }
func (Nop) RecordEquity(context.Context, []EquityPoint) error { return nil }
func (Nop) RecordTrial(context.Context, TrialRecord) error    { return nil }
func (Nop) Close() error                                      { return nil }
