package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("journal: sqlite path is required")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func (j *SQLite) RecordRun(ctx context.Context, r RunRecord) error {
	params, err := json.Marshal(r.Params)
	if err != nil {
		return err
	}
	notes, err := json.Marshal(append([]string{}, r.Notes...))
	if err != nil {
		return err
	}
	created := r.Created
	if created.IsZero() {
		created = time.Now()
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, study_id, created, dataset, split, rule, params, start_time, end_time, bars,
		 initial_cash, final_cash, commission, trades, wins, losses, win_rate,
		 sharpe, sortino, max_drawdown, calmar, total_return, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.StudyID, created.UTC(), r.Dataset, r.Split, r.Rule, string(params),
		r.Start.UTC(), r.End.UTC(), r.Bars,
		r.InitialCash, r.FinalCash, r.Commission, r.Trades, r.Wins, r.Losses, r.WinRate,
		r.Sharpe, r.Sortino, r.MaxDrawdown, r.Calmar, r.TotalReturn, string(notes),
	)
	return err
}

func (j *SQLite) RecordTrade(ctx context.Context, t TradeRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trades
		(trade_id, run_id, side, entry_time, exit_time, entry_price, exit_price, shares, pnl, net_pnl, rr, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Side, t.EntryTime.UTC(), t.ExitTime.UTC(),
		t.EntryPrice, t.ExitPrice, t.Shares, t.PnL, t.NetPnL, t.RR, t.Reason,
	)
	return err
}

// RecordEquity inserts the whole curve in one transaction.
func (j *SQLite) RecordEquity(ctx context.Context, points []EquityPoint) error {
	if len(points) == 0 {
		return nil
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO equity (run_id, time, value) VALUES (?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, p.RunID, p.Time.UTC(), p.Value); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (j *SQLite) RecordTrial(ctx context.Context, t TrialRecord) error {
	params, err := json.Marshal(t.Params)
	if err != nil {
		return err
	}
	score := sql.NullFloat64{Float64: t.Score, Valid: !math.IsNaN(t.Score) && !math.IsInf(t.Score, 0)}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO trials (study_id, number, params, score, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.StudyID, t.Number, string(params), score, t.Err, t.Duration.Milliseconds(),
	)
	return err
}

const runColumns = `run_id, study_id, created, dataset, split, rule, params, start_time, end_time, bars,
	initial_cash, final_cash, commission, trades, wins, losses, win_rate,
	sharpe, sortino, max_drawdown, calmar, total_return, notes`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var (
		r             RunRecord
		params, notes string
	)
	err := s.Scan(
		&r.RunID, &r.StudyID, &r.Created, &r.Dataset, &r.Split, &r.Rule, &params,
		&r.Start, &r.End, &r.Bars,
		&r.InitialCash, &r.FinalCash, &r.Commission, &r.Trades, &r.Wins, &r.Losses, &r.WinRate,
		&r.Sharpe, &r.Sortino, &r.MaxDrawdown, &r.Calmar, &r.TotalReturn, &notes,
	)
	if err != nil {
		return RunRecord{}, err
	}
	if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
		return RunRecord{}, fmt.Errorf("run %s: decode params: %w", r.RunID, err)
	}
	if err := json.Unmarshal([]byte(notes), &r.Notes); err != nil {
		return RunRecord{}, fmt.Errorf("run %s: decode notes: %w", r.RunID, err)
	}
	return r, nil
}

func (j *SQLite) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("run %q: %w", runID, ErrNotFound)
	}
	return r, err
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (j *SQLite) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLite) ListTradesByRunID(ctx context.Context, runID string) ([]TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT trade_id, run_id, side, entry_time, exit_time, entry_price, exit_price, shares, pnl, net_pnl, rr, reason
		FROM trades
		WHERE run_id = ?
		ORDER BY exit_time ASC, trade_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(
			&t.TradeID, &t.RunID, &t.Side, &t.EntryTime, &t.ExitTime,
			&t.EntryPrice, &t.ExitPrice, &t.Shares, &t.PnL, &t.NetPnL, &t.RR, &t.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLite) ListEquityByRunID(ctx context.Context, runID string) ([]EquityPoint, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, time, value FROM equity WHERE run_id = ? ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityPoint
	for rows.Next() {
		var p EquityPoint
		if err := rows.Scan(&p.RunID, &p.Time, &p.Value); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (j *SQLite) ListTrialsByStudy(ctx context.Context, studyID string) ([]TrialRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT study_id, number, params, score, error, duration_ms
		FROM trials WHERE study_id = ? ORDER BY number ASC`, studyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrialRecord
	for rows.Next() {
		var (
			t      TrialRecord
			params string
			score  sql.NullFloat64
			ms     int64
		)
		if err := rows.Scan(&t.StudyID, &t.Number, &params, &score, &t.Err, &ms); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(params), &t.Params); err != nil {
			return nil, fmt.Errorf("trial %s/%d: decode params: %w", t.StudyID, t.Number, err)
		}
		t.Score = math.NaN()
		if score.Valid {
			t.Score = score.Float64
		}
		t.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, t)
	}
	return out, rows.Err()
}

// BestTrial returns the highest-scoring successful trial of a study.
func (j *SQLite) BestTrial(ctx context.Context, studyID string) (TrialRecord, error) {
	trials, err := j.ListTrialsByStudy(ctx, studyID)
	if err != nil {
		return TrialRecord{}, err
	}
	best := -1
	for i, t := range trials {
		if math.IsNaN(t.Score) {
			continue
		}
		if best < 0 || t.Score > trials[best].Score {
			best = i
		}
	}
	if best < 0 {
		return TrialRecord{}, fmt.Errorf("study %q: %w", studyID, ErrNotFound)
	}
	return trials[best], nil
}
