package journal

import (
	"time"

	"github.com/rustyeddy/tradebt/internal/id"
	"github.com/rustyeddy/tradebt/optimize"
)

// FromRun converts an evaluated run into journal rows under a fresh run ID.
func FromRun(r optimize.Run, dataset, split string) (RunRecord, []TradeRecord, []EquityPoint) {
	res := r.Result
	rec := RunRecord{
		RunID:       id.New(id.Run),
		Created:     time.Now().UTC(),
		Dataset:     dataset,
		Split:       split,
		Rule:        r.Rule,
		Params:      r.Params,
		Start:       r.Start,
		End:         r.End,
		Bars:        r.Bars(),
		InitialCash: res.InitialCash,
		FinalCash:   res.FinalCash,
		Commission:  r.Commission,
		Trades:      len(res.Trades),
		Wins:        res.Wins,
		Losses:      res.Losses,
		WinRate:     res.WinRate,
		Sharpe:      r.Summary.Sharpe,
		Sortino:     r.Summary.Sortino,
		MaxDrawdown: r.Summary.MaxDrawdown,
		Calmar:      r.Summary.Calmar,
		TotalReturn: r.Summary.TotalReturn,
	}

	trades := make([]TradeRecord, len(res.Trades))
	for i, t := range res.Trades {
		trades[i] = TradeRecord{
			TradeID:    id.At(id.Trade, t.ExitTime),
			RunID:      rec.RunID,
			Side:       t.Side.String(),
			EntryTime:  t.EntryTime,
			ExitTime:   t.ExitTime,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			Shares:     t.Shares,
			PnL:        t.PnL,
			NetPnL:     t.NetPnL,
			RR:         t.RR,
			Reason:     t.Reason,
		}
	}

	equity := make([]EquityPoint, len(res.Values))
	for i, v := range res.Values {
		equity[i] = EquityPoint{RunID: rec.RunID, Time: res.Times[i], Value: v}
	}
	return rec, trades, equity
}

// FromStudy converts every trial of a study into journal rows.
func FromStudy(s optimize.Study) []TrialRecord {
	out := make([]TrialRecord, len(s.Trials))
	for i, t := range s.Trials {
		out[i] = TrialRecord{
			StudyID:  s.ID,
			Number:   t.Number,
			Params:   t.Params,
			Score:    t.Score,
			Duration: t.Duration,
		}
		if t.Err != nil {
			out[i].Err = t.Err.Error()
		}
	}
	return out
}
