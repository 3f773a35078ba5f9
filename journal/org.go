package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"
)

// OrgReport is the data rendered by WriteOrg.
type OrgReport struct {
	Run    RunRecord
	Trades []TradeRecord
}

var orgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"money":  Money,
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var orgTemplate = template.Must(template.New("run").Funcs(orgFuncs).Parse(RunOrgTemplate))

// FormatOrg renders the report as an Org-mode subtree.
func (o OrgReport) FormatOrg() (string, error) {
	var buf bytes.Buffer
	if err := orgTemplate.Execute(&buf, o); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteOrg writes the report to path.
func (o OrgReport) WriteOrg(path string) error {
	s, err := o.FormatOrg()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0o644)
}

const RunOrgTemplate = `* BACKTEST: {{.Run.Rule}} {{if .Run.Split}}[{{.Run.Split}}]{{end}}
:PROPERTIES:
:RUN_ID:       {{.Run.RunID}}
{{- if .Run.StudyID}}
:STUDY_ID:     {{.Run.StudyID}}
{{- end}}
:DATASET:      {{if .Run.Dataset}}{{.Run.Dataset}}{{else}}(dataset?){{end}}
:START_DATE:   {{.Run.Start.Format "2006-01-02 15:04"}}
:END_DATE:     {{.Run.End.Format "2006-01-02 15:04"}}
:BARS:         {{.Run.Bars}}
:START_CASH:   {{money .Run.InitialCash}}
:END_CASH:     {{money .Run.FinalCash}}
:NET_PNL:      {{money .Run.NetPnL}}
:COMMISSION:   {{printf "%.4f" (mul100 .Run.Commission)}}%
:TRADES:       {{.Run.Trades}}
:WINS:         {{.Run.Wins}}
:LOSSES:       {{.Run.Losses}}
:CREATED:      [{{(orTime .Run.Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Parameters
| Parameter          | Value |
|--------------------+-------|
| rsi_window         | {{.Run.Params.RSIWindow}} |
| rsi_lower          | {{.Run.Params.RSILower}} |
| rsi_upper          | {{.Run.Params.RSIUpper}} |
| ema_short_window   | {{.Run.Params.EMAShortWindow}} |
| ema_long_window    | {{.Run.Params.EMALongWindow}} |
| macd_short_window  | {{.Run.Params.MACDShortWindow}} |
| macd_long_window   | {{.Run.Params.MACDLongWindow}} |
| macd_signal_window | {{.Run.Params.MACDSignalWindow}} |
| stop_loss          | {{printf "%.4f" .Run.Params.StopLoss}} |
| take_profit        | {{printf "%.4f" .Run.Params.TakeProfit}} |
{{- if ne .Run.Params.NShares 0.0}}
| n_shares           | {{.Run.Params.NShares}} |
{{- else}}
| available_cash_pct | {{printf "%.4f" .Run.Params.CashPct}} |
{{- end}}

** Performance Summary
- Total Return:  *{{printf "%.2f" (mul100 .Run.TotalReturn)}}%*
- Max Drawdown:  *{{printf "%.2f" (mul100 .Run.MaxDrawdown)}}%*
- Win Rate:      *{{printf "%.2f" (mul100 .Run.WinRate)}}%*
- Sharpe:        *{{printf "%.4f" .Run.Sharpe}}*
- Sortino:       *{{printf "%.4f" .Run.Sortino}}*
- Calmar:        *{{printf "%.4f" .Run.Calmar}}*
{{- if .Trades}}

** Trades
| Side | Entry | Exit | Entry Px | Exit Px | Shares | R:R | PnL | Net PnL | Reason |
|------+-------+------+----------+---------+--------+-----+-----+---------+--------|
{{- range .Trades}}
| {{.Side}} | {{.EntryTime.Format "2006-01-02 15:04"}} | {{.ExitTime.Format "2006-01-02 15:04"}} | {{printf "%.4f" .EntryPrice}} | {{printf "%.4f" .ExitPrice}} | {{printf "%.4f" .Shares}} | {{printf "%.2f" .RR}} | {{money .PnL}} | {{money .NetPnL}} | {{.Reason}} |
{{- end}}
{{- end}}
{{- if .Run.Notes}}

** Observations
{{- range .Run.Notes}}
- {{.}}
{{- end}}
{{- end}}
`
