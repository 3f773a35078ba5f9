package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// time columns in order of preference
var timeColumns = []string{"datetime", "date", "timestamp", "time", "unix"}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// LoadCSV reads an OHLCV CSV file. See ReadCSV for the accepted format.
func LoadCSV(path string) (Bars, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bars, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// ReadCSV parses header-driven OHLCV rows.
//
// Column names are matched case-insensitively. The time column is the first
// of datetime, date, timestamp, time, unix that is present; the volume column
// is the first header containing "volume" and is optional.
//
// Newest-first files are reversed, duplicate timestamps keep the first row,
// and rows without a usable close are skipped. Anything still out of order
// is an error.
func ReadCSV(r io.Reader) (Bars, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return Bars{}, nil
	}
	if err != nil {
		return nil, err
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var bars Bars
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		b, ok, err := parseBarRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			continue
		}
		bars = append(bars, b)
	}

	bars = normalizeOrder(bars)
	if err := bars.Validate(); err != nil {
		return nil, err
	}
	return bars, nil
}

type columns struct {
	time, open, high, low, close, volume int
}

func mapColumns(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}

	c := columns{time: -1, volume: -1}
	for _, name := range timeColumns {
		if i, ok := idx[name]; ok {
			c.time = i
			break
		}
	}
	if c.time < 0 {
		return c, fmt.Errorf("missing time column (one of %s)", strings.Join(timeColumns, ", "))
	}

	for _, req := range []struct {
		name string
		dst  *int
	}{
		{"open", &c.open},
		{"high", &c.high},
		{"low", &c.low},
		{"close", &c.close},
	} {
		i, ok := idx[req.name]
		if !ok {
			return c, fmt.Errorf("missing %q column", req.name)
		}
		*req.dst = i
	}

	for i, h := range header {
		if strings.Contains(strings.ToLower(h), "volume") {
			c.volume = i
			break
		}
	}
	return c, nil
}

func parseBarRow(row []string, c columns) (Bar, bool, error) {
	get := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	ts := get(c.time)
	if ts == "" {
		return Bar{}, false, nil
	}
	t, err := ParseTime(ts)
	if err != nil {
		return Bar{}, false, err
	}

	closeStr := get(c.close)
	if closeStr == "" {
		return Bar{}, false, nil
	}
	cl, err := strconv.ParseFloat(closeStr, 64)
	if err != nil {
		return Bar{}, false, fmt.Errorf("bad close %q: %w", closeStr, err)
	}
	if math.IsNaN(cl) {
		return Bar{}, false, nil
	}

	b := Bar{Time: t, Close: cl}
	for _, f := range []struct {
		i   int
		dst *float64
	}{
		{c.open, &b.Open},
		{c.high, &b.High},
		{c.low, &b.Low},
		{c.volume, &b.Volume},
	} {
		s := get(f.i)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Bar{}, false, fmt.Errorf("bad value %q: %w", s, err)
		}
		*f.dst = v
	}
	return b, true, nil
}

// ParseTime accepts the timestamp layouts seen in exported market data,
// including unix seconds or milliseconds. Results are in UTC.
func ParseTime(s string) (time.Time, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		// 1e11 seconds is year 5138, anything larger is milliseconds
		if n > 1e11 || n < -1e11 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad time %q", s)
}

// normalizeOrder reverses newest-first input and drops repeated timestamps.
func normalizeOrder(bars Bars) Bars {
	if len(bars) > 1 && bars[0].Time.After(bars[len(bars)-1].Time) {
		for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
			bars[i], bars[j] = bars[j], bars[i]
		}
	}

	out := bars[:0]
	for i, b := range bars {
		if i > 0 && len(out) > 0 && b.Time.Equal(out[len(out)-1].Time) {
			continue
		}
		out = append(out, b)
	}
	return out
}
