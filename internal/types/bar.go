package types

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"
)

// BarField names one of the OHLCV columns of a Bar.
type BarField string

const (
	BarFieldOpen   BarField = "open"
	BarFieldHigh   BarField = "high"
	BarFieldLow    BarField = "low"
	BarFieldClose  BarField = "close"
	BarFieldVolume BarField = "volume"
)

// Bar is one daily OHLCV observation. Any price or volume may be missing.
// Extra holds additional named numeric columns (e.g. macro series merged by date)
// which are passed through untouched for overlay charts.
type Bar struct {
	Date   time.Time
	Open   optional.Option[float64]
	High   optional.Option[float64]
	Low    optional.Option[float64]
	Close  optional.Option[float64]
	Volume optional.Option[float64]
	Extra  map[string]optional.Option[float64]
}

// Field returns the named column. OHLCV names are checked first, then Extra.
func (b Bar) Field(name string) (optional.Option[float64], bool) {
	switch BarField(name) {
	case BarFieldOpen:
		return b.Open, true
	case BarFieldHigh:
		return b.High, true
	case BarFieldLow:
		return b.Low, true
	case BarFieldClose:
		return b.Close, true
	case BarFieldVolume:
		return b.Volume, true
	}

	v, ok := b.Extra[name]

	return v, ok
}

// Column extracts one column from bars as a Series.
// Bars lacking the column contribute None.
func Column(bars []Bar, name string) Series {
	out := NewSeries(len(bars))

	for i, b := range bars {
		if v, ok := b.Field(name); ok {
			out[i] = v
		}
	}

	return out
}

// Dates extracts the bar dates.
func Dates(bars []Bar) []time.Time {
	out := make([]time.Time, len(bars))
	for i, b := range bars {
		out[i] = b.Date
	}

	return out
}

// ExtraKeys returns the sorted union of Extra column names across bars.
func ExtraKeys(bars []Bar) []string {
	seen := make(map[string]struct{})

	for _, b := range bars {
		for k := range b.Extra {
			seen[k] = struct{}{}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// HasField reports whether any bar carries the named column.
func HasField(bars []Bar, name string) bool {
	for _, b := range bars {
		if _, ok := b.Field(name); ok {
			return true
		}
	}

	return false
}
