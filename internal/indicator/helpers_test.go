package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// null marks an expected None position in assertSeries.
var null = math.NaN()

func assertSeries(t *testing.T, want []float64, got types.Series) {
	t.Helper()
	require.Len(t, got, len(want))

	for i, w := range want {
		if math.IsNaN(w) {
			assert.Truef(t, got[i].IsNone(), "index %d: want None, got %v", i, got[i])

			continue
		}

		v, ok := got.At(i)
		if assert.Truef(t, ok, "index %d: want %v, got None", i, w) {
			assert.InDeltaf(t, w, v, 1e-9, "index %d", i)
		}
	}
}

// series builds a Series from floats, mapping NaN to None.
func series(values ...float64) types.Series {
	out := types.NewSeries(len(values))

	for i, v := range values {
		if !math.IsNaN(v) {
			out[i] = optional.Some(v)
		}
	}

	return out
}

// syntheticBars produces n deterministic daily bars with a trending, oscillating close.
func syntheticBars(n int) []types.Bar {
	start := time.Date(2016, 6, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, n)

	for i := range bars {
		x := float64(i)
		closePrice := 100 + 10*math.Sin(x/5) + 0.1*x
		bars[i] = types.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   optional.Some(closePrice - 0.5),
			High:   optional.Some(closePrice + 1 + math.Abs(math.Sin(x))),
			Low:    optional.Some(closePrice - 1 - math.Abs(math.Cos(x))),
			Close:  optional.Some(closePrice),
			Volume: optional.Some(1000 + 10*x),
		}
	}

	return bars
}

// flatBars produces n bars whose open, high, low and close all equal price.
func flatBars(n int, price float64) []types.Bar {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, n)

	for i := range bars {
		bars[i] = types.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   optional.Some(price),
			High:   optional.Some(price),
			Low:    optional.Some(price),
			Close:  optional.Some(price),
			Volume: optional.Some(100.0),
		}
	}

	return bars
}

// closeBars builds bars carrying only closes.
func closeBars(closes types.Series) []types.Bar {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))

	for i, c := range closes {
		bars[i] = types.Bar{Date: start.AddDate(0, 0, i), Close: c}
	}

	return bars
}
