package engine

import (
	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// FilterByRange returns the bars selected by timeRange, preserving order.
//
// TimeRangeAll returns bars unchanged. TimeRangeModel keeps bars whose year lies in
// [types.ModelStartYear, types.ModelEndYear]; bars without a date are dropped.
// Unrecognised selectors behave like TimeRangeAll.
func FilterByRange(bars []types.Bar, timeRange types.TimeRange) []types.Bar {
	if timeRange != types.TimeRangeModel {
		return bars
	}

	filtered := make([]types.Bar, 0, len(bars))

	for _, bar := range bars {
		if bar.Date.IsZero() {
			continue
		}

		if y := bar.Date.Year(); y >= types.ModelStartYear && y <= types.ModelEndYear {
			filtered = append(filtered, bar)
		}
	}

	return filtered
}

// NormalizeRange maps unrecognised selectors to TimeRangeAll.
func NormalizeRange(timeRange types.TimeRange) types.TimeRange {
	if !timeRange.Known() {
		return types.TimeRangeAll
	}

	return timeRange
}
