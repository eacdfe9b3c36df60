package types

// TimeRange selects which bars a chart shows.
type TimeRange string

const (
	// TimeRangeAll shows every bar.
	TimeRangeAll TimeRange = "all"
	// TimeRangeModel shows bars from the model window, ModelStartYear through ModelEndYear.
	TimeRangeModel TimeRange = "model"
)

const (
	ModelStartYear = 2017
	ModelEndYear   = 2025
)

// AllTimeRanges lists the recognised selectors.
var AllTimeRanges = []TimeRange{TimeRangeAll, TimeRangeModel}

// Known reports whether r is a recognised selector.
func (r TimeRange) Known() bool {
	for _, known := range AllTimeRanges {
		if r == known {
			return true
		}
	}

	return false
}
