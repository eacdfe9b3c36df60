package marketdata

import (
	"sort"

	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
)

// Timespan is a download interval such as "1d" or "15m".
type Timespan string

const (
	TimespanOneSecond      Timespan = "1s"
	TimespanOneMinute      Timespan = "1m"
	TimespanThreeMinutes   Timespan = "3m"
	TimespanFiveMinutes    Timespan = "5m"
	TimespanFifteenMinutes Timespan = "15m"
	TimespanThirtyMinutes  Timespan = "30m"
	TimespanOneHour        Timespan = "1h"
	TimespanTwoHours       Timespan = "2h"
	TimespanFourHours      Timespan = "4h"
	TimespanSixHours       Timespan = "6h"
	TimespanEightHours     Timespan = "8h"
	TimespanTwelveHours    Timespan = "12h"
	TimespanOneDay         Timespan = "1d"
	TimespanThreeDays      Timespan = "3d"
	TimespanOneWeek        Timespan = "1w"
	TimespanOneMonth       Timespan = "1M"
)

type aggregateSize struct {
	multiplier int
	unit       models.Timespan
}

var timespans = map[Timespan]aggregateSize{
	TimespanOneSecond:      {1, models.Second},
	TimespanOneMinute:      {1, models.Minute},
	TimespanThreeMinutes:   {3, models.Minute},
	TimespanFiveMinutes:    {5, models.Minute},
	TimespanFifteenMinutes: {15, models.Minute},
	TimespanThirtyMinutes:  {30, models.Minute},
	TimespanOneHour:        {1, models.Hour},
	TimespanTwoHours:       {2, models.Hour},
	TimespanFourHours:      {4, models.Hour},
	TimespanSixHours:       {6, models.Hour},
	TimespanEightHours:     {8, models.Hour},
	TimespanTwelveHours:    {12, models.Hour},
	TimespanOneDay:         {1, models.Day},
	TimespanThreeDays:      {3, models.Day},
	TimespanOneWeek:        {1, models.Week},
	TimespanOneMonth:       {1, models.Month},
}

// ParseTimespan validates an interval string.
func ParseTimespan(value string) (Timespan, error) {
	t := Timespan(value)
	if _, ok := timespans[t]; !ok {
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported interval %q", value)
	}

	return t, nil
}

// SupportedTimespans lists every known interval, sorted.
func SupportedTimespans() []Timespan {
	out := make([]Timespan, 0, len(timespans))
	for t := range timespans {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Multiplier is the aggregate count per bar. Unknown intervals give 1.
func (t Timespan) Multiplier() int {
	if size, ok := timespans[t]; ok {
		return size.multiplier
	}

	return 1
}

// Timespan is the polygon aggregate unit. Unknown intervals give a day.
func (t Timespan) Timespan() models.Timespan {
	if size, ok := timespans[t]; ok {
		return size.unit
	}

	return models.Day
}
