package engine

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"github.com/shopspring/decimal"
)

// Direction is the sign of the latest close-to-close change.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Summary is the dashboard header: the latest close and its change against the
// previous close, plus the latest bar's open, high, low and volume.
// Prices are rounded to 2 decimal places and volume to whole units.
type Summary struct {
	Date          time.Time           `json:"date"`
	Close         decimal.Decimal     `json:"close"`
	ChangeAmount  decimal.NullDecimal `json:"change_amount"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
	Direction     Direction           `json:"direction,omitempty"`
	Open          decimal.NullDecimal `json:"open"`
	High          decimal.NullDecimal `json:"high"`
	Low           decimal.NullDecimal `json:"low"`
	Volume        decimal.NullDecimal `json:"volume"`
}

// Summarize builds the Summary from the last bar with a defined close.
// The change fields are null when there is no earlier close, and the percent is
// also null when the earlier close is 0.
func Summarize(bars []types.Bar) (Summary, error) {
	latest := lastWithClose(bars, len(bars))
	if latest < 0 {
		return Summary{}, errors.New(errors.ErrCodeDatasetEmpty, "no bar with a close price")
	}

	bar := bars[latest]
	closePrice := decimal.NewFromFloat(bar.Close.Unwrap())

	summary := Summary{
		Date:   bar.Date,
		Close:  closePrice.Round(2),
		Open:   rounded(bar.Open, 2),
		High:   rounded(bar.High, 2),
		Low:    rounded(bar.Low, 2),
		Volume: rounded(bar.Volume, 0),
	}

	previous := lastWithClose(bars, latest)
	if previous < 0 {
		return summary, nil
	}

	prevClose := decimal.NewFromFloat(bars[previous].Close.Unwrap())
	change := closePrice.Sub(prevClose)

	summary.ChangeAmount = decimal.NewNullDecimal(change.Round(2))

	switch change.Sign() {
	case 1:
		summary.Direction = DirectionUp
	case -1:
		summary.Direction = DirectionDown
	default:
		summary.Direction = DirectionFlat
	}

	if !prevClose.IsZero() {
		summary.ChangePercent = decimal.NewNullDecimal(change.Div(prevClose).Mul(decimal.NewFromInt(100)).Round(2))
	}

	return summary, nil
}

// lastWithClose returns the index of the last bar before end with a defined close, or -1.
func lastWithClose(bars []types.Bar, end int) int {
	for i := end - 1; i >= 0; i-- {
		if bars[i].Close.IsSome() {
			return i
		}
	}

	return -1
}

func rounded(value optional.Option[float64], places int32) decimal.NullDecimal {
	if !value.IsSome() {
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(decimal.NewFromFloat(value.Unwrap()).Round(places))
}
