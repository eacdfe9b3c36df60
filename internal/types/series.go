package types

import (
	"math"

	"github.com/moznion/go-optional"
)

// Series is an ordered sequence of nullable reals, index-aligned to a bar sequence.
// A None element marks a position where the value is undefined.
type Series []optional.Option[float64]

// NewSeries returns a series of n undefined values.
func NewSeries(n int) Series {
	return make(Series, n)
}

// SeriesOf builds a fully defined series from plain values.
func SeriesOf(values ...float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = optional.Some(v)
	}

	return s
}

// Finite wraps v, mapping NaN and ±Inf to None.
func Finite(v float64) optional.Option[float64] {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return optional.None[float64]()
	}

	return optional.Some(v)
}

// At returns the value at i and whether it is defined.
// Out-of-range indexes are reported as undefined.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s) || s[i].IsNone() {
		return 0, false
	}

	return s[i].Unwrap(), true
}

// Defined counts the defined positions.
func (s Series) Defined() int {
	n := 0

	for _, v := range s {
		if v.IsSome() {
			n++
		}
	}

	return n
}

// Last returns the value at the final position, which may be None.
func (s Series) Last() optional.Option[float64] {
	if len(s) == 0 {
		return optional.None[float64]()
	}

	return s[len(s)-1]
}

// Floats converts the series to plain floats, writing NaN for undefined positions.
func (s Series) Floats() []float64 {
	out := make([]float64, len(s))

	for i, v := range s {
		if v.IsNone() {
			out[i] = math.NaN()

			continue
		}

		out[i] = v.Unwrap()
	}

	return out
}

// Clone returns a copy that shares no storage with s.
func (s Series) Clone() Series {
	out := make(Series, len(s))

	for i, v := range s {
		if v.IsSome() {
			out[i] = optional.Some(v.Unwrap())
		}
	}

	return out
}
