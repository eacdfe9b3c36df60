package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// StdDev returns the population standard deviation over a trailing window of
// exactly period samples. None inputs are counted as 0 rather than skipped,
// which is inexact for windows containing gaps. Callers that need gap-aware
// output must mask with a null-aware series such as ComputeSMA.
func StdDev(values types.Series, period int) types.Series {
	out := types.NewSeries(len(values))
	if period <= 0 {
		return out
	}

	for i := period - 1; i < len(values); i++ {
		mean := 0.0
		for j := i - period + 1; j <= i; j++ {
			mean += values[j].TakeOr(0)
		}

		mean /= float64(period)

		sum := 0.0

		for j := i - period + 1; j <= i; j++ {
			diff := values[j].TakeOr(0) - mean
			sum += diff * diff
		}

		out[i] = optional.Some(math.Sqrt(sum / float64(period)))
	}

	return out
}
