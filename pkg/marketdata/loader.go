package marketdata

import (
	"context"

	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// Loader produces the full bar history for the dashboard symbol.
// Implementations return bars sorted by date.
type Loader interface {
	// Load reads every available bar.
	Load(ctx context.Context) ([]types.Bar, error)
	// Source describes where the bars come from, e.g. a file path or provider name.
	Source() string
}
