package engine

import (
	"strconv"
	"strings"

	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
)

// ParseIndicatorList reads a comma separated list of indicator names such as
// "sma, RSI". "all" selects every indicator and an empty list selects none.
func ParseIndicatorList(raw string) ([]types.IndicatorType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if strings.EqualFold(raw, "all") {
		return append([]types.IndicatorType(nil), types.AllIndicatorTypes...), nil
	}

	parts := strings.Split(raw, ",")
	visible := make([]types.IndicatorType, 0, len(parts))

	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}

		name, ok := types.ParseIndicatorType(part)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", part)
		}

		visible = append(visible, name)
	}

	return visible, nil
}

// ParseParamList reads positional indicator parameters such as "20,2.5".
// Empty positions are nil so MergeParams keeps whatever was there before.
func ParseParamList(name types.IndicatorType, raw string) ([]any, error) {
	parts := strings.Split(raw, ",")
	values := make([]any, len(parts))

	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "invalid %s parameter %q", name, part)
		}

		values[i] = value
	}

	return values, nil
}

// MergeParams overlays the non-nil overrides onto base position by position.
func MergeParams(base, overrides []any) []any {
	merged := make([]any, max(len(base), len(overrides)))
	copy(merged, base)

	for i, value := range overrides {
		if value != nil {
			merged[i] = value
		}
	}

	return merged
}
