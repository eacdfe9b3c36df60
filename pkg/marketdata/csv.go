package marketdata

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dashboard/internal/logger"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"go.uber.org/zap"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
}

// CSVLoader reads bars from a CSV file with a header row.
type CSVLoader struct {
	path string
	log  *logger.Logger
}

// NewCSVLoader creates a loader for the CSV file at path.
func NewCSVLoader(path string, log *logger.Logger) *CSVLoader {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &CSVLoader{path: path, log: log}
}

// Source implements Loader.
func (l *CSVLoader) Source() string {
	return l.path
}

// Load implements Loader.
func (l *CSVLoader) Load(ctx context.Context) ([]types.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataLoadFailed, err, "failed to open %s", l.path)
	}
	defer f.Close()

	bars, skipped, err := ParseCSV(f)
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		l.log.Debug("Dropped CSV rows without a parseable date",
			zap.String("path", l.path),
			zap.Int("skipped", skipped),
		)
	}

	if len(bars) == 0 {
		return nil, errors.NewInsufficientDataErrorf(1, 0, l.path, "no bars found in %s", l.path)
	}

	l.log.Info("Loaded bars from CSV", zap.String("path", l.path), zap.Int("bars", len(bars)))

	return bars, nil
}

// ParseCSV decodes bars from CSV. The header must contain a date column.
// open/high/low/close/volume are matched case-insensitively and every other
// column holding at least one number is kept in Bar.Extra. Empty, null and NaN
// cells become None. Rows whose date cannot be parsed are dropped and counted.
// The result is sorted by date.
func ParseCSV(r io.Reader) (bars []types.Bar, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to read CSV", err)
	}

	if len(records) == 0 {
		return nil, 0, errors.New(errors.ErrCodeMarketDataParseFailed, "CSV has no header row")
	}

	header := records[0]
	dateIdx := -1
	fields := make([]string, len(header))

	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		lower := strings.ToLower(name)

		switch types.BarField(lower) {
		case types.BarFieldOpen, types.BarFieldHigh, types.BarFieldLow, types.BarFieldClose, types.BarFieldVolume:
			fields[i] = lower
		default:
			if lower == "date" && dateIdx < 0 {
				dateIdx = i
			} else {
				fields[i] = name
			}
		}
	}

	if dateIdx < 0 {
		return nil, 0, errors.New(errors.ErrCodeMarketDataParseFailed, "CSV header has no date column")
	}

	rows := records[1:]
	numeric := numericColumns(rows, fields, dateIdx)

	bars = make([]types.Bar, 0, len(rows))

	for _, row := range rows {
		if dateIdx >= len(row) {
			skipped++

			continue
		}

		date, ok := parseDate(row[dateIdx])
		if !ok {
			skipped++

			continue
		}

		bar := types.Bar{Date: date}

		for i, name := range fields {
			if i == dateIdx || name == "" {
				continue
			}

			v := optional.None[float64]()
			if i < len(row) {
				v = parseCell(row[i])
			}

			switch types.BarField(name) {
			case types.BarFieldOpen:
				bar.Open = v
			case types.BarFieldHigh:
				bar.High = v
			case types.BarFieldLow:
				bar.Low = v
			case types.BarFieldClose:
				bar.Close = v
			case types.BarFieldVolume:
				bar.Volume = v
			default:
				if !numeric[i] {
					continue
				}

				if bar.Extra == nil {
					bar.Extra = make(map[string]optional.Option[float64])
				}

				bar.Extra[name] = v
			}
		}

		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	return bars, skipped, nil
}

// numericColumns marks the columns with at least one cell that parses as a number.
func numericColumns(rows [][]string, fields []string, dateIdx int) []bool {
	numeric := make([]bool, len(fields))

	for _, row := range rows {
		for i := range fields {
			if i == dateIdx || numeric[i] || i >= len(row) {
				continue
			}

			if parseCell(row[i]).IsSome() {
				numeric[i] = true
			}
		}
	}

	return numeric
}

func parseCell(cell string) optional.Option[float64] {
	cell = strings.TrimSpace(cell)

	switch strings.ToLower(cell) {
	case "", "null", "nan", "na", "n/a", "none":
		return optional.None[float64]()
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
	if err != nil {
		return optional.None[float64]()
	}

	return types.Finite(v)
}

func parseDate(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
