package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-dashboard/internal/app"
	"github.com/rxtech-lab/argo-dashboard/internal/engine"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

func computeCommand() *cli.Command {
	return &cli.Command{
		Name:  "compute",
		Usage: "Load the dataset once and print the chart traces",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "range",
				Aliases: []string{"r"},
				Usage:   fmt.Sprintf("Time range (%s or %s)", types.TimeRangeAll, types.TimeRangeModel),
				Value:   string(types.TimeRangeAll),
			},
			&cli.StringFlag{
				Name:    "indicators",
				Aliases: []string{"i"},
				Usage:   "Comma separated indicators to draw, or all (e.g. sma,rsi)",
			},
			&cli.StringSliceFlag{
				Name:    "param",
				Aliases: []string{"p"},
				Usage:   "Indicator parameter override `NAME=VALUES`, repeatable (e.g. bollinger_bands=20,2.5)",
			},
			&cli.StringFlag{
				Name:  "feature",
				Usage: "Render the overlay chart of close against this extra column instead",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   fmt.Sprintf("Output format (%s or %s)", formatJSON, formatTable),
				Value:   formatJSON,
			},
			&cli.IntFlag{
				Name:  "rows",
				Usage: "Number of most recent rows printed by the table format (0 prints all)",
				Value: 20,
			},
		},
		Action: computeAction,
	}
}

func computeAction(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if format != formatJSON && format != formatTable {
		return errors.Newf(errors.ErrCodeInvalidParameter, "unsupported format %q", format)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, "stderr")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}

	snapshot, err := a.Load(ctx)
	if err != nil {
		return err
	}

	var chart engine.ChartData

	timeRange := types.TimeRange(cmd.String("range"))

	if key := cmd.String("feature"); key != "" {
		chart, err = a.Engine.Feature(snapshot, timeRange, key)
	} else {
		var req engine.RenderRequest

		req, err = renderRequest(timeRange, cmd.String("indicators"), cmd.StringSlice("param"), cfg.IndicatorParams())
		if err != nil {
			return err
		}

		chart, err = a.Engine.Render(snapshot, req)
	}

	if err != nil {
		return err
	}

	w := cmd.Root().Writer

	if format == formatJSON {
		return writeChartJSON(w, chart)
	}

	if summary, err := engine.Summarize(snapshot.Bars); err == nil {
		fmt.Fprintln(w, formatSummary(cfg.Symbol, summary))
	}

	fmt.Fprintln(w, renderTable(chart, int(cmd.Int("rows"))))

	return nil
}

// renderRequest builds the engine request from CLI flags on top of the configured defaults.
func renderRequest(timeRange types.TimeRange, indicators string, overrides []string, defaults map[types.IndicatorType][]any) (engine.RenderRequest, error) {
	visible, err := engine.ParseIndicatorList(indicators)
	if err != nil {
		return engine.RenderRequest{}, err
	}

	params := make(map[types.IndicatorType][]any, len(defaults))
	for name, values := range defaults {
		params[name] = values
	}

	for _, override := range overrides {
		rawName, rawValues, ok := strings.Cut(override, "=")
		if !ok {
			return engine.RenderRequest{}, errors.Newf(errors.ErrCodeInvalidParameter, "parameter override %q must look like name=values", override)
		}

		name, ok := types.ParseIndicatorType(strings.ToLower(strings.TrimSpace(rawName)))
		if !ok {
			return engine.RenderRequest{}, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", rawName)
		}

		values, err := engine.ParseParamList(name, rawValues)
		if err != nil {
			return engine.RenderRequest{}, err
		}

		params[name] = engine.MergeParams(params[name], values)
	}

	return engine.RenderRequest{
		TimeRange: timeRange,
		Visible:   visible,
		Params:    params,
	}, nil
}

func writeChartJSON(w io.Writer, chart engine.ChartData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(chart)
}
