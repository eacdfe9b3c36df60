package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"github.com/rxtech-lab/argo-dashboard/pkg/marketdata"
)

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download historical bars from Polygon.io into a parquet file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "ticker",
				Aliases: []string{"t"},
				Usage:   "Stock ticker symbol, defaults to the configured symbol",
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format, defaults to data_source.start_date",
				Config: cli.TimestampConfig{
					Layouts: []string{time.DateOnly},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{time.DateOnly},
				},
			},
			&cli.StringFlag{
				Name:  "interval",
				Usage: fmt.Sprintf("Bar interval, one of %v", marketdata.SupportedTimespans()),
				Value: string(marketdata.TimespanOneDay),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
			&cli.StringFlag{
				Name:  "request",
				Usage: "JSON `FILE` with a complete polygon download request; replaces the other flags",
			},
		},
		Action: downloadAction,
	}
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, "stderr")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	request, err := downloadRequest(cmd, cfg.Symbol, cfg.PolygonStartDate(), cfg.DataSource.PolygonAPIKey)
	if err != nil {
		return err
	}

	params, err := request.ToDownloadParams()
	if err != nil {
		return err
	}

	client, err := marketdata.NewClient(request.ToClientConfig(cmd.String("data")), nil, log)
	if err != nil {
		return err
	}

	log.Info("Starting download",
		zap.String("ticker", params.Ticker),
		zap.Time("start", params.StartDate),
		zap.Time("end", params.EndDate),
		zap.String("interval", request.Interval),
	)

	path, err := client.Download(ctx, params)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, path)

	return nil
}

// downloadRequest builds a validated polygon request either from --request or from flags.
func downloadRequest(cmd *cli.Command, symbol string, defaultStart time.Time, apiKey string) (*marketdata.PolygonDownloadConfig, error) {
	if path := cmd.String("request"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeConfigReadFailed, err, "read download request %s", path)
		}

		parsed, err := marketdata.ParseDownloadConfig(string(marketdata.ProviderPolygon), string(data))
		if err != nil {
			return nil, err
		}

		request, ok := parsed.(*marketdata.PolygonDownloadConfig)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unexpected download request type %T", parsed)
		}

		return request, nil
	}

	ticker := cmd.String("ticker")
	if ticker == "" {
		ticker = symbol
	}

	start := cmd.Timestamp("start")
	if start.IsZero() {
		start = defaultStart
	}

	request := &marketdata.PolygonDownloadConfig{
		BaseDownloadConfig: marketdata.BaseDownloadConfig{
			Ticker:    ticker,
			StartDate: start.Format(time.DateOnly),
			EndDate:   cmd.Timestamp("end").Format(time.DateOnly),
			Interval:  cmd.String("interval"),
		},
		ApiKey: apiKey,
	}

	if err := request.Validate(); err != nil {
		return nil, err
	}

	return request, nil
}
