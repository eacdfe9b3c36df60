package main

import (
	"context"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-dashboard/internal/app"
	"github.com/rxtech-lab/argo-dashboard/internal/config"
	"github.com/rxtech-lab/argo-dashboard/internal/logger"
	"github.com/rxtech-lab/argo-dashboard/internal/version"
)

func main() {
	cmd := &cli.Command{
		Name:    "chart",
		Usage:   "Browse the dashboard indicators in the terminal",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config `FILE`",
				Sources: cli.EnvVars("DASHBOARD_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "Write logs to `FILE`; the terminal belongs to the viewer",
			},
		},
		Action: runChart,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func runChart(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	lg := logger.NewNopLogger()
	if path := cmd.String("log"); path != "" {
		lg, err = logger.NewLoggerWithOutput(logger.ParseLevel(cfg.LogLevel), path)
		if err != nil {
			return err
		}
	}
	defer func() { _ = lg.Sync() }()

	a, err := app.New(cfg, lg)
	if err != nil {
		return err
	}

	model := NewModel(cfg.Symbol, a.Engine, a.Load, a.Engine.Indicators(), cfg.IndicatorParams())

	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	return err
}
