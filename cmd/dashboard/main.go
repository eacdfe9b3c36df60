package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-dashboard/internal/config"
	"github.com/rxtech-lab/argo-dashboard/internal/logger"
	"github.com/rxtech-lab/argo-dashboard/internal/version"
)

// loadConfig reads the file named by --config, or the defaults when it is unset.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.Load(cmd.String("config"))
}

// newLogger builds the command logger. Commands that print results to stdout
// log to stderr so their output stays machine readable.
func newLogger(cfg *config.Config, output string) (*logger.Logger, error) {
	return logger.NewLoggerWithOutput(logger.ParseLevel(cfg.LogLevel), output)
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "dashboard",
		Usage:   "Indicator engine and API for a single-symbol price dashboard",
		Version: version.Version,
		// indicator parameters are comma separated themselves
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config `FILE`",
				Sources: cli.EnvVars("DASHBOARD_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			computeCommand(),
			serveCommand(),
			downloadCommand(),
			schemaCommand(),
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
