package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-dashboard/internal/config"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
	"github.com/rxtech-lab/argo-dashboard/pkg/marketdata"
)

func outFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Write the schema to `FILE` instead of stdout",
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print JSON schemas for editor completion",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Schema of the dashboard config file",
				Flags: []cli.Flag{outFlag()},
				Action: func(_ context.Context, cmd *cli.Command) error {
					out, err := config.GenerateSchema()
					if err != nil {
						return err
					}

					return writeSchema(cmd, out)
				},
			},
			{
				Name:  "download",
				Usage: "Schema of a download request file",
				Flags: []cli.Flag{
					outFlag(),
					&cli.StringFlag{
						Name:  "provider",
						Usage: fmt.Sprintf("Market data provider (%v)", marketdata.GetSupportedProviders()),
						Value: string(marketdata.ProviderPolygon),
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					out, err := marketdata.GetDownloadConfigSchema(cmd.String("provider"))
					if err != nil {
						return err
					}

					return writeSchema(cmd, out)
				},
			},
		},
	}
}

func writeSchema(cmd *cli.Command, schemaJSON string) error {
	path := cmd.String("out")
	if path == "" {
		fmt.Fprintln(cmd.Root().Writer, schemaJSON)

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(errors.ErrCodeConfigSchemaFailure, err, "create directory for %s", path)
	}

	if err := os.WriteFile(path, []byte(schemaJSON), 0o644); err != nil {
		return errors.Wrapf(errors.ErrCodeConfigSchemaFailure, err, "write schema %s", path)
	}

	return nil
}
