package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/mica-lang/micals/internal/config"
	"github.com/mica-lang/micals/internal/lspserver"
)

func lspCommand() *cli.Command {
	return &cli.Command{
		Name:  "lsp",
		Usage: "Start the language server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stdio",
				Usage: "Communicate over stdin/stdout",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a micals.toml config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level for stderr: panic, fatal, error, warning, info, debug, trace",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if !cmd.Bool("stdio") {
				return fmt.Errorf("only the stdio transport is supported")
			}

			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			if lvl := cmd.String("log-level"); lvl != "" {
				cfg.LogLevel = lvl
			}

			level, err := logrus.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
			}
			logrus.SetLevel(level)
			// Stdout carries the protocol; all logging goes to stderr.
			logrus.SetOutput(os.Stderr)

			return lspserver.New(cfg).RunStdio(ctx)
		},
	}
}
