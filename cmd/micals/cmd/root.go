package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mica-lang/micals/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "micals",
		Usage:   "Language server and checker for Mica",
		Version: version.Version(),
		Description: `micals is the language tooling for Mica source files.

It runs as an LSP server over stdio for editor integration, and checks
files for parse, scope, and type errors from the command line.

Examples:
  micals lsp --stdio
  micals check main.mica
  micals check --format sarif .`,
		Commands: []*cli.Command{
			checkCommand(),
			lspCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}
