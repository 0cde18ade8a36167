package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/lipgloss"
	"github.com/owenrumney/go-sarif/v3/pkg/report"
	sarif "github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/mica-lang/micals/internal/analysis"
	"github.com/mica-lang/micals/internal/config"
	"github.com/mica-lang/micals/internal/lang"
)

// fileResult is the per-file report of the check command.
type fileResult struct {
	File   string       `json:"file"`
	Issues []checkIssue `json:"issues"`
}

type checkIssue struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check Mica file(s) for parse, scope, and type errors",
		ArgsUsage: "[FILE|DIR...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, sarif",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a micals.toml config file",
			},
			&cli.StringFlag{
				Name:  "stdlib-root",
				Usage: "Directory of the Mica standard library sources",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Styled text output: on, off, auto",
				Value: "auto",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			if root := cmd.String("stdlib-root"); root != "" {
				cfg.StdlibRoot = root
			}

			args := cmd.Args().Slice()
			if len(args) == 0 {
				args = []string{"."}
			}
			files, err := collectMicaFiles(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no .mica files found")
			}

			store := analysis.NewStore(cfg.StdlibRoot, logrus.WithField("component", "check"))

			var results []fileResult
			for _, file := range files {
				url := analysis.URLFromPath(file)
				docCtx, err := store.DocumentContext(url)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", file, err)
				}
				container := docCtx.Program.ContainerFor(url.String())
				results = append(results, fileResult{
					File:   file,
					Issues: issuesFor(container, docCtx.Diagnostics),
				})
			}

			switch cmd.String("format") {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return fmt.Errorf("failed to encode JSON: %w", err)
				}
			case "sarif":
				if err := writeSarif(os.Stdout, results); err != nil {
					return fmt.Errorf("failed to write SARIF: %w", err)
				}
			default:
				printText(results, config.ColorEnabled(cmd.String("color")))
			}

			for _, result := range results {
				for _, issue := range result.Issues {
					if issue.Severity == "error" {
						os.Exit(1)
					}
				}
			}
			return nil
		},
	}
}

// collectMicaFiles expands file and directory arguments to a sorted list of
// .mica files. Directories are searched recursively.
func collectMicaFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(arg), "**/*.mica")
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", arg, err)
		}
		for _, m := range matches {
			files = append(files, filepath.Join(arg, filepath.FromSlash(m)))
		}
	}
	sort.Strings(files)
	return files, nil
}

// issuesFor converts the document's diagnostics to report entries with
// 1-based line/column positions.
func issuesFor(container *lang.SourceContainer, diags []lang.Diagnostic) []checkIssue {
	issues := make([]checkIssue, 0, len(diags))
	for _, d := range diags {
		issue := checkIssue{
			Severity: severityName(d.Severity),
			Code:     d.Code,
			Message:  d.Message,
		}
		if container != nil {
			pos := container.PositionFor(d.Span.Start)
			issue.Line, issue.Column = pos.Line, pos.Column
		}
		issues = append(issues, issue)
	}
	return issues
}

func severityName(sev lang.Severity) string {
	if sev == lang.SeverityWarning {
		return "warning"
	}
	return "error"
}

// checkStyles holds the lipgloss styles of the text formatter. The zero
// styles render plain text, for CI logs and piped output.
type checkStyles struct {
	file, err, warn, code lipgloss.Style
}

func newCheckStyles(colored bool) checkStyles {
	if !colored {
		return checkStyles{}
	}
	return checkStyles{
		file: lipgloss.NewStyle().Bold(true),
		err:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warn: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		code: lipgloss.NewStyle().Faint(true),
	}
}

func printText(results []fileResult, colored bool) {
	styles := newCheckStyles(colored)
	for _, result := range results {
		for _, issue := range result.Issues {
			sev := styles.warn.Render(issue.Severity)
			if issue.Severity == "error" {
				sev = styles.err.Render(issue.Severity)
			}
			fmt.Printf("%s:%d:%d: %s: %s %s\n",
				styles.file.Render(result.File), issue.Line, issue.Column,
				sev, issue.Message, styles.code.Render("("+issue.Code+")"))
		}
	}
}

// writeSarif emits the results as a SARIF 2.1.0 report.
func writeSarif(w *os.File, results []fileResult) error {
	run := sarif.NewRunWithInformationURI("micals", "https://github.com/mica-lang/micals")
	for _, result := range results {
		for _, issue := range result.Issues {
			level := "error"
			if issue.Severity == "warning" {
				level = "warning"
			}
			run.CreateResultForRule(issue.Code).
				WithLevel(level).
				WithMessage(sarif.NewTextMessage(issue.Message)).
				AddLocation(sarif.NewLocationWithPhysicalLocation(
					sarif.NewPhysicalLocation().
						WithArtifactLocation(sarif.NewSimpleArtifactLocation(filepath.ToSlash(result.File))).
						WithRegion(sarif.NewSimpleRegion(issue.Line, issue.Line).
							WithStartColumn(issue.Column))))
		}
	}
	rep := report.NewV210Report()
	rep.AddRun(run)
	return rep.PrettyWrite(w)
}
