package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/ooscan/internal/report"
)

func duplicatesCmd() *cli.Command {
	return &cli.Command{
		Name:      "duplicates",
		Aliases:   []string{"dup"},
		Usage:     "Count normalized source lines that repeat across files",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "min-length",
				Usage: "Shortest trimmed line considered (default from config)",
			},
		},
		Action: runDuplicatesCmd,
	}
}

func runDuplicatesCmd(c *cli.Context) error {
	cfg := appConfig(c)
	if c.IsSet("min-length") {
		if c.Int("min-length") < 0 {
			return fmt.Errorf("--min-length must not be negative (got %d)", c.Int("min-length"))
		}
		cfg.Duplicates.MinLineLength = c.Int("min-length")
	}

	path, cleanup, err := resolvePath(c, 0)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := newService(c)
	scan, err := svc.Scan(path, c.String("rev"))
	if err != nil {
		return err
	}
	result, errs, err := svc.AnalyzeDuplicates(c.Context, scan)
	if err != nil {
		return fmt.Errorf("duplicate analysis failed: %w", err)
	}
	reportSkipped(c, errs)
	if result.DuplicateLines == 0 {
		color.New(color.FgGreen).Fprintln(c.App.ErrWriter, "No duplicate lines found")
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(report.DuplicatesView(result))
}
