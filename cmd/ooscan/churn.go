package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/ooscan/internal/report"
	"github.com/panbanda/ooscan/internal/service/analysis"
)

func churnCmd() *cli.Command {
	return &cli.Command{
		Name:      "churn",
		Usage:     "Summarize git history and per-file churn",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "days",
				Usage: "Length of the recent activity window (default from config)",
			},
		},
		Action: runChurnCmd,
	}
}

func runChurnCmd(c *cli.Context) error {
	days := c.Int("days")
	if c.IsSet("days") && days <= 0 {
		return fmt.Errorf("--days must be a positive integer (got %d)", days)
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
	fail, done := startSpinner(c, "Walking history")
	result, err := svc.AnalyzeChurn(c.Context, scan, analysis.ChurnOptions{RecentDays: days})
	if err != nil {
		fail(err)
		return fmt.Errorf("churn analysis failed: %w", err)
	}
	done()

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(report.ChurnView(result, topN(c)))
}
