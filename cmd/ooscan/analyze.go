package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/ooscan/internal/service/analysis"
	"github.com/panbanda/ooscan/pkg/analyzer/cohesion"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Run every analysis and print the full repository report",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sort",
				Value: string(cohesion.SortByWMC),
				Usage: "Sort classes by: wmc, cbo, rfc, lcom, dit, noc, fan_in, name",
			},
			&cli.StringFlag{
				Name:  "method-sort",
				Value: "complexity",
				Usage: "Sort methods by: complexity, loc, params",
			},
		},
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	sortKey, err := parseSort(c.String("sort"))
	if err != nil {
		return err
	}
	methodSort, err := parseMethodSort(c.String("method-sort"))
	if err != nil {
		return err
	}

	path, cleanup, err := resolvePath(c, 0)
	if err != nil {
		return err
	}
	defer cleanup()

	onProgress, done := startProgress(c, "Analyzing")
	r, err := newService(c).Analyze(c.Context, path, analysis.RunOptions{
		Revision:   c.String("rev"),
		Sort:       sortKey,
		MethodSort: methodSort,
		TopN:       topN(c),
		OnProgress: onProgress,
	})
	done()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	warnSkipped(c, r.Skipped)

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(r)
}

func parseSort(s string) (cohesion.SortKey, error) {
	key, ok := cohesion.ParseSortKey(s)
	if !ok {
		return "", fmt.Errorf("unknown sort key %q (want one of %v)", s, cohesion.SortKeys)
	}
	return key, nil
}

func parseMethodSort(s string) (string, error) {
	switch s {
	case "complexity", "loc", "params":
		return s, nil
	}
	return "", fmt.Errorf("unknown method sort key %q (want complexity, loc or params)", s)
}
