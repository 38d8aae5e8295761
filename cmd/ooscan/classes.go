package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/ooscan/internal/output"
	"github.com/panbanda/ooscan/internal/report"
	"github.com/panbanda/ooscan/internal/service/analysis"
	"github.com/panbanda/ooscan/pkg/analyzer/cohesion"
)

func classesCmd() *cli.Command {
	return &cli.Command{
		Name:      "classes",
		Aliases:   []string{"ck"},
		Usage:     "List classes with DIT, NOC, WMC, RFC, LCOM, CBO and fan-in",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sort",
				Value: string(cohesion.SortByWMC),
				Usage: "Sort by: wmc, cbo, rfc, lcom, dit, noc, fan_in, name",
			},
		},
		Action: runClassesCmd,
	}
}

func runClassesCmd(c *cli.Context) error {
	sortKey, err := parseSort(c.String("sort"))
	if err != nil {
		return err
	}

	model, err := analyzeModel(c)
	if err != nil {
		return err
	}
	model.SortBy(sortKey)

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	cfg := appConfig(c)
	table := report.ClassTable(report.Classes(model.Declarations), cfg.Thresholds, topN(c), formatter.Colored())
	table.Footer = []string{
		fmt.Sprintf("%d classes", model.Summary.TotalDeclarations),
		"",
		fmt.Sprintf("low cohesion: %d", model.Summary.LowCohesionCount),
		output.Float(model.Summary.AvgWMC),
		output.Float(model.Summary.AvgRFC),
		output.Float(model.Summary.AvgLCOM),
		output.Float(model.Summary.AvgCBO),
		"",
		fmt.Sprintf("max %d", model.Summary.MaxDIT),
		"",
	}
	return formatter.Output(table)
}

// analyzeModel scans the path argument and builds the structural model,
// drawing progress and warning about skipped files.
func analyzeModel(c *cli.Context) (*cohesion.Analysis, error) {
	path, cleanup, err := resolvePath(c, 0)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	svc := newService(c)
	scan, err := svc.Scan(path, c.String("rev"))
	if err != nil {
		return nil, err
	}

	onProgress, done := startProgress(c, "Analyzing classes")
	model, errs, err := svc.AnalyzeClasses(c.Context, scan, analysis.ClassOptions{OnProgress: onProgress})
	done()
	if err != nil {
		return nil, fmt.Errorf("class analysis failed: %w", err)
	}
	reportSkipped(c, errs)
	return model, nil
}
