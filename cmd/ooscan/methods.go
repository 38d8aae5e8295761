package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/ooscan/internal/output"
	"github.com/panbanda/ooscan/internal/report"
)

func methodsCmd() *cli.Command {
	return &cli.Command{
		Name:      "methods",
		Aliases:   []string{"m"},
		Usage:     "List methods with size, complexity and parameter count",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sort",
				Value: "complexity",
				Usage: "Sort by: complexity, loc, params",
			},
		},
		Action: runMethodsCmd,
	}
}

func runMethodsCmd(c *cli.Context) error {
	sortKey, err := parseMethodSort(c.String("sort"))
	if err != nil {
		return err
	}

	model, err := analyzeModel(c)
	if err != nil {
		return err
	}
	model.SortMethodsBy(sortKey)

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	s := model.Summary
	table := report.MethodTable(model.Methods, topN(c))
	table.Footer = []string{
		fmt.Sprintf("%d methods, %d free functions", s.TotalMethods, s.TotalFreeFunctions),
		"mean / median",
		output.Float(s.MeanMethodSize) + " / " + output.Float(s.MedianMethodSize),
		output.Float(s.MeanMethodComplexity) + " / " + output.Float(s.MedianMethodComplexity),
		"",
	}
	return formatter.Output(table)
}
