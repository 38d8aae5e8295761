package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/ooscan/internal/output"
	"github.com/panbanda/ooscan/internal/report"
	"github.com/panbanda/ooscan/internal/service/analysis"
	"github.com/panbanda/ooscan/pkg/config"
)

func classCmd() *cli.Command {
	return &cli.Command{
		Name:      "class",
		Usage:     "Show one class: metrics, methods, dependents and its test file",
		ArgsUsage: "<name> [path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "File declaring the class, when several classes share the name",
			},
		},
		Action: runClassCmd,
	}
}

func runClassCmd(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return errors.New("class name is required")
	}

	path, cleanup, err := resolvePath(c, 1)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := newService(c)
	scan, err := svc.Scan(path, c.String("rev"))
	if err != nil {
		return err
	}
	result, err := svc.FocusClass(c.Context, scan, analysis.FocusOptions{Name: name, Path: c.String("file")})
	if errors.Is(err, analysis.ErrAmbiguousClass) {
		locations := make([]string, len(result.Candidates))
		for i, cand := range result.Candidates {
			locations[i] = fmt.Sprintf("%s:%d", cand.Path, cand.StartLine)
		}
		return fmt.Errorf("%w: %s declared in %s (use --file)", err, name, strings.Join(locations, ", "))
	}
	if err != nil {
		return fmt.Errorf("%w: %s", err, name)
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(focusView(result, formatter.Colored(), appConfig(c).Thresholds))
}

func focusView(r *analysis.FocusResult, colored bool, th config.ThresholdConfig) *output.Report {
	cls := r.Class
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("%-13s %s", label+":", value))
		}
	}
	add("Kind", cls.Kind)
	add("Location", fmt.Sprintf("%s:%d-%d", cls.Path, cls.StartLine, cls.EndLine))
	add("Namespace", cls.Namespace)
	add("Base", cls.BaseClass)
	add("Interfaces", strings.Join(cls.Interfaces, ", "))
	add("Fields", strings.Join(cls.Fields, ", "))
	add("Coupled to", strings.Join(cls.FanOutClasses, ", "))
	add("Used by", strings.Join(r.CoupledFrom, ", "))
	add("Subclasses", strings.Join(r.Subclasses, ", "))
	add("Test file", r.RelatedTest)

	doc := &output.Report{
		Title: cls.Name,
		Data:  r,
		Sections: []output.Renderable{
			&output.Section{Title: "Declaration", Content: strings.Join(lines, "\n")},
			report.ClassTable([]report.Class{*cls}, th, 0, colored),
			report.MethodTable(r.Methods, 0),
		},
	}
	return doc
}
