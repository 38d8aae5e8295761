package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/ooscan/internal/fileproc"
	"github.com/panbanda/ooscan/internal/output"
	"github.com/panbanda/ooscan/internal/progress"
	"github.com/panbanda/ooscan/internal/remote"
	"github.com/panbanda/ooscan/internal/service/analysis"
	"github.com/panbanda/ooscan/pkg/analyzer"
	"github.com/panbanda/ooscan/pkg/config"
)

// getPath returns the directory argument at index i, defaulting to ".".
func getPath(c *cli.Context, i int) string {
	if c.Args().Len() > i {
		return c.Args().Get(i)
	}
	return "."
}

// resolvePath returns the path argument at index i. A remote reference such as
// owner/repo@ref is cloned to a temporary directory first; the returned
// function removes it.
func resolvePath(c *cli.Context, i int) (string, func(), error) {
	path := getPath(c, i)
	src, err := remote.Parse(path)
	if err != nil || src == nil {
		return path, func() {}, err
	}

	color.New(color.FgCyan).Fprintf(c.App.ErrWriter, "Cloning %s...\n", src.URL)
	var transport io.Writer = io.Discard
	if appConfig(c).Output.Verbose {
		transport = c.App.ErrWriter
	}
	fail, done := startSpinner(c, "clone")
	if err := src.Clone(c.Context, transport, c.Bool("shallow")); err != nil {
		fail(err)
		return "", nil, err
	}
	done()
	return src.CloneDir, src.Cleanup, nil
}

// appConfig returns the configuration loaded by the app's Before hook.
func appConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func newService(c *cli.Context) *analysis.Service {
	return analysis.New(analysis.WithConfig(appConfig(c)), analysis.WithVersion(version))
}

func newFormatter(c *cli.Context) (*output.Formatter, error) {
	cfg := appConfig(c)
	return output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.String("output"), cfg.Output.Color)
}

// topN returns the configured table size, 0 meaning every row.
func topN(c *cli.Context) int {
	return appConfig(c).Analysis.TopN
}

// quiet reports whether machine-readable output goes to stdout, in which case
// no progress is drawn.
func quiet(c *cli.Context) bool {
	switch output.ParseFormat(appConfig(c).Output.Format) {
	case output.FormatJSON, output.FormatTOON:
		return c.String("output") == ""
	}
	return false
}

// startSpinner draws a spinner for a step of unknown length. fail clears it
// with an error line; done clears it silently.
func startSpinner(c *cli.Context, label string) (fail func(error), done func()) {
	if quiet(c) {
		return func(error) {}, func() {}
	}
	s := progress.NewSpinner(label, progress.WithWriter(c.App.ErrWriter))
	return s.FinishError, s.FinishSuccess
}

// startProgress returns a progress callback drawing a bar on stderr and the
// function that clears it. Progress is off for machine-readable output on
// stdout so the bar never interleaves with it.
func startProgress(c *cli.Context, label string) (analyzer.ProgressFunc, func()) {
	if quiet(c) {
		return nil, func() {}
	}
	tracker := progress.NewTracker(label, 0, progress.WithWriter(c.App.ErrWriter))
	return tracker.Update, tracker.FinishSuccess
}

// reportSkipped warns on stderr about files that could not be analyzed,
// listing them when verbose.
func reportSkipped(c *cli.Context, errs *fileproc.ProcessingErrors) {
	if !errs.HasErrors() {
		return
	}
	skipped := make([]string, len(errs.Errors))
	for i, e := range errs.Errors {
		skipped[i] = e.Error()
	}
	warnSkipped(c, skipped)
}

func warnSkipped(c *cli.Context, skipped []string) {
	if len(skipped) == 0 {
		return
	}
	color.New(color.FgYellow).Fprintf(c.App.ErrWriter, "Skipped %d file(s) that could not be analyzed\n", len(skipped))
	if !appConfig(c).Output.Verbose {
		fmt.Fprintln(c.App.ErrWriter, "  (use --verbose to list them)")
		return
	}
	for _, s := range skipped {
		fmt.Fprintf(c.App.ErrWriter, "  - %s\n", s)
	}
}
