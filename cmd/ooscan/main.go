// Command ooscan reports object-oriented structure, coupling and cohesion
// metrics for C# codebases.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/ooscan/internal/output"
	"github.com/panbanda/ooscan/pkg/config"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

const configKey = "config"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "ooscan",
		Usage:    "Object-oriented structure and coupling metrics for C# codebases",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `ooscan recovers classes, structs, interfaces and records from C# sources
with lexical heuristics and reports DIT, NOC, WMC, RFC, LCOM, CBO and fan-in
per class, method size and complexity, duplicate lines, [Test] counts and
git churn.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"OOSCAN_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, markdown, json, toon, html (default from config, else text)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.StringFlag{
				Name:  "rev",
				Usage: "Analyze a git revision instead of the working tree",
			},
			&cli.BoolFlag{
				Name:  "shallow",
				Usage: "Shallow clone (depth=1) for remote repositories; churn sees only the tip commit",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Rows per table in text, markdown and html output (default from config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parallel file workers (default 2x CPU count)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "List files that could not be analyzed",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.StringFlag{
				Name:  "pprof",
				Usage: "Enable pprof profiling and write to specified prefix (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)",
			},
		},
		Before: func(c *cli.Context) error {
			if err := loadConfig(c); err != nil {
				return err
			}
			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				cpuFile, err := os.Create(pprofPrefix + ".cpu.pprof")
				if err != nil {
					return fmt.Errorf("failed to create CPU profile: %w", err)
				}
				if err := pprof.StartCPUProfile(cpuFile); err != nil {
					cpuFile.Close()
					return fmt.Errorf("failed to start CPU profile: %w", err)
				}
				c.App.Metadata["pprofCPU"] = cpuFile
			}
			return nil
		},
		After: func(c *cli.Context) error {
			pprofPrefix := c.String("pprof")
			if pprofPrefix == "" {
				return nil
			}
			pprof.StopCPUProfile()
			if cpuFile, ok := c.App.Metadata["pprofCPU"].(*os.File); ok {
				cpuFile.Close()
				color.Green("CPU profile written to %s.cpu.pprof", pprofPrefix)
			}

			memFile, err := os.Create(pprofPrefix + ".mem.pprof")
			if err != nil {
				return fmt.Errorf("failed to create memory profile: %w", err)
			}
			defer memFile.Close()

			runtime.GC()
			if err := pprof.WriteHeapProfile(memFile); err != nil {
				return fmt.Errorf("failed to write memory profile: %w", err)
			}
			color.Green("Memory profile written to %s.mem.pprof", pprofPrefix)
			return nil
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			classesCmd(),
			classCmd(),
			methodsCmd(),
			duplicatesCmd(),
			churnCmd(),
			configCmd(),
			mcpCmd(),
		},
	}
}

// loadConfig loads the configuration once, applies global flag overrides and
// stores it in the app metadata.
func loadConfig(c *cli.Context) error {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	result, err := config.LoadConfig(opts...)
	if err != nil {
		return err
	}
	cfg := result.Config

	if c.IsSet("workers") {
		cfg.Analysis.Workers = c.Int("workers")
	}
	if c.IsSet("top") {
		cfg.Analysis.TopN = c.Int("top")
	}
	if c.IsSet("format") {
		cfg.Output.Format = strings.ToLower(c.String("format"))
		if cfg.Output.Format == "md" {
			cfg.Output.Format = string(output.FormatMarkdown)
		}
	}
	if c.Bool("verbose") {
		cfg.Output.Verbose = true
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}
	if !cfg.Output.Color {
		color.NoColor = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	c.App.Metadata[configKey] = cfg
	c.App.Metadata["configSource"] = result.Source
	return nil
}
