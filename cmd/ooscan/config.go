package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/ooscan/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Write the default configuration to a file",
				ArgsUsage: "[file]",
				Description: `Writes the default configuration as TOML. The file defaults to ooscan.toml
in the current directory and is never overwritten unless --force is given.`,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: runConfigInitCmd,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the merged configuration from defaults, the config file and global flags.

Examples:
  ooscan config show                 # Show effective config
  ooscan -c ooscan.toml config show  # Show config from specific file`,
				Action: runConfigShowCmd,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration file",
				Action: runConfigValidateCmd,
			},
		},
	}
}

func runConfigInitCmd(c *cli.Context) error {
	path := "ooscan.toml"
	if c.Args().Len() > 0 {
		path = c.Args().First()
	}
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	content, err := toml.Marshal(config.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	color.New(color.FgGreen).Fprintf(c.App.Writer, "Wrote default configuration to %s\n", path)
	return nil
}

func runConfigShowCmd(c *cli.Context) error {
	if source, _ := c.App.Metadata["configSource"].(string); source != "" {
		fmt.Fprintf(c.App.Writer, "# Configuration from: %s\n\n", source)
	} else {
		fmt.Fprintln(c.App.Writer, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(appConfig(c))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(c.App.Writer, string(content))
	return nil
}

// runConfigValidateCmd only reports: the Before hook already loaded and
// validated the file.
func runConfigValidateCmd(c *cli.Context) error {
	if source, _ := c.App.Metadata["configSource"].(string); source != "" {
		color.New(color.FgGreen).Fprintf(c.App.Writer, "Configuration valid: %s\n", source)
	} else {
		color.New(color.FgYellow).Fprintln(c.App.Writer, "No config file found. Default configuration is valid.")
	}
	return nil
}
