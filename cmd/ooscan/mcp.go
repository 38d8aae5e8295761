package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/ooscan/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes ooscan's analyses
as tools that LLMs can invoke. The loaded configuration applies to every call.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "ooscan": {
        "command": "ooscan",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_classes     Per-class DIT, NOC, WMC, RFC, LCOM, CBO, fan-in
  - analyze_methods     Method size, complexity and parameters
  - analyze_duplicates  Repeated normalized lines
  - analyze_churn       Git commits and per-file churn
  - focus_class         One class with dependents and test file
  - analyze_repository  The full report`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP registry manifest (server.json)",
				Action: runMCPManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	server := mcpserver.NewServer(version, appConfig(c))
	return server.Run(c.Context)
}

func runMCPManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}
