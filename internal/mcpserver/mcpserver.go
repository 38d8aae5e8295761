// Package mcpserver exposes the ooscan analyses as Model Context Protocol
// tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/ooscan/pkg/config"
)

// Server wraps the MCP server and registers all ooscan tools.
type Server struct {
	server  *mcp.Server
	config  *config.Config
	version string
}

// NewServer creates a new MCP server with all ooscan tools registered. A nil
// cfg uses the defaults.
func NewServer(version string, cfg *config.Config) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "ooscan",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, config: cfg, version: version}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_classes",
		Description: describeClasses(),
	}, s.handleAnalyzeClasses)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_methods",
		Description: describeMethods(),
	}, s.handleAnalyzeMethods)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_duplicates",
		Description: describeDuplicates(),
	}, s.handleAnalyzeDuplicates)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_churn",
		Description: describeChurn(),
	}, s.handleAnalyzeChurn)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "focus_class",
		Description: describeFocus(),
	}, s.handleFocusClass)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_repository",
		Description: describeRepository(),
	}, s.handleAnalyzeRepository)
}
