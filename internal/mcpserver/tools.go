package mcpserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/ooscan/internal/output"
	"github.com/panbanda/ooscan/internal/report"
	"github.com/panbanda/ooscan/internal/service/analysis"
	"github.com/panbanda/ooscan/pkg/analyzer/cohesion"
	"github.com/panbanda/ooscan/pkg/models"
)

// Common input structures for tools

// AnalyzeInput is the base input for all analyze tools.
type AnalyzeInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Directory to analyze. Defaults to the current directory."`
	Rev    string `json:"rev,omitempty" jsonschema:"Git revision to analyze instead of the working tree."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// ClassesInput adds class table options.
type ClassesInput struct {
	AnalyzeInput
	Sort string `json:"sort,omitempty" jsonschema:"Sort by metric: wmc, cbo, rfc, lcom, dit, noc, fan_in or name. Default wmc."`
	Top  int    `json:"top,omitempty" jsonschema:"Show top N classes. Default 20."`
}

// MethodsInput adds method table options.
type MethodsInput struct {
	AnalyzeInput
	Sort string `json:"sort,omitempty" jsonschema:"Sort by complexity, loc or params. Default complexity."`
	Top  int    `json:"top,omitempty" jsonschema:"Show top N methods. Default 20."`
}

// DuplicatesInput adds duplicate line options.
type DuplicatesInput struct {
	AnalyzeInput
	MinLineLength int `json:"min_line_length,omitempty" jsonschema:"Shortest normalized line considered. Default 5."`
}

// ChurnInput adds churn-specific options.
type ChurnInput struct {
	AnalyzeInput
	Days int `json:"days,omitempty" jsonschema:"Length of the recent activity window in days. Default 90."`
	Top  int `json:"top,omitempty" jsonschema:"Show top N files by churn. Default 20."`
}

// FocusInput selects one class.
type FocusInput struct {
	AnalyzeInput
	Name string `json:"name" jsonschema:"Class, struct, interface or record name."`
	File string `json:"file,omitempty" jsonschema:"File path relative to the analyzed directory, to pick one of several classes sharing the name."`
}

// RepositoryInput adds report options.
type RepositoryInput struct {
	AnalyzeInput
	Top int `json:"top,omitempty" jsonschema:"Bound each table of the markdown rendering. Default 20."`
}

const defaultTop = 20

// Helper functions

func getPath(input AnalyzeInput) string {
	if input.Path == "" {
		return "."
	}
	return input.Path
}

func getFormat(input AnalyzeInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func getTop(n int) int {
	if n <= 0 {
		return defaultTop
	}
	return n
}

// formatOutput serializes data, or renders view when markdown is asked for
// and a view exists.
func formatOutput(data any, view output.Renderable, format output.Format) (string, error) {
	if format != output.FormatMarkdown {
		return output.Marshal(format, data)
	}
	if view == nil {
		out, err := output.Marshal(output.FormatTOON, data)
		if err != nil {
			return "", err
		}
		return "```\n" + out + "\n```", nil
	}
	var buf bytes.Buffer
	if err := view.RenderMarkdown(&buf); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func toolResult(data any, view output.Renderable, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, view, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) service() *analysis.Service {
	return analysis.New(analysis.WithConfig(s.config), analysis.WithVersion(s.version))
}

// Tool handlers

// ClassesResult is the payload of analyze_classes.
type ClassesResult struct {
	Classes []report.Class   `json:"classes"`
	Total   int              `json:"total_classes"`
	Summary cohesion.Summary `json:"summary"`
}

func (s *Server) handleAnalyzeClasses(ctx context.Context, req *mcp.CallToolRequest, input ClassesInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.AnalyzeInput)
	key := cohesion.SortByWMC
	if input.Sort != "" {
		k, ok := cohesion.ParseSortKey(input.Sort)
		if !ok {
			return toolError(fmt.Sprintf("unknown sort key %q", input.Sort))
		}
		key = k
	}

	svc := s.service()
	scan, err := svc.Scan(getPath(input.AnalyzeInput), input.Rev)
	if err != nil {
		return toolError(err.Error())
	}
	model, _, err := svc.AnalyzeClasses(ctx, scan, analysis.ClassOptions{})
	if err != nil {
		return toolError(err.Error())
	}
	model.SortBy(key)

	top := getTop(input.Top)
	all := report.Classes(model.Declarations)
	result := ClassesResult{Total: len(all), Summary: model.Summary}
	if len(all) > top {
		result.Classes = all[:top]
	} else {
		result.Classes = all
	}
	return toolResult(result, report.ClassTable(all, s.config.Thresholds, top, false), format)
}

// MethodsResult is the payload of analyze_methods.
type MethodsResult struct {
	Methods       []*models.MethodSpan `json:"methods"`
	Total         int                  `json:"total_methods"`
	FreeFunctions int                  `json:"free_functions"`
}

func (s *Server) handleAnalyzeMethods(ctx context.Context, req *mcp.CallToolRequest, input MethodsInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.AnalyzeInput)
	key := input.Sort
	if key == "" {
		key = "complexity"
	}
	switch key {
	case "complexity", "loc", "size", "params":
	default:
		return toolError(fmt.Sprintf("unknown sort key %q", input.Sort))
	}

	svc := s.service()
	scan, err := svc.Scan(getPath(input.AnalyzeInput), input.Rev)
	if err != nil {
		return toolError(err.Error())
	}
	model, _, err := svc.AnalyzeClasses(ctx, scan, analysis.ClassOptions{})
	if err != nil {
		return toolError(err.Error())
	}
	model.SortMethodsBy(key)

	top := getTop(input.Top)
	result := MethodsResult{Total: len(model.Methods), FreeFunctions: len(model.FreeFunctions)}
	if len(model.Methods) > top {
		result.Methods = model.Methods[:top]
	} else {
		result.Methods = model.Methods
	}
	return toolResult(result, report.MethodTable(model.Methods, top), format)
}

func (s *Server) handleAnalyzeDuplicates(ctx context.Context, req *mcp.CallToolRequest, input DuplicatesInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.AnalyzeInput)

	cfg := *s.config
	if input.MinLineLength > 0 {
		cfg.Duplicates.MinLineLength = input.MinLineLength
	}
	svc := analysis.New(analysis.WithConfig(&cfg))
	scan, err := svc.Scan(getPath(input.AnalyzeInput), input.Rev)
	if err != nil {
		return toolError(err.Error())
	}
	result, _, err := svc.AnalyzeDuplicates(ctx, scan)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(result, report.DuplicatesView(result), format)
}

func (s *Server) handleAnalyzeChurn(ctx context.Context, req *mcp.CallToolRequest, input ChurnInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.AnalyzeInput)

	svc := s.service()
	scan, err := svc.Scan(getPath(input.AnalyzeInput), input.Rev)
	if err != nil {
		return toolError(err.Error())
	}
	result, err := svc.AnalyzeChurn(ctx, scan, analysis.ChurnOptions{RecentDays: input.Days})
	if err != nil {
		return toolError(err.Error())
	}

	top := getTop(input.Top)
	view := report.ChurnView(result, top)
	if len(result.Files) > top {
		result.Files = result.Files[:top]
	}
	return toolResult(result, view, format)
}

func (s *Server) handleFocusClass(ctx context.Context, req *mcp.CallToolRequest, input FocusInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.AnalyzeInput)
	if input.Name == "" {
		return toolError("name is required")
	}

	svc := s.service()
	scan, err := svc.Scan(getPath(input.AnalyzeInput), input.Rev)
	if err != nil {
		return toolError(err.Error())
	}
	result, err := svc.FocusClass(ctx, scan, analysis.FocusOptions{Name: input.Name, Path: input.File})
	if errors.Is(err, analysis.ErrAmbiguousClass) {
		// Candidates let the caller retry with a file.
		return toolResult(result, nil, format)
	}
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(result, nil, format)
}

func (s *Server) handleAnalyzeRepository(ctx context.Context, req *mcp.CallToolRequest, input RepositoryInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.AnalyzeInput)

	top := getTop(input.Top)
	r, err := s.service().Analyze(ctx, getPath(input.AnalyzeInput), analysis.RunOptions{
		Revision: input.Rev,
		Sort:     cohesion.SortByWMC,
		TopN:     top,
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(r, r, format)
}
