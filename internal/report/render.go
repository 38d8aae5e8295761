package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/panbanda/ooscan/internal/output"
	"github.com/panbanda/ooscan/pkg/config"
)

//go:embed template.html
var templateFS embed.FS

var _ output.HTMLRenderable = (*Report)(nil)

// RenderData contains all data needed to render the HTML report.
type RenderData struct {
	*Report
	TopClasses []Class
	TopMethods []MethodRow
	TopChurn   []ChurnRow
	Thresholds config.ThresholdConfig
	// Flagged counts the classes above each metric threshold.
	Flagged map[string]int
}

// MethodRow is a method as listed in the HTML report.
type MethodRow struct {
	Name       string
	Location   string
	Size       int
	Complexity int
	Params     int
}

// ChurnRow is a file as listed in the HTML churn table.
type ChurnRow struct {
	Path    string
	Commits int
	Authors int
	Added   int
	Deleted int
	Score   float64
}

// Renderer handles HTML report generation.
type Renderer struct {
	tmpl *template.Template
}

var (
	defaultRenderer    *Renderer
	defaultRendererErr error
	rendererOnce       sync.Once
)

// NewRenderer creates a new renderer with the embedded template.
func NewRenderer() (*Renderer, error) {
	printer := message.NewPrinter(language.English)
	funcMap := template.FuncMap{
		"title": cases.Title(language.English).String,
		"num": func(n any) string {
			switch v := n.(type) {
			case int:
				return printer.Sprintf("%d", v)
			case int64:
				return printer.Sprintf("%d", v)
			case float64:
				return printer.Sprintf("%.2f", v)
			default:
				return "0"
			}
		},
		"over": func(value, limit int) bool {
			return limit > 0 && value > limit
		},
		"truncatePath": truncatePath,
		"json": func(v any) template.JS {
			b, _ := json.Marshal(v)
			return template.JS(b)
		},
	}

	tmplContent, err := templateFS.ReadFile("template.html")
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the HTML page for r.
func (rd *Renderer) Render(r *Report, w io.Writer) error {
	return rd.tmpl.Execute(w, r.renderData())
}

// RenderHTML renders the report with the embedded template.
func (r *Report) RenderHTML(w io.Writer) error {
	rendererOnce.Do(func() {
		defaultRenderer, defaultRendererErr = NewRenderer()
	})
	if defaultRendererErr != nil {
		return defaultRendererErr
	}
	return defaultRenderer.Render(r, w)
}

func (r *Report) renderData() *RenderData {
	th := r.options.Thresholds
	data := &RenderData{
		Report:     r,
		TopClasses: top(r.Classes, r.options.TopN),
		Thresholds: th,
		Flagged:    map[string]int{},
	}
	for _, m := range top(r.Methods, r.options.TopN) {
		data.TopMethods = append(data.TopMethods, MethodRow{
			Name:       m.QualifiedName,
			Location:   fmt.Sprintf("%s:%d", m.Path, m.StartLine),
			Size:       m.Size,
			Complexity: m.Complexity,
			Params:     m.ParameterCount,
		})
	}
	if r.Git != nil {
		for _, f := range top(r.Git.Files, r.options.TopN) {
			data.TopChurn = append(data.TopChurn, ChurnRow{
				Path: f.Path, Commits: f.Commits, Authors: f.Authors,
				Added: f.LinesAdded, Deleted: f.LinesDeleted, Score: f.ChurnScore,
			})
		}
	}
	for _, c := range r.Classes {
		flag := func(name string, value, limit int) {
			if limit > 0 && value > limit {
				data.Flagged[name]++
			}
		}
		flag("wmc", c.WMC, th.WMC)
		flag("cbo", c.CBO, th.CBO)
		flag("rfc", c.RFC, th.RFC)
		flag("lcom", c.LCOM, th.LCOM)
		flag("dit", c.DIT, th.DIT)
	}
	return data
}

func truncatePath(s string, n int) string {
	if len(s) <= n {
		return s
	}
	parts := strings.Split(s, "/")
	if len(parts) <= 2 {
		return s[:n-3] + "..."
	}
	filename := parts[len(parts)-1]
	if len(filename) >= n-3 {
		return "..." + filename[len(filename)-n+3:]
	}
	remaining := max(n-len(filename)-5, 0)
	prefix := strings.Join(parts[:len(parts)-1], "/")
	if len(prefix) > remaining {
		prefix = prefix[len(prefix)-remaining:]
	}
	return ".../" + prefix + "/" + filename
}
