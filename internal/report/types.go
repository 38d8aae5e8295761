// Package report assembles the results of an ooscan run into one document and
// renders it as text, markdown, JSON, TOON or HTML.
package report

import (
	"time"

	"github.com/panbanda/ooscan/pkg/analyzer/churn"
	"github.com/panbanda/ooscan/pkg/analyzer/cohesion"
	"github.com/panbanda/ooscan/pkg/analyzer/duplicates"
	"github.com/panbanda/ooscan/pkg/analyzer/testmetrics"
	"github.com/panbanda/ooscan/pkg/config"
	"github.com/panbanda/ooscan/pkg/models"
)

// Metadata contains report generation metadata.
type Metadata struct {
	Repository  string    `json:"repository"`
	Revision    string    `json:"revision,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Version     string    `json:"ooscan_version"`
}

// Class is the serialized view of a type declaration: its members flattened
// to sorted name lists and its metrics inlined.
type Class struct {
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	Path          string   `json:"file_path"`
	StartLine     int      `json:"start_line"`
	EndLine       int      `json:"end_line"`
	Namespace     string   `json:"namespace,omitempty"`
	BasesRaw      []string `json:"bases_raw"`
	BaseClass     string   `json:"base_class,omitempty"`
	Interfaces    []string `json:"interfaces"`
	Fields        []string `json:"fields"`
	Methods       []string `json:"methods"`
	FanOutClasses []string `json:"fan_out_classes"`
	models.Metrics
}

// NewClass flattens a declaration.
func NewClass(d *models.TypeDeclaration) Class {
	return Class{
		Name:          d.Name,
		Kind:          string(d.Kind),
		Path:          d.Path,
		StartLine:     d.StartLine,
		EndLine:       d.EndLine,
		Namespace:     d.Namespace,
		BasesRaw:      nonNil(d.BasesRaw),
		BaseClass:     d.BaseClass,
		Interfaces:    nonNil(d.Interfaces),
		Fields:        nonNil(d.Fields.Sorted()),
		Methods:       nonNil(d.MethodNames()),
		FanOutClasses: nonNil(d.CoupledTo),
		Metrics:       d.Metrics,
	}
}

// Classes flattens declarations, keeping their order.
func Classes(decls []*models.TypeDeclaration) []Class {
	out := make([]Class, len(decls))
	for i, d := range decls {
		out[i] = NewClass(d)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Report is the complete result of an analysis run.
type Report struct {
	Metadata      Metadata             `json:"metadata"`
	Files         []models.FileStats   `json:"files"`
	Methods       []*models.MethodSpan `json:"methods"`
	FreeFunctions []*models.MethodSpan `json:"free_functions,omitempty"`
	Classes       []Class              `json:"classes"`
	Stats         cohesion.Summary     `json:"stats"`
	SourceFiles   int                  `json:"cs_file_count"`

	Duplicates *duplicates.Analysis  `json:"duplicates,omitempty"`
	Git        *churn.Analysis       `json:"git,omitempty"`
	GitError   string                `json:"git_error,omitempty"`
	Tests      *testmetrics.Analysis `json:"tests,omitempty"`

	// Files that could not be analyzed, as "path: reason".
	Skipped []string `json:"skipped,omitempty"`

	options Options
}

// Options controls the human-readable renderings. JSON and TOON always carry
// everything.
type Options struct {
	// TopN bounds each table; 0 shows every row.
	TopN int
	// Thresholds highlight class metrics in colored text output.
	Thresholds config.ThresholdConfig
}

// New builds a report around the structural model. The model's declaration
// and method order is kept, so callers sort before building.
func New(meta Metadata, model *cohesion.Analysis, opts Options) *Report {
	r := &Report{
		Metadata:      meta,
		Files:         model.Files,
		Methods:       model.Methods,
		FreeFunctions: model.FreeFunctions,
		Classes:       Classes(model.Declarations),
		Stats:         model.Summary,
		SourceFiles:   len(model.Files),
		options:       opts,
	}
	if r.Files == nil {
		r.Files = []models.FileStats{}
	}
	if r.Methods == nil {
		r.Methods = []*models.MethodSpan{}
	}
	return r
}

// SetOptions replaces the rendering options.
func (r *Report) SetOptions(opts Options) {
	r.options = opts
}
