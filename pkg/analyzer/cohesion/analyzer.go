// Package cohesion computes the coupling and cohesion metrics of the
// recovered type model: WMC, RFC, LCOM, CBO and fan-in, plus the
// repository-wide summary.
package cohesion

import (
	"context"

	"github.com/panbanda/ooscan/internal/fileproc"
	"github.com/panbanda/ooscan/pkg/analyzer"
	"github.com/panbanda/ooscan/pkg/analyzer/functions"
	"github.com/panbanda/ooscan/pkg/analyzer/lines"
	"github.com/panbanda/ooscan/pkg/analyzer/structure"
	"github.com/panbanda/ooscan/pkg/models"
	"github.com/panbanda/ooscan/pkg/parser"
	"github.com/panbanda/ooscan/pkg/source"
)

var _ analyzer.SourceAnalyzer[*Analysis] = (*Analyzer)(nil)

// Analyzer builds the structural model file by file on a worker pool and
// aggregates it once the pool drains.
type Analyzer struct {
	boundaries  functions.BoundaryAnalyzer
	workers     int
	maxFileSize int64
	errs        *fileproc.ProcessingErrors
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithWorkers bounds the worker pool (0 = 2x NumCPU).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// WithBoundaryAnalyzer replaces the tree-sitter method boundary analyzer.
func WithBoundaryAnalyzer(b functions.BoundaryAnalyzer) Option {
	return func(a *Analyzer) {
		a.boundaries = b
	}
}

// New creates a new cohesion analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		boundaries: functions.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze builds and aggregates the model of files. Files that cannot be read
// or whose method boundaries fail are left out; they are available from
// Errors after the call. A tracker carried by ctx receives one tick per file.
func (a *Analyzer) Analyze(ctx context.Context, files []string, src source.ContentSource) (*Analysis, error) {
	opts := fileproc.Options{
		Workers:     a.workers,
		MaxFileSize: a.maxFileSize,
	}
	if tracker := analyzer.TrackerFromContext(ctx); tracker != nil {
		opts.OnProgress = tracker.Tick
	}

	results, errs := fileproc.MapSourceFiles(ctx, files, src, opts,
		func(psr *parser.Parser, path string, content []byte) (*FileResult, error) {
			return a.analyzeFile(ctx, psr, path, content)
		})
	a.errs = errs

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Aggregate(results), nil
}

// Errors returns the per-file failures of the last Analyze call, or nil.
func (a *Analyzer) Errors() *fileproc.ProcessingErrors {
	return a.errs
}

func (a *Analyzer) analyzeFile(ctx context.Context, psr *parser.Parser, path string, content []byte) (*FileResult, error) {
	unit := models.NewSourceUnit(path, string(content))
	spans, err := a.boundaries.Functions(ctx, psr, unit)
	if err != nil {
		return nil, err
	}

	model := structure.Build(unit, spans)
	stats := lines.Count(unit, spans)
	stats.Types = len(model.Declarations)
	return &FileResult{Model: model, Stats: stats}, nil
}
