// Package analysis orchestrates a full ooscan run: scanning, the structural
// model, duplicate lines, test attributes and git history.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/panbanda/ooscan/internal/fileproc"
	"github.com/panbanda/ooscan/internal/report"
	scannerSvc "github.com/panbanda/ooscan/internal/service/scanner"
	"github.com/panbanda/ooscan/pkg/analyzer"
	"github.com/panbanda/ooscan/pkg/analyzer/churn"
	"github.com/panbanda/ooscan/pkg/analyzer/cohesion"
	"github.com/panbanda/ooscan/pkg/analyzer/duplicates"
	"github.com/panbanda/ooscan/pkg/analyzer/functions"
	"github.com/panbanda/ooscan/pkg/analyzer/testmetrics"
	"github.com/panbanda/ooscan/pkg/config"
)

// ErrNoSourceFiles is returned when a scan finds nothing to analyze.
var ErrNoSourceFiles = errors.New("no source files found")

// Service orchestrates code analysis operations.
type Service struct {
	config     *config.Config
	boundaries functions.BoundaryAnalyzer
	now        func() time.Time
	version    string
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithBoundaryAnalyzer replaces the method boundary analyzer (for testing).
func WithBoundaryAnalyzer(b functions.BoundaryAnalyzer) Option {
	return func(s *Service) {
		s.boundaries = b
	}
}

// WithClock replaces time.Now for report timestamps and the churn window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithVersion records the tool version in report metadata.
func WithVersion(v string) Option {
	return func(s *Service) {
		s.version = v
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the configuration in use.
func (s *Service) Config() *config.Config {
	return s.config
}

// Scan enumerates the files of root, or of rev when set.
func (s *Service) Scan(root, rev string) (*scannerSvc.ScanResult, error) {
	scan, err := scannerSvc.New(scannerSvc.WithConfig(s.config)).Scan(root, rev)
	if err != nil {
		return nil, err
	}
	if len(scan.Files) == 0 {
		return nil, ErrNoSourceFiles
	}
	return scan, nil
}

// ClassOptions configures the structural analysis.
type ClassOptions struct {
	// OnProgress receives one call per file.
	OnProgress analyzer.ProgressFunc
}

// AnalyzeClasses builds the structural model and its metrics. Files that
// could not be analyzed are returned alongside the model.
func (s *Service) AnalyzeClasses(ctx context.Context, scan *scannerSvc.ScanResult, opts ClassOptions) (*cohesion.Analysis, *fileproc.ProcessingErrors, error) {
	cohesionOpts := []cohesion.Option{
		cohesion.WithWorkers(s.config.Analysis.Workers),
		cohesion.WithMaxFileSize(s.config.Analysis.MaxFileSize),
	}
	if s.boundaries != nil {
		cohesionOpts = append(cohesionOpts, cohesion.WithBoundaryAnalyzer(s.boundaries))
	}
	a := cohesion.New(cohesionOpts...)

	if opts.OnProgress != nil {
		tracker := analyzer.NewTracker(opts.OnProgress)
		tracker.Add(len(scan.Files))
		ctx = analyzer.WithTracker(ctx, tracker)
	}

	model, err := a.Analyze(ctx, scan.Files, scan.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("analyze classes: %w", err)
	}
	model.GeneratedAt = s.now().UTC()
	return model, a.Errors(), nil
}

// AnalyzeDuplicates counts repeated normalized lines. Files that could not be
// read are returned alongside the result.
func (s *Service) AnalyzeDuplicates(ctx context.Context, scan *scannerSvc.ScanResult) (*duplicates.Analysis, *fileproc.ProcessingErrors, error) {
	a := duplicates.New(
		duplicates.WithConfig(s.config.Duplicates),
		duplicates.WithWorkers(s.config.Analysis.Workers),
		duplicates.WithMaxFileSize(s.config.Analysis.MaxFileSize),
	)
	result, err := a.Analyze(ctx, scan.Files, scan.Source)
	if err != nil {
		return nil, a.Errors(), fmt.Errorf("analyze duplicates: %w", err)
	}
	return result, a.Errors(), nil
}

// AnalyzeTests counts [Test] attributes in test sources.
func (s *Service) AnalyzeTests(ctx context.Context, scan *scannerSvc.ScanResult) (*testmetrics.Analysis, error) {
	result, err := testmetrics.New(s.config.Analysis.Workers).Analyze(ctx, scan.Files, scan.Source)
	if err != nil {
		return nil, fmt.Errorf("analyze tests: %w", err)
	}
	return result, nil
}

// ChurnOptions configures the history walk.
type ChurnOptions struct {
	// RecentDays overrides the configured recent window when positive.
	RecentDays int
}

// AnalyzeChurn walks the git history of the scanned repository. Per-file
// metrics are kept for the scanned files only.
func (s *Service) AnalyzeChurn(ctx context.Context, scan *scannerSvc.ScanResult, opts ChurnOptions) (*churn.Analysis, error) {
	if scan.RepoRoot == "" {
		return nil, &scannerSvc.GitError{Err: errors.New("not a git repository")}
	}
	days := s.config.Churn.RecentDays
	if opts.RecentDays > 0 {
		days = opts.RecentDays
	}
	a := churn.New(
		churn.WithRecentDays(days),
		churn.WithRevision(scan.Revision),
		churn.WithClock(s.now),
	)
	return a.Analyze(ctx, scan.RepoRoot, repoRelative(scan))
}

// skippedFiles lists each failed path once, first failure first.
func skippedFiles(sets ...*fileproc.ProcessingErrors) []string {
	var out []string
	seen := make(map[string]bool)
	for _, errs := range sets {
		if !errs.HasErrors() {
			continue
		}
		for _, e := range errs.Errors {
			if !seen[e.Path] {
				seen[e.Path] = true
				out = append(out, e.Error())
			}
		}
	}
	return out
}

// repoRelative re-roots the scanned paths at the repository root, which is
// how git history names them.
func repoRelative(scan *scannerSvc.ScanResult) []string {
	if scan.Root == scan.RepoRoot {
		return scan.Files
	}
	prefix, err := filepath.Rel(scan.RepoRoot, scan.Root)
	if err != nil {
		return scan.Files
	}
	out := make([]string, len(scan.Files))
	for i, f := range scan.Files {
		out[i] = filepath.ToSlash(filepath.Join(prefix, f))
	}
	return out
}

// RunOptions configures a full run.
type RunOptions struct {
	Revision string
	// Sort orders classes; see cohesion.SortKey. Empty keeps path order.
	Sort cohesion.SortKey
	// MethodSort orders methods by "complexity", "loc" or "params". Empty
	// keeps path order.
	MethodSort string
	// TopN bounds the tables of the human-readable renderings.
	TopN       int
	OnProgress analyzer.ProgressFunc
}

// Analyze runs every enabled analysis over root and assembles the report.
// Only scanning and structural failures are returned as errors; duplicate,
// test and history failures leave their block out.
func (s *Service) Analyze(ctx context.Context, root string, opts RunOptions) (*report.Report, error) {
	scan, err := s.Scan(root, opts.Revision)
	if err != nil {
		return nil, err
	}

	model, errs, err := s.AnalyzeClasses(ctx, scan, ClassOptions{OnProgress: opts.OnProgress})
	if err != nil {
		return nil, err
	}
	if opts.Sort != "" {
		model.SortBy(opts.Sort)
	}
	if opts.MethodSort != "" {
		model.SortMethodsBy(opts.MethodSort)
	}

	topN := opts.TopN
	if topN == 0 {
		topN = s.config.Analysis.TopN
	}
	r := report.New(report.Metadata{
		Repository:  filepath.Base(scan.Root),
		Revision:    scan.Revision,
		GeneratedAt: model.GeneratedAt,
		Version:     s.version,
	}, model, report.Options{TopN: topN, Thresholds: s.config.Thresholds})
	r.SourceFiles = len(scan.Files)

	var dupErrs *fileproc.ProcessingErrors
	if s.config.Duplicates.Enabled {
		var dup *duplicates.Analysis
		if dup, dupErrs, err = s.AnalyzeDuplicates(ctx, scan); err == nil {
			r.Duplicates = dup
		}
	}
	r.Skipped = skippedFiles(errs, dupErrs)

	if s.config.Analysis.IncludeTests {
		if tests, err := s.AnalyzeTests(ctx, scan); err == nil {
			r.Tests = tests
		}
	}
	if s.config.Churn.Enabled {
		history, err := s.AnalyzeChurn(ctx, scan, ChurnOptions{})
		if err != nil {
			r.GitError = err.Error()
		} else {
			r.Git = history
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r, nil
}
