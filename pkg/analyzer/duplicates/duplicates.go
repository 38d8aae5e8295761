// Package duplicates measures repeated source lines. Lines are compared after
// comments and literals are blanked and surrounding whitespace is trimmed;
// every occurrence of a line seen more than once counts as duplicated.
package duplicates

import (
	"context"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/panbanda/ooscan/internal/fileproc"
	"github.com/panbanda/ooscan/pkg/analyzer"
	"github.com/panbanda/ooscan/pkg/config"
	"github.com/panbanda/ooscan/pkg/lexer"
	"github.com/panbanda/ooscan/pkg/parser"
	"github.com/panbanda/ooscan/pkg/source"
)

var _ analyzer.SourceAnalyzer[*Analysis] = (*Analyzer)(nil)

// Analyzer counts duplicated lines across files.
type Analyzer struct {
	config      Config
	workers     int
	maxFileSize int64
	errs        *fileproc.ProcessingErrors
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMinLineLength sets the minimum trimmed length of a considered line.
func WithMinLineLength(n int) Option {
	return func(a *Analyzer) {
		a.config.MinLineLength = n
	}
}

// WithTopN sets how many lines and files are listed in the result.
func WithTopN(n int) Option {
	return func(a *Analyzer) {
		a.config.TopN = n
	}
}

// WithConfig applies the duplicates section of the configuration.
func WithConfig(cfg config.DuplicateConfig) Option {
	return func(a *Analyzer) {
		if cfg.MinLineLength > 0 {
			a.config.MinLineLength = cfg.MinLineLength
		}
		a.config.TopN = cfg.TopN
	}
}

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

// New creates a new duplicate-line analyzer with default config.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{config: DefaultConfig()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// fileLines is the per-file contribution: considered line hashes in order
// and the first text seen for each hash.
type fileLines struct {
	path   string
	hashes []uint64
	texts  map[uint64]string
}

// Analyze counts duplicated lines across files read from src. Unreadable
// files contribute nothing; they are available from Errors after the call.
func (a *Analyzer) Analyze(ctx context.Context, files []string, src source.ContentSource) (*Analysis, error) {
	opts := fileproc.Options{Workers: a.workers, MaxFileSize: a.maxFileSize}
	if tracker := analyzer.TrackerFromContext(ctx); tracker != nil {
		opts.OnProgress = tracker.Tick
	}

	perFile, errs := fileproc.MapSourceFiles(ctx, files, src, opts,
		func(_ *parser.Parser, path string, content []byte) (*fileLines, error) {
			return a.scan(path, string(content)), nil
		})
	a.errs = errs
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.merge(perFile, len(files)), nil
}

// Errors returns the per-file read failures of the last Analyze call, or nil.
func (a *Analyzer) Errors() *fileproc.ProcessingErrors {
	return a.errs
}

// AnalyzeContent counts duplicated lines over in-memory contents keyed by path.
func (a *Analyzer) AnalyzeContent(contents map[string]string) *Analysis {
	paths := make([]string, 0, len(contents))
	for p := range contents {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	perFile := make([]*fileLines, 0, len(paths))
	for _, p := range paths {
		perFile = append(perFile, a.scan(p, contents[p]))
	}
	return a.merge(perFile, len(paths))
}

func (a *Analyzer) scan(path, content string) *fileLines {
	fl := &fileLines{path: path, texts: make(map[uint64]string)}
	for _, line := range strings.Split(lexer.Normalize(content), "\n") {
		text := strings.TrimSpace(line)
		if len(text) < a.config.MinLineLength {
			continue
		}
		h := xxhash.Sum64String(text)
		if _, ok := fl.texts[h]; !ok {
			fl.texts[h] = text
		}
		fl.hashes = append(fl.hashes, h)
	}
	return fl
}

func (a *Analyzer) merge(perFile []*fileLines, scanned int) *Analysis {
	analysis := &Analysis{
		TotalFilesScanned: scanned,
		MinLineLength:     a.config.MinLineLength,
	}

	counts := make(map[uint64]int)
	texts := make(map[uint64]string)
	for _, fl := range perFile {
		for _, h := range fl.hashes {
			counts[h]++
		}
		for h, text := range fl.texts {
			if _, ok := texts[h]; !ok {
				texts[h] = text
			}
		}
		analysis.TotalConsidered += len(fl.hashes)
	}

	for _, n := range counts {
		if n > 1 {
			analysis.DuplicateLines += n
		}
	}
	if analysis.TotalConsidered > 0 {
		analysis.Percentage = float64(analysis.DuplicateLines) / float64(analysis.TotalConsidered) * 100
	}

	if a.config.TopN > 0 {
		analysis.TopLines = topLines(perFile, counts, texts, a.config.TopN)
		analysis.Hotspots = hotspots(perFile, counts, a.config.TopN)
	}
	return analysis
}

func topLines(perFile []*fileLines, counts map[uint64]int, texts map[uint64]string, n int) []Line {
	var repeated []uint64
	for h, c := range counts {
		if c > 1 {
			repeated = append(repeated, h)
		}
	}
	sort.Slice(repeated, func(i, j int) bool {
		ci, cj := counts[repeated[i]], counts[repeated[j]]
		if ci != cj {
			return ci > cj
		}
		return texts[repeated[i]] < texts[repeated[j]]
	})
	if len(repeated) > n {
		repeated = repeated[:n]
	}

	lines := make([]Line, 0, len(repeated))
	index := make(map[uint64]int, len(repeated))
	for i, h := range repeated {
		index[h] = i
		lines = append(lines, Line{Text: texts[h], Count: counts[h], Occurrences: make(map[string]int)})
	}
	for _, fl := range perFile {
		for _, h := range fl.hashes {
			if i, ok := index[h]; ok {
				lines[i].Occurrences[fl.path]++
			}
		}
	}
	return lines
}

func hotspots(perFile []*fileLines, counts map[uint64]int, n int) []Hotspot {
	var spots []Hotspot
	for _, fl := range perFile {
		dup := 0
		for _, h := range fl.hashes {
			if counts[h] > 1 {
				dup++
			}
		}
		if dup == 0 {
			continue
		}
		spots = append(spots, Hotspot{
			File:           fl.path,
			DuplicateLines: dup,
			Considered:     len(fl.hashes),
			Ratio:          float64(dup) / float64(len(fl.hashes)),
		})
	}
	sort.SliceStable(spots, func(i, j int) bool {
		return spots[i].DuplicateLines > spots[j].DuplicateLines
	})
	if len(spots) > n {
		spots = spots[:n]
	}
	return spots
}
