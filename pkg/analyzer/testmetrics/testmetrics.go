// Package testmetrics counts NUnit-style [Test] attributes in test sources.
package testmetrics

import (
	"bytes"
	"context"

	"github.com/panbanda/ooscan/internal/fileproc"
	"github.com/panbanda/ooscan/internal/scanner"
	"github.com/panbanda/ooscan/pkg/analyzer"
	"github.com/panbanda/ooscan/pkg/parser"
	"github.com/panbanda/ooscan/pkg/source"
)

var testAttribute = []byte("[Test]")

// Analysis summarizes the test sources of a repository.
type Analysis struct {
	TestFiles   int            `json:"test_files_with_attributes"`
	TestMethods int            `json:"test_method_count"`
	PerFile     map[string]int `json:"per_file,omitempty"`
}

// Analyzer counts [Test] attributes.
type Analyzer struct {
	workers int
}

var _ analyzer.SourceAnalyzer[*Analysis] = (*Analyzer)(nil)

// New creates a test metrics analyzer; workers <= 0 means 2x NumCPU.
func New(workers int) *Analyzer {
	return &Analyzer{workers: workers}
}

// Count returns the [Test] occurrences in content.
func Count(content []byte) int {
	return bytes.Count(content, testAttribute)
}

// Analyze reads only the files that look like tests. A file counts as a test
// file when it carries at least one attribute.
func (a *Analyzer) Analyze(ctx context.Context, files []string, src source.ContentSource) (*Analysis, error) {
	var candidates []string
	for _, f := range files {
		if scanner.IsTestFile(f) {
			candidates = append(candidates, f)
		}
	}

	type fileCount struct {
		path  string
		count int
	}
	counts, _ := fileproc.MapSourceFiles(ctx, candidates, src, fileproc.Options{Workers: a.workers},
		func(_ *parser.Parser, path string, content []byte) (fileCount, error) {
			return fileCount{path: path, count: Count(content)}, nil
		})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Analysis{PerFile: make(map[string]int)}
	for _, fc := range counts {
		if fc.count == 0 {
			continue
		}
		result.TestFiles++
		result.TestMethods += fc.count
		result.PerFile[fc.path] = fc.count
	}
	return result, nil
}
