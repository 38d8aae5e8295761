package analysis

import (
	"context"
	"errors"
	"path"
	"sort"

	"github.com/panbanda/ooscan/internal/report"
	scannerSvc "github.com/panbanda/ooscan/internal/service/scanner"
	"github.com/panbanda/ooscan/pkg/analyzer/cohesion"
	"github.com/panbanda/ooscan/pkg/models"
	"github.com/panbanda/ooscan/pkg/parser"
)

var (
	// ErrClassNotFound is returned when no declaration carries the name.
	ErrClassNotFound = errors.New("class not found")
	// ErrAmbiguousClass is returned when several declarations share the name
	// and no path narrows them to one.
	ErrAmbiguousClass = errors.New("class name is ambiguous")
)

// FocusOptions selects the declaration to focus on.
type FocusOptions struct {
	Name string
	// Path disambiguates duplicate names. Optional.
	Path string
}

// FocusCandidate is one declaration matching an ambiguous name.
type FocusCandidate struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Path      string `json:"file_path"`
	StartLine int    `json:"start_line"`
}

// FocusResult is the deep context of one declaration.
type FocusResult struct {
	Class       *report.Class        `json:"class,omitempty"`
	Methods     []*models.MethodSpan `json:"methods,omitempty"`
	Subclasses  []string             `json:"subclasses,omitempty"`
	CoupledFrom []string             `json:"coupled_from,omitempty"`
	RelatedTest string               `json:"related_test,omitempty"`
	Candidates  []FocusCandidate     `json:"candidates,omitempty"`
}

// FocusClass analyzes the scanned files and returns the context of the named
// declaration: its metrics, its methods, the declarations that derive from or
// mention it, and the test file that likely covers it. On ErrAmbiguousClass the
// result lists the candidates.
func (s *Service) FocusClass(ctx context.Context, scan *scannerSvc.ScanResult, opts FocusOptions) (*FocusResult, error) {
	model, _, err := s.AnalyzeClasses(ctx, scan, ClassOptions{})
	if err != nil {
		return nil, err
	}
	return focus(model, scan.Files, opts)
}

func focus(model *cohesion.Analysis, files []string, opts FocusOptions) (*FocusResult, error) {
	var matches []*models.TypeDeclaration
	for _, d := range model.Declarations {
		if d.Name != opts.Name {
			continue
		}
		if opts.Path != "" && d.Path != opts.Path {
			continue
		}
		matches = append(matches, d)
	}

	switch len(matches) {
	case 0:
		return nil, ErrClassNotFound
	case 1:
	default:
		result := &FocusResult{}
		for _, d := range matches {
			result.Candidates = append(result.Candidates, FocusCandidate{
				Name: d.Name, Kind: string(d.Kind), Path: d.Path, StartLine: d.StartLine,
			})
		}
		return result, ErrAmbiguousClass
	}

	target := matches[0]
	class := report.NewClass(target)
	result := &FocusResult{
		Class:       &class,
		Methods:     target.Methods,
		RelatedTest: FindRelatedTest(target.Path, files),
	}

	subclasses := map[string]struct{}{}
	coupledFrom := map[string]struct{}{}
	for _, d := range model.Declarations {
		if d == target {
			continue
		}
		if d.BaseClass == target.Name {
			subclasses[d.Name] = struct{}{}
		}
		for _, c := range d.CoupledTo {
			if c == target.Name {
				coupledFrom[d.Name] = struct{}{}
				break
			}
		}
	}
	result.Subclasses = models.SortedKeys(subclasses)
	result.CoupledFrom = models.SortedKeys(coupledFrom)
	return result, nil
}

// FindRelatedTest returns the test file among candidates that most likely
// covers source: Foo.cs matches FooTests.cs or FooTest.cs, first beside it,
// then anywhere under a Tests directory. Empty when nothing matches.
func FindRelatedTest(source string, candidates []string) string {
	if !parser.IsCSharp(source) {
		return ""
	}
	dir := path.Dir(source)
	name := path.Base(source)
	name = name[:len(name)-len(parser.Extension)]

	wanted := []string{name + "Tests" + parser.Extension, name + "Test" + parser.Extension}
	for _, w := range wanted {
		p := path.Join(dir, w)
		for _, c := range candidates {
			if c == p {
				return c
			}
		}
	}

	var inTests []string
	for _, c := range candidates {
		base := path.Base(c)
		if base != wanted[0] && base != wanted[1] {
			continue
		}
		if isUnderTests(c) {
			inTests = append(inTests, c)
		}
	}
	if len(inTests) == 0 {
		return ""
	}
	sort.Strings(inTests)
	return inTests[0]
}

func isUnderTests(p string) bool {
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		switch path.Base(dir) {
		case "Tests", "Test", "tests":
			return true
		}
	}
	return false
}
