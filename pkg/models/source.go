package models

import (
	"sort"
	"strings"
)

// SourceUnit is one input file: its repository-relative path, full text and
// line boundaries. It is immutable once created.
type SourceUnit struct {
	Path       string
	Text       string
	lineStarts []int
}

// NewSourceUnit builds a SourceUnit and indexes its line starts.
func NewSourceUnit(path, text string) *SourceUnit {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &SourceUnit{Path: path, Text: text, lineStarts: starts}
}

// LineCount returns the number of lines, counting a trailing partial line.
// A final newline does not open a new line.
func (s *SourceUnit) LineCount() int {
	if s.Text == "" {
		return 0
	}
	n := len(s.lineStarts)
	if strings.HasSuffix(s.Text, "\n") {
		n--
	}
	return n
}

// Line returns the 1-based line containing byte offset.
func (s *SourceUnit) Line(offset int) int {
	return sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > offset
	})
}

// Slice returns the text of lines start..end (1-based, inclusive) joined by
// newlines. Out-of-range bounds are clamped.
func (s *SourceUnit) Slice(start, end int) string {
	if start < 1 {
		start = 1
	}
	if last := s.LineCount(); end > last {
		end = last
	}
	if start > end {
		return ""
	}
	from := s.lineStarts[start-1]
	to := len(s.Text)
	if end < len(s.lineStarts) {
		to = s.lineStarts[end] - 1
	}
	return s.Text[from:to]
}
