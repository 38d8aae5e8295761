// Package analyzer holds the contracts shared by the repository analyzers.
package analyzer

import (
	"context"

	"github.com/panbanda/ooscan/pkg/source"
)

// SourceAnalyzer analyzes a set of repository-relative paths read from a
// content source, so the same analyzer serves the working tree and a git
// revision.
type SourceAnalyzer[T any] interface {
	// Analyze processes files and returns the analysis result. Cancelling ctx
	// stops scheduling new files.
	Analyze(ctx context.Context, files []string, src source.ContentSource) (T, error)
}

// RepoAnalyzer analyzes the history of the repository containing repoPath,
// optionally narrowed to files (slash-separated, relative to the repository
// root).
type RepoAnalyzer[T any] interface {
	Analyze(ctx context.Context, repoPath string, files []string) (T, error)
}
