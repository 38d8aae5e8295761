// Package scanner resolves what a run reads: the file list and the source it
// is read from, either the working tree or a git revision.
package scanner

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/panbanda/ooscan/internal/scanner"
	"github.com/panbanda/ooscan/pkg/config"
	"github.com/panbanda/ooscan/pkg/source"
)

// ScanResult contains the result of a file scan.
type ScanResult struct {
	// Root is the absolute directory the file paths are relative to.
	Root string
	// Files are slash-separated paths relative to Root, sorted.
	Files []string
	// Source reads the files.
	Source source.ContentSource
	// RepoRoot is the enclosing git work tree, empty outside a repository.
	RepoRoot string
	// Revision is set when files come from a git tree instead of disk.
	Revision string
}

// Service provides file scanning functionality.
type Service struct {
	config *config.Config
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// New creates a new scanner service.
func New(opts ...Option) *Service {
	s := &Service{config: config.DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan enumerates the source files under root. With an empty rev the working
// tree is walked; otherwise the tree of rev is listed and read through git.
func (s *Service) Scan(root, rev string) (*ScanResult, error) {
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &PathError{Path: root, Err: err}
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, &PathError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &PathError{Path: root, Err: os.ErrInvalid}
	}

	result := &ScanResult{Root: absRoot, RepoRoot: s.repoRoot(absRoot), Revision: rev}
	scan := scanner.NewScanner(s.config)

	if rev == "" {
		files, err := scan.ScanDir(absRoot)
		if err != nil {
			return nil, &ScanError{Path: root, Err: err}
		}
		result.Files = files
		result.Source = source.NewFilesystem(absRoot)
		return result, nil
	}

	if result.RepoRoot == "" {
		return nil, &GitError{Err: git.ErrRepositoryNotExists}
	}
	tree, err := source.OpenRevision(absRoot, rev)
	if err != nil {
		return nil, &GitError{Err: err}
	}
	all, err := tree.Files()
	if err != nil {
		return nil, &ScanError{Path: rev, Err: err}
	}
	// Tree paths are relative to the repository root.
	result.Root = result.RepoRoot
	result.Files = scan.Filter(all)
	result.Source = tree
	return result, nil
}

// repoRoot returns the work tree root of the repository containing path.
func (s *Service) repoRoot(path string) string {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	wt, err := repo.Worktree()
	if err != nil {
		return ""
	}
	return wt.Filesystem.Root()
}

// PathError indicates an invalid path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return "invalid path " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ScanError indicates a scanning failure.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return "failed to scan " + e.Path + ": " + e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// GitError indicates the path is not a usable git repository.
type GitError struct {
	Err error
}

func (e *GitError) Error() string {
	return "git: " + e.Err.Error()
}

func (e *GitError) Unwrap() error {
	return e.Err
}
