// Package scanner enumerates the source files of a repository.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/panbanda/ooscan/pkg/config"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config  *config.Config
	matcher gitignore.Matcher
	gitRoot string
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadGitignore reads every .gitignore of the enclosing repository.
func (s *Scanner) loadGitignore(absRoot string) {
	s.matcher = nil
	s.gitRoot = ""
	if !s.config.Exclude.Gitignore {
		return
	}
	gitRoot := findGitRoot(absRoot)
	if gitRoot == "" {
		return
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err != nil || len(patterns) == 0 {
		return
	}
	s.matcher = gitignore.NewMatcher(patterns)
	s.gitRoot = gitRoot
}

// ignored reports whether the absolute path is matched by .gitignore.
func (s *Scanner) ignored(absPath string, isDir bool) bool {
	if s.matcher == nil {
		return false
	}
	rel, err := filepath.Rel(s.gitRoot, absPath)
	if err != nil || rel == "." {
		return false
	}
	return s.matcher.Match(strings.Split(filepath.ToSlash(rel), "/"), isDir)
}

// ScanDir recursively scans root and returns the slash-separated paths,
// relative to root, of the files with an analyzed extension that no
// exclusion rule removes. Paths are sorted. Symlinks leaving root are
// skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadGitignore(absRoot)

	files := make([]string, 0, 256)
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == absRoot {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		if d.IsDir() {
			if s.config.IsExcludedDir(d.Name()) || s.ignored(path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !s.Accept(rel) || s.ignored(path, false) {
			return nil
		}
		files = append(files, rel)
		return nil
	})

	sort.Strings(files)
	return files, walkErr
}

// Accept reports whether a repository-relative path passes the extension
// filter and the configured exclusions. .gitignore is not consulted.
func (s *Scanner) Accept(rel string) bool {
	return s.config.HasExtension(rel) && !s.config.ShouldExclude(rel)
}

// Filter keeps the paths Accept allows, preserving order. It serves file
// lists that do not come from a directory walk, such as a git tree.
func (s *Scanner) Filter(paths []string) []string {
	var out []string
	for _, p := range paths {
		if s.Accept(p) {
			out = append(out, p)
		}
	}
	return out
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// IsTestFile reports whether a path looks like a test source: the file name
// contains "Test" or a directory named with "Tests" is on the path.
func IsTestFile(rel string) bool {
	rel = filepath.ToSlash(rel)
	return strings.Contains(filepath.Base(rel), "Test") || strings.Contains(rel, "Tests")
}
