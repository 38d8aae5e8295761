// Package remote resolves repository references such as owner/repo@ref into
// temporary local clones.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Source represents a remote repository to analyze.
type Source struct {
	URL      string // normalized git URL
	Ref      string // branch, tag, or SHA (empty = default branch)
	CloneDir string // temp directory after clone
}

// Parse detects if a path is a remote reference.
// Returns nil if path exists on filesystem (local path takes precedence).
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	// SSH URLs carry an @ before the host, so only split a ref after the last
	// path separator.
	ref := ""
	if idx := strings.LastIndex(path, "@"); idx != -1 && idx > strings.LastIndex(path, "/") && strings.Contains(path[:idx], "/") {
		ref = path[idx+1:]
		path = path[:idx]
	}

	switch {
	case strings.HasPrefix(path, "https://"), strings.HasPrefix(path, "http://"):
		return &Source{URL: path, Ref: ref}, nil
	case strings.HasPrefix(path, "git@"):
		return &Source{URL: path, Ref: ref}, nil
	case strings.HasPrefix(path, "github.com/"), strings.HasPrefix(path, "gitlab.com/"), strings.HasPrefix(path, "bitbucket.org/"):
		return &Source{URL: "https://" + path, Ref: ref}, nil
	case isGitHubShorthand(path):
		return &Source{URL: "https://github.com/" + path, Ref: ref}, nil
	}
	return nil, nil
}

// isGitHubShorthand returns true if path matches owner/repo pattern.
func isGitHubShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx == -1 {
		return false
	}
	if strings.Count(path, "/") != 1 {
		return false
	}
	// No dots before the slash (would indicate a domain or a relative path)
	if strings.Contains(path[:slashIdx], ".") {
		return false
	}
	return slashIdx > 0 && slashIdx < len(path)-1
}

// Clone fetches the repository into a temporary directory and checks out Ref.
// Progress messages from the transport go to progress. A shallow clone keeps
// only the tip commit.
func (s *Source) Clone(ctx context.Context, progress io.Writer, shallow bool) error {
	dir, err := os.MkdirTemp("", "ooscan-clone-*")
	if err != nil {
		return fmt.Errorf("create clone dir: %w", err)
	}

	opts := &git.CloneOptions{URL: s.URL, Progress: progress}
	if shallow {
		opts.Depth = 1
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("clone %s: %w", s.URL, err)
	}
	s.CloneDir = dir

	if s.Ref == "" {
		return nil
	}
	if err := checkout(repo, s.Ref); err != nil {
		s.Cleanup()
		return fmt.Errorf("checkout %s: %w", s.Ref, err)
	}
	return nil
}

// checkout moves the worktree to ref, trying a remote branch before a tag or
// commit.
func checkout(repo *git.Repository, ref string) error {
	if head, err := repo.Head(); err == nil && head.Name().IsBranch() && head.Name().Short() == ref {
		return nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}

	remoteBranch := plumbing.NewRemoteReferenceName("origin", ref)
	if r, err := repo.Reference(remoteBranch, true); err == nil {
		return wt.Checkout(&git.CheckoutOptions{
			Branch: plumbing.NewBranchReferenceName(ref),
			Hash:   r.Hash(),
			Create: true,
		})
	} else if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return err
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return err
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: *hash})
}

// Cleanup removes the clone directory.
func (s *Source) Cleanup() {
	if s.CloneDir != "" {
		_ = os.RemoveAll(s.CloneDir)
		s.CloneDir = ""
	}
}
