// Package testutil holds fixtures shared by package tests: source trees on
// disk and small git histories.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// WriteFile writes content to a file, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// CreateFileTree creates multiple files from a map of path -> content.
func CreateFileTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
	}
}

// Repo is a throwaway git repository in a test temp directory.
type Repo struct {
	Path string
	repo *git.Repository
	t    *testing.T
}

// InitRepo creates an empty repository in a new temp directory.
func InitRepo(t *testing.T) *Repo {
	t.Helper()
	path := t.TempDir()
	repo, err := git.PlainInit(path, false)
	if err != nil {
		t.Fatalf("PlainInit error: %v", err)
	}
	return &Repo{Path: path, repo: repo, t: t}
}

// Commit writes files, stages them and commits as author at when. It returns
// the commit hash.
func (r *Repo) Commit(files map[string]string, author string, when time.Time) plumbing.Hash {
	r.t.Helper()
	CreateFileTree(r.t, r.Path, files)

	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("Worktree error: %v", err)
	}
	for name := range files {
		if _, err := wt.Add(name); err != nil {
			r.t.Fatalf("Add(%s) error: %v", name, err)
		}
	}
	hash, err := wt.Commit("update", &git.CommitOptions{
		Author: &object.Signature{Name: author, Email: author + "@example.com", When: when},
	})
	if err != nil {
		r.t.Fatalf("Commit error: %v", err)
	}
	return hash
}

// Tag creates a lightweight tag at hash.
func (r *Repo) Tag(name string, hash plumbing.Hash) {
	r.t.Helper()
	if _, err := r.repo.CreateTag(name, hash, nil); err != nil {
		r.t.Fatalf("CreateTag(%s) error: %v", name, err)
	}
}
