package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Verify both sources implement ContentSource.
var (
	_ ContentSource = (*FilesystemSource)(nil)
	_ ContentSource = (*TreeSource)(nil)
)

func TestFilesystemSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Scripts"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Scripts", "A.cs"), []byte("class A { }"), 0644))

	src := NewFilesystem(dir)
	content, err := src.Read("Scripts/A.cs")
	require.NoError(t, err)
	assert.Equal(t, "class A { }", string(content))

	_, err = src.Read("nonexistent.cs")
	assert.Error(t, err)
}

func TestTreeSource(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "B.cs"), []byte("class B { }"), 0644))
	_, err = wt.Add("src/B.cs")
	require.NoError(t, err)
	_, err = wt.Commit("add B", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	// Working-tree edits after the commit are not visible through the tree.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "B.cs"), []byte("class Changed { }"), 0644))

	src, err := OpenRevision(dir, "HEAD")
	require.NoError(t, err)

	content, err := src.Read("src/B.cs")
	require.NoError(t, err)
	assert.Equal(t, "class B { }", string(content))

	files, err := src.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/B.cs"}, files)

	_, err = src.Read("missing.cs")
	assert.Error(t, err)
}

func TestOpenRevision_Errors(t *testing.T) {
	_, err := OpenRevision(t.TempDir(), "HEAD")
	assert.Error(t, err)
}
