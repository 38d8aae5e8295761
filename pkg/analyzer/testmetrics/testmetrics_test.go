package testmetrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/ooscan/pkg/source"
)

func TestCount(t *testing.T) {
	assert.Equal(t, 0, Count(nil))
	assert.Equal(t, 2, Count([]byte("[Test]\nvoid A() {}\n[Test] void B() {}\n[TestCase(1)]")))
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"Tests/InventoryTests.cs": "[Test] public void Add() {}\n[Test] public void Remove() {}\n",
		"Tests/Helpers.cs":        "class Helpers { }",
		"Scripts/PlayerTest.cs":   "[Test] public void Move() {}",
		"Scripts/Player.cs":       "// [Test] in a non-test file is not counted",
	}
	var paths []string
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		paths = append(paths, name)
	}

	result, err := New(2).Analyze(context.Background(), paths, source.NewFilesystem(dir))
	require.NoError(t, err)

	assert.Equal(t, 2, result.TestFiles)
	assert.Equal(t, 3, result.TestMethods)
	assert.Equal(t, map[string]int{"Tests/InventoryTests.cs": 2, "Scripts/PlayerTest.cs": 1}, result.PerFile)
}

func TestAnalyze_NoFiles(t *testing.T) {
	result, err := New(0).Analyze(context.Background(), nil, source.NewFilesystem(t.TempDir()))
	require.NoError(t, err)
	assert.Zero(t, result.TestFiles)
	assert.Zero(t, result.TestMethods)
}
