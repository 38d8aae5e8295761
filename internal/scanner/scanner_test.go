package scanner

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/panbanda/ooscan/pkg/config"
)

func createFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", name, err)
		}
	}
}

func TestNewScanner(t *testing.T) {
	s := NewScanner(nil)
	if s.config == nil {
		t.Fatal("NewScanner(nil) should fall back to the default config")
	}
}

func TestScanDir(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		"Assets/Scripts/Player.cs":       "class Player { }",
		"Assets/Scripts/Enemy.cs":        "class Enemy { }",
		"Assets/Scripts/readme.md":       "# notes",
		"Library/PackageCache/Cached.cs": "class Cached { }",
		"obj/Debug/Generated.cs":         "class Generated { }",
		"Root.cs":                        "class Root { }",
	})

	result, err := NewScanner(nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	want := []string{"Assets/Scripts/Enemy.cs", "Assets/Scripts/Player.cs", "Root.cs"}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("ScanDir() = %v, want %v", result, want)
	}
}

func TestScanDirExcludesPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{
		"Form.cs":                "class Form { }",
		"Form.Designer.cs":       "partial class Form { }",
		"Plugins/Vendor/Lib.cs":  "class Lib { }",
		"Scripts/Plugins/Own.cs": "class Own { }",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = []string{"*.Designer.cs", "Plugins/**"}

	result, err := NewScanner(cfg).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	want := []string{"Form.cs", "Scripts/Plugins/Own.cs"}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("ScanDir() = %v, want %v", result, want)
	}
}

func TestScanDirWithGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatalf("Failed to create .git: %v", err)
	}
	createFiles(t, tmpDir, map[string]string{
		".gitignore":           "Build/\n*.Generated.cs\n",
		"Main.cs":              "class Main { }",
		"Build/Output.cs":      "class Output { }",
		"Src/Api.cs":           "class Api { }",
		"Src/Api.Generated.cs": "class ApiGen { }",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = true

	result, err := NewScanner(cfg).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}

	want := []string{"Main.cs", "Src/Api.cs"}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("ScanDir() = %v, want %v", result, want)
	}

	// scanning a subdirectory still matches against the repository root
	sub, err := NewScanner(cfg).ScanDir(filepath.Join(tmpDir, "Src"))
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if !reflect.DeepEqual(sub, []string{"Api.cs"}) {
		t.Errorf("ScanDir(Src) = %v, want [Api.cs]", sub)
	}
}

func TestScanDirDisabledGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatalf("Failed to create .git: %v", err)
	}
	createFiles(t, tmpDir, map[string]string{
		".gitignore":      "Build/\n",
		"Build/Output.cs": "class Output { }",
	})

	result, err := NewScanner(nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("ScanDir() = %v, want Build/Output.cs with gitignore disabled", result)
	}
}

func TestScanDirEmptyDirectory(t *testing.T) {
	result, err := NewScanner(nil).ScanDir(t.TempDir())
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("ScanDir() = %v, want empty", result)
	}
}

func TestScanDirMissingRoot(t *testing.T) {
	if _, err := NewScanner(nil).ScanDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("ScanDir() should fail for a missing root")
	}
}

func TestFilter(t *testing.T) {
	s := NewScanner(nil)
	got := s.Filter([]string{"A.cs", "Library/B.cs", "C.txt", "Sub/D.cs"})
	want := []string{"A.cs", "Sub/D.cs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}

func TestIsWithinRoot(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		path string
		want bool
	}{
		{root, true},
		{filepath.Join(root, "a", "b.cs"), true},
		{root + "2", false},
		{filepath.Dir(root), false},
	}
	for _, tt := range tests {
		if got := isWithinRoot(tt.path, root); got != tt.want {
			t.Errorf("isWithinRoot(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFindGitRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if got := findGitRoot(nested); got != root {
		t.Errorf("findGitRoot() = %q, want %q", got, root)
	}
}

func TestScanDirWithSymlinkDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, map[string]string{"Real/File.cs": "class File { }"})

	outsideDir := t.TempDir()
	createFiles(t, outsideDir, map[string]string{"Outside.cs": "class Outside { }"})

	if err := os.Symlink(outsideDir, filepath.Join(tmpDir, "Linked")); err != nil {
		t.Skip("Symlinks not supported on this system")
	}
	if err := os.Symlink("/nonexistent/path/File.cs", filepath.Join(tmpDir, "Dangling.cs")); err != nil {
		t.Skip("Symlinks not supported on this system")
	}

	result, err := NewScanner(nil).ScanDir(tmpDir)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if !reflect.DeepEqual(result, []string{"Real/File.cs"}) {
		t.Errorf("ScanDir() = %v, want [Real/File.cs]", result)
	}
}

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"Assets/Tests/Editor/InventorySpec.cs", true},
		{"Assets/Scripts/PlayerTest.cs", true},
		{"Assets/Scripts/Player.cs", false},
		{"Assets/Testing/Helper.cs", false},
	}
	for _, tt := range tests {
		if got := IsTestFile(tt.path); got != tt.want {
			t.Errorf("IsTestFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
