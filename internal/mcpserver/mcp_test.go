package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/ooscan/internal/output"
	"github.com/panbanda/ooscan/internal/testutil"
	"github.com/panbanda/ooscan/pkg/config"
)

var sources = map[string]string{
	"Actor.cs": `public class Actor
{
    protected int hp;
}
`,
	"Player.cs": `public class Player : Actor
{
    private int mana;

    public void Hit(int damage)
    {
        if (damage > 0) { hp -= damage; }
    }

    public void Cast(int cost, bool free)
    {
        if (!free && cost > 0) { mana -= cost; }
    }
}
`,
	"Tests/PlayerTests.cs": `public class PlayerTests
{
    [Test]
    public void Hits() { new Player().Hit(1); }
}
`,
}

func newTestServer() *Server {
	return NewServer("1.0.0-test", nil)
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("nil result")
	}
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	if result.IsError {
		t.Fatalf("tool returned error: %s", text.Text)
	}
	return text.Text
}

// TestServerCreation verifies the MCP server can be created without panicking.
func TestServerCreation(t *testing.T) {
	server := newTestServer()
	if server.server == nil {
		t.Fatal("NewServer().server is nil")
	}
	if server.config == nil {
		t.Fatal("nil config should fall back to defaults")
	}

	cfg := config.DefaultConfig()
	if got := NewServer("", cfg); got.config != cfg || got.version != "dev" {
		t.Errorf("NewServer(\"\", cfg) = version %q, config %p", got.version, got.config)
	}
}

// TestToolDescriptions verifies all description functions carry the three sections.
func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"classes":    describeClasses,
		"methods":    describeMethods,
		"duplicates": describeDuplicates,
		"churn":      describeChurn,
		"focus":      describeFocus,
		"repository": describeRepository,
	}

	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
				if !strings.Contains(desc, section) {
					t.Errorf("%s description missing %s", name, section)
				}
			}
		})
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		in   string
		want output.Format
	}{
		{"", output.FormatTOON},
		{"toon", output.FormatTOON},
		{"json", output.FormatJSON},
		{"markdown", output.FormatMarkdown},
		{"md", output.FormatMarkdown},
		{"html", output.FormatTOON},
	}
	for _, tt := range tests {
		if got := getFormat(AnalyzeInput{Format: tt.in}); got != tt.want {
			t.Errorf("getFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := getPath(AnalyzeInput{}); got != "." {
		t.Errorf("getPath() = %q, want \".\"", got)
	}
	if got := getTop(0); got != defaultTop {
		t.Errorf("getTop(0) = %d, want %d", got, defaultTop)
	}
}

func TestToolError(t *testing.T) {
	result, _, err := toolError("boom")
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("IsError should be set")
	}
	if text := result.Content[0].(*mcp.TextContent).Text; text != "Error: boom" {
		t.Errorf("text = %q", text)
	}
}

func TestFormatOutput_MarkdownWithoutView(t *testing.T) {
	out, err := formatOutput(map[string]int{"a": 1}, nil, output.FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "```\n") || !strings.HasSuffix(out, "\n```") {
		t.Errorf("expected fenced toon, got %q", out)
	}
}

// TestInputStructTags verifies every input field is documented for the schema.
func TestInputStructTags(t *testing.T) {
	inputs := []any{AnalyzeInput{}, ClassesInput{}, MethodsInput{}, DuplicatesInput{}, ChurnInput{}, FocusInput{}, RepositoryInput{}}
	for _, in := range inputs {
		typ := reflect.TypeOf(in)
		for i := 0; i < typ.NumField(); i++ {
			f := typ.Field(i)
			if f.Anonymous {
				continue
			}
			if f.Tag.Get("json") == "" {
				t.Errorf("%s.%s missing json tag", typ.Name(), f.Name)
			}
			if f.Tag.Get("jsonschema") == "" {
				t.Errorf("%s.%s missing jsonschema tag", typ.Name(), f.Name)
			}
		}
	}
}

func TestHandleClasses(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, sources)
	s := newTestServer()

	result, _, err := s.handleAnalyzeClasses(context.Background(), nil, ClassesInput{
		AnalyzeInput: AnalyzeInput{Path: dir, Format: "json"},
		Sort:         "wmc",
		Top:          1,
	})
	if err != nil {
		t.Fatal(err)
	}

	var decoded ClassesResult
	if err := json.Unmarshal([]byte(textOf(t, result)), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.Total != 3 {
		t.Errorf("total = %d, want 3", decoded.Total)
	}
	if len(decoded.Classes) != 1 || decoded.Classes[0].Name != "Player" {
		t.Fatalf("classes = %+v, want only Player", decoded.Classes)
	}
	if decoded.Classes[0].BaseClass != "Actor" {
		t.Errorf("base = %q, want Actor", decoded.Classes[0].BaseClass)
	}
}

func TestHandleClasses_Markdown(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, sources)

	result, _, err := newTestServer().handleAnalyzeClasses(context.Background(), nil, ClassesInput{
		AnalyzeInput: AnalyzeInput{Path: dir, Format: "markdown"},
	})
	if err != nil {
		t.Fatal(err)
	}
	text := textOf(t, result)
	if !strings.Contains(text, "| Class | Kind |") {
		t.Errorf("expected markdown table, got:\n%s", text)
	}
}

func TestHandleClasses_BadSort(t *testing.T) {
	result, _, err := newTestServer().handleAnalyzeClasses(context.Background(), nil, ClassesInput{Sort: "pagerank"})
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("unknown sort key should be a tool error")
	}
}

func TestHandleMethods(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, sources)

	result, _, err := newTestServer().handleAnalyzeMethods(context.Background(), nil, MethodsInput{
		AnalyzeInput: AnalyzeInput{Path: dir, Format: "json"},
		Sort:         "params",
	})
	if err != nil {
		t.Fatal(err)
	}
	var decoded MethodsResult
	if err := json.Unmarshal([]byte(textOf(t, result)), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.Total != 3 {
		t.Errorf("total = %d, want 3", decoded.Total)
	}
	if decoded.Methods[0].QualifiedName != "Player::Cast" {
		t.Errorf("first method = %q, want Player::Cast", decoded.Methods[0].QualifiedName)
	}
}

func TestHandleDuplicates(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, map[string]string{
		"A.cs": "class A\n{\n    void Run() { Log.Write(\"tick\"); }\n}\n",
		"B.cs": "class B\n{\n    void Run() { Log.Write(\"tick\"); }\n}\n",
	})

	result, _, err := newTestServer().handleAnalyzeDuplicates(context.Background(), nil, DuplicatesInput{
		AnalyzeInput: AnalyzeInput{Path: dir, Format: "json"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(textOf(t, result), `"duplicate_lines"`) {
		t.Error("expected duplicate_lines in output")
	}
}

func TestHandleChurn(t *testing.T) {
	repo := testutil.InitRepo(t)
	repo.Commit(sources, "alice", time.Now().Add(-24*time.Hour))

	result, _, err := newTestServer().handleAnalyzeChurn(context.Background(), nil, ChurnInput{
		AnalyzeInput: AnalyzeInput{Path: repo.Path, Format: "json"},
		Top:          1,
	})
	if err != nil {
		t.Fatal(err)
	}
	text := textOf(t, result)
	if !strings.Contains(text, `"total_commits": 1`) {
		t.Errorf("expected one commit, got:\n%s", text)
	}
}

func TestHandleChurn_NotARepo(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, sources)

	result, _, err := newTestServer().handleAnalyzeChurn(context.Background(), nil, ChurnInput{
		AnalyzeInput: AnalyzeInput{Path: dir},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("churn outside a repository should be a tool error")
	}
}

func TestHandleFocus(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, sources)
	s := newTestServer()

	result, _, err := s.handleFocusClass(context.Background(), nil, FocusInput{
		AnalyzeInput: AnalyzeInput{Path: dir, Format: "json"},
		Name:         "Player",
	})
	if err != nil {
		t.Fatal(err)
	}
	text := textOf(t, result)
	if !strings.Contains(text, `"related_test": "Tests/PlayerTests.cs"`) {
		t.Errorf("expected related test, got:\n%s", text)
	}

	result, _, err = s.handleFocusClass(context.Background(), nil, FocusInput{AnalyzeInput: AnalyzeInput{Path: dir}})
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("missing name should be a tool error")
	}
}

func TestHandleRepository(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, sources)

	result, _, err := newTestServer().handleAnalyzeRepository(context.Background(), nil, RepositoryInput{
		AnalyzeInput: AnalyzeInput{Path: dir, Format: "json"},
	})
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(textOf(t, result)), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"metadata", "classes", "methods", "stats", "git_error", "tests"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("report missing %q", key)
		}
	}
}

func TestHandleRepository_MissingPath(t *testing.T) {
	result, _, err := newTestServer().handleAnalyzeRepository(context.Background(), nil, RepositoryInput{
		AnalyzeInput: AnalyzeInput{Path: filepath.Join(t.TempDir(), "missing")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("missing path should be a tool error")
	}
}

func TestParseFrontmatter(t *testing.T) {
	fm, body := parseFrontmatter([]byte("---\ndescription: Do it\narguments:\n  - name: path\n    required: true\n---\nRun on {{path}}\n"))
	if fm.Description != "Do it" {
		t.Errorf("description = %q", fm.Description)
	}
	if len(fm.Arguments) != 1 || fm.Arguments[0].Name != "path" || !fm.Arguments[0].Required {
		t.Errorf("arguments = %+v", fm.Arguments)
	}
	if body != "Run on {{path}}\n" {
		t.Errorf("body = %q", body)
	}

	fm, body = parseFrontmatter([]byte("no frontmatter"))
	if fm.Description != "" || body != "no frontmatter" {
		t.Errorf("plain content changed: %+v %q", fm, body)
	}
}

func TestSubstituteArgs(t *testing.T) {
	args := []promptArgument{{Name: "path"}, {Name: "class"}}
	got := substituteArgs("{{class}} in {{path}}", args, map[string]string{"class": "Player"})
	if got != "Player in ." {
		t.Errorf("got %q, want default path", got)
	}
}

// TestPromptFiles verifies every embedded prompt parses and renders.
func TestPromptFiles(t *testing.T) {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("no prompts embedded")
	}
	for _, entry := range entries {
		t.Run(entry.Name(), func(t *testing.T) {
			content, err := promptFiles.ReadFile("prompts/" + entry.Name())
			if err != nil {
				t.Fatal(err)
			}
			fm, body := parseFrontmatter(content)
			if fm.Description == "" {
				t.Error("prompt description is empty")
			}
			result, err := makePromptHandler(fm, body)(context.Background(), &mcp.GetPromptRequest{
				Params: &mcp.GetPromptParams{Name: entry.Name(), Arguments: map[string]string{"class": "Player"}},
			})
			if err != nil {
				t.Fatal(err)
			}
			text := result.Messages[0].Content.(*mcp.TextContent).Text
			if strings.Contains(text, "{{") {
				t.Errorf("unsubstituted placeholder in:\n%s", text)
			}
		})
	}
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("")
	if err != nil {
		t.Fatal(err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m.Version != "0.0.0" || m.Name != "io.github.panbanda/ooscan" {
		t.Errorf("manifest = %+v", m)
	}
	if len(m.Packages) != 1 || m.Packages[0].Identifier != "ghcr.io/panbanda/ooscan:0.0.0" {
		t.Errorf("packages = %+v", m.Packages)
	}
}

func TestGenerateManifest_Version(t *testing.T) {
	data, err := GenerateManifest("1.4.0")
	if err != nil {
		t.Fatal(err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	pkg := m.Packages[0]
	if pkg.Identifier != "ghcr.io/panbanda/ooscan:1.4.0" {
		t.Errorf("identifier = %q", pkg.Identifier)
	}
	if len(pkg.PackageArguments) != 1 || pkg.PackageArguments[0].Value != "mcp" {
		t.Errorf("arguments = %+v", pkg.PackageArguments)
	}
	if len(pkg.EnvironmentVariables) != 1 || pkg.EnvironmentVariables[0].Name != "OOSCAN_CONFIG" {
		t.Errorf("environment = %+v", pkg.EnvironmentVariables)
	}
}
