package analysis

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/ooscan/internal/fileproc"
	"github.com/panbanda/ooscan/internal/report"
	scannerSvc "github.com/panbanda/ooscan/internal/service/scanner"
	"github.com/panbanda/ooscan/internal/testutil"
	"github.com/panbanda/ooscan/pkg/analyzer/cohesion"
	"github.com/panbanda/ooscan/pkg/config"
	"github.com/panbanda/ooscan/pkg/models"
	"github.com/panbanda/ooscan/pkg/parser"
)

var fixture = map[string]string{
	"Scripts/Actor.cs": `namespace Game
{
    public class Actor
    {
        protected int hp;
    }
}
`,
	"Scripts/Player.cs": `namespace Game
{
    public class Player : Actor, IDamageable
    {
        private int mana;

        public void Hit(int damage)
        {
            if (damage > 0) { hp -= damage; }
        }

        public void Cast()
        {
            mana -= 1;
        }
    }
}
`,
	"Tests/PlayerTests.cs": `public class PlayerTests
{
    [Test]
    public void Hits() { var p = new Player(); p.Hit(1); }

    [Test]
    public void Casts() { var p = new Player(); p.Cast(); }
}
`,
	"README.md": "not source",
}

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newService(opts ...Option) *Service {
	return New(append([]Option{WithClock(func() time.Time { return fixedNow }), WithVersion("test")}, opts...)...)
}

func findClass(t *testing.T, r *report.Report, name string) report.Class {
	t.Helper()
	for _, c := range r.Classes {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("class %s not in report", name)
	return report.Class{}
}

func TestNew(t *testing.T) {
	svc := New()
	require.NotNil(t, svc.Config())
	assert.Equal(t, []string{".cs"}, svc.Config().Analysis.Extensions)

	cfg := config.DefaultConfig()
	assert.Same(t, cfg, New(WithConfig(cfg)).Config())
}

func TestScan_NoSourceFiles(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "README.md"), "nothing here")

	_, err := New().Scan(dir, "")
	assert.ErrorIs(t, err, ErrNoSourceFiles)
}

func TestAnalyze_WithoutGit(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, fixture)

	r, err := newService().Analyze(context.Background(), dir, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(dir), r.Metadata.Repository)
	assert.Equal(t, "test", r.Metadata.Version)
	assert.Equal(t, fixedNow, r.Metadata.GeneratedAt)
	assert.Equal(t, 3, r.SourceFiles)
	require.Len(t, r.Classes, 3)

	player := findClass(t, r, "Player")
	assert.Equal(t, "Game", player.Namespace)
	assert.Equal(t, "Actor", player.BaseClass)
	assert.Equal(t, []string{"IDamageable"}, player.Interfaces)
	assert.Equal(t, 1, player.DIT)
	assert.Equal(t, []string{"Cast", "Hit"}, sortedCopy(player.Methods))
	assert.Equal(t, 1, player.FanIn, "PlayerTests mentions Player")

	actor := findClass(t, r, "Actor")
	assert.Equal(t, 1, actor.NOC)

	require.NotNil(t, r.Tests)
	assert.Equal(t, 1, r.Tests.TestFiles)
	assert.Equal(t, 2, r.Tests.TestMethods)
	assert.NotNil(t, r.Duplicates)

	assert.Nil(t, r.Git)
	assert.NotEmpty(t, r.GitError)
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func TestAnalyze_DisabledBlocks(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, fixture)

	cfg := config.DefaultConfig()
	cfg.Churn.Enabled = false
	cfg.Duplicates.Enabled = false
	cfg.Analysis.IncludeTests = false

	r, err := newService(WithConfig(cfg)).Analyze(context.Background(), dir, RunOptions{})
	require.NoError(t, err)
	assert.Nil(t, r.Duplicates)
	assert.Nil(t, r.Tests)
	assert.Nil(t, r.Git)
	assert.Empty(t, r.GitError)
}

func TestAnalyze_WithGit(t *testing.T) {
	repo := testutil.InitRepo(t)
	repo.Commit(fixture, "alice", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	repo.Commit(map[string]string{
		"Scripts/Actor.cs": "namespace Game { public class Actor { protected int hp; protected int armor; } }\n",
	}, "bob", time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))

	r, err := newService().Analyze(context.Background(), repo.Path, RunOptions{Sort: cohesion.SortByName})
	require.NoError(t, err)

	require.NotNil(t, r.Git, r.GitError)
	assert.Equal(t, 2, r.Git.TotalCommits)
	assert.Equal(t, 1, r.Git.RecentCommitCount, "only the May commit is inside 90 days")
	assert.Equal(t, "2024-01-10", r.Git.FirstCommitDate)
	assert.Equal(t, "2024-05-20", r.Git.LastCommitDate)
	assert.Equal(t, []string{"Actor", "Player", "PlayerTests"}, []string{r.Classes[0].Name, r.Classes[1].Name, r.Classes[2].Name})
}

func TestAnalyze_Revision(t *testing.T) {
	repo := testutil.InitRepo(t)
	first := repo.Commit(map[string]string{"A.cs": "class A { }\n"}, "alice", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	repo.Tag("v1", first)
	repo.Commit(map[string]string{"B.cs": "class B : A { }\n"}, "alice", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	r, err := newService().Analyze(context.Background(), repo.Path, RunOptions{Revision: "v1"})
	require.NoError(t, err)
	assert.Equal(t, "v1", r.Metadata.Revision)
	require.Len(t, r.Classes, 1)
	assert.Equal(t, "A", r.Classes[0].Name)
	require.NotNil(t, r.Git)
	assert.Equal(t, 1, r.Git.TotalCommits, "history stops at the analyzed revision")

	head, err := newService().Analyze(context.Background(), repo.Path, RunOptions{})
	require.NoError(t, err)
	assert.Len(t, head.Classes, 2)
}

func TestAnalyze_RevisionOutsideRepo(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, fixture)

	_, err := newService().Analyze(context.Background(), dir, RunOptions{Revision: "HEAD"})
	var gitErr *scannerSvc.GitError
	assert.ErrorAs(t, err, &gitErr)
}

func TestAnalyze_Progress(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, fixture)

	var calls atomic.Int32
	var lastTotal atomic.Int32
	_, err := newService().Analyze(context.Background(), dir, RunOptions{
		OnProgress: func(current, total int, _ string) {
			calls.Add(1)
			lastTotal.Store(int32(total))
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int32(3), lastTotal.Load())
}

type failingBoundaries struct {
	fail string
}

func (f failingBoundaries) Functions(_ context.Context, _ *parser.Parser, unit *models.SourceUnit) ([]*models.MethodSpan, error) {
	if filepath.Base(unit.Path) == f.fail {
		return nil, errors.New("boundary analysis failed")
	}
	return nil, nil
}

func TestAnalyze_SkippedFiles(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, fixture)

	r, err := newService(WithBoundaryAnalyzer(failingBoundaries{fail: "Player.cs"})).
		Analyze(context.Background(), dir, RunOptions{})
	require.NoError(t, err)

	require.Len(t, r.Skipped, 1)
	assert.Contains(t, r.Skipped[0], "Player.cs")
	assert.Len(t, r.Classes, 2)
	assert.Equal(t, 3, r.SourceFiles, "skipped files still count as scanned")
}

func TestSkippedFiles(t *testing.T) {
	classes := &fileproc.ProcessingErrors{}
	classes.Add("Broken.cs", errors.New("boundary analysis failed"))
	classes.Add("Gone.cs", errors.New("read: missing"))
	dups := &fileproc.ProcessingErrors{}
	dups.Add("Gone.cs", errors.New("read: missing"))
	dups.Add("Locked.cs", errors.New("read: permission denied"))

	assert.Equal(t, []string{
		"Broken.cs: boundary analysis failed",
		"Gone.cs: read: missing",
		"Locked.cs: read: permission denied",
	}, skippedFiles(classes, nil, dups))
	assert.Empty(t, skippedFiles(nil, nil))
}

func TestAnalyze_Cancelled(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, fixture)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newService().Analyze(ctx, dir, RunOptions{})
	assert.Error(t, err)
}

func TestRepoRelative(t *testing.T) {
	scan := &scannerSvc.ScanResult{Root: "/repo/src", RepoRoot: "/repo", Files: []string{"A.cs", "sub/B.cs"}}
	assert.Equal(t, []string{"src/A.cs", "src/sub/B.cs"}, repoRelative(scan))

	same := &scannerSvc.ScanResult{Root: "/repo", RepoRoot: "/repo", Files: []string{"A.cs"}}
	assert.Equal(t, []string{"A.cs"}, repoRelative(same))
}

func TestAnalyzeChurn_Subdirectory(t *testing.T) {
	repo := testutil.InitRepo(t)
	repo.Commit(map[string]string{"src/A.cs": "class A { }\n", "Other.cs": "class O { }\n"}, "alice", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	svc := newService()
	scan, err := svc.Scan(filepath.Join(repo.Path, "src"), "")
	require.NoError(t, err)

	history, err := svc.AnalyzeChurn(context.Background(), scan, ChurnOptions{RecentDays: 365})
	require.NoError(t, err)
	assert.Equal(t, 365, history.RecentDays)
	require.Len(t, history.Files, 1)
	assert.Equal(t, "src/A.cs", history.Files[0].Path)
}
