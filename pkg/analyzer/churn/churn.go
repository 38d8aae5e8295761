// Package churn walks git history for commit volume and line churn.
package churn

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/panbanda/ooscan/pkg/analyzer"
)

// DefaultRecentDays is the length of the recent-activity window.
const DefaultRecentDays = 90

// ErrNoHistory is returned for a repository without commits.
var ErrNoHistory = errors.New("repository has no commits")

// Analyzer analyzes git commit history for churn.
type Analyzer struct {
	recentDays int
	revision   string
	now        func() time.Time
}

// Compile-time check that Analyzer implements RepoAnalyzer.
var _ analyzer.RepoAnalyzer[*Analysis] = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithRecentDays sets the recent-activity window.
func WithRecentDays(days int) Option {
	return func(a *Analyzer) {
		if days > 0 {
			a.recentDays = days
		}
	}
}

// WithClock replaces time.Now for the recent window.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// WithRevision starts the walk at rev instead of HEAD.
func WithRevision(rev string) Option {
	return func(a *Analyzer) {
		a.revision = rev
	}
}

// New creates a new churn analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		recentDays: DefaultRecentDays,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type commitStat struct {
	date  time.Time
	churn int
}

// Analyze walks every commit reachable from HEAD, or from the configured
// revision. Repository totals cover
// every changed file; per-file metrics are kept for files, or for every file
// when files is empty.
func (a *Analyzer) Analyze(ctx context.Context, repoPath string, files []string) (*Analysis, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	from, err := a.start(repo)
	if err != nil {
		return nil, err
	}
	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	defer iter.Close()

	var wanted map[string]bool
	if len(files) > 0 {
		wanted = make(map[string]bool, len(files))
		for _, f := range files {
			wanted[filepath.ToSlash(f)] = true
		}
	}

	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		absPath = repoPath
	}
	analysis := &Analysis{
		GeneratedAt:    a.now().UTC(),
		RepositoryRoot: absPath,
		RecentDays:     a.recentDays,
	}
	perFile := make(map[string]*FileMetrics)
	var commits []commitStat

	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		fileStats, err := c.StatsContext(ctx)
		if err != nil {
			return fmt.Errorf("stats %s: %w", c.Hash, err)
		}

		cs := commitStat{date: day(c.Author.When)}
		for _, fs := range fileStats {
			analysis.TotalAdditions += fs.Addition
			analysis.TotalDeletions += fs.Deletion
			cs.churn += fs.Addition + fs.Deletion

			if wanted != nil && !wanted[fs.Name] {
				continue
			}
			record(perFile, fs, c.Author)
		}
		commits = append(commits, cs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, ErrNoHistory
	}

	a.summarize(analysis, commits)
	analysis.Files = rank(perFile)
	analysis.Summary.CalculateStatistics(analysis.Files)
	return analysis, nil
}

func (a *Analyzer) start(repo *git.Repository) (plumbing.Hash, error) {
	if a.revision != "" {
		hash, err := repo.ResolveRevision(plumbing.Revision(a.revision))
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("resolve %q: %w", a.revision, err)
		}
		return *hash, nil
	}
	head, err := repo.Head()
	if err != nil {
		return plumbing.ZeroHash, ErrNoHistory
	}
	return head.Hash(), nil
}

func (a *Analyzer) summarize(analysis *Analysis, commits []commitStat) {
	analysis.TotalCommits = len(commits)
	analysis.TotalChurn = analysis.TotalAdditions + analysis.TotalDeletions

	first, last := commits[0].date, commits[0].date
	for _, c := range commits[1:] {
		if c.date.Before(first) {
			first = c.date
		}
		if c.date.After(last) {
			last = c.date
		}
	}
	analysis.FirstCommitDate = first.Format(DateLayout)
	analysis.LastCommitDate = last.Format(DateLayout)

	spanDays := int(last.Sub(first).Hours() / 24)
	if spanDays == 0 {
		spanDays = 1
	}
	analysis.CommitsPerMonth = float64(len(commits)) / max(float64(spanDays)/30.0, 1)

	cutoff := day(a.now().UTC()).AddDate(0, 0, -a.recentDays)
	for _, c := range commits {
		if !c.date.Before(cutoff) {
			analysis.RecentCommitCount++
			analysis.RecentChurn += c.churn
		}
	}
}

func record(perFile map[string]*FileMetrics, fs object.FileStat, author object.Signature) {
	fm, ok := perFile[fs.Name]
	if !ok {
		fm = &FileMetrics{
			Path:        fs.Name,
			FirstCommit: author.When,
			LastCommit:  author.When,
			authors:     make(map[string]struct{}),
		}
		perFile[fs.Name] = fm
	}
	fm.Commits++
	fm.LinesAdded += fs.Addition
	fm.LinesDeleted += fs.Deletion
	fm.authors[author.Name] = struct{}{}
	fm.Authors = len(fm.authors)
	if author.When.Before(fm.FirstCommit) {
		fm.FirstCommit = author.When
	}
	if author.When.After(fm.LastCommit) {
		fm.LastCommit = author.When
	}
}

// rank scores every file against the busiest one and sorts by score, then
// path.
func rank(perFile map[string]*FileMetrics) []FileMetrics {
	var maxCommits, maxChanges int
	for _, fm := range perFile {
		maxCommits = max(maxCommits, fm.Commits)
		maxChanges = max(maxChanges, fm.LinesAdded+fm.LinesDeleted)
	}

	files := make([]FileMetrics, 0, len(perFile))
	for _, fm := range perFile {
		fm.CalculateChurnScoreWithMax(maxCommits, maxChanges)
		files = append(files, *fm)
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].ChurnScore != files[j].ChurnScore {
			return files[i].ChurnScore > files[j].ChurnScore
		}
		return files[i].Path < files[j].Path
	})
	return files
}

// day truncates t to its calendar date in its own location, as UTC midnight.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
