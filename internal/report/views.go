package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/panbanda/ooscan/internal/output"
	"github.com/panbanda/ooscan/pkg/analyzer/churn"
	"github.com/panbanda/ooscan/pkg/analyzer/duplicates"
	"github.com/panbanda/ooscan/pkg/config"
	"github.com/panbanda/ooscan/pkg/models"
)

var _ output.Renderable = (*Report)(nil)

func (r *Report) RenderData() any {
	return r
}

func (r *Report) RenderText(w io.Writer, colored bool) error {
	return r.document(colored).RenderText(w, colored)
}

func (r *Report) RenderMarkdown(w io.Writer) error {
	return r.document(false).RenderMarkdown(w)
}

func (r *Report) document(colored bool) *output.Report {
	doc := &output.Report{Title: "ooscan: " + r.Metadata.Repository}
	doc.Sections = append(doc.Sections, r.SummarySection())
	doc.Sections = append(doc.Sections,
		ClassTable(r.Classes, r.options.Thresholds, r.options.TopN, colored),
		MethodTable(r.Methods, r.options.TopN))
	if cycles := r.cyclesSection(); cycles != nil {
		doc.Sections = append(doc.Sections, cycles)
	}
	if r.Duplicates != nil {
		doc.Sections = append(doc.Sections, DuplicatesView(r.Duplicates))
	}
	if r.Git != nil {
		doc.Sections = append(doc.Sections, ChurnView(r.Git, r.options.TopN))
	}
	return doc
}

// SummarySection lists the repository-wide figures.
func (r *Report) SummarySection() *output.Section {
	s := r.Stats
	var lines []string
	add := func(label, value string) {
		lines = append(lines, fmt.Sprintf("%-26s %s", label+":", value))
	}

	add("Files", output.Num(s.TotalFiles))
	add("Classes", output.Num(s.TotalDeclarations))
	add("Methods", output.Num(s.TotalMethods))
	if s.TotalFreeFunctions > 0 {
		add("Free functions", output.Num(s.TotalFreeFunctions))
	}
	add("Lines (code/comment/blank)", fmt.Sprintf("%s (%s/%s/%s)",
		output.Num(s.TotalLines), output.Num(s.CodeLines), output.Num(s.CommentLines), output.Num(s.BlankLines)))
	add("Comment density", output.Float(s.CommentDensity)+"%")
	add("Method LOC mean/median", output.Float(s.MeanMethodSize)+" / "+output.Float(s.MedianMethodSize))
	add("Complexity mean/median", output.Float(s.MeanMethodComplexity)+" / "+output.Float(s.MedianMethodComplexity))
	add("Avg WMC/CBO/RFC/LCOM", strings.Join([]string{
		output.Float(s.AvgWMC), output.Float(s.AvgCBO), output.Float(s.AvgRFC), output.Float(s.AvgLCOM),
	}, " / "))
	add("Low cohesion classes", output.Num(s.LowCohesionCount))
	if len(s.DuplicateNames) > 0 {
		add("Duplicate class names", strings.Join(s.DuplicateNames, ", "))
	}
	if r.Duplicates != nil {
		add("Duplicate lines", fmt.Sprintf("%s of %s (%s%%)",
			output.Num(r.Duplicates.DuplicateLines), output.Num(r.Duplicates.TotalConsidered), output.Float(r.Duplicates.Percentage)))
	}
	if r.Tests != nil {
		add("Test files / [Test] methods", fmt.Sprintf("%d / %d", r.Tests.TestFiles, r.Tests.TestMethods))
	}
	if r.Git != nil {
		add("Commits", fmt.Sprintf("%s (%s/month, %d in last %d days)",
			output.Num(r.Git.TotalCommits), output.Float(r.Git.CommitsPerMonth), r.Git.RecentCommitCount, r.Git.RecentDays))
	} else if r.GitError != "" {
		add("Git history", "unavailable ("+r.GitError+")")
	}
	if len(r.Skipped) > 0 {
		add("Skipped files", output.Num(len(r.Skipped)))
	}

	return &output.Section{Title: "Summary", Content: strings.Join(lines, "\n"), Data: s}
}

func (r *Report) cyclesSection() *output.Section {
	cycles := r.Stats.CouplingCycles
	if len(cycles) == 0 {
		return nil
	}
	lines := make([]string, len(cycles))
	for i, c := range cycles {
		lines[i] = "- " + strings.Join(c, " <-> ")
	}
	return &output.Section{Title: "Coupling cycles", Content: strings.Join(lines, "\n"), Data: cycles}
}

func top[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// ClassTable renders per-class metrics. Values above a threshold are
// highlighted when colored.
func ClassTable(classes []Class, th config.ThresholdConfig, n int, colored bool) *output.Table {
	shown := top(classes, n)
	rows := make([][]string, len(shown))
	for i, c := range shown {
		rows[i] = []string{
			c.Name,
			c.Kind,
			fmt.Sprintf("%s:%d", c.Path, c.StartLine),
			output.Exceeds(c.WMC, th.WMC, colored),
			output.Exceeds(c.RFC, th.RFC, colored),
			output.Exceeds(c.LCOM, th.LCOM, colored),
			output.Exceeds(c.CBO, th.CBO, colored),
			fmt.Sprintf("%d", c.FanIn),
			output.Exceeds(c.DIT, th.DIT, colored),
			fmt.Sprintf("%d", c.NOC),
		}
	}
	title := "Classes"
	if len(shown) < len(classes) {
		title = fmt.Sprintf("Classes (top %d of %d)", len(shown), len(classes))
	}
	return output.NewTable(title,
		[]string{"Class", "Kind", "Location", "WMC", "RFC", "LCOM", "CBO", "Fan-in", "DIT", "NOC"},
		rows, nil, shown)
}

// MethodTable renders per-method size and complexity.
func MethodTable(methods []*models.MethodSpan, n int) *output.Table {
	shown := top(methods, n)
	rows := make([][]string, len(shown))
	for i, m := range shown {
		rows[i] = []string{
			m.QualifiedName,
			fmt.Sprintf("%s:%d-%d", m.Path, m.StartLine, m.EndLine),
			fmt.Sprintf("%d", m.Size),
			fmt.Sprintf("%d", m.Complexity),
			fmt.Sprintf("%d", m.ParameterCount),
		}
	}
	title := "Methods"
	if len(shown) < len(methods) {
		title = fmt.Sprintf("Methods (top %d of %d)", len(shown), len(methods))
	}
	return output.NewTable(title,
		[]string{"Method", "Location", "LOC", "Complexity", "Params"},
		rows, nil, shown)
}

// DuplicatesView renders the most repeated lines.
func DuplicatesView(d *duplicates.Analysis) *output.Table {
	rows := make([][]string, len(d.TopLines))
	for i, l := range d.TopLines {
		files := make([]string, 0, len(l.Occurrences))
		for f := range l.Occurrences {
			files = append(files, f)
		}
		sort.Strings(files)
		rows[i] = []string{fmt.Sprintf("%d", l.Count), fmt.Sprintf("%d", len(files)), truncate(l.Text, 60)}
	}
	footer := []string{
		fmt.Sprintf("%d dup", d.DuplicateLines),
		fmt.Sprintf("%d files", d.TotalFilesScanned),
		fmt.Sprintf("%s%% of %s lines", output.Float(d.Percentage), output.Num(d.TotalConsidered)),
	}
	return output.NewTable("Duplicate lines", []string{"Count", "Files", "Line"}, rows, footer, d)
}

// ChurnView renders repository history and the most churned files.
func ChurnView(a *churn.Analysis, n int) *output.Table {
	shown := top(a.Files, n)
	rows := make([][]string, len(shown))
	for i, f := range shown {
		rows[i] = []string{
			f.Path,
			fmt.Sprintf("%d", f.Commits),
			fmt.Sprintf("%d", f.Authors),
			fmt.Sprintf("+%d -%d", f.LinesAdded, f.LinesDeleted),
			output.Float(f.ChurnScore),
		}
	}
	footer := []string{
		fmt.Sprintf("%s commits", output.Num(a.TotalCommits)),
		fmt.Sprintf("%s - %s", a.FirstCommitDate, a.LastCommitDate),
		"",
		fmt.Sprintf("+%s -%s", output.Num(a.TotalAdditions), output.Num(a.TotalDeletions)),
		"",
	}
	return output.NewTable("Churn", []string{"File", "Commits", "Authors", "Lines", "Score"}, rows, footer, a)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
