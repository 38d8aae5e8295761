package churn

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/panbanda/ooscan/pkg/stats"
)

// DateLayout formats commit dates in the result.
const DateLayout = "2006-01-02"

// FileMetrics represents git churn data for a single file.
type FileMetrics struct {
	Path         string    `json:"path"`
	Commits      int       `json:"commit_count"`
	Authors      int       `json:"unique_authors"`
	LinesAdded   int       `json:"additions"`
	LinesDeleted int       `json:"deletions"`
	ChurnScore   float64   `json:"churn_score"` // 0.0-1.0 normalized
	FirstCommit  time.Time `json:"first_seen"`
	LastCommit   time.Time `json:"last_modified"`

	authors map[string]struct{}
}

// CalculateChurnScoreWithMax computes a normalized churn score:
// commit_factor * 0.6 + change_factor * 0.4, each factor capped at 1.
func (f *FileMetrics) CalculateChurnScoreWithMax(maxCommits, maxChanges int) float64 {
	var commitFactor, changeFactor float64
	if maxCommits > 0 {
		commitFactor = min(float64(f.Commits)/float64(maxCommits), 1.0)
	}
	if maxChanges > 0 {
		changeFactor = min(float64(f.LinesAdded+f.LinesDeleted)/float64(maxChanges), 1.0)
	}
	f.ChurnScore = min(commitFactor*0.6+changeFactor*0.4, 1.0)
	return f.ChurnScore
}

// Summary provides aggregate statistics over the per-file metrics.
type Summary struct {
	TotalFilesChanged int      `json:"total_files_changed"`
	HotspotFiles      []string `json:"hotspot_files"`
	MeanChurnScore    float64  `json:"mean_churn_score"`
	StdDevChurnScore  float64  `json:"stddev_churn_score"`
	MaxChurnScore     float64  `json:"max_churn_score,omitempty"`
	P50ChurnScore     float64  `json:"p50_churn_score,omitempty"`
	P95ChurnScore     float64  `json:"p95_churn_score,omitempty"`
}

// HotspotThreshold is the churn score at which a file is a hotspot.
const HotspotThreshold = 0.5

// CalculateStatistics computes the score distribution and the hotspots.
// files must be sorted by ChurnScore descending.
func (s *Summary) CalculateStatistics(files []FileMetrics) {
	s.TotalFilesChanged = len(files)
	s.HotspotFiles = make([]string, 0)
	if len(files) == 0 {
		return
	}

	scores := make([]float64, len(files))
	for i, f := range files {
		scores[i] = f.ChurnScore
	}
	s.MeanChurnScore, s.StdDevChurnScore = stat.PopMeanStdDev(scores, nil)
	s.MaxChurnScore = files[0].ChurnScore

	sort.Float64s(scores)
	s.P50ChurnScore = stats.Percentile(scores, 50)
	s.P95ChurnScore = stats.Percentile(scores, 95)

	for i := 0; i < len(files) && i < 10; i++ {
		if files[i].ChurnScore > HotspotThreshold {
			s.HotspotFiles = append(s.HotspotFiles, files[i].Path)
		}
	}
}

// Analysis is the repository history summary.
type Analysis struct {
	GeneratedAt     time.Time `json:"generated_at"`
	RepositoryRoot  string    `json:"repository_root"`
	TotalCommits    int       `json:"total_commits"`
	TotalChurn      int       `json:"total_churn"`
	TotalAdditions  int       `json:"total_additions"`
	TotalDeletions  int       `json:"total_deletions"`
	CommitsPerMonth float64   `json:"commits_per_month"`

	RecentDays        int `json:"recent_days"`
	RecentCommitCount int `json:"recent_commit_count"`
	RecentChurn       int `json:"recent_churn"`

	FirstCommitDate string `json:"first_commit_date"`
	LastCommitDate  string `json:"last_commit_date"`

	Files   []FileMetrics `json:"files,omitempty"`
	Summary Summary       `json:"summary"`
}
