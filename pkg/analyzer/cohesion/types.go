package cohesion

import (
	"sort"
	"time"

	"github.com/panbanda/ooscan/pkg/models"
	"github.com/panbanda/ooscan/pkg/stats"
)

// Summary provides repository-wide aggregates over the recovered model.
type Summary struct {
	TotalFiles         int `json:"total_files"`
	TotalDeclarations  int `json:"total_classes"`
	TotalMethods       int `json:"total_methods"`
	TotalFreeFunctions int `json:"total_free_functions"`

	TotalLines   int `json:"total_lines"`
	CodeLines    int `json:"code_lines"`
	CommentLines int `json:"comment_lines"`
	BlankLines   int `json:"blank_lines"`
	// Comment lines as a percentage of all lines
	CommentDensity float64 `json:"comment_density"`

	MeanMethodSize         float64 `json:"mean_method_loc"`
	MedianMethodSize       float64 `json:"median_method_loc"`
	MeanMethodComplexity   float64 `json:"mean_method_complexity"`
	MedianMethodComplexity float64 `json:"median_method_complexity"`

	AvgWMC  float64 `json:"avg_wmc"`
	AvgCBO  float64 `json:"avg_cbo"`
	AvgRFC  float64 `json:"avg_rfc"`
	AvgLCOM float64 `json:"avg_lcom"`
	MaxWMC  int     `json:"max_wmc"`
	MaxCBO  int     `json:"max_cbo"`
	MaxRFC  int     `json:"max_rfc"`
	MaxLCOM int     `json:"max_lcom"`
	MaxDIT  int     `json:"max_dit"`

	// Declarations with LCOM > 0: more method pairs share nothing than share a field.
	LowCohesionCount int `json:"low_cohesion_count"`

	DuplicateNames []string   `json:"duplicate_names,omitempty"`
	CouplingCycles [][]string `json:"coupling_cycles,omitempty"`
}

// Analysis is the merged model of a run.
type Analysis struct {
	GeneratedAt   time.Time                 `json:"generated_at"`
	Declarations  []*models.TypeDeclaration `json:"classes"`
	Methods       []*models.MethodSpan      `json:"methods"`
	FreeFunctions []*models.MethodSpan      `json:"free_functions,omitempty"`
	Files         []models.FileStats        `json:"files"`
	Summary       Summary                   `json:"summary"`
}

// CalculateSummary computes summary statistics. Duplicate names and coupling
// cycles are filled by Aggregate.
func (c *Analysis) CalculateSummary() {
	s := &c.Summary
	s.TotalFiles = len(c.Files)
	s.TotalDeclarations = len(c.Declarations)
	s.TotalMethods = len(c.Methods)
	s.TotalFreeFunctions = len(c.FreeFunctions)

	for _, f := range c.Files {
		s.TotalLines += f.TotalLines
		s.CodeLines += f.CodeLines
		s.CommentLines += f.CommentLines
		s.BlankLines += f.BlankLines
	}
	if s.TotalLines > 0 {
		s.CommentDensity = float64(s.CommentLines) / float64(s.TotalLines) * 100
	}

	sizes := make([]int, len(c.Methods))
	complexity := make([]int, len(c.Methods))
	for i, m := range c.Methods {
		sizes[i] = m.Size
		complexity[i] = m.Complexity
	}
	s.MeanMethodSize = stats.Mean(stats.Ints(sizes))
	s.MedianMethodSize = stats.Median(stats.Ints(sizes))
	s.MeanMethodComplexity = stats.Mean(stats.Ints(complexity))
	s.MedianMethodComplexity = stats.Median(stats.Ints(complexity))

	if len(c.Declarations) == 0 {
		return
	}

	var totalWMC, totalCBO, totalRFC, totalLCOM int
	for _, d := range c.Declarations {
		m := d.Metrics
		totalWMC += m.WMC
		totalCBO += m.CBO
		totalRFC += m.RFC
		totalLCOM += m.LCOM

		s.MaxWMC = max(s.MaxWMC, m.WMC)
		s.MaxCBO = max(s.MaxCBO, m.CBO)
		s.MaxRFC = max(s.MaxRFC, m.RFC)
		s.MaxLCOM = max(s.MaxLCOM, m.LCOM)
		s.MaxDIT = max(s.MaxDIT, m.DIT)
		if m.LCOM > 0 {
			s.LowCohesionCount++
		}
	}

	n := float64(len(c.Declarations))
	s.AvgWMC = float64(totalWMC) / n
	s.AvgCBO = float64(totalCBO) / n
	s.AvgRFC = float64(totalRFC) / n
	s.AvgLCOM = float64(totalLCOM) / n
}

// SortKey names a declaration ordering.
type SortKey string

// Sort keys accepted by SortBy.
const (
	SortByName  SortKey = "name"
	SortByWMC   SortKey = "wmc"
	SortByCBO   SortKey = "cbo"
	SortByRFC   SortKey = "rfc"
	SortByLCOM  SortKey = "lcom"
	SortByDIT   SortKey = "dit"
	SortByNOC   SortKey = "noc"
	SortByFanIn SortKey = "fan_in"
)

// SortKeys lists the accepted sort keys.
var SortKeys = []SortKey{SortByName, SortByWMC, SortByCBO, SortByRFC, SortByLCOM, SortByDIT, SortByNOC, SortByFanIn}

// ParseSortKey maps a user-supplied key to a SortKey.
func ParseSortKey(s string) (SortKey, bool) {
	for _, k := range SortKeys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// SortBy orders declarations by key, descending for metrics and ascending
// for names. The sort is stable so ties keep path order.
func (c *Analysis) SortBy(key SortKey) {
	metric := func(d *models.TypeDeclaration) int {
		switch key {
		case SortByWMC:
			return d.Metrics.WMC
		case SortByCBO:
			return d.Metrics.CBO
		case SortByRFC:
			return d.Metrics.RFC
		case SortByLCOM:
			return d.Metrics.LCOM
		case SortByDIT:
			return d.Metrics.DIT
		case SortByNOC:
			return d.Metrics.NOC
		case SortByFanIn:
			return d.Metrics.FanIn
		}
		return 0
	}
	sort.SliceStable(c.Declarations, func(i, j int) bool {
		if key == SortByName {
			return c.Declarations[i].Name < c.Declarations[j].Name
		}
		return metric(c.Declarations[i]) > metric(c.Declarations[j])
	})
}

// SortMethodsBy orders methods by "complexity", "loc" or "params", descending.
func (c *Analysis) SortMethodsBy(key string) {
	value := func(m *models.MethodSpan) int {
		switch key {
		case "loc", "size":
			return m.Size
		case "params":
			return m.ParameterCount
		}
		return m.Complexity
	}
	sort.SliceStable(c.Methods, func(i, j int) bool {
		return value(c.Methods[i]) > value(c.Methods[j])
	})
}
