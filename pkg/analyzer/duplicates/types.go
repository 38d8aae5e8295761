package duplicates

// Line is one normalized source line seen more than once.
type Line struct {
	Text        string         `json:"text"`
	Count       int            `json:"count"`
	Occurrences map[string]int `json:"occurrences"`
}

// Hotspot is a file carrying many repeated lines.
type Hotspot struct {
	File           string  `json:"file"`
	DuplicateLines int     `json:"duplicate_lines"`
	Considered     int     `json:"considered_lines"`
	Ratio          float64 `json:"ratio"`
}

// Analysis is the repository-wide duplicate-line result.
type Analysis struct {
	DuplicateLines    int       `json:"duplicate_lines"`
	TotalConsidered   int       `json:"total_considered"`
	Percentage        float64   `json:"percentage"`
	TotalFilesScanned int       `json:"total_files_scanned"`
	MinLineLength     int       `json:"min_line_length"`
	TopLines          []Line    `json:"top_lines,omitempty"`
	Hotspots          []Hotspot `json:"hotspots,omitempty"`
}

// Config controls which lines are considered.
type Config struct {
	// MinLineLength is the minimum trimmed length of a considered line.
	MinLineLength int
	// TopN bounds TopLines and Hotspots. 0 keeps them empty.
	TopN int
}

// DefaultConfig returns the default duplicate-line settings.
func DefaultConfig() Config {
	return Config{
		MinLineLength: 5,
		TopN:          10,
	}
}
