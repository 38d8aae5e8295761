package models

// FileStats holds line-level metrics for one source file.
type FileStats struct {
	Path         string `json:"path"`
	Hash         string `json:"hash"`
	TotalLines   int    `json:"total_lines"`
	BlankLines   int    `json:"blank_lines"`
	CommentLines int    `json:"comment_lines"`
	CodeLines    int    `json:"code_lines"`
	UsingCount   int    `json:"using_count"`
	Cyclomatic   int    `json:"cyclomatic_total"`
	Methods      int    `json:"methods"`
	Types        int    `json:"types"`
}
