// Package lines computes per-file line metrics: blank, comment and code line
// counts, the leading using-directive count and a content fingerprint.
package lines

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/panbanda/ooscan/pkg/lexer"
	"github.com/panbanda/ooscan/pkg/models"
)

// Count returns the line metrics of unit. methods contribute the cyclomatic
// total and method count.
func Count(unit *models.SourceUnit, methods []*models.MethodSpan) models.FileStats {
	stats := models.FileStats{
		Path:       unit.Path,
		Hash:       Hash([]byte(unit.Text)),
		TotalLines: unit.LineCount(),
		Methods:    len(methods),
	}

	raw := splitLines(unit.Text)
	code := splitLines(lexer.StripComments(unit.Text))
	for i, line := range raw {
		switch {
		case strings.TrimSpace(line) == "":
			stats.BlankLines++
		case i < len(code) && strings.TrimSpace(code[i]) != "":
			stats.CodeLines++
		}
	}
	stats.CommentLines = max(stats.TotalLines-stats.BlankLines-stats.CodeLines, 0)
	stats.UsingCount = UsingCount(raw)

	for _, m := range methods {
		stats.Cyclomatic += m.Complexity
	}
	return stats
}

// UsingCount counts the using directives at the top of a file. Counting stops
// at the first non-blank line that is not a using directive.
func UsingCount(lines []string) int {
	n := 0
	for _, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, "using ") {
			break
		}
		n++
	}
	return n
}

// Hash returns the hex BLAKE3 digest of content.
func Hash(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
