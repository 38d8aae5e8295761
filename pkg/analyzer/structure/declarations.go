// Package structure recovers type declarations and their members from C#-style
// source text using lexical heuristics only. Every routine works on text that
// went through lexer.Normalize, so braces and identifiers inside literals and
// comments never count.
package structure

import (
	"regexp"
	"sort"
	"strings"

	"github.com/panbanda/ooscan/pkg/lexer"
	"github.com/panbanda/ooscan/pkg/models"
)

var (
	// attribute groups, modifiers, kind, name with optional generic
	// parameters, optional primary constructor, optional base list or
	// constraint clause, then the body. The match start is the declaration
	// start.
	headerPattern = regexp.MustCompile(
		`(?:\[[^\]]*\]\s*)*` +
			`\b(?:(?:public|private|protected|internal|static|sealed|abstract|partial|new|readonly|unsafe|ref|record)\s+)*` +
			`(class|struct|interface|record)\s+` +
			`([A-Za-z_]\w*)(\s*<[^<>{};]*(?:<[^<>{};]*>[^<>{};]*)*>)?` +
			`(?:\s*\([^(){};]*\))?` +
			`\s*(?::([^{;]+)|(where\b[^{;]+))?` +
			`\{`)

	namespacePattern = regexp.MustCompile(`\bnamespace\s+([A-Za-z0-9_.]+)`)
	wherePattern     = regexp.MustCompile(`\bwhere\b`)
	identPattern     = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*`)
)

// ExtractDeclarations finds every balanced type declaration in unit. Nested
// declarations are reported separately, in order of their headers. Candidates
// whose body never closes are dropped.
func ExtractDeclarations(unit *models.SourceUnit) []*models.TypeDeclaration {
	return extract(unit, lexer.Normalize(unit.Text))
}

func extract(unit *models.SourceUnit, norm string) []*models.TypeDeclaration {
	namespaces := namespacePattern.FindAllStringSubmatchIndex(norm, -1)

	var decls []*models.TypeDeclaration
	for _, m := range headerPattern.FindAllStringSubmatchIndex(norm, -1) {
		open := m[1] - 1
		end, ok := lexer.MatchBlock(norm, open)
		if !ok {
			continue
		}

		kind, _ := models.ParseKind(norm[m[2]:m[3]])
		var bases []string
		if m[8] >= 0 {
			bases = SplitBases(norm[m[8]:m[9]])
		}

		start := m[0]
		decls = append(decls, &models.TypeDeclaration{
			Name:        norm[m[4]:m[5]],
			Kind:        kind,
			Path:        unit.Path,
			StartLine:   unit.Line(start),
			EndLine:     unit.Line(end),
			Namespace:   namespaceAt(norm, namespaces, start),
			BasesRaw:    bases,
			Interfaces:  []string{},
			Fields:      ExtractFields(norm[open+1 : end]),
			Identifiers: Identifiers(norm[start : end+1]),
		})
	}
	return decls
}

// namespaceAt returns the last namespace named before offset. This is the
// innermost-enclosing guess, not a scope stack.
func namespaceAt(text string, matches [][]int, offset int) string {
	i := sort.Search(len(matches), func(i int) bool {
		return matches[i][0] >= offset
	})
	if i == 0 {
		return ""
	}
	m := matches[i-1]
	return text[m[2]:m[3]]
}

// SplitBases splits a raw base list on commas at bracket depth zero. A trailing
// generic constraint clause is removed first.
func SplitBases(raw string) []string {
	if loc := wherePattern.FindStringIndex(raw); loc != nil {
		raw = raw[:loc[0]]
	}
	return lexer.SplitTopLevel(raw, ',')
}

// BaseName reduces a base-list entry to the simple name it can resolve to:
// generic arguments, constructor arguments and namespace qualifiers are
// dropped.
func BaseName(entry string) string {
	if i := strings.IndexAny(entry, "<("); i >= 0 {
		entry = entry[:i]
	}
	if i := strings.LastIndexByte(entry, '.'); i >= 0 {
		entry = entry[i+1:]
	}
	return strings.TrimSpace(entry)
}

// Identifiers returns every identifier token in text.
func Identifiers(text string) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, id := range identPattern.FindAllString(text, -1) {
		ids[id] = struct{}{}
	}
	return ids
}
