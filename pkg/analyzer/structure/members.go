package structure

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/panbanda/ooscan/pkg/lexer"
	"github.com/panbanda/ooscan/pkg/models"
)

var (
	attributePattern = regexp.MustCompile(`\[[^\]]*\]\s*`)
	modifierPattern  = regexp.MustCompile(`\b(?:public|private|protected|internal|static|readonly|volatile|const|unsafe|new|sealed|virtual|override|abstract|extern|partial)\b`)
)

// ExtractFields returns the field names declared directly in a normalized
// declaration body (the text between its braces).
func ExtractFields(body string) models.FieldSet {
	fields := models.NewFieldSet()
	for _, stmt := range SplitStatements(body) {
		for _, name := range fieldNames(stmt) {
			if validFieldName(name) {
				fields.Add(name)
			}
		}
	}
	return fields
}

// SplitStatements returns the depth-zero, semicolon-terminated statements of
// body. Text inside nested braces is skipped. A statement interrupted by a
// block (a property initializer, an array initializer) continues after the
// block only when the next significant character is '=', ',' or ';'; any other
// block, such as a method body, discards what preceded it.
func SplitStatements(body string) []string {
	var (
		stmts []string
		buf   strings.Builder
		depth = lexer.BraceDepth()
	)
	for i := 0; i < len(body); i++ {
		c := body[i]
		before := depth.Level()
		after := depth.Step(c)

		switch {
		case before == 0 && after == 0:
			if c == ';' {
				if s := strings.TrimSpace(buf.String()); s != "" {
					stmts = append(stmts, s)
				}
				buf.Reset()
				continue
			}
			if c != '}' {
				buf.WriteByte(c)
			}
		case before > 0 && after == 0:
			if !continuesStatement(body[i+1:]) {
				buf.Reset()
			}
		}
	}
	return stmts
}

func continuesStatement(rest string) bool {
	rest = strings.TrimLeft(rest, " \t\r\n")
	return rest != "" && strings.IndexByte("=,;", rest[0]) >= 0
}

// fieldNames classifies a statement and returns the declarator names it
// introduces, or nil when it is not a field declaration.
func fieldNames(stmt string) []string {
	if stmt == "" || strings.Contains(stmt, "=>") || strings.Contains(stmt, "(") {
		return nil
	}
	stmt = attributePattern.ReplaceAllString(stmt, " ")
	stmt = strings.TrimSpace(modifierPattern.ReplaceAllString(stmt, ""))
	if stmt == "" {
		return nil
	}

	segments := SplitDeclarators(stmt)
	if len(segments) <= 1 {
		return []string{declaratorName(stmt)}
	}

	// The first segment carries the type prefix; the rest are bare
	// declarators.
	names := make([]string, 0, len(segments))
	for _, seg := range segments {
		names = append(names, declaratorName(seg))
	}
	return names
}

// SplitDeclarators splits a field statement on commas outside brackets.
func SplitDeclarators(stmt string) []string {
	return lexer.SplitTopLevel(stmt, ',')
}

// declaratorName returns the last token before any initializer with a trailing
// array suffix removed.
func declaratorName(decl string) string {
	if i := strings.IndexByte(decl, '='); i >= 0 {
		decl = decl[:i]
	}
	tokens := strings.Fields(decl)
	if len(tokens) == 0 {
		return ""
	}
	return strings.TrimSuffix(tokens[len(tokens)-1], "[]")
}

func validFieldName(name string) bool {
	if name == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsLetter(r)
}
