package structure

import (
	"regexp"
	"sort"

	"github.com/panbanda/ooscan/pkg/models"
)

var callPattern = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// controlKeywords look like calls when followed by '(' but are not.
var controlKeywords = map[string]bool{
	"if": true, "for": true, "foreach": true, "while": true, "switch": true,
	"case": true, "catch": true, "lock": true, "using": true, "when": true,
	"return": true, "sizeof": true, "typeof": true, "nameof": true, "new": true,
	"delegate": true, "event": true, "yield": true,
}

// FieldUsage returns, in sorted order, the fields that occur as whole words in
// the normalized method text.
func FieldUsage(methodText string, fields models.FieldSet) []string {
	if len(fields) == 0 {
		return nil
	}
	var used []string
	for id := range Identifiers(methodText) {
		if fields.Has(id) {
			used = append(used, id)
		}
	}
	sort.Strings(used)
	return used
}

// CallTokens returns, in sorted order, the distinct identifiers directly
// followed by an opening parenthesis, excluding control keywords. Targets are
// not resolved: constructor, static and local-function calls all look alike.
func CallTokens(methodText string) []string {
	seen := make(map[string]struct{})
	for _, m := range callPattern.FindAllStringSubmatch(methodText, -1) {
		if !controlKeywords[m[1]] {
			seen[m[1]] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	return models.SortedKeys(seen)
}
