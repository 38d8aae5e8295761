// Package functions finds method boundaries in C# source and scores each
// method: cyclomatic complexity, code size and parameter count.
package functions

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/ooscan/pkg/lexer"
	"github.com/panbanda/ooscan/pkg/models"
	"github.com/panbanda/ooscan/pkg/parser"
)

// BoundaryAnalyzer returns the methods of one source unit in source order.
// The structural model treats its output as ground truth.
type BoundaryAnalyzer interface {
	Functions(ctx context.Context, psr *parser.Parser, unit *models.SourceUnit) ([]*models.MethodSpan, error)
}

// Ensure Analyzer implements BoundaryAnalyzer.
var _ BoundaryAnalyzer = (*Analyzer)(nil)

var methodTypes = map[string]bool{
	"method_declaration":              true,
	"constructor_declaration":         true,
	"destructor_declaration":          true,
	"operator_declaration":            true,
	"conversion_operator_declaration": true,
	"local_function_statement":        true,
}

var typeDeclTypes = map[string]bool{
	"class_declaration":         true,
	"struct_declaration":        true,
	"interface_declaration":     true,
	"record_declaration":        true,
	"record_struct_declaration": true,
}

// decisionTypes add one path each. Grammar revisions disagree on the foreach
// node name, so both spellings are listed.
var decisionTypes = map[string]bool{
	"if_statement":              true,
	"while_statement":           true,
	"do_statement":              true,
	"for_statement":             true,
	"for_each_statement":        true,
	"foreach_statement":         true,
	"catch_clause":              true,
	"conditional_expression":    true,
	"case_switch_label":         true,
	"case_pattern_switch_label": true,
	"switch_expression_arm":     true,
}

// Analyzer is the tree-sitter backed BoundaryAnalyzer.
type Analyzer struct{}

// New creates a function-boundary analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Functions parses unit and returns one MethodSpan per method, constructor,
// destructor, operator or top-level local function. Nested local functions
// belong to their enclosing method.
func (a *Analyzer) Functions(ctx context.Context, psr *parser.Parser, unit *models.SourceUnit) ([]*models.MethodSpan, error) {
	tree, err := psr.Parse(ctx, unit.Path, []byte(unit.Text))
	if err != nil {
		return nil, fmt.Errorf("function boundaries: %w", err)
	}
	defer tree.Close()
	source := tree.Source

	codeOnly := models.NewSourceUnit(unit.Path, lexer.StripComments(unit.Text))

	var spans []*models.MethodSpan
	parser.Walk(tree.Root(), func(node *sitter.Node, nodeType string) bool {
		if !methodTypes[nodeType] {
			return true
		}

		name := methodName(node, nodeType, source)
		if name == "" {
			return false
		}

		start, end := parser.Lines(node)
		qualified, owner := qualify(node, name, source)
		spans = append(spans, &models.MethodSpan{
			Name:           name,
			QualifiedName:  qualified,
			Owner:          owner,
			Path:           unit.Path,
			StartLine:      start,
			EndLine:        end,
			Size:           codeLines(codeOnly.Slice(start, end)),
			Complexity:     Cyclomatic(node),
			ParameterCount: parameterCount(node),
		})
		return false
	})

	return spans, nil
}

func methodName(node *sitter.Node, nodeType string, source []byte) string {
	switch nodeType {
	case "operator_declaration":
		if op := node.ChildByFieldName("operator"); op != nil {
			return "operator" + parser.Text(op, source)
		}
		return "operator"
	case "conversion_operator_declaration":
		if t := node.ChildByFieldName("type"); t != nil {
			return "operator " + strings.TrimPrefix(parser.Text(t, source), "global::")
		}
		return "operator"
	case "destructor_declaration":
		if n := node.ChildByFieldName("name"); n != nil {
			return "~" + parser.Text(n, source)
		}
	}
	return parser.FieldText(node, "name", source)
}

// qualify prefixes name with every enclosing type declaration, outermost
// first, and returns the innermost one as the owner. Namespaces are not part
// of the qualified name.
func qualify(node *sitter.Node, name string, source []byte) (qualified, owner string) {
	parts := []string{name}
	for p := node.Parent(); p != nil; p = p.Parent() {
		if !typeDeclTypes[p.Type()] {
			continue
		}
		if n := p.ChildByFieldName("name"); n != nil {
			typeName := parser.Text(n, source)
			if owner == "" {
				owner = typeName
			}
			parts = append([]string{typeName}, parts...)
		}
	}
	return strings.Join(parts, models.QualifierSeparator), owner
}

// Cyclomatic returns 1 plus the decision points under node, counting each
// short-circuit && and || as a decision.
func Cyclomatic(node *sitter.Node) int {
	count := 1
	parser.Walk(node, func(n *sitter.Node, nodeType string) bool {
		if decisionTypes[nodeType] {
			count++
		}
		if nodeType == "binary_expression" {
			if op := operator(n); op == "&&" || op == "||" {
				count++
			}
		}
		return true
	})
	return count
}

func operator(node *sitter.Node) string {
	for i := range int(node.ChildCount()) {
		switch t := node.Child(i).Type(); t {
		case "&&", "||":
			return t
		}
	}
	return ""
}

func parameterCount(node *sitter.Node) int {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}
	n := 0
	for i := range int(params.NamedChildCount()) {
		if params.NamedChild(i).Type() == "parameter" {
			n++
		}
	}
	return n
}

// codeLines counts the non-blank lines of comment-free text.
func codeLines(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
