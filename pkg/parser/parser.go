// Package parser wraps the tree-sitter C# grammar.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// Extension is the file extension the grammar handles.
const Extension = ".cs"

// Parser holds a tree-sitter parser bound to the C# grammar. A Parser is not
// safe for concurrent use; give each worker its own.
type Parser struct {
	parser *sitter.Parser
}

// Tree is a parsed compilation unit. Close releases the native tree.
type Tree struct {
	Path   string
	Source []byte
	tree   *sitter.Tree
}

// New creates a C# parser.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(csharp.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses source, the content of path. Syntax errors do not fail the
// parse; tree-sitter recovers and marks them with ERROR nodes.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*Tree, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &Tree{Path: path, Source: source, tree: tree}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// Root returns the compilation_unit node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

func (t *Tree) Close() {
	t.tree.Close()
}

// IsCSharp reports whether path has the C# extension, ignoring case.
func IsCSharp(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}

// Visitor is called with each node and its cached type. Returning false
// skips the node's children.
type Visitor func(node *sitter.Node, nodeType string) bool

// Walk traverses the subtree under node depth first.
func Walk(node *sitter.Node, visit Visitor) {
	if node == nil {
		return
	}
	if !visit(node, node.Type()) {
		return
	}
	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), visit)
	}
}

// Text returns the source text of node, or "" when node is nil or its byte
// range falls outside source.
func Text(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// FieldText returns the text of node's child under field.
func FieldText(node *sitter.Node, field string, source []byte) string {
	if node == nil {
		return ""
	}
	return Text(node.ChildByFieldName(field), source)
}

// Lines returns the 1-based start and end lines of node.
func Lines(node *sitter.Node) (int, int) {
	return int(node.StartPoint().Row) + 1, int(node.EndPoint().Row) + 1
}
