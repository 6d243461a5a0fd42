// Package jsonsyntax pinpoints syntax errors in malformed JSON documents
// using the error-tolerant tree-sitter JSON grammar.
package jsonsyntax

import (
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_json "github.com/tree-sitter/tree-sitter-json/bindings/go"
)

var language = tree_sitter.NewLanguage(unsafe.Pointer(tree_sitter_json.Language()))

// Position is a location in a document. Line and Column are 1-based; Column
// counts bytes.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Locate returns the position of the first ERROR or MISSING node in src.
// It returns false when src parses cleanly or no parser is available.
func Locate(src []byte) (Position, bool) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(language); err != nil {
		return Position{}, false
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return Position{}, false
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return Position{}, false
	}
	node := firstError(root)
	if node == nil {
		return Position{}, false
	}
	start := node.StartPosition()
	return Position{
		Offset: int(node.StartByte()),
		Line:   int(start.Row) + 1,
		Column: int(start.Column) + 1,
	}, true
}

func firstError(node *tree_sitter.Node) *tree_sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}
