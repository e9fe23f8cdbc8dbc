package pyparse

import (
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// identifierCollector walks an expr AST recording every distinct
// IdentifierNode in first-occurrence order. Member access (a.b) desugars
// to a property string on the parent node rather than an IdentifierNode,
// so attribute names are excluded without any extra tracking.
type identifierCollector struct {
	seen  map[string]bool
	names []string
}

func (c *identifierCollector) Visit(node *ast.Node) {
	id, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}
	if pythonKeywords[id.Value] || isDunder(id.Value) {
		return
	}
	if !c.seen[id.Value] {
		c.seen[id.Value] = true
		c.names = append(c.names, id.Value)
	}
}

// Identifiers returns the distinct identifier tokens referenced in expr,
// in first-occurrence order, skipping attribute names ("b" in "a.b"),
// keywords, and built-in sentinels. expr is parsed with the same
// expr-lang grammar the executor compiles and runs it with, so
// extraction and execution never disagree about what counts as a free
// variable. A source that fails to parse yields no identifiers; the
// executor surfaces the syntax error at run time.
func Identifiers(expr string) []string {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	tree, err := parser.Parse(expr)
	if err != nil {
		return nil
	}
	c := &identifierCollector{seen: map[string]bool{}}
	ast.Walk(&tree.Node, c)
	return c.names
}

func isDunder(name string) bool {
	return len(name) > 4 && name[:2] == "__" && name[len(name)-2:] == "__"
}
