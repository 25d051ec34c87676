package parser

import (
	"math"

	sitter "github.com/smacker/go-tree-sitter"
)

// AnonymousName names functions without a binding
const AnonymousName = "<anonymous>"

// functionTypes are the tree-sitter node types that carry a function body.
// Signatures and overload declarations have no body and are not listed.
var functionTypes = map[string]bool{
	"function_declaration":           true,
	"function_expression":            true,
	"function":                       true,
	"generator_function_declaration": true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

// Function is one function-like construct and its line span (1-based, inclusive)
type Function struct {
	Name      string
	Kind      string
	StartLine int
	EndLine   int
}

// Length returns the number of lines the function spans
func (f Function) Length() int {
	return f.EndLine - f.StartLine + 1
}

// FunctionStats summarizes the functions of one file
type FunctionStats struct {
	Count     int
	AvgLength float64
	MaxLength int
}

// Summarize computes count, mean and max length. The mean is rounded to two
// decimals.
func Summarize(fns []Function) FunctionStats {
	stats := FunctionStats{Count: len(fns)}
	if len(fns) == 0 {
		return stats
	}
	total := 0
	for _, f := range fns {
		n := f.Length()
		total += n
		if n > stats.MaxLength {
			stats.MaxLength = n
		}
	}
	stats.AvgLength = math.Round(float64(total)/float64(len(fns))*100) / 100
	return stats
}

func collectFunctions(root *sitter.Node, source []byte) []Function {
	var fns []Function
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if functionTypes[n.Type()] && n.ChildByFieldName("body") != nil {
			fns = append(fns, Function{
				Name:      functionName(n, source),
				Kind:      n.Type(),
				StartLine: int(n.StartPoint().Row) + 1,
				EndLine:   int(n.EndPoint().Row) + 1,
			})
		}

		// Push in reverse so children pop in source order
		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			if c := n.NamedChild(i); c != nil {
				stack = append(stack, c)
			}
		}
	}
	return fns
}

// functionName uses the node's own name, or the variable, property or
// field it is assigned to
func functionName(n *sitter.Node, source []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(source)
	}
	parent := n.Parent()
	if parent == nil {
		return AnonymousName
	}
	switch parent.Type() {
	case "variable_declarator", "public_field_definition", "field_definition":
		if name := parent.ChildByFieldName("name"); name != nil {
			return name.Content(source)
		}
		if prop := parent.ChildByFieldName("property"); prop != nil {
			return prop.Content(source)
		}
	case "pair":
		if key := parent.ChildByFieldName("key"); key != nil {
			return key.Content(source)
		}
	case "assignment_expression":
		if left := parent.ChildByFieldName("left"); left != nil {
			return left.Content(source)
		}
	}
	return AnonymousName
}
