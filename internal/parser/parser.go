package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Dialect selects the tree-sitter grammar
type Dialect int

const (
	DialectJavaScript Dialect = iota
	DialectTypeScript
	DialectTSX
)

// String returns the dialect name
func (d Dialect) String() string {
	switch d {
	case DialectTypeScript:
		return "typescript"
	case DialectTSX:
		return "tsx"
	default:
		return "javascript"
	}
}

// DialectFor picks the grammar for a file by extension. The second result
// is false for files no grammar covers.
func DialectFor(filename string) (Dialect, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return DialectJavaScript, true
	case ".ts", ".mts", ".cts":
		return DialectTypeScript, true
	case ".tsx":
		return DialectTSX, true
	}
	return DialectJavaScript, false
}

// Parser wraps tree-sitter parser for JavaScript/TypeScript.
// A Parser is not safe for concurrent use.
type Parser struct {
	parser   *sitter.Parser
	language *sitter.Language
	dialect  Dialect
}

// NewParser creates a parser for the given dialect
func NewParser(d Dialect) *Parser {
	var lang *sitter.Language
	switch d {
	case DialectTypeScript:
		lang = typescript.GetLanguage()
	case DialectTSX:
		lang = tsx.GetLanguage()
	default:
		lang = javascript.GetLanguage()
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	return &Parser{
		parser:   parser,
		language: lang,
		dialect:  d,
	}
}

// Dialect returns the grammar this parser uses
func (p *Parser) Dialect() Dialect {
	return p.dialect
}

// Functions parses source and returns every function with a body, in
// source order
func (p *Parser) Functions(ctx context.Context, filename string, source []byte) ([]Function, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse file %s: %v", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("no root node in parse tree for %s", filename)
	}
	return collectFunctions(root, source), nil
}

// Close closes the parser and frees resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ScanFile selects a parser by file extension and summarizes the file's
// functions. ok is false when the file is not JavaScript or TypeScript.
func ScanFile(ctx context.Context, filename string, source []byte) (stats FunctionStats, ok bool, err error) {
	d, supported := DialectFor(filename)
	if !supported {
		return FunctionStats{}, false, nil
	}

	parser := NewParser(d)
	defer parser.Close()

	fns, err := parser.Functions(ctx, filename, source)
	if err != nil {
		return FunctionStats{}, false, err
	}
	return Summarize(fns), true, nil
}
