// # internal/parser/parser.go
package parser

import (
	"errors"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"cybind/internal/ast"
)

// Parser turns header sources into declaration trees. One Parser serves
// a whole run; each ParseFile call owns its own tree-sitter parser.
type Parser struct {
	loader     *GrammarLoader
	extractors map[string]Extractor
	// ForceLanguage overrides extension-based detection ("c" or "cpp").
	ForceLanguage string
}

// Extractor lowers one parsed syntax tree into the declaration model.
// diags carries upstream parse diagnostics (ERROR nodes), which the
// caller maps onto the warning policy.
type Extractor interface {
	Extract(root *sitter.Node, source []byte, filePath string) (decls *ast.Node, diags []string, err error)
}

func NewParser(loader *GrammarLoader) *Parser {
	return &Parser{
		loader:     loader,
		extractors: make(map[string]Extractor),
	}
}

func (p *Parser) RegisterExtractor(lang string, e Extractor) {
	p.extractors[lang] = e
}

// ParseFile parses content and returns the unit's declaration root plus
// any parse diagnostics.
func (p *Parser) ParseFile(path string, content []byte) (*ast.Node, []string, error) {
	lang := p.detectLanguage(path)

	grammar := p.loader.Language(lang)
	if grammar == nil {
		return nil, nil, fmt.Errorf("grammar not loaded: %s", lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(grammar); err != nil {
		return nil, nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, nil, errors.New("parse failed")
	}
	defer tree.Close()

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, nil, fmt.Errorf("no extractor for: %s", lang)
	}

	return extractor.Extract(tree.RootNode(), content, path)
}

// detectLanguage picks the grammar for a path. C headers parse fine
// under the C++ grammar, so only a forced "c" selects the C grammar.
func (p *Parser) detectLanguage(string) string {
	if p.ForceLanguage != "" {
		return p.ForceLanguage
	}
	return "cpp"
}
