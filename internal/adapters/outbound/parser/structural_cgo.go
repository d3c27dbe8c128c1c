//go:build cgo

package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/breakguard/breakguard/internal/domain"
)

// StructuralName identifies the tree-sitter parser.
const StructuralName = "structural"

var (
	errUnrecoverable = errors.New("no syntax tree recovered")
	errSyntax        = errors.New("syntax errors in source")
)

type grammar struct {
	name string
	lang *sitter.Language
}

var (
	grammarJS  = grammar{name: "javascript", lang: javascript.GetLanguage()}
	grammarTS  = grammar{name: "typescript", lang: typescript.GetLanguage()}
	grammarTSX = grammar{name: "tsx", lang: tsx.GetLanguage()}
)

// grammarsFor returns the primary grammar for a file followed by the
// alternate interpretation tried when the primary tree has errors.
func grammarsFor(path string) []grammar {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts":
		return []grammar{grammarTS, grammarTSX}
	case ".tsx":
		return []grammar{grammarTSX, grammarJS}
	default:
		return []grammar{grammarJS, grammarTSX}
	}
}

// StructuralParser parses files with tree-sitter and walks the lowered tree.
type StructuralParser struct {
	catalog *domain.Catalog
}

// NewStructural loads every grammar once and returns ErrStructuralUnavailable
// if any of them cannot parse a trivial program.
func NewStructural(catalog *domain.Catalog) (*StructuralParser, error) {
	for _, g := range []grammar{grammarJS, grammarTS, grammarTSX} {
		if _, _, err := parseWith(context.Background(), g, []byte("const a = 1;\n")); err != nil {
			return nil, fmt.Errorf("%w: %s grammar: %v", domain.ErrStructuralUnavailable, g.name, err)
		}
	}
	return &StructuralParser{catalog: catalog}, nil
}

func (p *StructuralParser) Name() string { return StructuralName }

// Symbols parses src and returns the sorted canonical symbols it contains.
// A *domain.ParseError is returned when no grammar produced an error-free
// tree; error recovery can swallow everything after the broken construct.
func (p *StructuralParser) Symbols(ctx context.Context, path string, src []byte) ([]string, error) {
	root, err := p.parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	return CollectSymbols(p.catalog, root), nil
}

func (p *StructuralParser) parse(ctx context.Context, path string, src []byte) (Node, error) {
	grammars := grammarsFor(path)

	lastErr := errSyntax
	for _, g := range grammars {
		root, clean, err := parseWith(ctx, g, src)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = err
			continue
		}
		if clean {
			return root, nil
		}
	}
	return nil, &domain.ParseError{Path: path, Grammar: grammars[0].name, Err: lastErr}
}

func parseWith(ctx context.Context, g grammar, src []byte) (Node, bool, error) {
	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(g.lang)

	tree, err := sp.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, false, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.Type() == "ERROR" {
		return nil, false, errUnrecoverable
	}
	return lower(root, src), !root.HasError(), nil
}

// lower converts a tree-sitter node into the Node union.
func lower(n *sitter.Node, src []byte) Node {
	if n == nil {
		return nil
	}

	switch n.Type() {
	case "identifier", "property_identifier", "type_identifier":
		return &Identifier{Name: n.Content(src)}

	case "member_expression", "nested_identifier":
		return lowerMember(n, src)

	case "call_expression":
		c := &Call{Callee: lower(n.ChildByFieldName("function"), src)}
		if args := n.ChildByFieldName("arguments"); args != nil {
			c.Args = lowerNamed(args, src)
		}
		return c

	case "class_declaration", "abstract_class_declaration", "class":
		return lowerClass(n, src)

	case "jsx_opening_element", "jsx_self_closing_element":
		el := &JSXElement{Tag: lower(n.ChildByFieldName("name"), src)}
		for _, child := range namedChildren(n) {
			switch child.Type() {
			case "jsx_attribute", "jsx_expression":
				el.Attributes = append(el.Attributes, lower(child, src))
			}
		}
		return el

	case "import_statement":
		return lowerImport(n, src)

	default:
		return &Generic{Kind: n.Type(), Children: lowerNamed(n, src)}
	}
}

// lowerMember handles both field-annotated member expressions and older
// grammar versions where JSX names are unannotated nested identifiers.
func lowerMember(n *sitter.Node, src []byte) Node {
	obj := n.ChildByFieldName("object")
	prop := n.ChildByFieldName("property")
	if obj == nil || prop == nil {
		kids := namedChildren(n)
		if len(kids) < 2 {
			return &Generic{Kind: n.Type(), Children: lowerNamed(n, src)}
		}
		obj, prop = kids[0], kids[len(kids)-1]
	}
	return &MemberAccess{Object: lower(obj, src), Property: prop.Content(src)}
}

func lowerClass(n *sitter.Node, src []byte) Node {
	c := &ClassDecl{}
	if name := n.ChildByFieldName("name"); name != nil {
		c.Name = name.Content(src)
	}
	for _, child := range namedChildren(n) {
		switch child.Type() {
		case "class_heritage":
			for _, part := range namedChildren(child) {
				switch part.Type() {
				case "extends_clause":
					v := part.ChildByFieldName("value")
					if v == nil {
						v = part.NamedChild(0)
					}
					c.Superclass = lower(v, src)
				case "implements_clause":
					c.Body = append(c.Body, lower(part, src))
				default:
					if c.Superclass == nil {
						c.Superclass = lower(part, src)
					}
				}
			}
		case "identifier", "type_identifier":
		default:
			c.Body = append(c.Body, lower(child, src))
		}
	}
	return c
}

func lowerImport(n *sitter.Node, src []byte) Node {
	d := &ImportDecl{}
	if s := n.ChildByFieldName("source"); s != nil {
		d.Source = strings.Trim(s.Content(src), "\"'`")
	}
	for _, clause := range namedChildren(n) {
		if clause.Type() != "import_clause" {
			continue
		}
		for _, part := range namedChildren(clause) {
			switch part.Type() {
			case "identifier":
				d.Specifiers = append(d.Specifiers, ImportSpecifier{Local: part.Content(src)})
			case "namespace_import":
				if id := part.NamedChild(0); id != nil {
					d.Specifiers = append(d.Specifiers, ImportSpecifier{Local: id.Content(src)})
				}
			case "named_imports":
				for _, spec := range namedChildren(part) {
					if spec.Type() != "import_specifier" {
						continue
					}
					d.Specifiers = append(d.Specifiers, lowerSpecifier(spec, src))
				}
			}
		}
	}
	return d
}

func lowerSpecifier(spec *sitter.Node, src []byte) ImportSpecifier {
	var s ImportSpecifier
	if name := spec.ChildByFieldName("name"); name != nil {
		s.Imported = name.Content(src)
	}
	s.Local = s.Imported
	if alias := spec.ChildByFieldName("alias"); alias != nil {
		s.Local = alias.Content(src)
	}
	return s
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func lowerNamed(n *sitter.Node, src []byte) []Node {
	kids := namedChildren(n)
	out := make([]Node, 0, len(kids))
	for _, c := range kids {
		out = append(out, lower(c, src))
	}
	return out
}
