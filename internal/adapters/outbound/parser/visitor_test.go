package parser_test

import (
	"testing"

	"github.com/breakguard/breakguard/internal/adapters/outbound/parser"
	"github.com/breakguard/breakguard/internal/domain"
	"github.com/stretchr/testify/assert"
)

func ident(name string) *parser.Identifier { return &parser.Identifier{Name: name} }

func member(owner, prop string) *parser.MemberAccess {
	return &parser.MemberAccess{Object: ident(owner), Property: prop}
}

func program(children ...parser.Node) parser.Node {
	return &parser.Generic{Kind: "program", Children: children}
}

func TestCollectSymbols_Shapes(t *testing.T) {
	catalog := domain.DefaultCatalog()

	tests := []struct {
		name string
		root parser.Node
		want []string
	}{
		{
			name: "member call on known owner",
			root: program(&parser.Call{Callee: member("ReactDOM", "render")}),
			want: []string{"ReactDOM.render"},
		},
		{
			name: "unknown member is ignored",
			root: program(&parser.Call{Callee: member("ReactDOM", "renderToString")}),
			want: []string{},
		},
		{
			name: "sub-namespace chain of depth two",
			root: program(&parser.Call{Callee: &parser.MemberAccess{
				Object:   member("React", "Children"),
				Property: "toArray",
			}}),
			want: []string{"React.Children.map"},
		},
		{
			name: "hook and factory calls",
			root: program(
				&parser.Call{Callee: ident("useState"), Args: []parser.Node{&parser.Generic{Kind: "number"}}},
				&parser.Call{Callee: ident("createRoot")},
				&parser.Call{Callee: ident("useCustom")},
			),
			want: []string{"createRoot", "useState"},
		},
		{
			name: "namespaced hook call",
			root: program(&parser.Call{Callee: member("React", "useEffect")}),
			want: []string{"useEffect"},
		},
		{
			name: "class extending base class",
			root: program(&parser.ClassDecl{Name: "App", Superclass: member("React", "PureComponent")}),
			want: []string{"React.PureComponent"},
		},
		{
			name: "class extending something else",
			root: program(&parser.ClassDecl{Name: "App", Superclass: ident("Component")}),
			want: []string{},
		},
		{
			name: "jsx member tag",
			root: program(&parser.JSXElement{Tag: member("React", "StrictMode")}),
			want: []string{"React.StrictMode"},
		},
		{
			name: "plain jsx tag",
			root: program(&parser.JSXElement{Tag: ident("App")}),
			want: []string{},
		},
		{
			name: "import specifiers prefer imported name",
			root: program(&parser.ImportDecl{
				Source: "react-dom/client",
				Specifiers: []parser.ImportSpecifier{
					{Imported: "createRoot", Local: "makeRoot"},
					{Imported: "", Local: "useRef"},
					{Imported: "render", Local: "useMemo"},
				},
			}),
			want: []string{"createRoot", "useRef"},
		},
		{
			name: "unknown kinds are walked",
			root: program(&parser.Generic{Kind: "arrow_function", Children: []parser.Node{
				&parser.Generic{Kind: "statement_block", Children: []parser.Node{
					&parser.Call{Callee: ident("useMemo")},
				}},
			}}),
			want: []string{"useMemo"},
		},
		{
			name: "calls inside jsx attributes and class bodies",
			root: program(
				&parser.JSXElement{Tag: ident("div"), Attributes: []parser.Node{
					&parser.Call{Callee: member("React", "createElement")},
				}},
				&parser.ClassDecl{Superclass: member("React", "Component"), Body: []parser.Node{
					&parser.Call{Callee: member("ReactDOM", "findDOMNode")},
				}},
			),
			want: []string{"React.Component", "React.createElement", "ReactDOM.findDOMNode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.CollectSymbols(catalog, tt.root))
		})
	}
}

func TestCollectSymbols_DedupAndSort(t *testing.T) {
	root := program(
		&parser.Call{Callee: ident("useState")},
		&parser.Call{Callee: ident("useState")},
		&parser.JSXElement{Tag: member("React", "Fragment")},
		&parser.Call{Callee: member("ReactDOM", "render")},
	)
	assert.Equal(t,
		[]string{"React.Fragment", "ReactDOM.render", "useState"},
		parser.CollectSymbols(domain.DefaultCatalog(), root))
}

func TestCollectSymbols_NilSafe(t *testing.T) {
	var missing *parser.Call
	root := program(nil, missing, &parser.Call{Callee: nil})
	assert.Empty(t, parser.CollectSymbols(domain.DefaultCatalog(), root))
	assert.Empty(t, parser.CollectSymbols(domain.DefaultCatalog(), nil))
}
