package parser

import (
	"sort"

	"github.com/breakguard/breakguard/internal/domain"
)

// CollectSymbols walks root once and returns the sorted canonical symbols it
// recognizes against catalog.
func CollectSymbols(catalog *domain.Catalog, root Node) []string {
	v := &symbolVisitor{catalog: catalog, found: make(map[string]bool)}
	if root != nil && !isNilNode(root) {
		v.visit(root)
	}

	out := make([]string, 0, len(v.found))
	for s := range v.found {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

type symbolVisitor struct {
	catalog *domain.Catalog
	found   map[string]bool
}

func (v *symbolVisitor) visit(n Node) {
	switch n := n.(type) {
	case *MemberAccess:
		v.memberAccess(n)
	case *Call:
		v.call(n)
	case *ClassDecl:
		v.class(n)
	case *JSXElement:
		v.jsx(n)
	case *ImportDecl:
		v.imports(n)
	default:
		// Identifier, Generic: nothing to record; children are still walked.
	}

	for _, c := range n.children() {
		v.visit(c)
	}
}

func (v *symbolVisitor) memberAccess(n *MemberAccess) {
	if owner, ok := n.Object.(*Identifier); ok {
		name := owner.Name + "." + n.Property
		if v.catalog.IsMember(owner.Name, n.Property) {
			v.add(name)
		}
		// Component APIs referenced as values, e.g. `const F = React.Fragment`.
		if v.catalog.IsJSXMember(name) && !v.catalog.IsBaseClass(owner.Name, n.Property) {
			v.add(name)
		}
		return
	}

	// owner.sub.<anything>
	if inner, ok := n.Object.(*MemberAccess); ok {
		if owner, ok := inner.Object.(*Identifier); ok {
			if sym, ok := v.catalog.SubNamespace(owner.Name, inner.Property); ok {
				v.add(sym)
			}
		}
	}
}

func (v *symbolVisitor) call(n *Call) {
	var name string
	switch callee := n.Callee.(type) {
	case *Identifier:
		name = callee.Name
	case *MemberAccess:
		// Namespaced hook calls such as React.useState(0).
		name = callee.Property
	default:
		return
	}
	if v.catalog.IsHook(name) || v.catalog.IsFactory(name) {
		v.add(name)
	}
}

func (v *symbolVisitor) class(n *ClassDecl) {
	sup, ok := n.Superclass.(*MemberAccess)
	if !ok {
		return
	}
	owner, ok := sup.Object.(*Identifier)
	if !ok {
		return
	}
	if v.catalog.IsBaseClass(owner.Name, sup.Property) {
		v.add(owner.Name + "." + sup.Property)
	}
}

func (v *symbolVisitor) jsx(n *JSXElement) {
	tag, ok := n.Tag.(*MemberAccess)
	if !ok {
		return
	}
	owner, ok := tag.Object.(*Identifier)
	if !ok {
		return
	}
	if name := owner.Name + "." + tag.Property; v.catalog.IsJSXMember(name) {
		v.add(name)
	}
}

func (v *symbolVisitor) imports(n *ImportDecl) {
	for _, spec := range n.Specifiers {
		name := spec.Imported
		if name == "" {
			name = spec.Local
		}
		if sym, ok := v.catalog.ImportedSymbol(name); ok {
			v.add(sym)
		}
	}
}

func (v *symbolVisitor) add(sym string) { v.found[sym] = true }
