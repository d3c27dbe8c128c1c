package parser

// Node is the closed set of syntax shapes the symbol visitor understands.
// Anything else is lowered to *Generic so its children are still walked.
type Node interface {
	children() []Node
	sealed()
}

// Identifier is a bare name reference.
type Identifier struct {
	Name string
}

// MemberAccess is object.property, including JSX tag names like React.Fragment.
type MemberAccess struct {
	Object   Node
	Property string
}

// Call is a call expression.
type Call struct {
	Callee Node
	Args   []Node
}

// ClassDecl is a class declaration or class expression.
type ClassDecl struct {
	Name       string
	Superclass Node
	Body       []Node
}

// JSXElement is an opening or self-closing JSX tag with its attributes.
type JSXElement struct {
	Tag        Node
	Attributes []Node
}

// ImportDecl is an import statement.
type ImportDecl struct {
	Source     string
	Specifiers []ImportSpecifier
}

// ImportSpecifier is one bound name of an import. Imported is empty for
// default and namespace imports.
type ImportSpecifier struct {
	Imported string
	Local    string
}

// Generic is any node kind without a dedicated variant.
type Generic struct {
	Kind     string
	Children []Node
}

func (*Identifier) children() []Node { return nil }
func (*ImportDecl) children() []Node { return nil }

func (n *MemberAccess) children() []Node { return compact(n.Object) }

func (n *Call) children() []Node { return compact(append([]Node{n.Callee}, n.Args...)...) }

func (n *ClassDecl) children() []Node {
	return compact(append([]Node{n.Superclass}, n.Body...)...)
}

func (n *JSXElement) children() []Node {
	return compact(append([]Node{n.Tag}, n.Attributes...)...)
}

func (n *Generic) children() []Node { return compact(n.Children...) }

func (*Identifier) sealed()   {}
func (*MemberAccess) sealed() {}
func (*Call) sealed()         {}
func (*ClassDecl) sealed()    {}
func (*JSXElement) sealed()   {}
func (*ImportDecl) sealed()   {}
func (*Generic) sealed()      {}

func compact(nodes ...Node) []Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n != nil && !isNilNode(n) {
			out = append(out, n)
		}
	}
	return out
}

// isNilNode catches typed nil pointers stored in the interface.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Identifier:
		return v == nil
	case *MemberAccess:
		return v == nil
	case *Call:
		return v == nil
	case *ClassDecl:
		return v == nil
	case *JSXElement:
		return v == nil
	case *ImportDecl:
		return v == nil
	case *Generic:
		return v == nil
	}
	return false
}
