package domain

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// Category identifies the syntactic shape a SymbolPattern recognizes.
type Category string

const (
	CategoryHookCall        Category = "hook-call"
	CategoryMemberCall      Category = "member-call"
	CategoryBaseClass       Category = "base-class"
	CategoryJSXMember       Category = "jsx-member"
	CategoryImportSpecifier Category = "import-specifier"
	CategoryFactoryCall     Category = "factory-call"
	CategorySubNamespace    Category = "sub-namespace"
)

// SymbolPattern is one recognized symbol shape and its canonical string form.
type SymbolPattern struct {
	Category      Category `json:"category"`
	Owner         string   `json:"owner,omitempty"`
	Name          string   `json:"name"`
	CanonicalForm string   `json:"canonical"`
}

// Catalog is the immutable registry of recognized symbol shapes. Build one with
// NewCatalog and share it; lookups never mutate it.
type Catalog struct {
	patterns []SymbolPattern

	hooks       map[string]bool
	factories   map[string]bool
	members     map[string]map[string]bool
	baseClasses map[string]map[string]bool
	jsxMembers  map[string]bool
	subSpaces   map[string]map[string]string
	imports     map[string]string
}

// NewCatalog indexes the given patterns. Canonical forms are derived when empty.
func NewCatalog(patterns []SymbolPattern) *Catalog {
	c := &Catalog{
		hooks:       make(map[string]bool),
		factories:   make(map[string]bool),
		members:     make(map[string]map[string]bool),
		baseClasses: make(map[string]map[string]bool),
		jsxMembers:  make(map[string]bool),
		subSpaces:   make(map[string]map[string]string),
		imports:     make(map[string]string),
	}
	for _, p := range patterns {
		if p.CanonicalForm == "" {
			p.CanonicalForm = canonical(p.Owner, p.Name)
		}
		c.patterns = append(c.patterns, p)

		switch p.Category {
		case CategoryHookCall:
			c.hooks[p.Name] = true
		case CategoryFactoryCall:
			c.factories[p.Name] = true
		case CategoryMemberCall:
			addNested(c.members, p.Owner, p.Name)
		case CategoryBaseClass:
			addNested(c.baseClasses, p.Owner, p.Name)
			c.jsxMembers[p.CanonicalForm] = true
		case CategoryJSXMember:
			c.jsxMembers[p.CanonicalForm] = true
		case CategorySubNamespace:
			if c.subSpaces[p.Owner] == nil {
				c.subSpaces[p.Owner] = make(map[string]string)
			}
			c.subSpaces[p.Owner][p.Name] = p.CanonicalForm
		case CategoryImportSpecifier:
			c.imports[p.Name] = p.CanonicalForm
		}
	}
	return c
}

func addNested(m map[string]map[string]bool, owner, name string) {
	if m[owner] == nil {
		m[owner] = make(map[string]bool)
	}
	m[owner][name] = true
}

func canonical(owner, name string) string {
	if owner == "" {
		return name
	}
	return owner + "." + name
}

// Patterns returns a copy of every registered pattern in registration order.
func (c *Catalog) Patterns() []SymbolPattern {
	out := make([]SymbolPattern, len(c.patterns))
	copy(out, c.patterns)
	return out
}

// IsHook reports whether name is a known hook.
func (c *Catalog) IsHook(name string) bool { return c.hooks[name] }

// IsFactory reports whether name is a known top-level factory function.
func (c *Catalog) IsFactory(name string) bool { return c.factories[name] }

// IsMember reports whether owner.name is a known member-style API.
func (c *Catalog) IsMember(owner, name string) bool { return c.members[owner][name] }

// IsOwner reports whether owner has any known member methods.
func (c *Catalog) IsOwner(owner string) bool { return len(c.members[owner]) > 0 }

// IsBaseClass reports whether owner.name is a known base class.
func (c *Catalog) IsBaseClass(owner, name string) bool { return c.baseClasses[owner][name] }

// IsJSXMember reports whether the canonical owner.name is a known component API.
func (c *Catalog) IsJSXMember(canonicalName string) bool { return c.jsxMembers[canonicalName] }

// SubNamespace returns the canonical symbol for an access rooted at owner.sub.
func (c *Catalog) SubNamespace(owner, sub string) (string, bool) {
	s, ok := c.subSpaces[owner][sub]
	return s, ok
}

// ImportedSymbol returns the canonical symbol recorded when name is imported
// from the library, e.g. `import { useState } from 'react'`.
func (c *Catalog) ImportedSymbol(name string) (string, bool) {
	s, ok := c.imports[name]
	return s, ok
}

// ByCategory returns the patterns of one category, sorted by canonical form.
func (c *Catalog) ByCategory(cat Category) []SymbolPattern {
	var out []SymbolPattern
	for _, p := range c.patterns {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CanonicalForm < out[j].CanonicalForm })
	return out
}

// Fingerprint is a stable hash of the catalog contents, used to invalidate
// cached extraction results when the catalog changes.
func (c *Catalog) Fingerprint() string {
	lines := make([]string, 0, len(c.patterns))
	for _, p := range c.patterns {
		lines = append(lines, fmt.Sprintf("%s|%s|%s|%s", p.Category, p.Owner, p.Name, p.CanonicalForm))
	}
	sort.Strings(lines)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(strings.Join(lines, "\n"))))
}

var reactHooks = []string{
	"useState", "useEffect", "useContext", "useReducer",
	"useCallback", "useMemo", "useRef", "useImperativeHandle",
	"useLayoutEffect", "useDebugValue", "useId", "useTransition",
	"useDeferredValue", "useInsertionEffect", "useSyncExternalStore",
}

var reactMembers = map[string][]string{
	"ReactDOM": {
		"render", "hydrate", "unmountComponentAtNode",
		"findDOMNode", "createPortal", "flushSync",
	},
	"React": {
		"createElement", "cloneElement", "createRef",
		"forwardRef", "memo", "lazy", "createContext",
		"isValidElement", "startTransition",
	},
}

// ReactPatterns returns the default catalog contents for the react library.
func ReactPatterns() []SymbolPattern {
	var ps []SymbolPattern
	for _, h := range reactHooks {
		ps = append(ps, SymbolPattern{Category: CategoryHookCall, Name: h})
	}
	factories := []string{"createRoot", "hydrateRoot"}
	for _, f := range factories {
		ps = append(ps, SymbolPattern{Category: CategoryFactoryCall, Name: f})
	}
	for _, name := range append(append([]string{}, reactHooks...), factories...) {
		ps = append(ps, SymbolPattern{Category: CategoryImportSpecifier, Name: name})
	}
	for _, owner := range []string{"ReactDOM", "React"} {
		for _, m := range reactMembers[owner] {
			ps = append(ps, SymbolPattern{Category: CategoryMemberCall, Owner: owner, Name: m})
		}
	}
	for _, b := range []string{"Component", "PureComponent"} {
		ps = append(ps, SymbolPattern{Category: CategoryBaseClass, Owner: "React", Name: b})
	}
	for _, j := range []string{"Fragment", "Suspense", "StrictMode", "Profiler"} {
		ps = append(ps, SymbolPattern{Category: CategoryJSXMember, Owner: "React", Name: j})
	}
	ps = append(ps, SymbolPattern{
		Category:      CategorySubNamespace,
		Owner:         "React",
		Name:          "Children",
		CanonicalForm: "React.Children.map",
	})
	return ps
}

// DefaultCatalog returns the catalog used when no other is configured.
func DefaultCatalog() *Catalog {
	return NewCatalog(ReactPatterns())
}
