package parser

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/breakguard/breakguard/internal/domain"
)

// LexicalName identifies the regular-expression parser.
const LexicalName = "lexical"

type lexRule struct {
	re   *regexp.Regexp
	emit func(m []string) []string
}

// LexicalParser recognizes catalog symbols with regular expressions over raw
// text. It needs no grammar and never fails on malformed input, but it also
// matches inside strings and comments.
type LexicalParser struct {
	catalog *domain.Catalog
	rules   []lexRule
}

// NewLexical compiles one rule per catalog category.
func NewLexical(catalog *domain.Catalog) *LexicalParser {
	p := &LexicalParser{catalog: catalog}

	members := make(map[string][]string)
	var owners []string
	for _, sp := range catalog.ByCategory(domain.CategoryMemberCall) {
		if _, ok := members[sp.Owner]; !ok {
			owners = append(owners, sp.Owner)
		}
		members[sp.Owner] = append(members[sp.Owner], sp.Name)
	}
	sort.Strings(owners)
	for _, owner := range owners {
		p.rules = append(p.rules, ownerRule(owner, members[owner], `\s*[(<]`))
	}

	if hooks := names(catalog.ByCategory(domain.CategoryHookCall)); len(hooks) > 0 {
		p.rules = append(p.rules, bareCallRule(hooks))
	}
	if factories := names(catalog.ByCategory(domain.CategoryFactoryCall)); len(factories) > 0 {
		p.rules = append(p.rules, bareCallRule(factories))
	}

	for owner, classes := range groupByOwner(catalog.ByCategory(domain.CategoryBaseClass)) {
		re := regexp.MustCompile(`extends\s+` + regexp.QuoteMeta(owner) + `\.(` + alternation(classes) + `)`)
		p.rules = append(p.rules, lexRule{re: re, emit: prefixed(owner)})
	}

	for owner, comps := range groupByOwner(catalog.ByCategory(domain.CategoryJSXMember)) {
		p.rules = append(p.rules, ownerRule(owner, comps, ""))
	}

	for _, sp := range catalog.ByCategory(domain.CategorySubNamespace) {
		canonical := sp.CanonicalForm
		re := regexp.MustCompile(regexp.QuoteMeta(sp.Owner) + `\.` + regexp.QuoteMeta(sp.Name) + `\.\w+`)
		p.rules = append(p.rules, lexRule{re: re, emit: func([]string) []string { return []string{canonical} }})
	}

	p.rules = append(p.rules,
		lexRule{re: namedImport, emit: p.importedNames},
		lexRule{re: defaultImport, emit: p.importedNames},
	)
	return p
}

var (
	namedImport   = regexp.MustCompile(`import\s+(?:[\w$]+\s*,\s*)?\{([^}]*)\}\s*from`)
	defaultImport = regexp.MustCompile(`import\s+([\w$]+)\s+from`)
)

func (p *LexicalParser) Name() string { return LexicalName }

// Symbols returns the sorted canonical symbols found in src.
func (p *LexicalParser) Symbols(ctx context.Context, _ string, src []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := string(src)
	var found []string
	for _, r := range p.rules {
		for _, m := range r.re.FindAllStringSubmatch(text, -1) {
			found = append(found, r.emit(m)...)
		}
	}
	return domain.SortedSet(found), nil
}

// importedNames resolves each specifier of an import clause to the name it
// imports and keeps the cataloged import specifiers.
func (p *LexicalParser) importedNames(m []string) []string {
	var out []string
	for _, spec := range strings.Split(m[1], ",") {
		fields := strings.Fields(strings.TrimSpace(spec))
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if name == "type" && len(fields) > 1 {
			name = fields[1]
		}
		if sym, ok := p.catalog.ImportedSymbol(name); ok {
			out = append(out, sym)
		}
	}
	return out
}

func ownerRule(owner string, members []string, suffix string) lexRule {
	re := regexp.MustCompile(regexp.QuoteMeta(owner) + `\.(` + alternation(members) + `)` + suffix)
	return lexRule{re: re, emit: prefixed(owner)}
}

// bareCallRule matches name(...) and name<TypeArgs>(...).
func bareCallRule(idents []string) lexRule {
	re := regexp.MustCompile(`\b(` + alternation(idents) + `)\s*(?:<[^()]*>)?\s*\(`)
	return lexRule{re: re, emit: func(m []string) []string { return []string{m[1]} }}
}

func prefixed(owner string) func([]string) []string {
	return func(m []string) []string { return []string{owner + "." + m[1]} }
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	// Longest first so prefixes like createRoot/createRef never shadow each other.
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	return strings.Join(quoted, "|")
}

func names(ps []domain.SymbolPattern) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func groupByOwner(ps []domain.SymbolPattern) map[string][]string {
	out := make(map[string][]string)
	for _, p := range ps {
		out[p.Owner] = append(out[p.Owner], p.Name)
	}
	return out
}
