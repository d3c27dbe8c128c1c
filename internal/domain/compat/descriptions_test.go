package compat_test

import (
	"strings"
	"testing"

	"github.com/breakguard/breakguard/internal/domain"
	"github.com/breakguard/breakguard/internal/domain/compat"
	"github.com/stretchr/testify/assert"
)

func TestDescribe_KnownSymbol(t *testing.T) {
	d := compat.Describe("useState", "react")
	assert.Equal(t, "useState: Declare a state variable in a functional React component. Returns state value and setter function.", d)
}

func TestDescribe_Generic(t *testing.T) {
	assert.Equal(t,
		"React.useOptimistic: React API function call (react use optimistic).",
		compat.Describe("React.useOptimistic", "react"))
	assert.Equal(t, "mount: Vue API function call.", compat.Describe("mount", "vue"))
}

func TestDescribe_EveryCatalogSymbolHasText(t *testing.T) {
	for _, p := range domain.DefaultCatalog().Patterns() {
		assert.NotEmpty(t, compat.Describe(p.CanonicalForm, "react"), p.CanonicalForm)
	}
}

func TestMigrationGuide(t *testing.T) {
	g, ok := compat.MigrationGuide("ReactDOM.render", "18")
	assert.True(t, ok)
	assert.Contains(t, g, "import { createRoot } from 'react-dom/client';")
	assert.Equal(t, strings.TrimSpace(g), g)

	_, ok = compat.MigrationGuide("ReactDOM.render", "19")
	assert.False(t, ok)
	_, ok = compat.MigrationGuide("useState", "18")
	assert.False(t, ok)

	r, ok := compat.Replacement("ReactDOM.findDOMNode", "18")
	assert.True(t, ok)
	assert.Equal(t, "useRef / createRef", r)
}
