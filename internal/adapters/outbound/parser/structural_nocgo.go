//go:build !cgo

package parser

import (
	"context"
	"fmt"

	"github.com/breakguard/breakguard/internal/domain"
)

// StructuralName identifies the tree-sitter parser.
const StructuralName = "structural"

// StructuralParser is unavailable without cgo; NewStructural always fails.
type StructuralParser struct{}

// NewStructural reports that tree-sitter grammars are not linked into this build.
func NewStructural(*domain.Catalog) (*StructuralParser, error) {
	return nil, fmt.Errorf("%w: built without cgo", domain.ErrStructuralUnavailable)
}

func (p *StructuralParser) Name() string { return StructuralName }

func (p *StructuralParser) Symbols(context.Context, string, []byte) ([]string, error) {
	return nil, domain.ErrStructuralUnavailable
}
