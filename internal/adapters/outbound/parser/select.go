package parser

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/breakguard/breakguard/internal/domain"
)

// Select resolves mode into a primary parser and an optional fallback.
// Auto prefers the structural parser and degrades to lexical when the
// capability check fails; structural is an error in that case.
func Select(mode domain.ExtractorMode, catalog *domain.Catalog, logger *slog.Logger) (primary, fallback domain.SymbolParser, err error) {
	lexical := NewLexical(catalog)

	switch mode {
	case domain.ExtractorLexical:
		return lexical, nil, nil

	case domain.ExtractorStructural:
		structural, err := NewStructural(catalog)
		if err != nil {
			return nil, nil, err
		}
		return structural, lexical, nil

	case domain.ExtractorAuto, "":
		structural, err := NewStructural(catalog)
		if err != nil {
			if !errors.Is(err, domain.ErrStructuralUnavailable) {
				return nil, nil, err
			}
			if logger != nil {
				logger.Debug("structural parser unavailable, using lexical", "error", err)
			}
			return lexical, nil, nil
		}
		return structural, lexical, nil

	default:
		return nil, nil, fmt.Errorf("unknown extractor mode %q", mode)
	}
}
