// Package compat classifies framework symbols against a target version using
// ranked candidates from a match provider.
package compat

import (
	"context"
	"fmt"

	"github.com/breakguard/breakguard/internal/domain"
)

// ThresholdFunc returns the decision thresholds for a library.
type ThresholdFunc func(library string) domain.Thresholds

// Classifier turns provider candidates into a Verdict with a fixed decision table.
// It holds no per-symbol state; memoization belongs to the caller.
type Classifier struct {
	provider   domain.MatchProvider
	thresholds ThresholdFunc
	topK       int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithThresholds sets the per-library threshold lookup.
func WithThresholds(fn ThresholdFunc) Option {
	return func(c *Classifier) {
		if fn != nil {
			c.thresholds = fn
		}
	}
}

// WithTopK sets how many candidates are requested per query.
func WithTopK(k int) Option {
	return func(c *Classifier) {
		if k > 0 {
			c.topK = k
		}
	}
}

// New creates a Classifier backed by provider.
func New(provider domain.MatchProvider, opts ...Option) *Classifier {
	c := &Classifier{
		provider: provider,
		thresholds: func(string) domain.Thresholds {
			return domain.Thresholds{
				Breaking: domain.DefaultBreakingThreshold,
				Minor:    domain.DefaultMinorThreshold,
			}
		},
		topK: domain.DefaultTopK,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a Classifier using the thresholds and top-K of cfg.
func NewFromConfig(provider domain.MatchProvider, cfg domain.Config) *Classifier {
	return New(provider, WithThresholds(cfg.ThresholdsFor), WithTopK(cfg.TopK))
}

// Classify queries the provider once and applies the decision table.
// A failed query yields an Error verdict; there is no retry.
func (c *Classifier) Classify(ctx context.Context, symbol string, vc domain.VersionContext) domain.Verdict {
	text := Describe(symbol, vc.Library)
	filter := domain.MatchFilter{Library: vc.Library, Version: vc.NewVersion}

	candidates, err := c.provider.Query(ctx, text, filter, c.topK)
	if err != nil {
		return domain.Verdict{
			Status:    domain.StatusError,
			OldSymbol: symbol,
			Error:     err.Error(),
		}
	}

	if len(candidates) == 0 {
		return notFound(symbol, vc)
	}

	return Decide(symbol, candidates[0], vc.NewVersion, c.thresholds(vc.Library))
}

func notFound(symbol string, vc domain.VersionContext) domain.Verdict {
	msg := fmt.Sprintf("%s has no equivalent in %s %s", symbol, vc.Library, vc.NewVersion)
	if r, ok := Replacement(symbol, vc.NewVersion); ok {
		msg += fmt.Sprintf(". Use %s instead", r)
	}
	guide, ok := MigrationGuide(symbol, vc.NewVersion)
	if !ok {
		guide = NoGuide
	}
	return domain.Verdict{
		Status:     domain.StatusBreaking,
		OldSymbol:  symbol,
		NewSymbol:  domain.NotFound,
		Similarity: domain.Float(0),
		Message:    msg + ".",
		Migration:  guide,
	}
}

// Decide applies the decision table to the top-ranked candidate:
// deprecated or below t.Breaking is breaking, below t.Minor is minor,
// anything else is compatible.
func Decide(symbol string, top domain.MatchCandidate, newVersion string, t domain.Thresholds) domain.Verdict {
	score := domain.RoundTo(top.Similarity, 4)
	confidence := domain.RoundTo(top.Similarity*100, 1)

	v := domain.Verdict{
		OldSymbol:  symbol,
		NewSymbol:  top.Symbol,
		Similarity: domain.Float(score),
	}

	switch {
	case top.Deprecated || top.Similarity < t.Breaking:
		v.Status = domain.StatusBreaking
		v.Deprecated = top.Deprecated
		v.Confidence = domain.Float(confidence)
		v.Message = breakMessage(symbol, top)
		if guide, ok := MigrationGuide(symbol, newVersion); ok {
			v.Migration = guide
		}
	case top.Similarity < t.Minor:
		v.Status = domain.StatusMinor
		v.Confidence = domain.Float(confidence)
		v.Message = fmt.Sprintf("%s has minor behavioral changes in v%s", symbol, newVersion)
	default:
		v.Status = domain.StatusCompatible
	}
	return v
}

func breakMessage(symbol string, top domain.MatchCandidate) string {
	if top.Deprecated {
		target := top.MigrateTo
		if target == "" {
			target = top.Symbol
		}
		return fmt.Sprintf("%s is DEPRECATED in the new version. Use %s instead.", symbol, target)
	}
	if top.Replaces != "" {
		return fmt.Sprintf("%s has been replaced by %s.", symbol, top.Symbol)
	}
	return fmt.Sprintf("%s has significant changes in the new version (closest match: %s).", symbol, top.Symbol)
}
