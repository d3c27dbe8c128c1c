package application_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/breakguard/breakguard/internal/application"
	"github.com/breakguard/breakguard/internal/domain"
	"github.com/breakguard/breakguard/internal/domain/compat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var react18 = domain.VersionContext{Library: "react", OldVersion: "17", NewVersion: "18"}

// scriptedProvider answers per symbol and counts queries per description.
type scriptedProvider struct {
	mu      sync.Mutex
	answers map[string][]domain.MatchCandidate
	errs    map[string]error
	queries map[string]int
	delay   time.Duration
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{
		answers: make(map[string][]domain.MatchCandidate),
		errs:    make(map[string]error),
		queries: make(map[string]int),
	}
}

// symbolOf recovers the symbol from a description, which always starts "<symbol>:".
func symbolOf(text string) string {
	sym, _, _ := strings.Cut(text, ":")
	return sym
}

func (p *scriptedProvider) Query(ctx context.Context, text string, _ domain.MatchFilter, _ int) ([]domain.MatchCandidate, error) {
	sym := symbolOf(text)
	p.mu.Lock()
	p.queries[sym]++
	p.mu.Unlock()

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.errs[sym]; err != nil {
		return nil, err
	}
	return p.answers[sym], nil
}

func (p *scriptedProvider) count(sym string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries[sym]
}

func (p *scriptedProvider) total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.queries {
		n += c
	}
	return n
}

func scanOf(files map[string][]string) *domain.ScanResult {
	r := domain.NewScanResult("/project")
	for path, syms := range files {
		r.Add(path, syms)
	}
	return r
}

func TestAggregate_EndToEndScenario(t *testing.T) {
	p := newScriptedProvider()
	p.answers["ReactDOM.render"] = []domain.MatchCandidate{{Symbol: "createRoot", Similarity: 0.40, Deprecated: true}}
	p.answers["useState"] = []domain.MatchCandidate{{Symbol: "useState", Similarity: 0.97}}

	scan := scanOf(map[string][]string{
		"src/index.js": {"ReactDOM.render"},
		"src/App.js":   {"useState"},
	})

	report, err := application.NewAggregator(compat.New(p)).Aggregate(context.Background(), scan, react18)
	require.NoError(t, err)

	require.Len(t, report.Breaking, 1)
	assert.Equal(t, "ReactDOM.render", report.Breaking[0].OldSymbol)
	assert.Equal(t, "src/index.js", report.Breaking[0].File)
	require.Len(t, report.Compatible, 1)
	assert.Equal(t, "useState", report.Compatible[0].OldSymbol)
	assert.Empty(t, report.Minor)
	assert.Empty(t, report.Errors)
	assert.Equal(t, domain.Summary{TotalUniqueSymbols: 2, Breaking: 1, Compatible: 1}, report.Summary)
}

func TestAggregate_DedupAcrossFiles(t *testing.T) {
	p := newScriptedProvider()
	p.answers["ReactDOM.render"] = []domain.MatchCandidate{{Symbol: "createRoot", Similarity: 0.5}}
	p.delay = 20 * time.Millisecond

	files := make(map[string][]string)
	for i := 0; i < 5; i++ {
		files[fmt.Sprintf("src/f%d.js", i)] = []string{"ReactDOM.render"}
	}

	agg := application.NewAggregator(compat.New(p), application.WithClassifyWorkers(8))
	report, err := agg.Aggregate(context.Background(), scanOf(files), react18)
	require.NoError(t, err)

	assert.Equal(t, 1, p.count("ReactDOM.render"))
	require.Len(t, report.Breaking, 5)
	for i, e := range report.Breaking {
		assert.Equal(t, fmt.Sprintf("src/f%d.js", i), e.File)
		assert.Equal(t, report.Breaking[0].Verdict, e.Verdict)
	}
	assert.Equal(t, 1, report.Summary.Breaking)
	assert.Equal(t, 1, report.Summary.TotalUniqueSymbols)
}

func TestAggregate_SingleFlightUnderConcurrency(t *testing.T) {
	p := newScriptedProvider()
	p.delay = 5 * time.Millisecond
	symbols := []string{"useState", "useEffect", "useMemo", "useRef", "React.memo"}
	for _, s := range symbols {
		p.answers[s] = []domain.MatchCandidate{{Symbol: s, Similarity: 0.99}}
	}

	files := make(map[string][]string)
	for i := 0; i < 40; i++ {
		files[fmt.Sprintf("f%02d.js", i)] = symbols
	}

	agg := application.NewAggregator(compat.New(p), application.WithClassifyWorkers(16))
	report, err := agg.Aggregate(context.Background(), scanOf(files), react18)
	require.NoError(t, err)

	for _, s := range symbols {
		assert.Equal(t, 1, p.count(s), s)
	}
	assert.Len(t, report.Compatible, 200)
	assert.Equal(t, 5, report.Summary.Compatible)
}

func TestAggregate_ProviderFailureIsScopedToSymbol(t *testing.T) {
	p := newScriptedProvider()
	p.errs["useRef"] = &domain.ProviderError{Op: "search", Err: errors.New("connection refused")}
	p.answers["useMemo"] = []domain.MatchCandidate{{Symbol: "useMemo", Similarity: 0.9}}

	scan := scanOf(map[string][]string{
		"a.js": {"useMemo", "useRef"},
		"b.js": {"useRef"},
	})
	report, err := application.NewAggregator(compat.New(p)).Aggregate(context.Background(), scan, react18)
	require.NoError(t, err)

	require.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0].Error, "connection refused")
	require.Len(t, report.Minor, 1)
	assert.Equal(t, 1, p.count("useRef"))
	assert.Equal(t, domain.Summary{TotalUniqueSymbols: 2, Minor: 1, Errors: 1}, report.Summary)
}

func TestAggregate_SummaryInvariant(t *testing.T) {
	p := newScriptedProvider()
	p.answers["a"] = []domain.MatchCandidate{{Symbol: "a", Similarity: 0.1}}
	p.answers["b"] = []domain.MatchCandidate{{Symbol: "b", Similarity: 0.9}}
	p.answers["c"] = []domain.MatchCandidate{{Symbol: "c", Similarity: 1}}
	p.errs["d"] = errors.New("down")

	scan := scanOf(map[string][]string{
		"x.js": {"a", "b", "c", "d", "e"},
		"y.js": {"a", "e"},
	})
	report, err := application.NewAggregator(compat.New(p)).Aggregate(context.Background(), scan, react18)
	require.NoError(t, err)

	s := report.Summary
	assert.Equal(t, 5, s.TotalUniqueSymbols)
	assert.Equal(t, s.TotalUniqueSymbols, s.Breaking+s.Minor+s.Compatible+s.Errors)
	assert.Equal(t, 2, s.Breaking) // a, and e with no candidates
	assert.Equal(t, 5, p.total())
}

func TestAggregate_EmptyScan(t *testing.T) {
	p := newScriptedProvider()
	report, err := application.NewAggregator(compat.New(p)).Aggregate(context.Background(), scanOf(nil), react18)
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{}, report.Summary)
	assert.NotNil(t, report.Breaking)
	assert.Zero(t, p.total())
}

func TestAggregate_CancelledKeepsCompletedVerdicts(t *testing.T) {
	p := newScriptedProvider()
	p.answers["fast"] = []domain.MatchCandidate{{Symbol: "fast", Similarity: 0.99}}
	slow := &blockingClassifier{inner: compat.New(p), block: "slow", started: make(chan struct{})}

	scan := scanOf(map[string][]string{"a.js": {"fast"}, "b.js": {"slow"}})
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-slow.started
		cancel()
	}()

	report, err := application.NewAggregator(slow, application.WithClassifyWorkers(2)).Aggregate(ctx, scan, react18)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, report.Errors)
	assert.LessOrEqual(t, report.Summary.TotalUniqueSymbols, 1)
	assert.Equal(t, report.Summary.TotalUniqueSymbols, len(report.Compatible))
}

// blockingClassifier blocks on one symbol until the context is cancelled.
type blockingClassifier struct {
	inner   domain.Classifier
	block   string
	started chan struct{}
	once    sync.Once
}

func (b *blockingClassifier) Classify(ctx context.Context, symbol string, vc domain.VersionContext) domain.Verdict {
	if symbol != b.block {
		return b.inner.Classify(ctx, symbol, vc)
	}
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return domain.Verdict{Status: domain.StatusError, OldSymbol: symbol, Error: ctx.Err().Error()}
}
