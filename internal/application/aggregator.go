package application

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/breakguard/breakguard/internal/domain"
	"github.com/breakguard/breakguard/internal/logging"
)

// Aggregator classifies every symbol occurrence of a scan, querying the
// classifier at most once per unique symbol, and builds the project report.
type Aggregator struct {
	classifier domain.Classifier
	workers    int
	logger     *slog.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithClassifyWorkers bounds how many classifications run concurrently.
func WithClassifyWorkers(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithAggregatorLogger sets the logger used for per-symbol diagnostics.
func WithAggregatorLogger(l *slog.Logger) AggregatorOption {
	return func(a *Aggregator) { a.logger = logging.OrDiscard(l) }
}

func NewAggregator(classifier domain.Classifier, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		classifier: classifier,
		workers:    domain.DefaultWorkers,
		logger:     logging.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate fans each unique symbol's verdict out to every file that uses it.
// Summary counts cover unique symbols only. When ctx is cancelled the report
// holds the verdicts completed so far and ctx.Err() is returned.
func (a *Aggregator) Aggregate(ctx context.Context, scan *domain.ScanResult, vc domain.VersionContext) (*domain.ProjectReport, error) {
	memo := newVerdictMemo(a.classifier, vc, a.logger)
	records := scan.Records()

	var g errgroup.Group
	g.SetLimit(a.workers)
	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			memo.get(ctx, rec.CanonicalSymbol)
			return nil
		})
	}
	_ = g.Wait()

	verdicts := memo.snapshot()
	report := &domain.ProjectReport{
		Breaking:   []domain.ReportEntry{},
		Minor:      []domain.ReportEntry{},
		Compatible: []domain.ReportEntry{},
		Errors:     []domain.ReportEntry{},
		Summary:    domain.Summarize(verdicts),
	}
	for _, rec := range records {
		v, ok := verdicts[rec.CanonicalSymbol]
		if !ok {
			continue
		}
		entry := domain.ReportEntry{File: rec.FilePath, Verdict: v}
		switch v.Status {
		case domain.StatusBreaking:
			report.Breaking = append(report.Breaking, entry)
		case domain.StatusMinor:
			report.Minor = append(report.Minor, entry)
		case domain.StatusCompatible:
			report.Compatible = append(report.Compatible, entry)
		default:
			report.Errors = append(report.Errors, entry)
		}
	}

	return report, ctx.Err()
}

// verdictMemo lives for one Aggregate call. Concurrent requests for the same
// symbol share a single classification.
type verdictMemo struct {
	classifier domain.Classifier
	vc         domain.VersionContext
	logger     *slog.Logger

	group singleflight.Group
	mu    sync.Mutex
	done  map[string]domain.Verdict
}

func newVerdictMemo(c domain.Classifier, vc domain.VersionContext, logger *slog.Logger) *verdictMemo {
	return &verdictMemo{classifier: c, vc: vc, logger: logger, done: make(map[string]domain.Verdict)}
}

func (m *verdictMemo) lookup(symbol string) (domain.Verdict, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.done[symbol]
	return v, ok
}

// get returns the verdict for symbol, classifying it if no earlier or
// in-flight call has. It gives up when ctx is done.
func (m *verdictMemo) get(ctx context.Context, symbol string) (domain.Verdict, bool) {
	if v, ok := m.lookup(symbol); ok {
		return v, true
	}

	ch := m.group.DoChan(symbol, func() (any, error) {
		// A flight for this key may have finished since the lookup above.
		if v, ok := m.lookup(symbol); ok {
			return v, nil
		}

		v := m.classifier.Classify(ctx, symbol, m.vc)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m.logger.Debug("classified symbol", "symbol", symbol, "status", v.Status, "similarity", v.Score())
		if v.Status == domain.StatusError {
			m.logger.Warn("match provider failed", "symbol", symbol, "error", v.Error)
		}

		m.mu.Lock()
		m.done[symbol] = v
		m.mu.Unlock()
		return v, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return domain.Verdict{}, false
		}
		return r.Val.(domain.Verdict), true
	case <-ctx.Done():
		return domain.Verdict{}, false
	}
}

func (m *verdictMemo) snapshot() map[string]domain.Verdict {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.Verdict, len(m.done))
	for k, v := range m.done {
		out[k] = v
	}
	return out
}
