package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/breakguard/breakguard/internal/domain"
	"github.com/breakguard/breakguard/internal/logging"
)

// CheckService orchestrates the check pipeline:
// scan → classify unique symbols → fan out report → attach commit hash.
type CheckService struct {
	scanner    domain.ProjectScanner
	aggregator *Aggregator
	git        domain.GitInfo
	history    domain.ScanHistory
	onScan     func(*domain.ScanResult)
	logger     *slog.Logger
	now        func() time.Time
}

// CheckOption configures a CheckService.
type CheckOption func(*CheckService)

// WithGitInfo attaches the HEAD commit hash to results when available.
func WithGitInfo(g domain.GitInfo) CheckOption {
	return func(s *CheckService) { s.git = g }
}

// WithHistory enables RecordHistory.
func WithHistory(h domain.ScanHistory) CheckOption {
	return func(s *CheckService) { s.history = h }
}

// WithScanHook is called with the complete scan before classification starts.
func WithScanHook(fn func(*domain.ScanResult)) CheckOption {
	return func(s *CheckService) { s.onScan = fn }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) CheckOption {
	return func(s *CheckService) { s.logger = logging.OrDiscard(l) }
}

func NewCheckService(scanner domain.ProjectScanner, aggregator *Aggregator, opts ...CheckOption) *CheckService {
	s := &CheckService{
		scanner:    scanner,
		aggregator: aggregator,
		logger:     logging.NewDiscardLogger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan runs extraction only.
func (s *CheckService) Scan(ctx context.Context, projectPath string) (*domain.ScanResult, error) {
	scan, err := s.scanner.Scan(ctx, projectPath)
	if err != nil && !isCancellation(err) {
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	return scan, err
}

// Check scans projectPath and classifies every symbol found. On cancellation
// the partially filled result is returned together with the context error.
func (s *CheckService) Check(ctx context.Context, projectPath string, vc domain.VersionContext) (*domain.CheckResult, error) {
	start := s.now()

	scan, err := s.Scan(ctx, projectPath)
	if err != nil {
		if scan == nil {
			return nil, err
		}
		return &domain.CheckResult{Context: vc, Scan: scan, Report: emptyReport(), Duration: s.now().Sub(start)}, err
	}
	s.logger.Info("scan complete",
		"files", len(scan.Files), "calls", scan.TotalCalls(), "unique", len(scan.UniqueSymbols()), "skipped", len(scan.Skipped))
	if s.onScan != nil {
		s.onScan(scan)
	}

	report, err := s.aggregator.Aggregate(ctx, scan, vc)
	res := &domain.CheckResult{
		Context:  vc,
		Scan:     scan,
		Report:   report,
		Duration: s.now().Sub(start),
	}

	if s.git != nil && s.git.IsGitRepo(scan.RootPath) {
		if hash, herr := s.git.CommitHash(scan.RootPath); herr == nil {
			res.CommitHash = hash
		} else {
			s.logger.Debug("reading commit hash", "error", herr)
		}
	}
	return res, err
}

// RecordHistory appends a summary of res to the project's scan history.
func (s *CheckService) RecordHistory(res *domain.CheckResult) error {
	if s.history == nil {
		return errors.New("scan history is not configured")
	}
	entry := domain.ScanEntry{
		Timestamp:   s.now().UTC().Format(time.RFC3339),
		CommitHash:  res.CommitHash,
		Library:     res.Context.Library,
		FromVersion: res.Context.OldVersion,
		ToVersion:   res.Context.NewVersion,
		Files:       len(res.Scan.Files),
		Summary:     res.Report.Summary,
	}
	return s.history.Save(res.Scan.RootPath, entry)
}

func emptyReport() *domain.ProjectReport {
	return &domain.ProjectReport{
		Breaking:   []domain.ReportEntry{},
		Minor:      []domain.ReportEntry{},
		Compatible: []domain.ReportEntry{},
		Errors:     []domain.ReportEntry{},
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
