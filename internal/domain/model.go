package domain

import (
	"math"
	"sort"
	"time"
)

// CallRecord is one recognized symbol usage in one file.
type CallRecord struct {
	FilePath        string `json:"file"`
	CanonicalSymbol string `json:"symbol"`
}

// SkippedFile records a file that could not be processed during a scan.
type SkippedFile struct {
	FilePath string `json:"file"`
	Reason   string `json:"reason"`
}

// ScanResult maps each file path to its sorted, duplicate-free symbol set.
// Files without symbols are never present in Files.
type ScanResult struct {
	RootPath string              `json:"root_path"`
	Files    map[string][]string `json:"files"`
	Skipped  []SkippedFile       `json:"skipped,omitempty"`
}

// NewScanResult creates an empty result rooted at rootPath.
func NewScanResult(rootPath string) *ScanResult {
	return &ScanResult{RootPath: rootPath, Files: make(map[string][]string)}
}

// Add stores the symbol set for path. Empty sets are dropped.
func (r *ScanResult) Add(path string, symbols []string) {
	set := SortedSet(symbols)
	if len(set) == 0 {
		return
	}
	r.Files[path] = set
}

// Paths returns the file paths in lexical order.
func (r *ScanResult) Paths() []string {
	paths := make([]string, 0, len(r.Files))
	for p := range r.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Records flattens the mapping into CallRecords in deterministic order.
func (r *ScanResult) Records() []CallRecord {
	var out []CallRecord
	for _, p := range r.Paths() {
		for _, s := range r.Files[p] {
			out = append(out, CallRecord{FilePath: p, CanonicalSymbol: s})
		}
	}
	return out
}

// UniqueSymbols returns the sorted union of all symbols across files.
func (r *ScanResult) UniqueSymbols() []string {
	var all []string
	for _, syms := range r.Files {
		all = append(all, syms...)
	}
	return SortedSet(all)
}

// TotalCalls counts (file, symbol) occurrences.
func (r *ScanResult) TotalCalls() int {
	n := 0
	for _, syms := range r.Files {
		n += len(syms)
	}
	return n
}

// SortedSet returns the distinct values of in, sorted lexically.
func SortedSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// MatchCandidate is one ranked result returned by a MatchProvider.
type MatchCandidate struct {
	Symbol     string         `json:"symbol"`
	Similarity float64        `json:"similarity"`
	Deprecated bool           `json:"deprecated"`
	Replaces   string         `json:"replaces,omitempty"`
	ReplacedBy string         `json:"replaced_by,omitempty"`
	MigrateTo  string         `json:"migrate_to,omitempty"`
	Category   string         `json:"category,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// MatchFilter restricts a provider query to one library version.
type MatchFilter struct {
	Library string `json:"library"`
	Version string `json:"version"`
}

// Status is the outcome of classifying one symbol.
type Status string

const (
	StatusBreaking   Status = "breaking_change"
	StatusMinor      Status = "minor_change"
	StatusCompatible Status = "compatible"
	StatusError      Status = "error"
)

// NotFound is the NewSymbol reported when the provider returns no candidates.
const NotFound = "NOT FOUND"

// Verdict is the classification of one unique symbol.
type Verdict struct {
	Status     Status   `json:"status"`
	OldSymbol  string   `json:"old_api"`
	NewSymbol  string   `json:"new_api,omitempty"`
	Similarity *float64 `json:"similarity,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Deprecated bool     `json:"deprecated,omitempty"`
	Message    string   `json:"message,omitempty"`
	Migration  string   `json:"migration,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Score returns the similarity, or 0 when none was reported.
func (v Verdict) Score() float64 {
	if v.Similarity == nil {
		return 0
	}
	return *v.Similarity
}

// RoundTo rounds f to the given number of decimal places.
func RoundTo(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }

// VersionContext names the library and the versions being compared.
type VersionContext struct {
	Library    string `json:"library"`
	OldVersion string `json:"from_version"`
	NewVersion string `json:"to_version"`
}

// ReportEntry is one verdict fanned out to one file that uses the symbol.
type ReportEntry struct {
	File string `json:"file"`
	Verdict
}

// Summary counts verdicts over unique symbols, not over occurrences.
type Summary struct {
	TotalUniqueSymbols int `json:"total_apis"`
	Breaking           int `json:"breaking"`
	Minor              int `json:"minor"`
	Compatible         int `json:"compatible"`
	Errors             int `json:"errors"`
}

// ProjectReport is the aggregated compatibility result for a scan.
type ProjectReport struct {
	Breaking   []ReportEntry `json:"breaking_changes"`
	Minor      []ReportEntry `json:"minor_changes"`
	Compatible []ReportEntry `json:"compatible"`
	Errors     []ReportEntry `json:"errors"`
	Summary    Summary       `json:"summary"`
}

// Summarize counts the given unique-symbol verdicts.
func Summarize(verdicts map[string]Verdict) Summary {
	s := Summary{TotalUniqueSymbols: len(verdicts)}
	for _, v := range verdicts {
		switch v.Status {
		case StatusBreaking:
			s.Breaking++
		case StatusMinor:
			s.Minor++
		case StatusCompatible:
			s.Compatible++
		default:
			s.Errors++
		}
	}
	return s
}

// CheckResult bundles everything one check run produced.
type CheckResult struct {
	Context    VersionContext `json:"context"`
	Scan       *ScanResult    `json:"scan"`
	Report     *ProjectReport `json:"report"`
	Duration   time.Duration  `json:"duration"`
	CommitHash string         `json:"commit_hash,omitempty"`
}

// ReportDocument is the structured report written by --json.
type ReportDocument struct {
	Library         string        `json:"library"`
	FromVersion     string        `json:"from_version"`
	ToVersion       string        `json:"to_version"`
	ProjectPath     string        `json:"project_path"`
	ScanTimeSeconds float64       `json:"scan_time_seconds"`
	CommitHash      string        `json:"commit_hash,omitempty"`
	Summary         Summary       `json:"summary"`
	BreakingChanges []ReportEntry `json:"breaking_changes"`
	MinorChanges    []ReportEntry `json:"minor_changes"`
	Errors          []ReportEntry `json:"errors"`
	Compatible      []ReportEntry `json:"compatible"`
}

// NewReportDocument flattens a CheckResult into the JSON report schema.
func NewReportDocument(res *CheckResult) ReportDocument {
	doc := ReportDocument{
		Library:         res.Context.Library,
		FromVersion:     res.Context.OldVersion,
		ToVersion:       res.Context.NewVersion,
		ScanTimeSeconds: RoundTo(res.Duration.Seconds(), 2),
		CommitHash:      res.CommitHash,
		BreakingChanges: []ReportEntry{},
		MinorChanges:    []ReportEntry{},
		Errors:          []ReportEntry{},
		Compatible:      []ReportEntry{},
	}
	if res.Scan != nil {
		doc.ProjectPath = res.Scan.RootPath
	}
	if r := res.Report; r != nil {
		doc.Summary = r.Summary
		doc.BreakingChanges = append(doc.BreakingChanges, r.Breaking...)
		doc.MinorChanges = append(doc.MinorChanges, r.Minor...)
		doc.Errors = append(doc.Errors, r.Errors...)
		doc.Compatible = append(doc.Compatible, r.Compatible...)
	}
	return doc
}
