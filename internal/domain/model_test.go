package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/breakguard/breakguard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanResult_AddDedupsAndSorts(t *testing.T) {
	r := domain.NewScanResult("/proj")
	r.Add("/proj/a.js", []string{"useState", "ReactDOM.render", "useState"})
	r.Add("/proj/empty.js", nil)

	assert.Equal(t, []string{"ReactDOM.render", "useState"}, r.Files["/proj/a.js"])
	assert.NotContains(t, r.Files, "/proj/empty.js", "files without symbols are omitted")
}

func TestScanResult_UniqueSymbolsAndRecords(t *testing.T) {
	r := domain.NewScanResult("/proj")
	r.Add("/proj/b.js", []string{"useState"})
	r.Add("/proj/a.js", []string{"useState", "useEffect"})

	assert.Equal(t, []string{"useEffect", "useState"}, r.UniqueSymbols())
	assert.Equal(t, 3, r.TotalCalls())
	assert.Equal(t, []string{"/proj/a.js", "/proj/b.js"}, r.Paths())

	records := r.Records()
	require.Len(t, records, 3)
	assert.Equal(t, domain.CallRecord{FilePath: "/proj/a.js", CanonicalSymbol: "useEffect"}, records[0])
}

func TestSummarize_CountsEveryStatus(t *testing.T) {
	s := domain.Summarize(map[string]domain.Verdict{
		"a": {Status: domain.StatusBreaking},
		"b": {Status: domain.StatusMinor},
		"c": {Status: domain.StatusCompatible},
		"d": {Status: domain.StatusError},
		"e": {Status: domain.StatusCompatible},
	})
	assert.Equal(t, domain.Summary{TotalUniqueSymbols: 5, Breaking: 1, Minor: 1, Compatible: 2, Errors: 1}, s)
	assert.Equal(t, s.TotalUniqueSymbols, s.Breaking+s.Minor+s.Compatible+s.Errors)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.8766, domain.RoundTo(0.876649, 4))
	assert.Equal(t, 87.7, domain.RoundTo(87.66, 1))
}

func TestReportEntry_FlattensVerdictInJSON(t *testing.T) {
	entry := domain.ReportEntry{
		File: "src/index.js",
		Verdict: domain.Verdict{
			Status:     domain.StatusBreaking,
			OldSymbol:  "ReactDOM.render",
			NewSymbol:  domain.NotFound,
			Similarity: domain.Float(0),
		},
	}
	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "src/index.js", m["file"])
	assert.Equal(t, "ReactDOM.render", m["old_api"])
	assert.Equal(t, "breaking_change", m["status"])
	assert.Contains(t, m, "similarity", "a zero similarity is still reported")
}

func TestNewReportDocument_Schema(t *testing.T) {
	res := &domain.CheckResult{
		Context:  domain.VersionContext{Library: "react", OldVersion: "17", NewVersion: "18"},
		Scan:     domain.NewScanResult("/proj"),
		Report:   &domain.ProjectReport{Summary: domain.Summary{TotalUniqueSymbols: 0}},
		Duration: 1234 * time.Millisecond,
	}
	doc := domain.NewReportDocument(res)
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{
		"library", "from_version", "to_version", "project_path", "scan_time_seconds",
		"summary", "breaking_changes", "minor_changes", "errors", "compatible",
	} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, 1.23, m["scan_time_seconds"])
	assert.Equal(t, []any{}, m["breaking_changes"], "empty sections serialize as arrays")
}
