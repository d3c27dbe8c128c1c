package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/breakguard/breakguard/internal/adapters/inbound/cli"
	"github.com/breakguard/breakguard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCommand_Fixture(t *testing.T) {
	backend := newFakeBackend(t)

	out, _, err := run(t, fixtureDir, "--extractor", "lexical")
	require.NoError(t, err)

	assert.Contains(t, out, "BreakGuard")
	assert.Contains(t, out, "Found 10 API calls (9 unique) in 5 files")
	assert.Contains(t, out, "BREAKING CHANGES (2)")
	assert.Contains(t, out, "ReactDOM.render")
	assert.Contains(t, out, "src/index.js:5")
	assert.Contains(t, out, "Migration Guide:")
	assert.Contains(t, out, "MINOR CHANGES (1)")
	assert.Contains(t, out, "Result: 2 breaking change(s) detected!")
	assert.Equal(t, 9, backend.searchCount(), "one query per unique symbol")
}

func TestCheckCommand_NoBanner(t *testing.T) {
	newFakeBackend(t)

	out, _, err := run(t, fixtureDir, "--extractor", "lexical", "--no-banner")
	require.NoError(t, err)
	assert.NotContains(t, out, "Semantic API Breaking Change Predictor")
}

func TestCheckCommand_JSONReport(t *testing.T) {
	newFakeBackend(t)
	dest := filepath.Join(t.TempDir(), "report.json")

	out, _, err := run(t, fixtureDir, "--extractor", "lexical", "--json", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Report saved to")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)

	var doc domain.ReportDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "react", doc.Library)
	assert.Equal(t, "17", doc.FromVersion)
	assert.Equal(t, "18", doc.ToVersion)
	assert.Equal(t, domain.Summary{TotalUniqueSymbols: 9, Breaking: 2, Minor: 1, Compatible: 6}, doc.Summary)
	assert.Len(t, doc.BreakingChanges, 2)
	assert.NotNil(t, doc.Errors)
}

func TestCheckCommand_CIMode(t *testing.T) {
	newFakeBackend(t)

	_, _, err := run(t, fixtureDir, "--extractor", "lexical", "--ci")
	assert.ErrorIs(t, err, cli.ErrBreakingChanges)
}

func TestCheckCommand_ProviderDown(t *testing.T) {
	t.Setenv("BREAKGUARD_PROVIDER_URL", "http://127.0.0.1:1/api/v1")
	t.Setenv("BREAKGUARD_EMBEDDER_URL", "http://127.0.0.1:1")

	out, _, err := run(t, fixtureDir, "--extractor", "lexical", "--quiet")
	require.NoError(t, err, "provider failures become error verdicts")
	assert.Contains(t, out, "ERRORS (10)")
	assert.Contains(t, out, "Result: 9 error(s) occurred during analysis.")
}

func TestCheckCommand_PathNotFound(t *testing.T) {
	_, _, err := run(t, filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, domain.ErrPathNotFound)
}

func TestCheckCommand_NoMatchesExitsZero(t *testing.T) {
	backend := newFakeBackend(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "util.js"), []byte("export const add = (a, b) => a + b\n"), 0644))

	out, _, err := run(t, dir, "--extractor", "lexical")
	require.NoError(t, err)
	assert.Contains(t, out, "No API calls found")
	assert.Zero(t, backend.searchCount())
}

func TestCheckCommand_InvalidThreshold(t *testing.T) {
	_, _, err := run(t, fixtureDir, "--threshold", "1.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0.0 and 1.0")
}

func TestCheckCommand_ThresholdFlagBeatsLibraryOverride(t *testing.T) {
	newFakeBackend(t)
	project := copyFixture(t)
	yaml := "thresholds:\n  minor: 0.995\nlibraries:\n  react:\n    breaking: 0.3\n"
	require.NoError(t, os.WriteFile(filepath.Join(project, ".breakguard.yaml"), []byte(yaml), 0644))
	dest := filepath.Join(t.TempDir(), "report.json")

	_, _, err := run(t, project, "--extractor", "lexical", "--threshold", "0.95", "--json", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var doc domain.ReportDocument
	require.NoError(t, json.Unmarshal(data, &doc))

	// useEffect scores 0.91: breaking at 0.95, minor at the file's 0.3.
	assert.Equal(t, domain.Summary{TotalUniqueSymbols: 9, Breaking: 3, Minor: 6}, doc.Summary)
}

func TestCheckCommand_UnknownExtractor(t *testing.T) {
	_, _, err := run(t, fixtureDir, "--extractor", "ast")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extractor")
}

func TestCheckCommand_SaveHistoryAndCache(t *testing.T) {
	newFakeBackend(t)
	project := copyFixture(t)

	_, _, err := run(t, project, "--extractor", "lexical", "--save-history", "--cache")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(project, ".breakguard", "cache", "symbols.json"))
	assert.NoError(t, err, "symbol cache is written")

	out, _, err := run(t, "history", project)
	require.NoError(t, err)
	assert.Contains(t, out, "Scan History")
	assert.Contains(t, out, "2 breaking")
}

func TestCheckCommand_VerboseLogsToStderr(t *testing.T) {
	newFakeBackend(t)

	out, errOut, err := run(t, fixtureDir, "--extractor", "lexical", "-vv")
	require.NoError(t, err)
	assert.Contains(t, errOut, "[debug]")
	assert.NotContains(t, out, "[debug]")
}
