package tui

import (
	"fmt"
	"strings"

	"github.com/breakguard/breakguard/internal/domain"
	"github.com/breakguard/breakguard/internal/domain/compat"
	"github.com/charmbracelet/lipgloss"
)

var (
	accent  = lipgloss.Color("#06B6D4") // cyan
	fg      = lipgloss.Color("#E8E6E3")
	dim     = lipgloss.Color("#6B7280")
	faint   = lipgloss.Color("#3F3F46")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(64)

	dimStyle     = lipgloss.NewStyle().Foreground(dim)
	faintStyle   = lipgloss.NewStyle().Foreground(faint)
	passStyle    = lipgloss.NewStyle().Foreground(success)
	failStyle    = lipgloss.NewStyle().Foreground(danger)
	warnStyle    = lipgloss.NewStyle().Foreground(warning)
	fileStyle    = lipgloss.NewStyle().Foreground(accent)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(fg)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)

	separatorLine = faintStyle.Render(strings.Repeat("─", 60))
	doubleLine    = sectionStyle.Render(strings.Repeat("═", 60))
)

// LineLocator returns the 1-based lines of symbol in a report-relative path.
type LineLocator func(relPath, symbol string) []int

// RenderBanner returns the startup banner.
func RenderBanner() string {
	title := headerStyle.Render("BreakGuard")
	subtitle := dimStyle.Render("Semantic API Breaking Change Predictor")
	return boxStyle.Render(title+"\n"+subtitle) + "\n"
}

// RenderSection renders a titled section header.
func RenderSection(title string) string {
	return "\n" + doubleLine + "\n  " + titleStyle.Render(title) + "\n" + doubleLine + "\n"
}

// RenderScan lists every file with its symbols and their line numbers.
func RenderScan(scan *domain.ScanResult, locate LineLocator) string {
	var b strings.Builder

	if len(scan.Files) == 0 {
		b.WriteString("  " + warnStyle.Render("No API calls found in the project.") + "\n")
		b.WriteString("  " + dimStyle.Render("Make sure the path contains .js/.jsx/.ts/.tsx/.mjs files.") + "\n")
		renderSkipped(&b, scan.Skipped)
		return b.String()
	}

	summary := fmt.Sprintf("Found %d API calls (%d unique) in %d files",
		scan.TotalCalls(), len(scan.UniqueSymbols()), len(scan.Files))
	b.WriteString("  " + passStyle.Render(summary) + "\n\n")

	for _, path := range scan.Paths() {
		b.WriteString("    " + fileStyle.Render(path) + "\n")
		for _, sym := range scan.Files[path] {
			fmt.Fprintf(&b, "      - %s%s\n", sym, lineSuffix(locateLines(locate, path, sym)))
		}
	}

	renderSkipped(&b, scan.Skipped)
	return b.String()
}

func renderSkipped(b *strings.Builder, skipped []domain.SkippedFile) {
	if len(skipped) == 0 {
		return
	}
	fmt.Fprintf(b, "\n  %s\n", warnStyle.Render(fmt.Sprintf("Skipped %d files:", len(skipped))))
	for _, s := range skipped {
		fmt.Fprintf(b, "    %s  %s\n", fileStyle.Render(s.FilePath), dimStyle.Render(s.Reason))
	}
}

func lineSuffix(lines []int) string {
	if len(lines) == 0 {
		return ""
	}
	strs := make([]string, len(lines))
	for i, l := range lines {
		strs[i] = fmt.Sprint(l)
	}
	label := "line"
	if len(lines) > 1 {
		label = "lines"
	}
	return dimStyle.Render(fmt.Sprintf(" (%s: %s)", label, strings.Join(strs, ", ")))
}

func locateLines(locate LineLocator, path, symbol string) []int {
	if locate == nil {
		return nil
	}
	return locate(path, symbol)
}

// RenderSummary renders the verdict counts and elapsed time.
func RenderSummary(res *domain.CheckResult) string {
	s := res.Report.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "\n  Total APIs analyzed: %s\n", titleStyle.Render(fmt.Sprint(s.TotalUniqueSymbols)))
	b.WriteString("  " + failStyle.Render(fmt.Sprintf("Breaking changes: %d", s.Breaking)) + "\n")
	b.WriteString("  " + warnStyle.Render(fmt.Sprintf("Minor changes:    %d", s.Minor)) + "\n")
	b.WriteString("  " + passStyle.Render(fmt.Sprintf("Compatible:       %d", s.Compatible)) + "\n")
	if s.Errors > 0 {
		b.WriteString("  " + failStyle.Render(fmt.Sprintf("Errors:           %d", s.Errors)) + "\n")
	}
	fmt.Fprintf(&b, "  Scan time:        %.2fs\n", res.Duration.Seconds())
	if res.CommitHash != "" {
		fmt.Fprintf(&b, "  Commit:           %s\n", dimStyle.Render(shortHash(res.CommitHash)))
	}
	return b.String()
}

// RenderReport renders the grouped report sections followed by the result line.
func RenderReport(res *domain.CheckResult, locate LineLocator) string {
	var b strings.Builder
	r := res.Report

	b.WriteString(RenderSection(fmt.Sprintf("BreakGuard Report: %s %s -> %s",
		res.Context.Library, res.Context.OldVersion, res.Context.NewVersion)))
	b.WriteString(RenderSummary(res))

	if len(r.Breaking) > 0 {
		sectionHeader(&b, failStyle, "BREAKING CHANGES", len(r.Breaking))
		for _, g := range groupBySymbol(r.Breaking) {
			renderBreaking(&b, g, locate)
		}
	}

	if len(r.Minor) > 0 {
		sectionHeader(&b, warnStyle, "MINOR CHANGES", len(r.Minor))
		for _, g := range groupBySymbol(r.Minor) {
			v := g.entries[0]
			fmt.Fprintf(&b, "\n  %s %s\n", warnStyle.Render("~"), titleStyle.Render(g.symbol))
			fmt.Fprintf(&b, "    Status:     %s\n", warnStyle.Render("Review recommended"))
			fmt.Fprintf(&b, "    Similarity: %s\n", similarityBar(v.Score(), 20))
			if v.Message != "" {
				fmt.Fprintf(&b, "    Note:       %s\n", v.Message)
			}
		}
	}

	if len(r.Errors) > 0 {
		sectionHeader(&b, failStyle, "ERRORS", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "\n  %s %s\n", failStyle.Render("!"), e.OldSymbol)
			fmt.Fprintf(&b, "    File:  %s\n", fileStyle.Render(e.File))
			fmt.Fprintf(&b, "    Error: %s\n", e.Error)
		}
	}

	if len(r.Compatible) > 0 {
		sectionHeader(&b, passStyle, "COMPATIBLE", len(r.Compatible))
		for _, g := range groupBySymbol(r.Compatible) {
			fmt.Fprintf(&b, "  %s %s  %s\n", passStyle.Render("✓"), g.symbol, similarityBar(g.entries[0].Score(), 20))
		}
	}

	b.WriteString(RenderResult(res.Context, r.Summary))
	return b.String()
}

func renderBreaking(b *strings.Builder, g symbolGroup, locate LineLocator) {
	v := g.entries[0]
	fmt.Fprintf(b, "\n  %s %s\n", failStyle.Render("✗"), titleStyle.Render(g.symbol))
	fmt.Fprintf(b, "    Status:      %s\n", failStyle.Render("BREAKING CHANGE"))
	if v.NewSymbol != "" {
		fmt.Fprintf(b, "    Replaced by: %s\n", passStyle.Render(v.NewSymbol))
	}
	if v.Confidence != nil {
		fmt.Fprintf(b, "    Similarity:  %s\n", similarityBar(v.Score(), 20))
	}
	if v.Message != "" {
		fmt.Fprintf(b, "    Message:     %s\n", v.Message)
	}

	fmt.Fprintf(b, "    Affected files (%d):\n", len(g.entries))
	for _, e := range g.entries {
		loc := ""
		if lines := locateLines(locate, e.File, g.symbol); len(lines) > 0 {
			loc = fmt.Sprintf(":%d", lines[0])
		}
		fmt.Fprintf(b, "      - %s\n", fileStyle.Render(e.File+loc))
	}

	guide := strings.TrimSpace(v.Migration)
	if guide != "" && guide != compat.NoGuide {
		fmt.Fprintf(b, "\n    %s\n", passStyle.Render("Migration Guide:"))
		for _, line := range strings.Split(guide, "\n") {
			fmt.Fprintf(b, "    %s\n", line)
		}
	}
}

func sectionHeader(b *strings.Builder, style lipgloss.Style, title string, n int) {
	fmt.Fprintf(b, "\n%s\n  %s\n%s\n", separatorLine, style.Bold(true).Render(fmt.Sprintf("%s (%d)", title, n)), separatorLine)
}

// RenderResult renders the closing verdict line. Breaking outranks errors,
// errors outrank minor changes.
func RenderResult(vc domain.VersionContext, s domain.Summary) string {
	var b strings.Builder
	b.WriteString("\n" + doubleLine + "\n")
	switch {
	case s.Breaking > 0:
		b.WriteString("  " + failStyle.Bold(true).Render(fmt.Sprintf("Result: %d breaking change(s) detected!", s.Breaking)) + "\n")
		b.WriteString("  " + warnStyle.Render(fmt.Sprintf("Action required before upgrading to %s %s.", vc.Library, vc.NewVersion)) + "\n")
	case s.Errors > 0:
		b.WriteString("  " + failStyle.Bold(true).Render(fmt.Sprintf("Result: %d error(s) occurred during analysis.", s.Errors)) + "\n")
		b.WriteString("  " + warnStyle.Render("Resolve the errors and re-run the scan.") + "\n")
	case s.Minor > 0:
		b.WriteString("  " + warnStyle.Bold(true).Render(fmt.Sprintf("Result: %d minor change(s) to review.", s.Minor)) + "\n")
		b.WriteString("  " + passStyle.Render("Upgrade is mostly safe, review the flagged items.") + "\n")
	default:
		b.WriteString("  " + passStyle.Bold(true).Render("Result: All APIs are compatible!") + "\n")
		b.WriteString("  " + passStyle.Render(fmt.Sprintf("Safe to upgrade to %s %s.", vc.Library, vc.NewVersion)) + "\n")
	}
	b.WriteString(doubleLine + "\n")
	return b.String()
}

type symbolGroup struct {
	symbol  string
	entries []domain.ReportEntry
}

// groupBySymbol groups fanned-out entries by symbol in first-seen order.
func groupBySymbol(entries []domain.ReportEntry) []symbolGroup {
	var groups []symbolGroup
	index := make(map[string]int)
	for _, e := range entries {
		i, ok := index[e.OldSymbol]
		if !ok {
			i = len(groups)
			index[e.OldSymbol] = i
			groups = append(groups, symbolGroup{symbol: e.OldSymbol})
		}
		groups[i].entries = append(groups[i].entries, e)
	}
	return groups
}

// similarityBar colors by the default thresholds.
func similarityBar(similarity float64, width int) string {
	filled := max(0, min(int(similarity*float64(width)), width))
	empty := width - filled

	color := danger
	switch {
	case similarity >= domain.DefaultMinorThreshold:
		color = success
	case similarity >= domain.DefaultBreakingThreshold:
		color = warning
	}
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return fmt.Sprintf("%s%s %.1f%%", filledStr, emptyStr, similarity*100)
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

// RenderHistory formats scan history for terminal output.
func RenderHistory(entries []domain.ScanEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No scan history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Scan History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := shortHash(e.CommitHash)
		if hash == "" {
			hash = "·······"
		}
		ts := e.Timestamp
		if len(ts) > 10 {
			ts = ts[:10]
		}

		breaking := passStyle
		if e.Summary.Breaking > 0 {
			breaking = failStyle
		}

		line := fmt.Sprintf("  %s  %s  %s %s->%s  %s  %s",
			dimStyle.Render(ts),
			faintStyle.Render(hash),
			e.Library, e.FromVersion, e.ToVersion,
			breaking.Render(fmt.Sprintf("%d breaking", e.Summary.Breaking)),
			dimStyle.Render(fmt.Sprintf("%d minor, %d apis", e.Summary.Minor, e.Summary.TotalUniqueSymbols)),
		)

		if i > 0 {
			diff := e.Summary.Breaking - entries[i-1].Summary.Breaking
			if diff < 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↓%d", -diff))
			} else if diff > 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↑%d", diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
