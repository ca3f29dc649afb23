package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/wonny/happiness/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// out is where every command prints; tests swap it
var out io.Writer = os.Stdout

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// PrintHeader prints a formatted section header
func PrintHeader(title string, meta ...[2]string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, doubleLine)
	fmt.Fprintf(out, "  %s\n", title)
	if len(meta) > 0 {
		fmt.Fprintln(out, singleLine)
		for _, kv := range meta {
			fmt.Fprintf(out, "  %-10s: %s\n", kv[0], kv[1])
		}
	}
	fmt.Fprintln(out, singleLine)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Fprintln(out, singleLine)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintf(out, "✅ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintf(out, "⚠️  %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(out, "❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Fprintf(out, "ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(out, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(out, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(out, "  ")
		}
	}
	fmt.Fprintln(out)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Fprintf(out, "   %-*s : %s\n", keyWidth, key, value)
}

// formatSigned renders a delta with an explicit sign
func formatSigned(v float64, unit string) string {
	return fmt.Sprintf("%+.1f%s", v, unit)
}

// formatVolume renders a mention count with thousands separators
func formatVolume(v int64) string {
	return humanize.Comma(v)
}

// formatFloatVolume renders a volume statistic with thousands separators
func formatFloatVolume(v float64) string {
	return humanize.CommafWithDigits(v, 1)
}

// formatAge renders a timestamp relative to now
func formatAge(ts time.Time, now time.Time) string {
	return humanize.RelTime(ts, now, "ago", "from now")
}

// severityIcon maps severity to the console marker
func severityIcon(s contracts.Severity) string {
	switch s {
	case contracts.SeverityCritical:
		return "🔴"
	case contracts.SeverityWarning:
		return "🟡"
	default:
		return "🔵"
	}
}
