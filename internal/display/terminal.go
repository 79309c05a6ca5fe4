// Package display provides terminal output formatting for ytcomments.
package display

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/gauthierbraillon/ytcomments/internal/aggregator"
	"github.com/gauthierbraillon/ytcomments/internal/quota"
)

const maxErrorLen = 160

// SummaryFormatter formats the end-of-run report for terminal display.
type SummaryFormatter struct {
	ok   *color.Color
	warn *color.Color
	bad  *color.Color
}

// NewSummaryFormatter creates a formatter. Colors are only emitted when
// colored is true.
func NewSummaryFormatter(colored bool) *SummaryFormatter {
	f := &SummaryFormatter{
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		bad:  color.New(color.FgRed),
	}
	for _, c := range []*color.Color{f.ok, f.warn, f.bad} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

// FormatSummary formats the counts line followed by one line per video that
// had comments disabled or failed.
func (f *SummaryFormatter) FormatSummary(s aggregator.Summary) string {
	var lines []string

	head := s.String()
	switch {
	case s.Failed > 0 || s.Pending > 0:
		head = f.bad.Sprint(head)
	case s.Disabled > 0:
		head = f.warn.Sprint(head)
	default:
		head = f.ok.Sprint(head)
	}
	lines = append(lines, head)

	for _, fl := range s.Failures {
		lines = append(lines, "  "+f.formatFailure(fl))
	}

	if s.Skipped > 0 {
		lines = append(lines, f.warn.Sprintf("Skipped %s with missing text or author", pluralize(s.Skipped, "malformed comment")))
	}
	if s.QuotaUsed > 0 {
		lines = append(lines, fmt.Sprintf("Quota used: %d of %d daily units", s.QuotaUsed, quota.DailyUnits))
	}

	return strings.Join(lines, "\n") + "\n"
}

func (f *SummaryFormatter) formatFailure(fl aggregator.Failure) string {
	name := fmt.Sprintf("%s %q", fl.VideoID, f.TruncateText(fl.Title, 60))
	if fl.Status == aggregator.StatusCommentsDisabled {
		return f.warn.Sprintf("%s: comments disabled", name)
	}
	reason := "unknown error"
	if fl.Err != nil {
		reason = f.TruncateText(fl.Err.Error(), maxErrorLen)
	}
	return f.bad.Sprintf("%s: %s", name, reason)
}

// FormatWritten reports where the document went.
func (f *SummaryFormatter) FormatWritten(path string, videos int) string {
	return f.ok.Sprintf("Wrote %s to %s", pluralize(videos, "video"), path) + "\n"
}

// FormatFatal formats an error that aborted the run.
func (f *SummaryFormatter) FormatFatal(err error) string {
	return f.bad.Sprintf("Error: %v", err) + "\n"
}

// pluralize returns "1 unit" or "N units" based on count.
func pluralize(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// TruncateText truncates text to maxLen runes, adding "..." if truncated.
func (f *SummaryFormatter) TruncateText(text string, maxLen int) string {
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}
