package display

import (
	"errors"
	"strings"
	"testing"

	"github.com/gauthierbraillon/ytcomments/internal/aggregator"
)

func TestAC300_Summary_ShowsCountsLine(t *testing.T) {
	s := aggregator.Summary{Total: 5, OK: 3, Disabled: 1, Failed: 1}

	output := NewSummaryFormatter(false).FormatSummary(s)

	want := "Processed 5 videos: 3 ok, 1 with comments disabled, 1 skipped due to errors"
	if !strings.HasPrefix(output, want) {
		t.Errorf("user should see %q, got %q", want, output)
	}
}

func TestAC301_Summary_ListsDisabledAndFailedVideos(t *testing.T) {
	s := aggregator.Summary{
		Total: 3, OK: 1, Disabled: 1, Failed: 1,
		Failures: []aggregator.Failure{
			{VideoID: "V2", Title: "Second", Status: aggregator.StatusCommentsDisabled},
			{VideoID: "V3", Title: "Third", Status: aggregator.StatusFailed, Err: errors.New("YouTube API server error")},
		},
	}

	output := NewSummaryFormatter(false).FormatSummary(s)
	lines := strings.Split(strings.TrimSpace(output), "\n")

	if len(lines) != 3 {
		t.Fatalf("user should see the counts line and one line per video, got %q", output)
	}
	if !strings.Contains(lines[1], "V2") || !strings.Contains(lines[1], "comments disabled") {
		t.Errorf("user should see which video has comments disabled, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "V3") || !strings.Contains(lines[2], "server error") {
		t.Errorf("user should see why a video failed, got %q", lines[2])
	}
}

func TestAC302_Summary_ShowsNotProcessedVideos(t *testing.T) {
	s := aggregator.Summary{Total: 4, OK: 1, Pending: 3}

	output := NewSummaryFormatter(false).FormatSummary(s)

	if !strings.Contains(output, "Processed 1 videos") || !strings.Contains(output, "3 not processed") {
		t.Errorf("user should see how many videos were not processed, got %q", output)
	}
}

func TestAC303_Summary_ShowsSkippedAndQuota(t *testing.T) {
	s := aggregator.Summary{Total: 1, OK: 1, Skipped: 1, QuotaUsed: 42}

	output := NewSummaryFormatter(false).FormatSummary(s)

	if !strings.Contains(output, "Skipped 1 malformed comment ") {
		t.Errorf("user should see skipped comments count, got %q", output)
	}
	if !strings.Contains(output, "Quota used: 42 of 10000") {
		t.Errorf("user should see quota consumption, got %q", output)
	}
}

func TestAC304_Summary_NoColorWhenDisabled(t *testing.T) {
	output := NewSummaryFormatter(false).FormatSummary(aggregator.Summary{Total: 1, OK: 1})

	if strings.Contains(output, "\x1b[") {
		t.Errorf("output should carry no escape codes when color is off, got %q", output)
	}
}

func TestAC304_Summary_ColorWhenEnabled(t *testing.T) {
	output := NewSummaryFormatter(true).FormatSummary(aggregator.Summary{Total: 1, Failed: 1})

	if !strings.Contains(output, "\x1b[31m") {
		t.Errorf("failures should be shown in red, got %q", output)
	}
}

func TestAC305_TruncatesLongText(t *testing.T) {
	f := NewSummaryFormatter(false)

	if got := f.TruncateText("This is a very long error message", 10); got != "This is..." {
		t.Errorf("expected 'This is...', got %q", got)
	}
	if got := f.TruncateText("Short", 10); got != "Short" {
		t.Errorf("short text should be preserved, got %q", got)
	}
	if got := f.TruncateText("ééééééé", 5); got != "éé..." {
		t.Errorf("truncation should not split characters, got %q", got)
	}
}

func TestAC306_FormatWritten(t *testing.T) {
	f := NewSummaryFormatter(false)

	if got := f.FormatWritten("comments.json", 1); got != "Wrote 1 video to comments.json\n" {
		t.Errorf("unexpected message %q", got)
	}
	if got := f.FormatWritten("out.json", 0); got != "Wrote 0 videos to out.json\n" {
		t.Errorf("unexpected message %q", got)
	}
}
