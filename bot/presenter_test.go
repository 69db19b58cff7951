package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/hazuki-dev/picshift/types"
)

func TestFormatKeyboardLayout(t *testing.T) {
	markup := FormatKeyboard()

	// Seven formats, two per row: 2+2+2+1.
	if len(markup.InlineKeyboard) != 4 {
		t.Fatalf("rows = %d, want 4", len(markup.InlineKeyboard))
	}
	total := 0
	for i, row := range markup.InlineKeyboard {
		total += len(row)
		if i < 3 && len(row) != 2 {
			t.Errorf("row %d has %d buttons, want 2", i, len(row))
		}
	}
	if total != len(types.AllFormats()) {
		t.Errorf("buttons = %d, want %d", total, len(types.AllFormats()))
	}

	first := markup.InlineKeyboard[0][0]
	if first.Text != "JPEG" {
		t.Errorf("first button text = %q", first.Text)
	}
	if first.CallbackData == nil || *first.CallbackData != "convert_jpeg" {
		t.Errorf("first button callback = %v", first.CallbackData)
	}
}

func TestStagedSummary(t *testing.T) {
	pending := []types.StagedImage{
		{OriginalName: "a.png", DetectedFormat: "png", Size: 1024},
		{OriginalName: "b.png", DetectedFormat: "png", Size: 1024},
		{OriginalName: "c.jpg", DetectedFormat: "jpeg", Size: 2048},
		{OriginalName: "weird.bin", DetectedFormat: "", Size: 100},
	}

	text := StagedSummary(pending)

	if !strings.Contains(text, "Total images: 4") {
		t.Errorf("summary missing total: %q", text)
	}
	if !strings.Contains(text, "png: 2 images") {
		t.Errorf("summary missing png count: %q", text)
	}
	if !strings.Contains(text, "jpeg: 1 image") {
		t.Errorf("summary missing jpeg count: %q", text)
	}
	if !strings.Contains(text, "Unknown: 1 image") {
		t.Errorf("summary missing unknown bucket: %q", text)
	}
}

func TestFinalSummaryText(t *testing.T) {
	outcome := &types.BatchOutcome{
		Processed:           2,
		Failed:              1,
		TotalOriginalBytes:  80 << 10,
		TotalConvertedBytes: 35 << 10,
		Elapsed:             1500 * time.Millisecond,
	}

	text := finalSummaryText(outcome, 3)

	if !strings.Contains(text, "Processed: 2/3 images") {
		t.Errorf("summary missing processed line: %q", text)
	}
	if !strings.Contains(text, "80.0 KB") || !strings.Contains(text, "35.0 KB") {
		t.Errorf("summary missing byte totals: %q", text)
	}
	if !strings.Contains(text, "45.0 KB (56.") {
		t.Errorf("summary missing space-saved percentage: %q", text)
	}
	if !strings.Contains(text, "1.5 seconds") {
		t.Errorf("summary missing elapsed time: %q", text)
	}
}

func TestFinalSummaryTextZeroOriginal(t *testing.T) {
	outcome := &types.BatchOutcome{}
	text := finalSummaryText(outcome, 2)
	if !strings.Contains(text, "(0.0%)") {
		t.Errorf("zero batch should report 0.0%% saved: %q", text)
	}
}
