package ui

import (
	"strings"
	"testing"
)

func TestTableAlignment(t *testing.T) {
	tbl := NewTable(3)
	tbl.AddRow("pb-start", "core", "sonnet")
	tbl.AddRow("pb-review-code", "reviews", "opus")

	out := tbl.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}

	// Second column should start at the same offset in both rows.
	first := strings.Index(lines[0], "core")
	second := strings.Index(lines[1], "reviews")
	if first != second {
		t.Errorf("columns not aligned: %d vs %d\n%s", first, second, out)
	}
}

func TestTableEmpty(t *testing.T) {
	if out := NewTable(2).String(); out != "" {
		t.Errorf("empty table should render empty string, got %q", out)
	}
}

func TestErrorWarningCounts(t *testing.T) {
	tests := []struct {
		errors, warnings int
		want             string
	}{
		{1, 0, "(1 error)"},
		{2, 0, "(2 errors)"},
		{0, 1, "(1 warning)"},
		{3, 2, "(3 errors, 2 warnings)"},
	}
	for _, tt := range tests {
		if got := ErrorWarningCounts(tt.errors, tt.warnings); got != tt.want {
			t.Errorf("ErrorWarningCounts(%d, %d) = %q, want %q", tt.errors, tt.warnings, got, tt.want)
		}
	}
}
