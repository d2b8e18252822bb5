package cli

import (
	"bytes"
	"strings"
	"testing"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestPrintStats(t *testing.T) {
	tests := []struct {
		name   string
		counts []count
		cached bool
		want   []string
		skip   string
	}{
		{"fresh", []count{{3, "tables"}, {2, "edges"}}, false, []string{"3 tables", "2 edges", "fresh"}, "cached"},
		{"cached", []count{{3, "tables"}}, true, []string{"3 tables", "cached"}, "fresh"},
		{"zero skipped", []count{{0, "dropped"}, {1, "tables"}}, false, []string{"1 tables"}, "dropped"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureStdout(t)
			printStats(tt.counts, tt.cached)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
			if strings.Contains(out, tt.skip) {
				t.Errorf("output %q should not contain %q", out, tt.skip)
			}
			if strings.Count(out, "\n") != 1 {
				t.Errorf("output should be one line, got %q", out)
			}
		})
	}
}

func TestStatusLines(t *testing.T) {
	buf := captureStdout(t)
	printSuccess("wrote %d files", 2)
	printWarning("careful")
	printInfo("note")
	printFile("out.svg")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4: %q", len(lines), buf.String())
	}
	for i, want := range []string{"✓", "!", "›", "→"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, want icon %q", i, lines[i], want)
		}
	}
	if !strings.Contains(lines[0], "wrote 2 files") {
		t.Errorf("line 0 = %q, want formatted message", lines[0])
	}
}
