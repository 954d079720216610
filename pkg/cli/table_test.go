package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "HOST", "STATUS")
	tbl.Row("access-sw1", "success")
	tbl.Row("core-sw1", "error")
	tbl.Flush()

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want headers+divider+2 rows:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "HOST") || !strings.Contains(lines[0], "STATUS") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "----") {
		t.Errorf("divider line = %q", lines[1])
	}
	// STATUS column starts at the same offset on every line.
	col := strings.Index(lines[0], "STATUS")
	if strings.Index(lines[2], "success") != col {
		t.Errorf("row not aligned with header:\n%s", out)
	}
}

func TestEmptyTableProducesNoOutput(t *testing.T) {
	var buf bytes.Buffer
	NewTableTo(&buf, "A", "B").Flush()
	if buf.Len() != 0 {
		t.Errorf("empty table wrote %q", buf.String())
	}
}

func TestTablePrefix(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "K", "V").WithPrefix("  ")
	tbl.Row("a", "b")
	tbl.Flush()
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line %q missing prefix", line)
		}
	}
}
