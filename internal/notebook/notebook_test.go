package notebook

import (
	"strings"
	"testing"
)

func TestSegmentNoDelimiter(t *testing.T) {
	doc := "x = 1\nprint(x)\n"
	cells := Segment(doc, "")

	if len(cells) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(cells))
	}
	if cells[0].Start != 0 || cells[0].End != len(doc) {
		t.Errorf("cell range [%d,%d), want [0,%d)", cells[0].Start, cells[0].End, len(doc))
	}
}

func TestSegmentCountsAndOrder(t *testing.T) {
	doc := "import duckdb\n# %% load\ndb = duckdb.connect()\n# %% query\ndb.sql(\"SELECT 1\")\n"
	cells := Segment(doc, "# %%")

	if len(cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(cells))
	}
	for i, c := range cells {
		if c.Index != i {
			t.Errorf("cell %d has index %d", i, c.Index)
		}
	}
	if cells[1].Label != "load" || cells[2].Label != "query" {
		t.Errorf("labels = %q, %q", cells[1].Label, cells[2].Label)
	}
	if !strings.HasPrefix(cells[1].Source(doc), "# %% load\n") {
		t.Errorf("delimiter line should open its cell, got %q", cells[1].Source(doc))
	}
}

func TestSegmentRoundTrip(t *testing.T) {
	docs := []string{
		"",
		"a = 1",
		"# %%\nx\n# %%\ny",
		"# %% first\nno trailing newline",
		"leading\n# %%\n\n# %% two\nbody\n",
	}
	for _, doc := range docs {
		cells := Segment(doc, "# %%")
		var sb strings.Builder
		prev := 0
		for _, c := range cells {
			if c.Start != prev {
				t.Errorf("doc %q: cell %d starts at %d, want %d", doc, c.Index, c.Start, prev)
			}
			prev = c.End
			sb.WriteString(c.Source(doc))
		}
		if sb.String() != doc {
			t.Errorf("doc %q: concatenated cells %q", doc, sb.String())
		}
	}
}

func TestSegmentLeadingDelimiter(t *testing.T) {
	doc := "# %%\nx = 1\n"
	cells := Segment(doc, "# %%")

	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if cells[0].Start != 0 || cells[0].End != 0 {
		t.Errorf("first cell should be empty, got [%d,%d)", cells[0].Start, cells[0].End)
	}
}

func TestSegmentInsideStringStillSplits(t *testing.T) {
	// Lexical-context-free by design: the delimiter wins even inside a
	// triple-quoted string.
	doc := "s = \"\"\"\n# %%\n\"\"\"\n"
	cells := Segment(doc, "# %%")
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
}

func TestDelimiterLabel(t *testing.T) {
	tests := []struct {
		line  string
		label string
		ok    bool
	}{
		{"# %%", "", true},
		{"# %% setup", "setup", true},
		{"  # %%  load data  ", "load data", true},
		{"# %%%", "", false},
		{"x = 1 # %%", "", false},
		{"#%%", "", false},
	}
	for _, tt := range tests {
		label, ok := delimiterLabel(tt.line, "# %%")
		if ok != tt.ok || label != tt.label {
			t.Errorf("delimiterLabel(%q) = (%q, %v), want (%q, %v)", tt.line, label, ok, tt.label, tt.ok)
		}
	}
}

func TestCellAt(t *testing.T) {
	doc := "a\n# %%\nb\n"
	cells := Segment(doc, "# %%")

	if got := CellAt(cells, 0); got.Index != 0 {
		t.Errorf("offset 0 in cell %d", got.Index)
	}
	if got := CellAt(cells, 5); got.Index != 1 {
		t.Errorf("offset 5 in cell %d", got.Index)
	}
	if got := CellAt(cells, 999); got.Index != 1 {
		t.Errorf("past-end offset in cell %d", got.Index)
	}
}

func TestShebang(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{"#!/usr/bin/env python3\nx = 1\n", "python3"},
		{"#!/usr/bin/python3\n", "/usr/bin/python3"},
		{"#!/usr/bin/env\n", ""},
		{"x = 1\n", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Shebang(tt.doc); got != tt.want {
			t.Errorf("Shebang(%q) = %q, want %q", tt.doc, got, tt.want)
		}
	}
}
