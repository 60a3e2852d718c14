package complete

import (
	"strings"
	"testing"
)

func TestClassifySQLArgument(t *testing.T) {
	cell := `db.sql("SELECT * FROM ord")`
	cursor := strings.Index(cell, `ord"`) + 3

	ctx := Classify(cell, cursor)
	if ctx.Kind != ContextSQLArgument {
		t.Fatalf("kind = %v, want SQLArgument", ctx.Kind)
	}
	if ctx.SQLText != "SELECT * FROM ord" {
		t.Errorf("SQLText = %q", ctx.SQLText)
	}
	if ctx.Prefix != "ord" {
		t.Errorf("Prefix = %q", ctx.Prefix)
	}
}

func TestClassifySQLPatterns(t *testing.T) {
	tests := []struct {
		cell string
		want ContextKind
	}{
		{`con.execute("SELECT `, ContextSQLArgument},
		{`spark.sql("SELECT `, ContextSQLArgument},
		{`pd.read_sql("SELECT `, ContextSQLArgument},
		{`pd.read_sql_query("SELECT `, ContextSQLArgument},
		{`print("SELECT `, ContextPlain},
		{`open("SELECT `, ContextPlain},
	}
	for _, tt := range tests {
		if got := Classify(tt.cell, len(tt.cell)).Kind; got != tt.want {
			t.Errorf("Classify(%q) kind = %v, want %v", tt.cell, got, tt.want)
		}
	}
}

func TestClassifyFStringExcludesInterpolation(t *testing.T) {
	cell := `db.sql(f"SELECT {x} FROM use")`
	cursor := strings.Index(cell, `use"`) + 3

	ctx := Classify(cell, cursor)
	if ctx.Kind != ContextSQLArgument {
		t.Fatalf("kind = %v, want SQLArgument", ctx.Kind)
	}
	if strings.Contains(ctx.SQLText, "{x}") || strings.Contains(ctx.SQLText, "x") {
		t.Errorf("SQLText %q should exclude interpolation region", ctx.SQLText)
	}
	if ctx.Prefix != "use" {
		t.Errorf("Prefix = %q", ctx.Prefix)
	}
}

func TestClassifyInsideInterpolationIsHostCode(t *testing.T) {
	cell := `db.sql(f"SELECT {df.sh}")`
	cursor := strings.Index(cell, "sh}") + 2

	ctx := Classify(cell, cursor)
	if ctx.Kind != ContextMethodChain {
		t.Fatalf("kind = %v, want MethodChain", ctx.Kind)
	}
	if ctx.Receiver != "df" || ctx.Prefix != "sh" {
		t.Errorf("receiver=%q prefix=%q", ctx.Receiver, ctx.Prefix)
	}
}

func TestClassifyTripleQuoted(t *testing.T) {
	cell := "db.sql(\"\"\"\nSELECT *\nFROM ord"
	ctx := Classify(cell, len(cell))
	if ctx.Kind != ContextSQLArgument {
		t.Fatalf("kind = %v, want SQLArgument", ctx.Kind)
	}
	if !strings.Contains(ctx.SQLText, "FROM ord") {
		t.Errorf("SQLText = %q", ctx.SQLText)
	}
}

func TestClassifyMethodChain(t *testing.T) {
	tests := []struct {
		cell     string
		receiver string
		prefix   string
	}{
		{"df.he", "df", "he"},
		{"df.", "df", ""},
		{"duckdb.sql(\"SELECT 1\").fil", `duckdb.sql("SELECT 1")`, "fil"},
		{"x = conn.cur", "conn", "cur"},
	}
	for _, tt := range tests {
		ctx := Classify(tt.cell, len(tt.cell))
		if ctx.Kind != ContextMethodChain {
			t.Errorf("Classify(%q) kind = %v, want MethodChain", tt.cell, ctx.Kind)
			continue
		}
		if ctx.Receiver != tt.receiver || ctx.Prefix != tt.prefix {
			t.Errorf("Classify(%q) = receiver %q prefix %q, want %q %q",
				tt.cell, ctx.Receiver, ctx.Prefix, tt.receiver, tt.prefix)
		}
	}
}

func TestClassifyPlain(t *testing.T) {
	tests := []struct {
		cell   string
		prefix string
	}{
		{"pri", "pri"},
		{"x = ran", "ran"},
		{"", ""},
		{"x = 1 + ", ""},
	}
	for _, tt := range tests {
		ctx := Classify(tt.cell, len(tt.cell))
		if ctx.Kind != ContextPlain || ctx.Prefix != tt.prefix {
			t.Errorf("Classify(%q) = kind %v prefix %q, want Plain %q",
				tt.cell, ctx.Kind, ctx.Prefix, tt.prefix)
		}
	}
}

func TestClassifyMalformedDegradesToPlain(t *testing.T) {
	// Unbalanced constructs must classify as Plain, never panic.
	cells := []string{
		`db.sql("SELECT ))))`,
		`"unclosed`,
		`(((`,
		`db.sql(`,
	}
	for _, cell := range cells {
		ctx := Classify(cell, len(cell))
		if ctx.Kind == ContextMethodChain {
			t.Errorf("Classify(%q) = MethodChain, want Plain or SQLArgument", cell)
		}
	}
}

func TestClassifyEscapedQuote(t *testing.T) {
	cell := `s = "it\'s"` + "\nx.fo"
	ctx := Classify(cell, len(cell))
	if ctx.Kind != ContextMethodChain || ctx.Receiver != "x" {
		t.Errorf("ctx = %+v", ctx)
	}
}

func TestClassifyCursorClamping(t *testing.T) {
	ctx := Classify("abc", 99)
	if ctx.Prefix != "abc" {
		t.Errorf("clamped classify prefix = %q", ctx.Prefix)
	}
	ctx = Classify("abc", -1)
	if ctx.Prefix != "" {
		t.Errorf("negative cursor prefix = %q", ctx.Prefix)
	}
}

func TestClassifyConfiguredSQLPatterns(t *testing.T) {
	cell := `db.run_query("SELECT `

	if got := Classify(cell, len(cell)).Kind; got != ContextPlain {
		t.Fatalf("built-in Classify(%q) kind = %v, want Plain", cell, got)
	}
	if got := classify(cell, len(cell), []string{"run_query"}).Kind; got != ContextSQLArgument {
		t.Errorf("bare pattern kind = %v, want SQLArgument", got)
	}
	if got := classify(cell, len(cell), []string{".run_query"}).Kind; got != ContextSQLArgument {
		t.Errorf("dotted pattern kind = %v, want SQLArgument", got)
	}

	// A bare pattern must match a whole dotted component.
	other := `shrun_query("SELECT `
	if got := classify(other, len(other), []string{"run_query"}).Kind; got != ContextPlain {
		t.Errorf("partial component kind = %v, want Plain", got)
	}
}
