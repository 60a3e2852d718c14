package complete

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/scribe-term/scribe/internal/catalog"
)

// Category classifies a candidate for ranking purposes only.
type Category int

const (
	CategoryTable Category = iota
	CategoryColumn
	CategoryFunction
	CategoryKeyword
	CategorySymbol
	CategoryAttribute
)

// categoryRank orders tie groups: tables and columns beat functions, which
// beat keywords. Host symbols and attributes share the top band with tables.
func categoryRank(c Category) int {
	switch c {
	case CategoryTable, CategoryColumn, CategorySymbol, CategoryAttribute:
		return 0
	case CategoryFunction:
		return 1
	default:
		return 2
	}
}

// Candidate is one ranked completion.
type Candidate struct {
	Text     string
	Category Category
}

// Provider produces ranked candidates from the cursor context and the
// interpreter-derived caches. An empty result is a valid, non-error outcome.
type Provider struct {
	store    *catalog.Store
	collator *collate.Collator
	extraSQL []string
}

// NewProvider returns a provider reading from the given catalog store.
// extraSQL adds configured call patterns whose string argument is treated
// as SQL, on top of the built-in list.
func NewProvider(store *catalog.Store, extraSQL ...string) *Provider {
	return &Provider{
		store:    store,
		collator: collate.New(language.Und, collate.IgnoreCase),
		extraSQL: extraSQL,
	}
}

// Complete classifies the cursor position within the cell and returns ranked
// candidates. The provider reads immutable cache snapshots, so it is safe to
// call from the front-end goroutine at any time.
func (p *Provider) Complete(cell string, cursor int) []Candidate {
	_, out := p.CompleteContext(cell, cursor)
	return out
}

// CompleteContext is Complete plus the classification itself, for callers
// that need the prefix to splice the chosen candidate into the buffer.
func (p *Provider) CompleteContext(cell string, cursor int) (CursorContext, []Candidate) {
	ctx := classify(cell, cursor, p.extraSQL)
	return ctx, p.ForContext(ctx)
}

// ForContext produces candidates for an already-classified context.
func (p *Provider) ForContext(ctx CursorContext) []Candidate {
	var out []Candidate
	switch ctx.Kind {
	case ContextSQLArgument:
		out = p.sqlCandidates(ctx)
	case ContextMethodChain:
		out = p.chainCandidates(ctx)
	default:
		out = p.plainCandidates(ctx)
	}
	p.rank(out)
	return out
}

// sqlCandidates handles completion inside a SQL string argument. When the
// call's receiver resolves to a known SQL-capable object, tables harvested
// from other engines are filtered out.
func (p *Provider) sqlCandidates(ctx CursorContext) []Candidate {
	schema := p.store.Schema()
	prefix := ctx.Prefix
	engine := p.receiverEngine(ctx.Receiver)

	// `table.` restricts to that table's qualified columns.
	if table, partial, ok := strings.Cut(prefix, "."); ok {
		tbl, found := schema.Table(table)
		if !found || !engineMatches(tbl, engine) {
			return nil
		}
		var out []Candidate
		for _, col := range tbl.Columns {
			if hasFoldedPrefix(col, partial) {
				out = append(out, Candidate{Text: table + "." + col, Category: CategoryColumn})
			}
		}
		return out
	}

	stripped := strings.TrimSuffix(ctx.SQLText, prefix)
	pos := classifySQL(stripped)

	var out []Candidate
	if pos == sqlPosTables || pos == sqlPosAny {
		for _, tbl := range schema.Tables {
			if engineMatches(tbl, engine) && hasFoldedPrefix(tbl.Name, prefix) {
				out = append(out, Candidate{Text: tbl.Name, Category: CategoryTable})
			}
		}
	}
	if pos == sqlPosColumns || pos == sqlPosAny {
		for _, tbl := range schema.Tables {
			if !engineMatches(tbl, engine) {
				continue
			}
			for _, col := range tbl.Columns {
				if hasFoldedPrefix(col, prefix) {
					out = append(out, Candidate{Text: col, Category: CategoryColumn})
				}
			}
		}
		for _, fn := range p.sqlFunctionUniverse(schema) {
			if hasFoldedPrefix(fn, prefix) {
				out = append(out, Candidate{Text: fn, Category: CategoryFunction})
			}
		}
	}
	for _, kw := range sqlKeywords {
		if hasFoldedPrefix(kw, prefix) {
			out = append(out, Candidate{Text: kw, Category: CategoryKeyword})
		}
	}
	return dedupe(out)
}

// receiverEngine resolves the engine tag of the receiver named in the SQL
// call. Unknown or compound receivers yield "" and no filtering.
func (p *Provider) receiverEngine(receiver string) string {
	if receiver == "" {
		return ""
	}
	tag, ok := p.store.Namespace().TypeOf(receiver)
	if !ok {
		return ""
	}
	engine, _ := catalog.SQLEngine(tag, receiver)
	return engine
}

// engineMatches keeps tables from the receiver's engine. Untagged tables and
// unresolved receivers always pass.
func engineMatches(tbl catalog.Table, engine string) bool {
	return engine == "" || tbl.Engine == "" || tbl.Engine == engine
}

func (p *Provider) sqlFunctionUniverse(schema *catalog.Schema) []string {
	if len(schema.Functions) == 0 {
		return sqlFunctions
	}
	return append(schema.Functions, sqlFunctions...)
}

// chainCandidates resolves the receiver's type-tag and offers its method
// set. Unresolvable receivers fall back to the generic attribute list;
// speculative guessing is never done.
func (p *Provider) chainCandidates(ctx CursorContext) []Candidate {
	ns := p.store.Namespace()

	var typeTag string
	receiver := ctx.Receiver
	if strings.HasSuffix(receiver, ")") {
		// Receiver is a call: strip the argument group and resolve the
		// callable's return type.
		if callee := callableOf(receiver); callee != "" {
			typeTag = ns.ReturnTypes[callee]
		}
	} else if tag, ok := ns.TypeOf(receiver); ok {
		typeTag = tag
	}

	var names []string
	if typeTag != "" {
		names = ns.MethodsOf(typeTag)
	}
	if len(names) == 0 {
		// Unknown type: generic attribute list only.
		if sym, ok := ns.Symbols[receiver]; ok {
			names = sym.Attributes
		}
	}

	var out []Candidate
	for _, name := range names {
		if hasFoldedPrefix(name, ctx.Prefix) {
			out = append(out, Candidate{Text: name, Category: CategoryAttribute})
		}
	}
	return dedupe(out)
}

// callableOf strips the trailing balanced call group: `duckdb.sql(...)`
// yields `duckdb.sql`.
func callableOf(receiver string) string {
	depth := 0
	for i := len(receiver) - 1; i >= 0; i-- {
		switch receiver[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return receiver[:i]
			}
		}
	}
	return ""
}

// plainCandidates offers language keywords, builtins, and namespace symbols.
func (p *Provider) plainCandidates(ctx CursorContext) []Candidate {
	if ctx.Prefix == "" {
		return nil
	}
	var out []Candidate
	for _, name := range p.store.Namespace().Names() {
		if hasFoldedPrefix(name, ctx.Prefix) {
			out = append(out, Candidate{Text: name, Category: CategorySymbol})
		}
	}
	for _, b := range pythonBuiltins {
		if hasFoldedPrefix(b, ctx.Prefix) {
			out = append(out, Candidate{Text: b, Category: CategoryFunction})
		}
	}
	for _, kw := range pythonKeywords {
		if hasFoldedPrefix(kw, ctx.Prefix) {
			out = append(out, Candidate{Text: kw, Category: CategoryKeyword})
		}
	}
	return dedupe(out)
}

// rank sorts candidates by category priority, then case-insensitive
// alphabetical order among ties.
func (p *Provider) rank(out []Candidate) {
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := categoryRank(out[i].Category), categoryRank(out[j].Category)
		if ri != rj {
			return ri < rj
		}
		return p.collator.CompareString(out[i].Text, out[j].Text) < 0
	})
}

func dedupe(in []Candidate) []Candidate {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, c := range in {
		if seen[c.Text] {
			continue
		}
		seen[c.Text] = true
		out = append(out, c)
	}
	return out
}

func hasFoldedPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
