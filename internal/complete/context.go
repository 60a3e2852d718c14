// Package complete classifies the cursor position within a cell and produces
// ranked completion candidates from the live interpreter's namespace snapshot
// and schema catalog.
package complete

import "strings"

// ContextKind tags the syntactic situation of the cursor.
type ContextKind int

const (
	// ContextPlain is ordinary host-language code.
	ContextPlain ContextKind = iota
	// ContextSQLArgument is inside a string argument of a recognized
	// SQL-invocation call.
	ContextSQLArgument
	// ContextMethodChain is after `<expression>.` with a partial identifier.
	ContextMethodChain
)

// CursorContext is the classification result.
type CursorContext struct {
	Kind ContextKind
	// SQLText is the literal string content up to the cursor with f-string
	// interpolation regions excluded. Set for ContextSQLArgument.
	SQLText string
	// Receiver is the expression before the final dot for
	// ContextMethodChain, or the object whose method received the SQL
	// string for ContextSQLArgument.
	Receiver string
	// Prefix is the partial identifier at the cursor in every context.
	Prefix string
}

// sqlCallSuffixes is the closed list of object.method spellings whose string
// argument is treated as SQL. Matched against the callee as a suffix, so
// `db.sql(`, `con.execute(`, and `spark.sql(` all qualify.
var sqlCallSuffixes = []string{
	".sql",
	".execute",
	".query",
	".read_sql",
	".read_sql_query",
	".read_sql_table",
}

// isSQLCallee matches the callee against the built-in suffixes plus any
// user-configured patterns. A configured pattern with a leading dot follows
// the suffix rule; otherwise it must match a whole dotted component, so
// "run_query" matches `db.run_query(` but not `shrun_query(`.
func isSQLCallee(callee string, extra []string) bool {
	for _, suffix := range sqlCallSuffixes {
		if strings.HasSuffix(callee, suffix) && len(callee) > len(suffix) {
			return true
		}
	}
	for _, pat := range extra {
		if pat == "" {
			continue
		}
		if pat[0] == '.' {
			if strings.HasSuffix(callee, pat) && len(callee) > len(pat) {
				return true
			}
			continue
		}
		if callee == pat || strings.HasSuffix(callee, "."+pat) {
			return true
		}
	}
	return false
}

// scanState is the character-class state machine used by Classify. The scan
// runs forward from the start of the cell so quote and escape states are
// unambiguous; the cell is editor-sized, so this costs nothing measurable.
type scanState struct {
	inString    bool
	quote       byte
	triple      bool
	fstring     bool
	braceDepth  int // interpolation depth inside an f-string
	stringBuf   strings.Builder
	calleeStack []string
}

// Classify determines the cursor context for a cell. Malformed input
// (unbalanced quotes or parens) degrades to Plain rather than guessing.
func Classify(cell string, cursor int) CursorContext {
	return classify(cell, cursor, nil)
}

func classify(cell string, cursor int, extraSQL []string) CursorContext {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(cell) {
		cursor = len(cell)
	}

	var st scanState
	i := 0
	for i < cursor {
		c := cell[i]

		if st.inString {
			switch {
			case c == '\\' && !st.triple && i+1 < cursor:
				if st.braceDepth == 0 {
					st.stringBuf.WriteByte(c)
					st.stringBuf.WriteByte(cell[i+1])
				}
				i += 2
				continue
			case st.fstring && c == '{':
				if i+1 < cursor && cell[i+1] == '{' {
					// {{ is a literal brace
					if st.braceDepth == 0 {
						st.stringBuf.WriteByte('{')
					}
					i += 2
					continue
				}
				st.braceDepth++
			case st.fstring && c == '}':
				if i+1 < cursor && cell[i+1] == '}' && st.braceDepth == 0 {
					st.stringBuf.WriteByte('}')
					i += 2
					continue
				}
				if st.braceDepth > 0 {
					st.braceDepth--
					i++
					continue
				}
			case c == st.quote:
				if st.triple {
					if i+2 < cursor && cell[i+1] == st.quote && cell[i+2] == st.quote {
						st.closeString()
						i += 3
						continue
					}
					if st.braceDepth == 0 {
						st.stringBuf.WriteByte(c)
					}
				} else {
					st.closeString()
					i++
					continue
				}
			default:
				if st.braceDepth == 0 {
					st.stringBuf.WriteByte(c)
				}
			}
			i++
			continue
		}

		switch c {
		case '\'', '"':
			st.inString = true
			st.quote = c
			st.triple = i+2 < cursor && cell[i+1] == c && cell[i+2] == c
			st.fstring = i > 0 && (cell[i-1] == 'f' || cell[i-1] == 'F')
			st.stringBuf.Reset()
			if st.triple {
				i += 3
				continue
			}
		case '(':
			st.calleeStack = append(st.calleeStack, calleeBefore(cell, i))
		case ')':
			if n := len(st.calleeStack); n > 0 {
				st.calleeStack = st.calleeStack[:n-1]
			}
		}
		i++
	}

	before := cell[:cursor]

	if st.inString && st.braceDepth == 0 {
		if callee := st.enclosingCallee(); isSQLCallee(callee, extraSQL) {
			sqlText := st.stringBuf.String()
			return CursorContext{
				Kind:     ContextSQLArgument,
				SQLText:  sqlText,
				Receiver: calleeReceiver(callee),
				Prefix:   identifierSuffix(sqlText, true),
			}
		}
		// Inside a non-SQL string: nothing sensible to complete.
		return CursorContext{Kind: ContextPlain}
	}

	// Inside an f-string interpolation region or ordinary code: look for a
	// method-chain pattern ending at the cursor.
	prefix := identifierSuffix(before, false)
	if recv := receiverBefore(before, cursor-len(prefix)); recv != "" {
		return CursorContext{Kind: ContextMethodChain, Receiver: recv, Prefix: prefix}
	}
	return CursorContext{Kind: ContextPlain, Prefix: prefix}
}

func (st *scanState) closeString() {
	st.inString = false
	st.fstring = false
	st.triple = false
	st.braceDepth = 0
	st.stringBuf.Reset()
}

// calleeReceiver strips the final method component: `db.execute` yields `db`.
func calleeReceiver(callee string) string {
	if i := strings.LastIndexByte(callee, '.'); i > 0 {
		return callee[:i]
	}
	return ""
}

func (st *scanState) enclosingCallee() string {
	if len(st.calleeStack) == 0 {
		return ""
	}
	return st.calleeStack[len(st.calleeStack)-1]
}

// calleeBefore extracts the dotted identifier immediately preceding an open
// paren at pos, skipping trailing whitespace.
func calleeBefore(s string, pos int) string {
	end := pos
	for end > 0 && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	start := end
	for start > 0 && (isIdentByte(s[start-1]) || s[start-1] == '.') {
		start--
	}
	return s[start:end]
}

// receiverBefore extracts the method-chain receiver ending at pos, which must
// be immediately after a dot. The receiver is a dotted identifier chain with
// optional trailing call groups, e.g. `df`, `duckdb.sql(...)`. Returns ""
// when no receiver pattern is present or the parens don't balance.
func receiverBefore(s string, pos int) string {
	if pos == 0 || s[pos-1] != '.' {
		return ""
	}
	i := pos - 1 // at the dot
	for i > 0 {
		c := s[i-1]
		switch {
		case isIdentByte(c):
			i--
		case c == '.':
			i--
		case c == ')':
			depth := 0
			j := i
			for j > 0 {
				switch s[j-1] {
				case ')':
					depth++
				case '(':
					depth--
				}
				j--
				if depth == 0 {
					break
				}
			}
			if depth != 0 {
				return ""
			}
			i = j
		default:
			return strings.TrimSpace(s[i : pos-1])
		}
	}
	return strings.TrimSpace(s[i : pos-1])
}

// identifierSuffix returns the partial identifier ending the string. In SQL
// mode dots are part of the identifier so `orders.tot` filters qualified
// columns.
func identifierSuffix(s string, sqlMode bool) string {
	start := len(s)
	for start > 0 {
		c := s[start-1]
		if isIdentByte(c) || (sqlMode && c == '.' && start > 1 && isIdentByte(s[start-2])) {
			start--
			continue
		}
		break
	}
	return s[start:]
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
