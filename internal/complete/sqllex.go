package complete

import "strings"

// sqlTokenType is the minimal token set needed to situate the cursor within
// a partial SQL statement. This is deliberately not a SQL grammar.
type sqlTokenType int

const (
	sqlTokenEOF sqlTokenType = iota
	sqlTokenWord
	sqlTokenString
	sqlTokenNumber
	sqlTokenPunct
)

type sqlToken struct {
	Type    sqlTokenType
	Literal string
}

// sqlLexer tokenizes partial SQL input.
type sqlLexer struct {
	input   string
	pos     int
	readPos int
	ch      byte
}

func newSQLLexer(input string) *sqlLexer {
	l := &sqlLexer{input: input}
	l.readChar()
	return l
}

func (l *sqlLexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *sqlLexer) next() sqlToken {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}

	switch {
	case l.ch == 0:
		return sqlToken{Type: sqlTokenEOF}
	case l.ch == '\'':
		start := l.pos
		l.readChar()
		for l.ch != '\'' && l.ch != 0 {
			l.readChar()
		}
		l.readChar()
		return sqlToken{Type: sqlTokenString, Literal: l.input[start:min(l.pos, len(l.input))]}
	case isSQLWordByte(l.ch):
		start := l.pos
		for isSQLWordByte(l.ch) || l.ch == '.' {
			l.readChar()
		}
		return sqlToken{Type: sqlTokenWord, Literal: l.input[start:l.pos]}
	case l.ch >= '0' && l.ch <= '9':
		start := l.pos
		for l.ch >= '0' && l.ch <= '9' || l.ch == '.' {
			l.readChar()
		}
		return sqlToken{Type: sqlTokenNumber, Literal: l.input[start:l.pos]}
	default:
		tok := sqlToken{Type: sqlTokenPunct, Literal: string(l.ch)}
		l.readChar()
		return tok
	}
}

func isSQLWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

// sqlPosition describes where in the statement the cursor sits.
type sqlPosition int

const (
	// sqlPosAny: start of statement or unrecognized position; keywords,
	// columns, and functions are all plausible.
	sqlPosAny sqlPosition = iota
	// sqlPosTables: after FROM or a JOIN, table names are preferred.
	sqlPosTables
	// sqlPosColumns: after SELECT, WHERE, or a bare word; columns,
	// functions, and keywords.
	sqlPosColumns
)

// tableKeywords put the cursor into table position.
var tableKeywords = map[string]bool{
	"FROM": true, "JOIN": true, "INTO": true, "TABLE": true, "UPDATE": true,
}

// columnKeywords put the cursor into column position.
var columnKeywords = map[string]bool{
	"SELECT": true, "WHERE": true, "HAVING": true, "ON": true, "AND": true,
	"OR": true, "BY": true, "DISTINCT": true, "SET": true, "WHEN": true,
}

// classifySQL tokenizes the partial SQL (with the in-progress identifier
// already stripped) and returns the cursor's position class based on the
// last significant keyword.
func classifySQL(sql string) sqlPosition {
	l := newSQLLexer(sql)
	pos := sqlPosAny
	for {
		tok := l.next()
		if tok.Type == sqlTokenEOF {
			return pos
		}
		if tok.Type != sqlTokenWord {
			continue
		}
		upper := strings.ToUpper(tok.Literal)
		switch {
		case tableKeywords[upper]:
			pos = sqlPosTables
		case columnKeywords[upper]:
			pos = sqlPosColumns
		}
	}
}
