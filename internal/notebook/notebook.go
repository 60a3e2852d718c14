// Package notebook splits document text into executable cells.
//
// A cell boundary is a line whose trimmed content starts with the delimiter
// token, optionally followed by a whitespace-separated free-text label. The
// delimiter line belongs to the cell it opens. Detection is purely lexical:
// a delimiter inside a string literal still splits. Segmentation is
// recomputed from scratch on every request; documents are editor-sized, so
// the linear scan is cheap and avoids incremental bookkeeping.
package notebook

import "strings"

// DefaultDelimiter is the cell delimiter token used when none is configured.
const DefaultDelimiter = "# %%"

// Cell is a contiguous byte range of the source document.
type Cell struct {
	Index int
	Start int // byte offset, inclusive; includes the delimiter line if any
	End   int // byte offset, exclusive
	Label string
}

// Source returns the cell's text within doc.
func (c Cell) Source(doc string) string {
	return doc[c.Start:c.End]
}

// Contains reports whether the document offset falls inside the cell.
func (c Cell) Contains(offset int) bool {
	return offset >= c.Start && offset < c.End
}

// delimiterLabel reports whether the line opens a cell and, if so, its label.
func delimiterLabel(line, delimiter string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, delimiter) {
		return "", false
	}
	rest := trimmed[len(delimiter):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// Segment splits doc into ordered cells. The ranges are contiguous,
// non-overlapping, and cover the whole document, so concatenating the cells'
// sources reproduces doc byte for byte. A document with no delimiter lines is
// a single cell; a document with N delimiter lines yields N+1 cells, the
// first of which may be empty when doc opens with a delimiter line.
func Segment(doc, delimiter string) []Cell {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	cells := []Cell{{Index: 0, Start: 0}}
	offset := 0
	for offset < len(doc) {
		lineEnd := strings.IndexByte(doc[offset:], '\n')
		var next int
		var line string
		if lineEnd < 0 {
			line = doc[offset:]
			next = len(doc)
		} else {
			line = doc[offset : offset+lineEnd]
			next = offset + lineEnd + 1
		}

		if label, ok := delimiterLabel(line, delimiter); ok {
			cells[len(cells)-1].End = offset
			cells = append(cells, Cell{
				Index: len(cells),
				Start: offset,
				Label: label,
			})
		}
		offset = next
	}
	cells[len(cells)-1].End = len(doc)
	return cells
}

// CellAt returns the cell containing the document offset. Offsets at or past
// the end of the document map to the last cell.
func CellAt(cells []Cell, offset int) Cell {
	for _, c := range cells {
		if c.Contains(offset) {
			return c
		}
	}
	return cells[len(cells)-1]
}

// Shebang extracts the interpreter named by a leading #! line, resolving the
// /usr/bin/env indirection. Returns "" when the document has no shebang.
func Shebang(doc string) string {
	if !strings.HasPrefix(doc, "#!") {
		return ""
	}
	line := doc[2:]
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	if strings.HasSuffix(fields[0], "/env") {
		if len(fields) < 2 {
			return ""
		}
		return fields[1]
	}
	return fields[0]
}
