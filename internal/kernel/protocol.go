package kernel

import (
	"bufio"
	"encoding/json"
	"strings"

	"github.com/scribe-term/scribe/internal/catalog"
)

// Wire markers. Each request is the start marker, the source lines, and the
// end marker. Each response frame is the output-start marker, one JSON line,
// and the output-end marker; a response is a stream of frames ending with a
// terminal frame (result, success, or error).
const (
	markerReady       = "SCRIBE_KERNEL_READY"
	markerExecStart   = "SCRIBE_EXEC_START"
	markerExecEnd     = "SCRIBE_EXEC_END"
	markerIntrospect  = "SCRIBE_INTROSPECT"
	markerOutputStart = "SCRIBE_OUTPUT_START"
	markerOutputEnd   = "SCRIBE_OUTPUT_END"
)

// frame is one JSON line of the response stream.
type frame struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Ename     string          `json:"ename,omitempty"`
	Evalue    string          `json:"evalue,omitempty"`
	Traceback []string        `json:"traceback,omitempty"`
}

// Frame type tags emitted by the bootstrap script.
const (
	frameStdout    = "stdout"
	frameStderr    = "stderr"
	frameResult    = "result"
	frameSuccess   = "success"
	frameError     = "error"
	frameSymbols   = "completions"
	frameTypeRels  = "type_relationships"
	frameSQLSchema = "sql_metadata"
)

func (f frame) terminal() bool {
	switch f.Type {
	case frameResult, frameSuccess, frameError:
		return true
	}
	return false
}

// readFrame consumes one marker-delimited frame from the reader. Any stray
// line outside the markers is a framing violation.
func readFrame(r *bufio.Reader) (frame, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return frame{}, &ProtocolError{Detail: "reading frame start", Err: err}
	}
	if strings.TrimSpace(line) != markerOutputStart {
		return frame{}, &ProtocolError{Detail: "unexpected line " + strings.TrimSpace(line)}
	}

	payload, err := r.ReadString('\n')
	if err != nil {
		return frame{}, &ProtocolError{Detail: "reading frame payload", Err: err}
	}
	var f frame
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		return frame{}, &ProtocolError{Detail: "decoding frame payload", Err: err}
	}

	end, err := r.ReadString('\n')
	if err != nil {
		return frame{}, &ProtocolError{Detail: "reading frame end", Err: err}
	}
	if strings.TrimSpace(end) != markerOutputEnd {
		return frame{}, &ProtocolError{Detail: "missing frame end marker"}
	}
	return f, nil
}

// symbolItem mirrors the bootstrap's namespace entries. Dotted names are
// attributes of their top-level symbol.
type symbolItem struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type typeRelationships struct {
	ReturnTypes map[string]string   `json:"return_types"`
	TypeMethods map[string][]string `json:"type_methods"`
}

type sqlTable struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Engine  string   `json:"engine"`
}

type sqlMetadata struct {
	Tables    []sqlTable `json:"tables"`
	Functions []string   `json:"functions"`
}

// decodeNamespace folds completions and type_relationships payloads into a
// fresh namespace snapshot.
func decodeNamespace(items []symbolItem, rels typeRelationships) *catalog.Snapshot {
	ns := catalog.NewSnapshot()
	for _, it := range items {
		if base, attr, ok := strings.Cut(it.Name, "."); ok {
			sym := ns.Symbols[base]
			if sym.Name == "" {
				sym = catalog.Symbol{Name: base}
			}
			sym.Attributes = append(sym.Attributes, attr)
			ns.Symbols[base] = sym
			continue
		}
		sym := ns.Symbols[it.Name]
		sym.Name = it.Name
		sym.TypeTag = it.Type
		ns.Symbols[it.Name] = sym
	}
	if rels.ReturnTypes != nil {
		ns.ReturnTypes = rels.ReturnTypes
	}
	if rels.TypeMethods != nil {
		ns.TypeMethods = rels.TypeMethods
	}
	return ns
}

// decodeSchema converts the sql_metadata payload into a schema catalog.
func decodeSchema(meta sqlMetadata) *catalog.Schema {
	sc := catalog.NewSchema()
	for _, t := range meta.Tables {
		sc.Tables = append(sc.Tables, catalog.Table{
			Name:    t.Name,
			Columns: t.Columns,
			Engine:  t.Engine,
		})
	}
	sc.Functions = meta.Functions
	return sc
}
