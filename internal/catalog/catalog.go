// Package catalog holds the interpreter-derived caches consulted by the
// completion engine: the namespace snapshot (symbols and type-tags) and the
// schema catalog (tables, columns, SQL functions).
//
// Both caches are immutable values swapped wholesale after each successful
// execution. The completion path reads them from the front-end goroutine
// while the execution worker writes them, so the holder hands out pointers
// through atomic swaps and a reader never observes a partial update.
package catalog

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// Symbol describes one interpreter-visible name.
type Symbol struct {
	Name       string
	TypeTag    string   // runtime type name reported by the interpreter
	Attributes []string // dotted members observed on the object, if any
}

// Snapshot is a point-in-time description of the interpreter namespace.
// Rebuilt wholesale after each successful execution, never mutated in place.
type Snapshot struct {
	Symbols map[string]Symbol
	// ReturnTypes maps callable names ("duckdb.sql") to the type-tag of
	// their result, when the interpreter could determine it.
	ReturnTypes map[string]string
	// TypeMethods maps a type-tag to its known method/attribute set.
	TypeMethods map[string][]string
}

// NewSnapshot returns an empty snapshot safe to read from.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Symbols:     map[string]Symbol{},
		ReturnTypes: map[string]string{},
		TypeMethods: map[string][]string{},
	}
}

// TypeOf returns the type-tag recorded for a top-level symbol.
func (s *Snapshot) TypeOf(name string) (string, bool) {
	sym, ok := s.Symbols[name]
	if !ok {
		return "", false
	}
	return sym.TypeTag, true
}

// MethodsOf returns the known method set for a type-tag.
func (s *Snapshot) MethodsOf(typeTag string) []string {
	return s.TypeMethods[typeTag]
}

// Names returns the top-level symbol names in sorted order.
func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.Symbols))
	for name := range s.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table is one entry of the schema catalog.
type Table struct {
	Name    string
	Columns []string // ordered as reported by the engine
	Engine  string   // tag of the SQL-capable object that produced it
}

// Schema is the table/column/function inventory derived from the recognized
// SQL-capable objects in the interpreter. Replaced wholesale on refresh.
type Schema struct {
	Tables    []Table
	Functions []string
}

// NewSchema returns an empty schema.
func NewSchema() *Schema { return &Schema{} }

// Table looks up a table by name, case-insensitively qualified by nothing:
// names are stored exactly as the engine reported them.
func (s *Schema) Table(name string) (Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// Store is the swap point between the execution worker and the completion
// path. Zero value is not usable; call NewStore.
type Store struct {
	namespace atomic.Pointer[Snapshot]
	schema    atomic.Pointer[Schema]
}

// NewStore returns a store primed with empty caches.
func NewStore() *Store {
	st := &Store{}
	st.namespace.Store(NewSnapshot())
	st.schema.Store(NewSchema())
	return st
}

// Namespace returns the current namespace snapshot.
func (st *Store) Namespace() *Snapshot { return st.namespace.Load() }

// Schema returns the current schema catalog.
func (st *Store) Schema() *Schema { return st.schema.Load() }

// SetNamespace swaps in a new namespace snapshot.
func (st *Store) SetNamespace(s *Snapshot) { st.namespace.Store(s) }

// SetSchema swaps in a new schema catalog.
func (st *Store) SetSchema(s *Schema) { st.schema.Store(s) }

// RefreshError records a failed introspection query. It is logged and the
// previous snapshot is retained; it never surfaces as a cell failure.
type RefreshError struct {
	Query string
	Err   error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("schema refresh %q: %v", e.Query, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// sqlEngines is the closed set of type-tags recognized as SQL-capable
// objects. Tables harvested during introspection are attributed to the
// matching engine tag.
var sqlEngines = map[string]string{
	"DuckDBPyConnection": "duckdb",
	"DuckDBPyRelation":   "duckdb",
	"SparkSession":       "spark",
	"Connection":         "sqlite",
}

// SQLEngine maps a namespace type-tag to its engine tag. The module name
// "duckdb" itself counts: the module-level connection is queryable.
func SQLEngine(typeTag, name string) (string, bool) {
	if name == "duckdb" && typeTag == "module" {
		return "duckdb", true
	}
	engine, ok := sqlEngines[typeTag]
	return engine, ok
}
