package js_scope

import (
	"sort"

	"github.com/jsshrink/jsshrink/internal/config"
	"github.com/jsshrink/jsshrink/internal/js_ast"
	"github.com/jsshrink/jsshrink/internal/logger"
)

type SymbolClass uint8

const (
	// Declared in this scope
	ClassLocal SymbolClass = iota

	// Used in this scope but declared in an enclosing scope, or never
	// declared at all in which case it's a global
	ClassOuter

	// Declared in a nested scope. These only exist in merged tables.
	ClassInner
)

func (class SymbolClass) String() string {
	switch class {
	case ClassLocal:
		return "local"
	case ClassOuter:
		return "outer"
	case ClassInner:
		return "inner"
	default:
		panic("Internal error")
	}
}

type SymbolKey struct {
	Name  string
	Class SymbolClass
}

type Symbol struct {
	Name  string
	Class SymbolClass

	// The number of times the name appears in the scope, counting both
	// declarations and uses
	Count uint32

	// Lower ranks get shorter names. This is only meaningful for locals.
	Rank uint32

	// Every place this name is declared, in source order. This is only used
	// for locals.
	Decls []logger.Loc

	// Set when the symbol is the target of an assignment anywhere, including
	// from nested scopes
	IsWritten bool

	// Set when the name must be printed as written regardless of policy
	IsPinned bool

	// The literal substituted for reads of this symbol, if any
	Constant *js_ast.ConstValue

	// How the first declaration of this name was written
	declKind declKind
}

type declKind uint8

const (
	declNone declKind = iota
	declVar
	declFunction
	declArg
	declCatch
)

type TaintReason uint8

const (
	TaintNone TaintReason = iota

	// This scope contains a "with" statement
	TaintWith

	// This scope contains a reference to "eval"
	TaintEval

	// A nested scope is tainted
	TaintNested
)

func (reason TaintReason) String() string {
	switch reason {
	case TaintNone:
		return ""
	case TaintWith:
		return "contains \"with\""
	case TaintEval:
		return "contains \"eval\""
	case TaintNested:
		return "contains a tainted scope"
	default:
		panic("Internal error")
	}
}

type Scope struct {
	ID     js_ast.ScopeID
	Kind   config.ScopeKind
	Parent *Scope

	// Children are in source order
	Children []*Scope

	// The dotted chain of named functions enclosing this scope, including this
	// one if it's a named function. This is "" for the global scope.
	Path string

	// A catch clause doesn't own the "var" declarations inside of it, so
	// those are declared in the nearest function or global scope instead
	Symbols map[SymbolKey]*Symbol

	Taint TaintReason

	transitive map[SymbolKey]*Symbol
}

func (s *Scope) IsTainted() bool {
	return s.Taint != TaintNone
}

// Returns the symbol declared in this scope with this name, or nil
func (s *Scope) Local(name string) *Symbol {
	return s.Symbols[SymbolKey{Name: name, Class: ClassLocal}]
}

// Returns the nearest scope declaring this name and the symbol it declares.
// The scope is nil if the name is a global.
func (s *Scope) Resolve(name string) (*Scope, *Symbol) {
	for scope := s; scope != nil; scope = scope.Parent {
		if symbol := scope.Local(name); symbol != nil {
			return scope, symbol
		}
	}
	return nil, nil
}

func (s *Scope) symbol(name string, class SymbolClass) *Symbol {
	key := SymbolKey{Name: name, Class: class}
	symbol, ok := s.Symbols[key]
	if !ok {
		symbol = &Symbol{Name: name, Class: class}
		s.Symbols[key] = symbol
	}
	return symbol
}

// Returns the locals of this scope in ascending rank order. Symbols with the
// same rank are ordered by the ordering law so the result is deterministic.
func (s *Scope) SortedLocals() []*Symbol {
	locals := make([]*Symbol, 0, len(s.Symbols))
	for _, symbol := range s.Symbols {
		if symbol.Class == ClassLocal {
			locals = append(locals, symbol)
		}
	}
	sort.SliceStable(locals, func(i int, j int) bool {
		a, b := locals[i], locals[j]
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return symbolLess(a, b)
	})
	return locals
}

// Returns every symbol of this scope in ordering-law order
func (s *Scope) SortedSymbols() []*Symbol {
	return sortedByLaw(s.Symbols)
}

// Returns the merged frequency table of this scope and all of its
// descendants, reclassified relative to this scope. The result is computed
// once and then reused.
func (s *Scope) Transitive() map[SymbolKey]*Symbol {
	if s.transitive != nil {
		return s.transitive
	}

	table := make(map[SymbolKey]*Symbol, len(s.Symbols))
	for key, symbol := range s.Symbols {
		table[key] = &Symbol{Name: symbol.Name, Class: symbol.Class, Count: symbol.Count, Rank: symbol.Rank}
	}
	for _, child := range s.Children {
		mergeInto(table, s, child.Transitive())
	}

	s.transitive = table
	return table
}

// Folds a child's transitive table into a table belonging to "s". Names
// declared in the child become inner names here, and names the child expects
// from outside become locals if "s" declares them.
func mergeInto(table map[SymbolKey]*Symbol, s *Scope, child map[SymbolKey]*Symbol) {
	for _, symbol := range child {
		class := ClassInner
		if symbol.Class == ClassOuter {
			class = ClassOuter
			if s.Local(symbol.Name) != nil {
				class = ClassLocal
			}
		}

		key := SymbolKey{Name: symbol.Name, Class: class}
		if existing, ok := table[key]; ok {
			existing.Count += symbol.Count
		} else {
			table[key] = &Symbol{Name: symbol.Name, Class: class, Count: symbol.Count}
		}
	}
}

// The ordering law: descending count, then ascending rank, then ascending
// name, then ascending class
func symbolLess(a *Symbol, b *Symbol) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Class < b.Class
}

func sortedByLaw(table map[SymbolKey]*Symbol) []*Symbol {
	symbols := make([]*Symbol, 0, len(table))
	for _, symbol := range table {
		symbols = append(symbols, symbol)
	}
	sort.Slice(symbols, func(i int, j int) bool {
		return symbolLess(symbols[i], symbols[j])
	})
	return symbols
}

// The scope tree is a side table indexed by the scope IDs the parser gave to
// each function and catch clause
type Tree struct {
	Scopes []*Scope
}

func (t *Tree) Root() *Scope {
	return t.Scopes[js_ast.RootScopeID]
}

// Returns the names that are used somewhere but never declared
func (t *Tree) GlobalNames() []string {
	var names []string
	for key := range t.Root().Transitive() {
		if key.Class == ClassOuter {
			names = append(names, key.Name)
		}
	}
	sort.Strings(names)
	return names
}
