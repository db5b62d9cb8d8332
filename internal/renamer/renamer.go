package renamer

import (
	"sort"

	"github.com/jsshrink/jsshrink/internal/js_lexer"
)

// Returns the names that can never be generated because they would not be
// identifiers
func ReservedNames() map[string]bool {
	names := make(map[string]bool)

	// All keywords and strict mode reserved words are reserved names
	for k := range js_lexer.Keywords {
		names[k] = true
	}
	for k := range js_lexer.StrictModeReservedWords {
		names[k] = true
	}

	return names
}

type NameMinifier struct {
	head string
	tail string
}

var DefaultNameMinifier = NameMinifier{
	head: "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ",
	tail: "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
}

// Every name of a given length comes before every longer name, so counting
// up from zero always produces the shortest unused name
func (minifier *NameMinifier) NumberToMinifiedName(i int) string {
	j := i % len(minifier.head)
	name := minifier.head[j : j+1]
	i = i / len(minifier.head)

	for i > 0 {
		i--
		j := i % len(minifier.tail)
		name += minifier.tail[j : j+1]
		i = i / len(minifier.tail)
	}

	return name
}

type RankedName struct {
	Name string
	Rank uint32

	// Keep the original name. The name still shadows any outer declaration
	// with the same name.
	Keep bool
}

// Each frame hands out names to the locals of one scope. Names are numbers
// into the minifier's sequence until they are printed.
type frame struct {
	// Every name at or after this one is unused by this frame and all of its
	// ancestors
	next int

	// Names before "next" that are still unused. They came from the reserved
	// names and the pool of the parent frame. This is kept sorted.
	pool []int

	// Names taken out of the sequence by this frame for its children but not
	// assigned to any of its own locals
	reserved []int

	names map[string]string
}

// An Allocator renames the declarations of nested scopes while the printer
// walks them. Siblings reuse the same short names since their lifetimes never
// overlap, and nothing is ever assigned a name that a live enclosing scope is
// using or that was claimed.
//
// Allocators are not safe for concurrent use. Each render makes a new one.
type Allocator struct {
	minifier NameMinifier
	claimed  map[string]bool
	stack    []*frame
}

func NewAllocator() *Allocator {
	return &Allocator{
		minifier: DefaultNameMinifier,
		claimed:  ReservedNames(),
		stack:    []*frame{{names: make(map[string]string)}},
	}
}

// Claimed names are never generated. All claims must happen before any scope
// is entered.
func (a *Allocator) Claim(name string) {
	a.claimed[name] = true
}

func (a *Allocator) IsClaimed(name string) bool {
	return a.claimed[name]
}

func (a *Allocator) top() *frame {
	return a.stack[len(a.stack)-1]
}

// Pushes a frame for a scope and assigns names to its locals, which must be
// sorted by ascending rank. Whenever the ranks skip ahead, the skipped names
// are reserved for nested scopes that outrank the locals of this one.
func (a *Allocator) EnterScope(locals []RankedName) {
	parent := a.top()
	f := &frame{
		next:  parent.next,
		names: make(map[string]string, len(locals)),
	}

	// Everything the parent isn't using is available to the child
	f.pool = append(f.pool, parent.pool...)
	f.pool = append(f.pool, parent.reserved...)
	sort.Ints(f.pool)

	a.stack = append(a.stack, f)

	last := -1
	for _, local := range locals {
		if local.Keep {
			f.names[local.Name] = local.Name
			continue
		}
		if gap := int(local.Rank) - last - 1; gap > 0 {
			a.ReserveFresh(gap)
		}
		f.names[local.Name] = a.nextName()
		last = int(local.Rank)
	}
}

// Pops the current frame. Since the frame only ever borrowed from its parent,
// everything it used is available to the next sibling again.
func (a *Allocator) LeaveScope() {
	if len(a.stack) == 1 {
		panic("Internal error")
	}
	a.stack = a.stack[:len(a.stack)-1]
}

// Takes the next n names out of the sequence for the children of the current
// frame
func (a *Allocator) ReserveFresh(n int) {
	f := a.top()
	for i := 0; i < n; i++ {
		f.reserved = append(f.reserved, a.mint(f))
	}
}

func (a *Allocator) mint(f *frame) int {
	for {
		i := f.next
		f.next++
		if !a.claimed[a.minifier.NumberToMinifiedName(i)] {
			return i
		}
	}
}

func (a *Allocator) nextName() string {
	f := a.top()
	for len(f.pool) > 0 {
		i := f.pool[0]
		f.pool = f.pool[1:]
		if name := a.minifier.NumberToMinifiedName(i); !a.claimed[name] {
			return name
		}
	}
	return a.minifier.NumberToMinifiedName(a.mint(f))
}

// Returns the name assigned to the innermost declaration of this name, or the
// name itself if it was never renamed
func (a *Allocator) NameFor(original string) string {
	for i := len(a.stack) - 1; i >= 0; i-- {
		if name, ok := a.stack[i].names[original]; ok {
			return name
		}
	}
	return original
}

// Returns true if the innermost declaration of this name is in the current
// scope
func (a *Allocator) IsLocal(original string) bool {
	_, ok := a.top().names[original]
	return ok
}
