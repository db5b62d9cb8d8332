package renamer

import (
	"fmt"
	"testing"

	"github.com/jsshrink/jsshrink/internal/js_lexer"
	"github.com/jsshrink/jsshrink/internal/test"
)

func ranked(names ...string) []RankedName {
	locals := make([]RankedName, len(names))
	for i, name := range names {
		locals[i] = RankedName{Name: name, Rank: uint32(i)}
	}
	return locals
}

func TestNumberToMinifiedName(t *testing.T) {
	minifier := DefaultNameMinifier
	test.AssertEqual(t, minifier.NumberToMinifiedName(0), "a")
	test.AssertEqual(t, minifier.NumberToMinifiedName(25), "z")
	test.AssertEqual(t, minifier.NumberToMinifiedName(26), "A")
	test.AssertEqual(t, minifier.NumberToMinifiedName(51), "Z")
	test.AssertEqual(t, minifier.NumberToMinifiedName(52), "aa")
	test.AssertEqual(t, minifier.NumberToMinifiedName(53), "ba")
	test.AssertEqual(t, minifier.NumberToMinifiedName(52+52*62), "aaa")
}

func TestSiblingsShareNames(t *testing.T) {
	a := NewAllocator()
	a.EnterScope(ranked("x"))
	test.AssertEqual(t, a.NameFor("x"), "a")
	a.LeaveScope()

	a.EnterScope(ranked("y"))
	test.AssertEqual(t, a.NameFor("y"), "a")
	test.AssertEqual(t, a.NameFor("x"), "x")
	a.LeaveScope()
}

func TestReservedGaps(t *testing.T) {
	a := NewAllocator()

	// Rank 1 leaves one name for a nested scope that outranks "f"
	a.EnterScope([]RankedName{{Name: "f", Rank: 1}})
	test.AssertEqual(t, a.NameFor("f"), "b")

	a.EnterScope(ranked("x"))
	test.AssertEqual(t, a.NameFor("x"), "a")
	test.AssertEqual(t, a.NameFor("f"), "b")
	test.AssertEqual(t, a.IsLocal("x"), true)
	test.AssertEqual(t, a.IsLocal("f"), false)

	// Nothing is left in the pool, so this comes from the end of the sequence
	a.EnterScope(ranked("y"))
	test.AssertEqual(t, a.NameFor("y"), "c")
	a.LeaveScope()
	a.LeaveScope()

	// A sibling gets the reserved name again
	a.EnterScope(ranked("z", "w"))
	test.AssertEqual(t, a.NameFor("z"), "a")
	test.AssertEqual(t, a.NameFor("w"), "c")
	a.LeaveScope()
	a.LeaveScope()
}

func TestShadowing(t *testing.T) {
	a := NewAllocator()
	a.EnterScope(ranked("x", "y"))
	test.AssertEqual(t, a.NameFor("x"), "a")
	test.AssertEqual(t, a.NameFor("y"), "b")

	// An inner "x" never reuses a name the outer scope is still using
	a.EnterScope(ranked("x"))
	test.AssertEqual(t, a.NameFor("x"), "c")
	test.AssertEqual(t, a.NameFor("y"), "b")
	a.LeaveScope()

	test.AssertEqual(t, a.NameFor("x"), "a")
	a.LeaveScope()
}

func TestClaimedNames(t *testing.T) {
	a := NewAllocator()
	a.Claim("a")
	a.Claim("c")
	test.AssertEqual(t, a.IsClaimed("a"), true)
	test.AssertEqual(t, a.IsClaimed("b"), false)

	a.EnterScope(ranked("x", "y", "z"))
	test.AssertEqual(t, a.NameFor("x"), "b")
	test.AssertEqual(t, a.NameFor("y"), "d")
	test.AssertEqual(t, a.NameFor("z"), "e")
	a.LeaveScope()
}

func TestKeptNames(t *testing.T) {
	a := NewAllocator()
	a.Claim("x")
	a.EnterScope([]RankedName{
		{Name: "x", Rank: 0, Keep: true},
		{Name: "y", Rank: 1},
	})
	test.AssertEqual(t, a.NameFor("x"), "x")
	test.AssertEqual(t, a.NameFor("y"), "b")

	// A kept name still shadows outer declarations
	a.EnterScope([]RankedName{{Name: "y", Rank: 0, Keep: true}})
	test.AssertEqual(t, a.NameFor("y"), "y")
	a.LeaveScope()
	a.LeaveScope()
}

func TestNeverGeneratesKeywords(t *testing.T) {
	const count = 4000
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("v%d", i)
	}

	a := NewAllocator()
	a.EnterScope(ranked(names...))
	seen := make(map[string]bool)
	for _, name := range names {
		generated := a.NameFor(name)
		if seen[generated] {
			t.Fatalf("Generated %q twice", generated)
		}
		seen[generated] = true
		if !js_lexer.IsIdentifier(generated) {
			t.Fatalf("Generated %q which is not an identifier", generated)
		}
		if _, ok := js_lexer.Keywords[generated]; ok {
			t.Fatalf("Generated the keyword %q", generated)
		}
	}
	test.AssertEqual(t, seen["do"], false)
	test.AssertEqual(t, seen["if"], false)
	test.AssertEqual(t, seen["in"], false)
}

func TestLeaveRootPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Expected a panic")
		}
	}()
	NewAllocator().LeaveScope()
}
