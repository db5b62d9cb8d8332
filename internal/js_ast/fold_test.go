package js_ast

import (
	"math"
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
)

func num(value int64) Expr {
	if value < 0 {
		return Expr{Data: &EUnary{Op: UnOpNeg, Value: Expr{Data: &EInteger{Value: -value}}}}
	}
	return Expr{Data: &EInteger{Value: value}}
}

func dbl(value float64) Expr {
	return Expr{Data: &ENumber{Value: value}}
}

func ident(name string) Expr {
	return Expr{Data: &EIdentifier{Name: name}}
}

func bin(op OpCode, left Expr, right Expr) Expr {
	return Expr{Data: &EBinary{Op: op, Left: left, Right: right}}
}

func un(op OpCode, value Expr) Expr {
	return Expr{Data: &EUnary{Op: op, Value: value}}
}

func paren(value Expr) Expr {
	return Expr{Data: &EParen{Value: value}}
}

func expectFold(t *testing.T, expr Expr, expected ConstValue) {
	t.Helper()
	value, ok := EvalConstLiteral(expr)
	if !ok {
		t.Fatalf("Expected %s to fold", spew.Sdump(expr))
	}
	if !value.Equals(expected) {
		t.Fatal(cmp.Diff(expected, value))
	}
}

func expectNoFold(t *testing.T, expr Expr) {
	t.Helper()
	if value, ok := EvalConstLiteral(expr); ok {
		t.Fatalf("Expected no result but got %v", value)
	}
}

func TestFoldInteger(t *testing.T) {
	expectFold(t, bin(BinOpAdd, num(1), num(2)), IntegerValue(3))
	expectFold(t, bin(BinOpSub, num(1), num(2)), IntegerValue(-1))
	expectFold(t, bin(BinOpMul, num(6), num(7)), IntegerValue(42))
	expectFold(t, bin(BinOpDiv, num(6), num(3)), IntegerValue(2))
	expectFold(t, bin(BinOpRem, num(7), num(3)), IntegerValue(1))
	expectFold(t, bin(BinOpRem, num(-7), num(3)), IntegerValue(-1))
	expectFold(t, bin(BinOpShl, num(1), num(31)), IntegerValue(-2147483648))
	expectFold(t, bin(BinOpShl, num(1), num(32)), IntegerValue(1))
	expectFold(t, bin(BinOpShr, num(-8), num(1)), IntegerValue(-4))
	expectFold(t, bin(BinOpUShr, num(-1), num(0)), IntegerValue(4294967295))
	expectFold(t, bin(BinOpBitwiseAnd, num(12), num(10)), IntegerValue(8))
	expectFold(t, bin(BinOpBitwiseOr, num(12), num(10)), IntegerValue(14))
	expectFold(t, bin(BinOpBitwiseXor, num(12), num(10)), IntegerValue(6))
	expectFold(t, un(UnOpCpl, num(5)), IntegerValue(-6))
	expectFold(t, un(UnOpPos, num(5)), IntegerValue(5))
	expectFold(t, paren(bin(BinOpAdd, num(1), num(2))), IntegerValue(3))

	// Inexact or negative zero results are not integers
	expectNoFold(t, bin(BinOpDiv, num(1), num(2)))
	expectNoFold(t, bin(BinOpDiv, num(1), num(0)))
	expectNoFold(t, bin(BinOpDiv, num(0), num(-1)))
	expectNoFold(t, bin(BinOpMul, num(0), num(-1)))
	expectNoFold(t, bin(BinOpRem, num(-4), num(2)))
	expectNoFold(t, bin(BinOpRem, num(4), num(0)))
	expectNoFold(t, un(UnOpNeg, num(0)))

	// Results must stay exactly representable
	expectFold(t, bin(BinOpMul, num(1<<26), num(1<<26)), IntegerValue(1<<52))
	expectNoFold(t, bin(BinOpMul, num(1<<27), num(1<<27)))
	expectNoFold(t, bin(BinOpAdd, num(maxSafeInteger), num(1)))
}

func TestFoldDouble(t *testing.T) {
	expectFold(t, bin(BinOpAdd, dbl(0.5), dbl(0.25)), DoubleValue(0.75))
	expectFold(t, bin(BinOpDiv, dbl(1), dbl(0)), DoubleValue(math.Inf(1)))
	expectFold(t, bin(BinOpDiv, dbl(0), dbl(0)), DoubleValue(math.NaN()))
	expectFold(t, bin(BinOpRem, dbl(5.5), dbl(2)), DoubleValue(1.5))
	expectFold(t, bin(BinOpRem, dbl(-5.5), dbl(2)), DoubleValue(-1.5))
	expectFold(t, un(UnOpNeg, dbl(0)), DoubleValue(math.Copysign(0, -1)))
	expectFold(t, un(UnOpCpl, dbl(1.5)), IntegerValue(-2))

	// Integers and doubles never mix
	expectNoFold(t, bin(BinOpAdd, num(1), dbl(0.5)))
	expectNoFold(t, bin(BinOpLt, num(1), dbl(0.5)))

	// Bitwise operators only apply to integers
	expectNoFold(t, bin(BinOpBitwiseOr, dbl(1.5), dbl(0.5)))
}

func TestFoldBoolean(t *testing.T) {
	yes := Expr{Data: &EBoolean{Value: true}}
	no := Expr{Data: &EBoolean{Value: false}}

	expectFold(t, un(UnOpNot, yes), BooleanValue(false))
	expectFold(t, un(UnOpNot, num(0)), BooleanValue(true))
	expectFold(t, un(UnOpNot, dbl(math.NaN())), BooleanValue(true))
	expectFold(t, bin(BinOpLogicalAnd, yes, no), BooleanValue(false))
	expectFold(t, bin(BinOpLogicalOr, no, yes), BooleanValue(true))
	expectFold(t, bin(BinOpLogicalOr, num(0), num(5)), IntegerValue(5))
	expectFold(t, bin(BinOpStrictEq, yes, yes), BooleanValue(true))
	expectFold(t, bin(BinOpLt, num(1), num(2)), BooleanValue(true))
	expectFold(t, bin(BinOpLooseNe, dbl(math.NaN()), dbl(math.NaN())), BooleanValue(true))
	expectFold(t, Expr{Data: &EIf{Test: num(0), Yes: num(1), No: num(2)}}, IntegerValue(2))
	expectFold(t, Expr{Data: &EComma{Values: []Expr{num(1), yes}}}, BooleanValue(true))

	expectNoFold(t, bin(BinOpLooseEq, yes, num(1)))
	expectNoFold(t, bin(BinOpAdd, yes, yes))
}

func TestFoldNever(t *testing.T) {
	str := Expr{Data: &EString{Value: []uint16{'a'}}}
	expectNoFold(t, str)
	expectNoFold(t, bin(BinOpAdd, str, str))
	expectNoFold(t, un(UnOpNot, str))
	expectNoFold(t, ident("x"))
	expectNoFold(t, bin(BinOpAdd, num(1), ident("x")))
	expectNoFold(t, Expr{Data: &EIf{Test: num(1), Yes: num(1), No: ident("x")}})
	expectNoFold(t, un(UnOpTypeof, num(1)))
	expectNoFold(t, un(UnOpVoid, num(1)))
	expectNoFold(t, Expr{Data: &ENull{}})
}

func TestFoldChain(t *testing.T) {
	chain := Expr{Data: &EChain{Level: LAdd, Terms: []ChainTerm{
		{Op: BinOpAdd, Value: num(10)},
		{Op: BinOpSub, Value: num(3)},
		{Op: BinOpAdd, Value: num(4)},
	}}}
	expectFold(t, chain, IntegerValue(11))

	chain = Expr{Data: &EChain{Level: LMultiply, Terms: []ChainTerm{
		{Op: BinOpMul, Value: num(3)},
		{Op: BinOpDiv, Value: num(2)},
		{Op: BinOpMul, Value: num(4)},
	}}}
	expectNoFold(t, chain)
}

// Builds the same random expression every time for the same seed, so a tree
// can be rebuilt instead of deep-copied
type exprGenerator struct {
	rand        *rand.Rand
	identifiers bool
}

var generatedBinaryOps = []OpCode{
	BinOpAdd, BinOpSub, BinOpMul, BinOpDiv, BinOpRem,
	BinOpShl, BinOpShr, BinOpUShr, BinOpBitwiseAnd, BinOpBitwiseOr, BinOpBitwiseXor,
	BinOpLt, BinOpLooseEq, BinOpLogicalAnd, BinOpLogicalOr,
}

var generatedUnaryOps = []OpCode{UnOpPos, UnOpNeg, UnOpCpl, UnOpNot}

var generatedDoubles = []float64{0.5, 1.5, 2.25, 3, 0, 10.125}

func (g *exprGenerator) expr(depth int) Expr {
	if depth == 0 || g.rand.Intn(5) == 0 {
		switch n := g.rand.Intn(6); {
		case n == 0 && g.identifiers:
			return ident(string(rune('a' + g.rand.Intn(3))))
		case n < 3:
			return dbl(generatedDoubles[g.rand.Intn(len(generatedDoubles))])
		default:
			return num(int64(g.rand.Intn(41) - 20))
		}
	}

	switch n := g.rand.Intn(10); {
	case n < 6:
		op := generatedBinaryOps[g.rand.Intn(len(generatedBinaryOps))]
		return bin(op, g.expr(depth-1), g.expr(depth-1))
	case n < 8:
		return un(generatedUnaryOps[g.rand.Intn(len(generatedUnaryOps))], g.expr(depth-1))
	case n == 8 && !g.identifiers:
		return Expr{Data: &EIf{Test: g.expr(depth - 1), Yes: g.expr(depth - 1), No: g.expr(depth - 1)}}
	default:
		return paren(g.expr(depth - 1))
	}
}

func TestSimplifyPreservesConstantValue(t *testing.T) {
	for _, identifiers := range []bool{false, true} {
		for seed := int64(0); seed < 2000; seed++ {
			original := (&exprGenerator{rand: rand.New(rand.NewSource(seed)), identifiers: identifiers}).expr(5)
			copy := (&exprGenerator{rand: rand.New(rand.NewSource(seed)), identifiers: identifiers}).expr(5)

			before, okBefore := EvalConstLiteral(original)
			simplified := Simplify(copy)
			after, okAfter := EvalConstLiteral(simplified)

			if okBefore != okAfter || (okBefore && !before.Equals(after)) {
				t.Fatalf("Seed %d changed the constant value\nbefore: %v %v\nafter: %v %v\n%s\n%s",
					seed, okBefore, before, okAfter, after, spew.Sdump(original), spew.Sdump(simplified))
			}
		}
	}
}
