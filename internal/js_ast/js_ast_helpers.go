package js_ast

import (
	"math"
)

type PrimitiveType uint8

const (
	PrimitiveUnknown PrimitiveType = iota
	PrimitiveMixed
	PrimitiveNull
	PrimitiveBoolean
	PrimitiveNumber
	PrimitiveString
)

// This can be used when the returned type is either one or the other
func MergedKnownPrimitiveTypes(a Expr, b Expr) PrimitiveType {
	x := KnownPrimitiveType(a)
	y := KnownPrimitiveType(b)
	if x == PrimitiveUnknown || y == PrimitiveUnknown {
		return PrimitiveUnknown
	}
	if x == y {
		return x
	}
	return PrimitiveMixed // Definitely some kind of primitive
}

func KnownPrimitiveType(a Expr) PrimitiveType {
	switch e := a.Data.(type) {
	case *ENull:
		return PrimitiveNull

	case *EBoolean:
		return PrimitiveBoolean

	case *ENumber, *EInteger:
		return PrimitiveNumber

	case *EString:
		return PrimitiveString

	case *EParen:
		return KnownPrimitiveType(e.Value)

	case *EIf:
		return MergedKnownPrimitiveTypes(e.Yes, e.No)

	case *EComma:
		return KnownPrimitiveType(e.Values[len(e.Values)-1])

	case *EUnary:
		switch e.Op {
		case UnOpVoid:
			return PrimitiveMixed

		case UnOpTypeof:
			return PrimitiveString

		case UnOpNot, UnOpDelete:
			return PrimitiveBoolean

		case UnOpPos, UnOpNeg, UnOpCpl, UnOpPreDec, UnOpPreInc, UnOpPostDec, UnOpPostInc:
			return PrimitiveNumber
		}

	case *EChain:
		if e.Level == LMultiply {
			return PrimitiveNumber
		}

		// Each "-" produces a number while each "+" may concatenate strings
		result := KnownPrimitiveType(e.Terms[0].Value)
		for _, term := range e.Terms[1:] {
			if term.Op == BinOpSub {
				result = PrimitiveNumber
				continue
			}
			result = addPrimitiveTypes(result, KnownPrimitiveType(term.Value))
		}
		return result

	case *EBinary:
		switch e.Op {
		case BinOpStrictEq, BinOpStrictNe, BinOpLooseEq, BinOpLooseNe,
			BinOpLt, BinOpGt, BinOpLe, BinOpGe,
			BinOpInstanceof, BinOpIn:
			return PrimitiveBoolean

		case BinOpLogicalOr, BinOpLogicalAnd:
			return MergedKnownPrimitiveTypes(e.Left, e.Right)

		case BinOpAdd:
			return addPrimitiveTypes(KnownPrimitiveType(e.Left), KnownPrimitiveType(e.Right))

		case BinOpAddAssign:
			right := KnownPrimitiveType(e.Right)
			if right == PrimitiveString {
				return PrimitiveString
			}
			return PrimitiveMixed // Can be number or string

		case
			BinOpSub, BinOpSubAssign,
			BinOpMul, BinOpMulAssign,
			BinOpDiv, BinOpDivAssign,
			BinOpRem, BinOpRemAssign,
			BinOpBitwiseAnd, BinOpBitwiseAndAssign,
			BinOpBitwiseOr, BinOpBitwiseOrAssign,
			BinOpBitwiseXor, BinOpBitwiseXorAssign,
			BinOpShl, BinOpShlAssign,
			BinOpShr, BinOpShrAssign,
			BinOpUShr, BinOpUShrAssign:
			return PrimitiveNumber

		case BinOpAssign, BinOpComma:
			return KnownPrimitiveType(e.Right)
		}
	}

	return PrimitiveUnknown
}

func addPrimitiveTypes(left PrimitiveType, right PrimitiveType) PrimitiveType {
	if left == PrimitiveString || right == PrimitiveString {
		return PrimitiveString
	}
	if left != PrimitiveUnknown && left != PrimitiveMixed &&
		right != PrimitiveUnknown && right != PrimitiveMixed {
		return PrimitiveNumber
	}
	return PrimitiveUnknown
}

// Returns true if the expression always evaluates to a number. Rewrites that
// would be wrong for string concatenation are only done in that case.
func IsNumeric(expr Expr) bool {
	return KnownPrimitiveType(expr) == PrimitiveNumber
}

// Returns true if the expression is a valid target for an assignment
func IsAssignTarget(expr Expr) bool {
	switch e := expr.Data.(type) {
	case *EIdentifier, *EDot, *EIndex:
		return true

	case *EParen:
		return IsAssignTarget(e.Value)
	}
	return false
}

// Returns true if every leaf of the expression is a literal. Such expressions
// either fold completely or must keep their exact shape, since regrouping them
// could turn an inexact integer operation into an exact one.
func IsLiteralTree(expr Expr) bool {
	switch e := expr.Data.(type) {
	case *EInteger, *ENumber, *EBoolean:
		return true

	case *EParen:
		return IsLiteralTree(e.Value)

	case *EUnary:
		return e.Op.UnaryAssignTarget() == AssignTargetNone && IsLiteralTree(e.Value)

	case *EBinary:
		return e.Op.BinaryAssignTarget() == AssignTargetNone && IsLiteralTree(e.Left) && IsLiteralTree(e.Right)

	case *EChain:
		for _, term := range e.Terms {
			if !IsLiteralTree(term.Value) {
				return false
			}
		}
		return true

	case *EIf:
		return IsLiteralTree(e.Test) && IsLiteralTree(e.Yes) && IsLiteralTree(e.No)

	case *EComma:
		for _, value := range e.Values {
			if !IsLiteralTree(value) {
				return false
			}
		}
		return true
	}
	return false
}

func ToInt32(f float64) int32 {
	// The easy way
	i := int32(f)
	if float64(i) == f {
		return i
	}

	// Special-case non-finite numbers (casting them is unspecified behavior in Go)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	// The hard way
	i = int32(uint32(math.Mod(math.Abs(f), 4294967296)))
	if math.Signbit(f) {
		return -i
	}
	return i
}

func ToUint32(f float64) uint32 {
	return uint32(ToInt32(f))
}

// Used for the "assignment in a condition" warning
func IsAssignment(expr Expr) bool {
	if e, ok := expr.Data.(*EBinary); ok {
		return e.Op.BinaryAssignTarget() != AssignTargetNone
	}
	return false
}
