package js_ast

import (
	"math"

	"github.com/jsshrink/jsshrink/internal/logger"
)

type ConstKind uint8

const (
	ConstInteger ConstKind = iota
	ConstDouble
	ConstBoolean
)

// The result of constant evaluation. Integers and doubles are folded along
// separate paths and never mix, so a folded integer is always exact.
type ConstValue struct {
	Kind    ConstKind
	Integer int64
	Double  float64
	Boolean bool
}

func IntegerValue(value int64) ConstValue  { return ConstValue{Kind: ConstInteger, Integer: value} }
func DoubleValue(value float64) ConstValue { return ConstValue{Kind: ConstDouble, Double: value} }
func BooleanValue(value bool) ConstValue   { return ConstValue{Kind: ConstBoolean, Boolean: value} }

// Doubles are compared by bit pattern so NaN equals NaN and 0 differs from -0
func (a ConstValue) Equals(b ConstValue) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ConstInteger:
		return a.Integer == b.Integer
	case ConstDouble:
		if math.IsNaN(a.Double) && math.IsNaN(b.Double) {
			return true
		}
		return math.Float64bits(a.Double) == math.Float64bits(b.Double)
	default:
		return a.Boolean == b.Boolean
	}
}

func (v ConstValue) isTruthy() bool {
	switch v.Kind {
	case ConstInteger:
		return v.Integer != 0
	case ConstDouble:
		return v.Double != 0 && !math.IsNaN(v.Double)
	default:
		return v.Boolean
	}
}

// Converts a folded value back into a literal expression
func (v ConstValue) ToExpr(loc logger.Loc) Expr {
	switch v.Kind {
	case ConstInteger:
		return Expr{Loc: loc, Data: &EInteger{Value: v.Integer}}
	case ConstDouble:
		return Expr{Loc: loc, Data: &ENumber{Value: v.Double}}
	default:
		return Expr{Loc: loc, Data: &EBoolean{Value: v.Boolean}}
	}
}

// Integers stay integers only while they are exactly representable as a
// double, because that is what the JavaScript engine will compute
const maxSafeInteger = 1<<53 - 1

func safeInteger(value int64) (ConstValue, bool) {
	if value > maxSafeInteger || value < -maxSafeInteger {
		return ConstValue{}, false
	}
	return IntegerValue(value), true
}

// Returns the literal value of an expression if and only if every
// subexpression reduces to a numeric or boolean literal. Strings never fold.
// Failing to fold is an expected outcome and is reported by returning false.
func EvalConstLiteral(expr Expr) (ConstValue, bool) {
	switch e := expr.Data.(type) {
	case *EInteger:
		return IntegerValue(e.Value), true

	case *ENumber:
		return DoubleValue(e.Value), true

	case *EBoolean:
		return BooleanValue(e.Value), true

	case *EParen:
		return EvalConstLiteral(e.Value)

	case *EUnary:
		if value, ok := EvalConstLiteral(e.Value); ok {
			return evalUnary(e.Op, value)
		}

	case *EBinary:
		if left, ok := EvalConstLiteral(e.Left); ok {
			if right, ok := EvalConstLiteral(e.Right); ok {
				return evalBinary(e.Op, left, right)
			}
		}

	case *EChain:
		result, ok := EvalConstLiteral(e.Terms[0].Value)
		if !ok {
			return ConstValue{}, false
		}
		for _, term := range e.Terms[1:] {
			value, ok := EvalConstLiteral(term.Value)
			if !ok {
				return ConstValue{}, false
			}
			if result, ok = evalBinary(term.Op, result, value); !ok {
				return ConstValue{}, false
			}
		}
		return result, true

	case *EIf:
		if test, ok := EvalConstLiteral(e.Test); ok {
			if yes, ok := EvalConstLiteral(e.Yes); ok {
				if no, ok := EvalConstLiteral(e.No); ok {
					if test.isTruthy() {
						return yes, true
					}
					return no, true
				}
			}
		}

	case *EComma:
		var result ConstValue
		for _, value := range e.Values {
			var ok bool
			if result, ok = EvalConstLiteral(value); !ok {
				return ConstValue{}, false
			}
		}
		return result, true
	}

	return ConstValue{}, false
}

func evalUnary(op OpCode, value ConstValue) (ConstValue, bool) {
	switch op {
	case UnOpNot:
		return BooleanValue(!value.isTruthy()), true

	case UnOpPos:
		switch value.Kind {
		case ConstInteger, ConstDouble:
			return value, true
		}

	case UnOpNeg:
		switch value.Kind {
		case ConstInteger:
			// "-0" is a double
			if value.Integer != 0 {
				return IntegerValue(-value.Integer), true
			}
		case ConstDouble:
			return DoubleValue(-value.Double), true
		}

	case UnOpCpl:
		switch value.Kind {
		case ConstInteger:
			return IntegerValue(int64(^ToInt32(float64(value.Integer)))), true
		case ConstDouble:
			return IntegerValue(int64(^ToInt32(value.Double))), true
		}
	}

	return ConstValue{}, false
}

func evalBinary(op OpCode, left ConstValue, right ConstValue) (ConstValue, bool) {
	if left.Kind != right.Kind {
		return ConstValue{}, false
	}

	switch op {
	case BinOpLogicalAnd:
		if left.isTruthy() {
			return right, true
		}
		return left, true

	case BinOpLogicalOr:
		if left.isTruthy() {
			return left, true
		}
		return right, true

	case BinOpComma:
		return right, true
	}

	switch left.Kind {
	case ConstInteger:
		return evalIntegerBinary(op, left.Integer, right.Integer)

	case ConstDouble:
		return evalDoubleBinary(op, left.Double, right.Double)

	case ConstBoolean:
		switch op {
		case BinOpLooseEq, BinOpStrictEq:
			return BooleanValue(left.Boolean == right.Boolean), true
		case BinOpLooseNe, BinOpStrictNe:
			return BooleanValue(left.Boolean != right.Boolean), true
		}
	}

	return ConstValue{}, false
}

func evalIntegerBinary(op OpCode, a int64, b int64) (ConstValue, bool) {
	switch op {
	case BinOpAdd:
		return safeInteger(a + b)

	case BinOpSub:
		return safeInteger(a - b)

	case BinOpMul:
		if a != 0 && absInt64(b) > maxSafeInteger/absInt64(a) {
			return ConstValue{}, false
		}
		result := a * b

		// "0 * -1" is "-0" which is a double
		if result == 0 && (a < 0 || b < 0) {
			return ConstValue{}, false
		}
		return safeInteger(result)

	case BinOpDiv:
		// Only exact division stays an integer. "0 / -1" is "-0".
		if b == 0 || a%b != 0 || (a == 0 && b < 0) {
			return ConstValue{}, false
		}
		return safeInteger(a / b)

	case BinOpRem:
		// The sign of the result follows the dividend, which matches Go. A zero
		// result with a negative dividend is "-0" though.
		if b == 0 {
			return ConstValue{}, false
		}
		result := a % b
		if result == 0 && a < 0 {
			return ConstValue{}, false
		}
		return safeInteger(result)

	case BinOpShl:
		return IntegerValue(int64(ToInt32(float64(a)) << (ToUint32(float64(b)) & 31))), true

	case BinOpShr:
		return IntegerValue(int64(ToInt32(float64(a)) >> (ToUint32(float64(b)) & 31))), true

	case BinOpUShr:
		return IntegerValue(int64(ToUint32(float64(a)) >> (ToUint32(float64(b)) & 31))), true

	case BinOpBitwiseAnd:
		return IntegerValue(int64(ToInt32(float64(a)) & ToInt32(float64(b)))), true

	case BinOpBitwiseOr:
		return IntegerValue(int64(ToInt32(float64(a)) | ToInt32(float64(b)))), true

	case BinOpBitwiseXor:
		return IntegerValue(int64(ToInt32(float64(a)) ^ ToInt32(float64(b)))), true

	case BinOpLt:
		return BooleanValue(a < b), true

	case BinOpLe:
		return BooleanValue(a <= b), true

	case BinOpGt:
		return BooleanValue(a > b), true

	case BinOpGe:
		return BooleanValue(a >= b), true

	case BinOpLooseEq, BinOpStrictEq:
		return BooleanValue(a == b), true

	case BinOpLooseNe, BinOpStrictNe:
		return BooleanValue(a != b), true
	}

	return ConstValue{}, false
}

func evalDoubleBinary(op OpCode, a float64, b float64) (ConstValue, bool) {
	switch op {
	case BinOpAdd:
		return DoubleValue(a + b), true

	case BinOpSub:
		return DoubleValue(a - b), true

	case BinOpMul:
		return DoubleValue(a * b), true

	case BinOpDiv:
		return DoubleValue(a / b), true

	case BinOpRem:
		return DoubleValue(math.Mod(a, b)), true

	case BinOpLt:
		return BooleanValue(a < b), true

	case BinOpLe:
		return BooleanValue(a <= b), true

	case BinOpGt:
		return BooleanValue(a > b), true

	case BinOpGe:
		return BooleanValue(a >= b), true

	case BinOpLooseEq, BinOpStrictEq:
		return BooleanValue(a == b), true

	case BinOpLooseNe, BinOpStrictNe:
		return BooleanValue(a != b), true
	}

	return ConstValue{}, false
}

func absInt64(value int64) int64 {
	if value < 0 {
		return -value
	}
	return value
}
