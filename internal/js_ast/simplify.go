package js_ast

// Simplification runs bottom-up in a single pass. Children are simplified
// before their parent looks at them, so every rewrite here only needs to
// consider its direct children.

type simplifier struct{}

func (v simplifier) Visit(node Node) Visitor {
	if expr, ok := node.(*Expr); ok {
		*expr = Simplify(*expr)
		return nil
	}
	return v
}

// Simplifies every expression in the statements in place
func SimplifyStmts(stmts []Stmt) {
	WalkStmts(simplifier{}, stmts)
}

// Returns an equivalent expression that is no larger than the original. The
// original expression may be modified.
func Simplify(expr Expr) Expr {
	switch e := expr.Data.(type) {
	case *EParen:
		// Parentheses are added back by the printer where they are needed
		return Simplify(e.Value)

	case *EArray:
		for i, item := range e.Items {
			e.Items[i] = Simplify(item)
		}

	case *EUnary:
		e.Value = Simplify(e.Value)

	case *EBinary:
		e.Left = Simplify(e.Left)
		e.Right = Simplify(e.Right)

	case *EChain:
		for i, term := range e.Terms {
			e.Terms[i].Value = Simplify(term.Value)
		}

	case *ENew:
		e.Target = Simplify(e.Target)
		for i, arg := range e.Args {
			e.Args[i] = Simplify(arg)
		}

	case *ECall:
		e.Target = Simplify(e.Target)
		for i, arg := range e.Args {
			e.Args[i] = Simplify(arg)
		}

	case *EDot:
		e.Target = Simplify(e.Target)

	case *EIndex:
		e.Target = Simplify(e.Target)
		e.Index = Simplify(e.Index)

	case *EFunction:
		SimplifyStmts(e.Fn.Body.Stmts)

	case *EObject:
		for i, property := range e.Properties {
			e.Properties[i].Value = Simplify(property.Value)
		}

	case *EIf:
		e.Test = Simplify(e.Test)
		e.Yes = Simplify(e.Yes)
		e.No = Simplify(e.No)

	case *EComma:
		for i, value := range e.Values {
			e.Values[i] = Simplify(value)
		}
	}

	// An expression made entirely of literals either folds into a single
	// literal or stays exactly as it is
	if IsLiteralTree(expr) {
		switch expr.Data.(type) {
		case *EInteger, *ENumber, *EBoolean:
			// A lone literal keeps its original text
			return expr
		}
		if value, ok := EvalConstLiteral(expr); ok {
			return value.ToExpr(expr.Loc)
		}
		return expr
	}

	switch e := expr.Data.(type) {
	case *EUnary:
		return simplifyUnary(expr, e)

	case *EBinary:
		switch e.Op {
		case BinOpAdd, BinOpSub:
			return simplifyChain(expr, LAdd, []ChainTerm{{Op: BinOpAdd, Value: e.Left}, {Op: e.Op, Value: e.Right}})

		case BinOpMul, BinOpDiv, BinOpRem:
			return simplifyChain(expr, LMultiply, []ChainTerm{{Op: BinOpMul, Value: e.Left}, {Op: e.Op, Value: e.Right}})
		}

	case *EChain:
		return simplifyChain(expr, e.Level, e.Terms)

	case *EIf:
		// The test has no side effects if it's a literal
		if test, ok := EvalConstLiteral(e.Test); ok {
			if test.isTruthy() {
				return e.Yes
			}
			return e.No
		}

	case *EComma:
		// "(a, b), c" => "a, b, c"
		var values []Expr
		for _, value := range e.Values {
			if comma, ok := value.Data.(*EComma); ok {
				values = append(values, comma.Values...)
			} else {
				values = append(values, value)
			}
		}
		e.Values = values
	}

	return expr
}

func simplifyUnary(expr Expr, e *EUnary) Expr {
	switch e.Op {
	case UnOpPos:
		// "+a" => "a" when "a" is already a number
		if IsNumeric(e.Value) {
			return e.Value
		}

	case UnOpNeg:
		// "- -a" => "+a"
		if inner, ok := e.Value.Data.(*EUnary); ok && inner.Op == UnOpNeg {
			pos := &EUnary{Op: UnOpPos, Value: inner.Value}
			return simplifyUnary(Expr{Loc: expr.Loc, Data: pos}, pos)
		}
		e.Value = stripPos(e.Value)

	case UnOpCpl:
		e.Value = stripPos(e.Value)
	}

	return expr
}

// "+a" is redundant in a context that converts its operand to a number anyway
func stripPos(expr Expr) Expr {
	if e, ok := expr.Data.(*EUnary); ok && e.Op == UnOpPos {
		return e.Value
	}
	return expr
}

func simplifyChain(expr Expr, level L, terms []ChainTerm) Expr {
	result := make([]ChainTerm, 0, len(terms))

	for i, term := range terms {
		if i == 0 {
			value := term.Value
			if level == LMultiply {
				value = stripPos(value)
			}

			// "(a + b) + c" => "a + b + c"
			if chain, ok := value.Data.(*EChain); ok && chain.Level == level {
				result = append(result, chain.Terms...)
				continue
			}

			identity := BinOpAdd
			if level == LMultiply {
				identity = BinOpMul
			}
			result = append(result, ChainTerm{Op: identity, Value: value})
			continue
		}

		if level == LAdd {
			result = appendAdditiveTerm(result, term)
		} else {
			result = appendMultiplicativeTerm(result, term)
		}
	}

	if level == LMultiply {
		cancelNegationsInProduct(result)
	}

	return Expr{Loc: expr.Loc, Data: &EChain{Level: level, Terms: result}}
}

func chainIsNumeric(terms []ChainTerm) bool {
	return KnownPrimitiveType(Expr{Data: &EChain{Level: LAdd, Terms: terms}}) == PrimitiveNumber
}

func flipAdditiveOp(op OpCode) OpCode {
	if op == BinOpAdd {
		return BinOpSub
	}
	return BinOpAdd
}

// Addition is also string concatenation, so terms are only regrouped or
// have their signs changed when everything involved is a number
func appendAdditiveTerm(terms []ChainTerm, term ChainTerm) []ChainTerm {
	prefixIsNumeric := chainIsNumeric(terms)
	value := term.Value
	op := term.Op

	// "a - +b" => "a - b"
	if op == BinOpSub {
		value = stripPos(value)
	}

	// "a - (b + c)" => "a - b - c"
	if chain, ok := value.Data.(*EChain); ok && chain.Level == LAdd && prefixIsNumeric {
		allNumeric := true
		for _, inner := range chain.Terms {
			if !IsNumeric(inner.Value) {
				allNumeric = false
				break
			}
		}
		if allNumeric {
			for i, inner := range chain.Terms {
				innerOp := BinOpAdd
				if i > 0 {
					innerOp = inner.Op
				}
				if op == BinOpSub {
					innerOp = flipAdditiveOp(innerOp)
				}
				terms = appendAdditiveTerm(terms, ChainTerm{Op: innerOp, Value: inner.Value})
			}
			return terms
		}
	}

	// "a - -b" => "a + b"
	if prefixIsNumeric {
		if negated, ok := negateNumeric(value); ok {
			op = flipAdditiveOp(op)
			value = negated
		}
	}

	return append(terms, ChainTerm{Op: op, Value: value})
}

// Returns "a" for "-a" when "a" is known to be a number, and the positive
// literal for a negative literal
func negateNumeric(expr Expr) (Expr, bool) {
	switch e := expr.Data.(type) {
	case *EUnary:
		if e.Op == UnOpNeg && IsNumeric(e.Value) {
			return e.Value, true
		}

	case *EInteger:
		if e.Value < 0 {
			return Expr{Loc: expr.Loc, Data: &EInteger{Value: -e.Value}}, true
		}

	case *ENumber:
		if e.Value < 0 {
			return Expr{Loc: expr.Loc, Data: &ENumber{Value: -e.Value}}, true
		}
	}
	return Expr{}, false
}

func invertMultiplicativeOp(op OpCode) OpCode {
	if op == BinOpMul {
		return BinOpDiv
	}
	return BinOpMul
}

func appendMultiplicativeTerm(terms []ChainTerm, term ChainTerm) []ChainTerm {
	value := stripPos(term.Value)

	// "a / (b * c)" => "a / b / c"
	if chain, ok := value.Data.(*EChain); ok && chain.Level == LMultiply && term.Op != BinOpRem && !hasRemainder(chain.Terms) {
		for i, inner := range chain.Terms {
			innerOp := BinOpMul
			if i > 0 {
				innerOp = inner.Op
			}
			if term.Op == BinOpDiv {
				innerOp = invertMultiplicativeOp(innerOp)
			}
			terms = append(terms, ChainTerm{Op: innerOp, Value: inner.Value})
		}
		return terms
	}

	return append(terms, ChainTerm{Op: term.Op, Value: value})
}

func hasRemainder(terms []ChainTerm) bool {
	for _, term := range terms[1:] {
		if term.Op == BinOpRem {
			return true
		}
	}
	return false
}

// "-a * -b" => "a * b". Every negation is removed and a single one is put
// back on the first term if there was an odd number of them. The sign of a
// remainder follows its dividend only, so chains with "%" are left alone.
func cancelNegationsInProduct(terms []ChainTerm) {
	if hasRemainder(terms) {
		return
	}

	flips := 0
	for i, term := range terms {
		if negated, ok := negateInProduct(term.Value); ok {
			terms[i].Value = negated
			flips++
		}
	}

	if flips%2 == 1 {
		first := terms[0].Value
		switch e := first.Data.(type) {
		case *EInteger:
			if e.Value != 0 {
				terms[0].Value = Expr{Loc: first.Loc, Data: &EInteger{Value: -e.Value}}
				return
			}

		case *ENumber:
			terms[0].Value = Expr{Loc: first.Loc, Data: &ENumber{Value: -e.Value}}
			return
		}
		terms[0].Value = Expr{Loc: first.Loc, Data: &EUnary{Op: UnOpNeg, Value: first}}
	}
}

// Multiplication converts its operands to numbers, so "-a" can lose its sign
// here even if "a" is not known to be a number
func negateInProduct(expr Expr) (Expr, bool) {
	if e, ok := expr.Data.(*EUnary); ok && e.Op == UnOpNeg {
		return stripPos(e.Value), true
	}
	return negateNumeric(expr)
}
