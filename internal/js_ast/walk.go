package js_ast

// A Node is one of *Expr, *Stmt, *Fn, or *Catch. Functions and catch clauses
// are visited as their own nodes because each one owns a scope.
type Node interface{}

// A Visitor's Visit method is invoked for each node encountered by Walk. If
// the result visitor w is not nil, Walk visits each of the children of node
// with the visitor w, followed by a call of w.Visit(nil).
//
// Nodes are passed by pointer so a visitor may replace them in place.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order, in the order the nodes appear
// in the source.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Expr:
		walkExpr(v, n)

	case *Stmt:
		walkStmt(v, n)

	case *Fn:
		WalkStmts(v, n.Body.Stmts)

	case *Catch:
		walkOptionalExpr(v, &n.GuardOrNil)
		WalkStmts(v, n.Body)

	default:
		panic("Internal error")
	}

	v.Visit(nil)
}

func WalkStmts(v Visitor, stmts []Stmt) {
	for i := range stmts {
		Walk(v, &stmts[i])
	}
}

func walkExprs(v Visitor, exprs []Expr) {
	for i := range exprs {
		Walk(v, &exprs[i])
	}
}

func walkOptionalExpr(v Visitor, expr *Expr) {
	if expr.Data != nil {
		Walk(v, expr)
	}
}

func walkOptionalStmt(v Visitor, stmt *Stmt) {
	if stmt.Data != nil {
		Walk(v, stmt)
	}
}

func walkExpr(v Visitor, expr *Expr) {
	switch e := expr.Data.(type) {
	case *EArray:
		walkExprs(v, e.Items)

	case *EUnary:
		Walk(v, &e.Value)

	case *EBinary:
		Walk(v, &e.Left)
		Walk(v, &e.Right)

	case *EChain:
		for i := range e.Terms {
			Walk(v, &e.Terms[i].Value)
		}

	case *ENew:
		Walk(v, &e.Target)
		walkExprs(v, e.Args)

	case *ECall:
		Walk(v, &e.Target)
		walkExprs(v, e.Args)

	case *EDot:
		Walk(v, &e.Target)

	case *EIndex:
		Walk(v, &e.Target)
		Walk(v, &e.Index)

	case *EFunction:
		Walk(v, &e.Fn)

	case *EObject:
		for i := range e.Properties {
			property := &e.Properties[i]
			Walk(v, &property.Key)
			Walk(v, &property.Value)
		}

	case *EIf:
		Walk(v, &e.Test)
		Walk(v, &e.Yes)
		Walk(v, &e.No)

	case *EComma:
		walkExprs(v, e.Values)

	case *EParen:
		Walk(v, &e.Value)

	case *EBoolean, *EThis, *ENull, *EMissing, *EIdentifier, *ENumber, *EInteger, *EString, *ERegExp:
		// Leaf nodes

	default:
		panic("Internal error")
	}
}

func walkStmt(v Visitor, stmt *Stmt) {
	switch s := stmt.Data.(type) {
	case *SBlock:
		WalkStmts(v, s.Stmts)

	case *SExpr:
		Walk(v, &s.Value)

	case *SFunction:
		Walk(v, &s.Fn)

	case *SLabel:
		Walk(v, &s.Stmt)

	case *SIf:
		Walk(v, &s.Test)
		Walk(v, &s.Yes)
		walkOptionalStmt(v, &s.NoOrNil)

	case *SFor:
		walkOptionalStmt(v, &s.InitOrNil)
		walkOptionalExpr(v, &s.TestOrNil)
		walkOptionalExpr(v, &s.UpdateOrNil)
		Walk(v, &s.Body)

	case *SForIn:
		Walk(v, &s.Init)
		Walk(v, &s.Value)
		Walk(v, &s.Body)

	case *SDoWhile:
		Walk(v, &s.Body)
		Walk(v, &s.Test)

	case *SWhile:
		Walk(v, &s.Test)
		Walk(v, &s.Body)

	case *SWith:
		Walk(v, &s.Value)
		Walk(v, &s.Body)

	case *STry:
		WalkStmts(v, s.Body)
		for i := range s.Catches {
			Walk(v, &s.Catches[i])
		}
		if s.Finally != nil {
			WalkStmts(v, s.Finally.Stmts)
		}

	case *SSwitch:
		Walk(v, &s.Test)
		for i := range s.Cases {
			c := &s.Cases[i]
			walkOptionalExpr(v, &c.ValueOrNil)
			WalkStmts(v, c.Body)
		}

	case *SReturn:
		walkOptionalExpr(v, &s.ValueOrNil)

	case *SThrow:
		Walk(v, &s.Value)

	case *SVar:
		for i := range s.Decls {
			walkOptionalExpr(v, &s.Decls[i].ValueOrNil)
		}

	case *SEmpty, *SDebugger, *SBreak, *SContinue:
		// Leaf nodes

	default:
		panic("Internal error")
	}
}

// Inspect traverses an AST in depth-first order: It starts by calling
// f(node); node must not be nil. If f returns true, Inspect invokes f
// recursively for each of the non-nil children of node, followed by a call
// of f(nil).
func Inspect(stmts []Stmt, f func(Node) bool) {
	WalkStmts(inspector(f), stmts)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}
