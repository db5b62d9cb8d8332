package js_scope

import (
	"fmt"

	"github.com/jsshrink/jsshrink/internal/config"
	"github.com/jsshrink/jsshrink/internal/js_ast"
	"github.com/jsshrink/jsshrink/internal/logger"
)

// Analysis is three passes over the same tree. The declaration pass builds
// the scope tree and records every declared name. The usage pass then counts
// every identifier against the innermost scope it appears in. Scopes that
// contain "with" or "eval" are tainted during the usage pass, and the taint
// spreads to each enclosing scope as the traversal leaves a tainted scope.

type analyzer struct {
	log     logger.Log
	source  logger.Source
	tree    *Tree
	options config.Options
}

func Analyze(log logger.Log, source logger.Source, tree *js_ast.AST, options config.Options) *Tree {
	a := &analyzer{
		log:     log,
		source:  source,
		tree:    &Tree{Scopes: make([]*Scope, tree.ScopeCount)},
		options: options,
	}

	root := a.newScope(js_ast.RootScopeID, config.ScopeGlobal, nil, "")
	js_ast.WalkStmts(&declarer{a: a, scope: root, varScope: root}, tree.Stmts)

	a.checkUnreachable(tree.Stmts)
	js_ast.WalkStmts(&user{a: a, scope: root}, tree.Stmts)

	return a.tree
}

func (a *analyzer) newScope(id js_ast.ScopeID, kind config.ScopeKind, parent *Scope, path string) *Scope {
	scope := &Scope{
		ID:      id,
		Kind:    kind,
		Parent:  parent,
		Path:    path,
		Symbols: make(map[SymbolKey]*Symbol),
	}
	if parent != nil {
		parent.Children = append(parent.Children, scope)
	}
	a.tree.Scopes[id] = scope
	return scope
}

func (a *analyzer) warn(id logger.MsgID, r logger.Range, text string) {
	if a.options.Warnings {
		a.log.AddID(id, logger.Warning, &a.source, r, text)
	}
}

func nameRange(name js_ast.LocName) logger.Range {
	return logger.Range{Loc: name.Loc, Len: int32(len(name.Name))}
}

func (a *analyzer) declare(scope *Scope, name js_ast.LocName, kind declKind) {
	symbol := scope.symbol(name.Name, ClassLocal)
	symbol.Count++
	symbol.Decls = append(symbol.Decls, name.Loc)

	if symbol.declKind == declNone {
		symbol.declKind = kind
		return
	}

	if a.options.Warnings {
		first := symbol.Decls[0]
		a.log.AddIDWithNotes(logger.MsgID_JS_DuplicateDeclaration, logger.Warning, &a.source, nameRange(name),
			fmt.Sprintf("%q has already been declared", name.Name),
			[]logger.MsgData{logger.RangeData(&a.source, logger.Range{Loc: first, Len: int32(len(name.Name))},
				fmt.Sprintf("The first declaration of %q is here", name.Name))})
	}
}

func childPath(parent string, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

////////////////////////////////////////////////////////////////////////////////
// Declaration pass

type declarer struct {
	a     *analyzer
	scope *Scope

	// "var" declarations belong to the nearest function or global scope,
	// which is not the current scope inside a catch clause
	varScope *Scope
}

func (d *declarer) Visit(node js_ast.Node) js_ast.Visitor {
	switch n := node.(type) {
	case *js_ast.Stmt:
		if s, ok := n.Data.(*js_ast.SVar); ok {
			for _, decl := range s.Decls {
				d.a.declare(d.varScope, decl.Binding, declVar)
				d.pinCatchShadowing(decl.Binding.Name)
			}
		}

	case *js_ast.Fn:
		path := d.scope.Path
		if n.NameOrNil != nil {
			path = childPath(path, n.NameOrNil.Name)
		}
		scope := d.a.newScope(n.ScopeID, config.ScopeFunction, d.scope, path)

		// A function declaration's name is visible to its siblings while a
		// function expression's name is only visible inside the function
		if n.NameOrNil != nil {
			if n.IsDecl {
				d.a.declare(d.varScope, *n.NameOrNil, declFunction)
			} else {
				d.a.declare(scope, *n.NameOrNil, declFunction)
			}
		}
		for _, arg := range n.Args {
			d.a.declare(scope, js_ast.LocName{Loc: arg.Loc, Name: arg.Name}, declArg)
		}
		return &declarer{a: d.a, scope: scope, varScope: scope}

	case *js_ast.Catch:
		scope := d.a.newScope(n.ScopeID, config.ScopeCatch, d.scope, d.scope.Path)
		d.a.declare(scope, n.Binding, declCatch)
		return &declarer{a: d.a, scope: scope, varScope: d.varScope}
	}

	return d
}

// A "var" inside a catch clause with the same name as the catch binding
// initializes the binding but declares the name in the enclosing function.
// Both names must print identically, so neither is renamed.
func (d *declarer) pinCatchShadowing(name string) {
	for scope := d.scope; scope != d.varScope; scope = scope.Parent {
		if scope.Kind != config.ScopeCatch {
			continue
		}
		if binding := scope.Local(name); binding != nil {
			binding.IsPinned = true
			d.varScope.Local(name).IsPinned = true
		}
	}
}

////////////////////////////////////////////////////////////////////////////////
// Usage and taint pass

type user struct {
	a     *analyzer
	scope *Scope
}

func (u *user) Visit(node js_ast.Node) js_ast.Visitor {
	switch n := node.(type) {
	case *js_ast.Expr:
		u.visitExpr(n)

	case *js_ast.Stmt:
		u.visitStmt(n)

	case *js_ast.Fn:
		// Function names and arguments were counted as declarations
		child := &user{a: u.a, scope: u.a.tree.Scopes[n.ScopeID]}
		u.a.checkUnreachable(n.Body.Stmts)
		js_ast.WalkStmts(child, n.Body.Stmts)
		child.leave()
		return nil

	case *js_ast.Catch:
		child := &user{a: u.a, scope: u.a.tree.Scopes[n.ScopeID]}
		if n.GuardOrNil.Data != nil {
			js_ast.Walk(child, &n.GuardOrNil)
		}
		u.a.checkUnreachable(n.Body)
		js_ast.WalkStmts(child, n.Body)
		child.leave()
		return nil
	}

	return u
}

// Taint is only ever propagated outward, and only once the traversal of the
// tainted scope is complete
func (u *user) leave() {
	if parent := u.scope.Parent; u.scope.IsTainted() && parent != nil && !parent.IsTainted() {
		parent.Taint = TaintNested
	}
}

func (u *user) taint(reason TaintReason) {
	if u.scope.Taint == TaintNone || u.scope.Taint == TaintNested {
		u.scope.Taint = reason
	}
}

func (u *user) use(name string, loc logger.Loc) {
	if symbol := u.scope.Local(name); symbol != nil {
		symbol.Count++

		if symbol.declKind == declVar && loc.Start < symbol.Decls[0].Start {
			u.a.warn(logger.MsgID_JS_UseBeforeDeclaration, logger.Range{Loc: loc, Len: int32(len(name))},
				fmt.Sprintf("%q is used before its declaration", name))
		}
		return
	}

	u.scope.symbol(name, ClassOuter).Count++

	if name == "eval" {
		if scope, _ := u.scope.Resolve(name); scope == nil {
			u.taint(TaintEval)
		}
	}
}

func (u *user) markWritten(target js_ast.Expr) {
	for {
		paren, ok := target.Data.(*js_ast.EParen)
		if !ok {
			break
		}
		target = paren.Value
	}
	if id, ok := target.Data.(*js_ast.EIdentifier); ok {
		if _, symbol := u.scope.Resolve(id.Name); symbol != nil {
			symbol.IsWritten = true
		}
	}
}

func (u *user) checkCondition(test js_ast.Expr) {
	if js_ast.IsAssignment(test) {
		u.a.warn(logger.MsgID_JS_AssignInCondition, logger.Range{Loc: test.Loc},
			"Assignment used as a condition; wrap it in parentheses if this is intentional")
	}
}

func (u *user) visitExpr(expr *js_ast.Expr) {
	switch e := expr.Data.(type) {
	case *js_ast.EIdentifier:
		u.use(e.Name, expr.Loc)

	case *js_ast.EBinary:
		if e.Op.BinaryAssignTarget() != js_ast.AssignTargetNone {
			u.markWritten(e.Left)
		}

	case *js_ast.EUnary:
		if e.Op.UnaryAssignTarget() != js_ast.AssignTargetNone {
			u.markWritten(e.Value)
		}

	case *js_ast.EIf:
		u.checkCondition(e.Test)

	case *js_ast.ENew:
		if id, ok := e.Target.Data.(*js_ast.EIdentifier); ok && id.Name == "Array" && len(e.Args) == 1 {
			if scope, _ := u.scope.Resolve(id.Name); scope == nil {
				u.a.warn(logger.MsgID_JS_NewArrayLength, logger.Range{Loc: expr.Loc, Len: 3},
					"Calling \"new Array\" with one argument creates an array with that many empty slots")
			}
		}
	}
}

func (u *user) visitStmt(stmt *js_ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *js_ast.SWith:
		u.taint(TaintWith)

	case *js_ast.SIf:
		u.checkCondition(s.Test)

	case *js_ast.SWhile:
		u.checkCondition(s.Test)

	case *js_ast.SDoWhile:
		u.checkCondition(s.Test)

	case *js_ast.SFor:
		if s.TestOrNil.Data != nil {
			u.checkCondition(s.TestOrNil)
		}

	case *js_ast.SForIn:
		if init, ok := s.Init.Data.(*js_ast.SExpr); ok {
			u.markWritten(init.Value)
		}

	case *js_ast.SDebugger:
		u.a.warn(logger.MsgID_JS_DebuggerStatement, logger.Range{Loc: stmt.Loc, Len: 8},
			"The \"debugger\" statement should not be left in production code")

	case *js_ast.SBlock:
		u.a.checkUnreachable(s.Stmts)

	case *js_ast.STry:
		u.a.checkUnreachable(s.Body)
		if s.Finally != nil {
			u.a.checkUnreachable(s.Finally.Stmts)
		}

	case *js_ast.SSwitch:
		for _, c := range s.Cases {
			u.a.checkUnreachable(c.Body)
		}
	}
}

// Warns about the first statement after a jump that can never run.
// Declarations are still reachable in a sense since they are hoisted.
func (a *analyzer) checkUnreachable(stmts []js_ast.Stmt) {
	if !a.options.Warnings {
		return
	}

	for i, stmt := range stmts {
		switch stmt.Data.(type) {
		case *js_ast.SReturn, *js_ast.SThrow, *js_ast.SBreak, *js_ast.SContinue:
		default:
			continue
		}

		for _, next := range stmts[i+1:] {
			switch s := next.Data.(type) {
			case *js_ast.SFunction, *js_ast.SEmpty:
				continue

			case *js_ast.SVar:
				if !hasInitializer(s) {
					continue
				}
			}

			a.warn(logger.MsgID_JS_UnreachableCode, logger.Range{Loc: next.Loc}, "This code will never be executed")
			return
		}
		return
	}
}

func hasInitializer(s *js_ast.SVar) bool {
	for _, decl := range s.Decls {
		if decl.ValueOrNil.Data != nil {
			return true
		}
	}
	return false
}
