package js_scope

import (
	"github.com/jsshrink/jsshrink/internal/config"
	"github.com/jsshrink/jsshrink/internal/js_ast"
)

// Replaces reads of constant variables with the value they hold. A variable
// counts as constant if it is declared exactly once, by a "var" statement at
// the top level of a function body, with an initializer that folds to a
// numeric or boolean literal, and if nothing ever assigns to it. Only reads in
// the declaring scope that come after the declaration are replaced, since
// earlier reads may observe "undefined". Tainted scopes are left alone.
//
// This must run after Analyze and before ComputeRanks since it changes the
// use counts of the substituted symbols.
func SubstituteConstants(tree *Tree, ast *js_ast.AST) {
	js_ast.WalkStmts(&substituter{tree: tree, scope: tree.Root()}, ast.Stmts)
}

type substituter struct {
	tree  *Tree
	scope *Scope
}

func (v *substituter) Visit(node js_ast.Node) js_ast.Visitor {
	switch n := node.(type) {
	case *js_ast.Fn:
		scope := v.tree.Scopes[n.ScopeID]
		if !scope.IsTainted() {
			findConstants(scope, n.Body.Stmts)
		}
		return &substituter{tree: v.tree, scope: scope}

	case *js_ast.Catch:
		return &substituter{tree: v.tree, scope: v.tree.Scopes[n.ScopeID]}

	case *js_ast.Expr:
		switch e := n.Data.(type) {
		case *js_ast.EUnary:
			// "delete x" is false for a variable but true for a literal
			if e.Op == js_ast.UnOpDelete {
				return nil
			}

		case *js_ast.EIdentifier:
			if v.scope.Kind != config.ScopeFunction {
				break
			}
			symbol := v.scope.Local(e.Name)
			if symbol == nil || symbol.Constant == nil || n.Loc.Start <= symbol.Decls[0].Start {
				break
			}
			*n = symbol.Constant.ToExpr(n.Loc)
			symbol.Count--
		}
	}

	return v
}

func findConstants(scope *Scope, stmts []js_ast.Stmt) {
	for _, stmt := range stmts {
		s, ok := stmt.Data.(*js_ast.SVar)
		if !ok {
			continue
		}

		for _, decl := range s.Decls {
			if decl.ValueOrNil.Data == nil || !js_ast.IsLiteralTree(decl.ValueOrNil) {
				continue
			}
			symbol := scope.Local(decl.Binding.Name)
			if symbol == nil || symbol.declKind != declVar || len(symbol.Decls) != 1 || symbol.IsWritten {
				continue
			}
			if value, ok := js_ast.EvalConstLiteral(decl.ValueOrNil); ok {
				symbol.Constant = &value
			}
		}
	}
}
