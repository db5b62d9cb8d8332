package js_scope_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jsshrink/jsshrink/internal/config"
	"github.com/jsshrink/jsshrink/internal/js_ast"
	"github.com/jsshrink/jsshrink/internal/js_parser"
	"github.com/jsshrink/jsshrink/internal/js_printer"
	"github.com/jsshrink/jsshrink/internal/js_scope"
	"github.com/jsshrink/jsshrink/internal/logger"
	"github.com/jsshrink/jsshrink/internal/test"
)

func analyzeForTest(t *testing.T, contents string, options config.Options) (js_ast.AST, *js_scope.Tree, string) {
	t.Helper()
	log := logger.NewDeferLog()
	source := test.SourceForTest(contents)
	tree, ok := js_parser.Parse(log, source)
	if !ok {
		t.Fatal("Parse error")
	}
	scopes := js_scope.Analyze(log, source, &tree, options)
	text := ""
	for _, msg := range log.Done() {
		text += msg.String(logger.OutputOptions{}, logger.TerminalInfo{})
	}
	return tree, scopes, text
}

// Describes every scope on its own line as "kind path: name=count ..."
func describeScopes(tree *js_scope.Tree, describe func(*js_scope.Scope) []string) string {
	sb := strings.Builder{}
	for _, scope := range tree.Scopes {
		sb.WriteString(scope.Kind.String())
		if scope.Path != "" {
			sb.WriteString(" " + scope.Path)
		}
		if scope.IsTainted() {
			sb.WriteString(" [" + scope.Taint.String() + "]")
		}
		sb.WriteString(":")
		for _, item := range describe(scope) {
			sb.WriteString(" " + item)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func describeCounts(scope *js_scope.Scope) (items []string) {
	for _, symbol := range scope.SortedSymbols() {
		items = append(items, fmt.Sprintf("%s(%s)=%d", symbol.Name, symbol.Class, symbol.Count))
	}
	return
}

func describeRanks(scope *js_scope.Scope) (items []string) {
	for _, symbol := range scope.SortedLocals() {
		items = append(items, fmt.Sprintf("%s=%d", symbol.Name, symbol.Rank))
	}
	return
}

func expectScopes(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		_, scopes, msgs := analyzeForTest(t, contents, config.Options{})
		test.AssertEqualWithDiff(t, msgs, "")
		test.AssertEqualWithDiff(t, describeScopes(scopes, describeCounts), expected)
	})
}

func expectRanks(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		_, scopes, _ := analyzeForTest(t, contents, config.Options{})
		js_scope.ComputeRanks(scopes)
		test.AssertEqualWithDiff(t, describeScopes(scopes, describeRanks), expected)
	})
}

func expectWarning(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		_, _, msgs := analyzeForTest(t, contents, config.Options{Warnings: true})
		test.AssertEqualWithDiff(t, msgs, expected)
	})
}

func expectSubstituted(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		tree, scopes, _ := analyzeForTest(t, contents, config.Options{})
		js_scope.SubstituteConstants(scopes, &tree)
		js_scope.ComputeRanks(scopes)
		js := js_printer.Print(tree, scopes, js_printer.Options{}).JS
		test.AssertEqualWithDiff(t, string(js), expected)
	})
}

func TestDeclarations(t *testing.T) {
	expectScopes(t, "var a = b; a", "global: a(local)=2 b(outer)=1\n")
	expectScopes(t, "function f(x) { return x }",
		"global: f(local)=1\nfunction f: x(local)=2\n")

	// A function expression's name is only visible inside of it
	expectScopes(t, "a = function f() { f }",
		"global: a(outer)=1\nfunction f: f(local)=2\n")

	// Variables in a catch clause belong to the enclosing function
	expectScopes(t, "function f() { try {} catch (e) { var v = e } }",
		"global: f(local)=1\nfunction f: v(local)=1\ncatch f: e(local)=2\n")

	// Names used in a nested scope count as outer there and not here
	expectScopes(t, "var a; function f() { a; a }",
		"global: a(local)=1 f(local)=1\nfunction f: a(outer)=2\n")

	// Labels and property names are not identifiers
	expectScopes(t, "a: for (;;) { b.c; break a }", "global: b(outer)=1\n")
}

func TestPaths(t *testing.T) {
	_, scopes, _ := analyzeForTest(t, "function a() { function b() { x = function () {} } try {} catch (e) {} }", config.Options{})
	var paths []string
	for _, scope := range scopes.Scopes {
		paths = append(paths, scope.Kind.String()+":"+scope.Path)
	}
	expected := []string{"global:", "function:a", "function:a.b", "function:a.b", "catch:a"}
	if diff := cmp.Diff(expected, paths); diff != "" {
		t.Fatal(diff)
	}
}

func TestGlobalNames(t *testing.T) {
	_, scopes, _ := analyzeForTest(t, "var a; function f(b) { c(a, b, d) } e", config.Options{})
	if diff := cmp.Diff([]string{"c", "d", "e"}, scopes.GlobalNames()); diff != "" {
		t.Fatal(diff)
	}
}

func TestTaint(t *testing.T) {
	expectScopes(t, "function f() { with (o) {} } function g(x) { x }",
		"global [contains a tainted scope]: f(local)=1 g(local)=1\n"+
			"function f [contains \"with\"]: o(outer)=1\n"+
			"function g: x(local)=2\n")

	// Taint only moves outward
	expectScopes(t, "function f() { eval(s); function g(x) { x } }",
		"global [contains a tainted scope]: f(local)=1\n"+
			"function f [contains \"eval\"]: eval(outer)=1 g(local)=1 s(outer)=1\n"+
			"function f.g: x(local)=2\n")

	// A local named "eval" is just a variable
	expectScopes(t, "function f(eval) { eval() }",
		"global: f(local)=1\nfunction f: eval(local)=2\n")

	// A catch clause is a scope of its own
	expectScopes(t, "try {} catch (e) { with (e) {} }",
		"global [contains a tainted scope]:\ncatch [contains \"with\"]: e(local)=2\n")
}

func TestRanks(t *testing.T) {
	// More frequent names get lower ranks
	expectRanks(t, "function f(a, b) { return b + b }",
		"global: f=2\nfunction f: b=0 a=1\n")

	// Ties are broken by name
	expectRanks(t, "var b, a", "global: a=0 b=1\n")

	// A busy nested scope pushes the locals of its parent out of its way
	expectRanks(t, "var a; function f(x) { x; x; x }",
		"global: a=1 f=2\nfunction f: x=0\n")
}

func TestRanksIgnoreChildOrder(t *testing.T) {
	ranksOf := func(contents string) map[string]uint32 {
		_, scopes, _ := analyzeForTest(t, contents, config.Options{})
		js_scope.ComputeRanks(scopes)
		ranks := make(map[string]uint32)
		for _, symbol := range scopes.Scopes[1].SortedLocals() {
			ranks[symbol.Name] = symbol.Rank
		}
		return ranks
	}

	a := ranksOf("function f(p, q) { p; q; q; function g(x) { x; x; x; x } function h(y) { y; y } }")
	b := ranksOf("function f(p, q) { p; q; q; function h(y) { y; y } function g(x) { x; x; x; x } }")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatal(diff)
	}
}

func TestWarnings(t *testing.T) {
	expectWarning(t, "var a; var a",
		"<stdin>:1:12: warning: \"a\" has already been declared\n<stdin>:1:5: note: The first declaration of \"a\" is here\n")
	expectWarning(t, "function f() { a; var a }", "<stdin>:1:16: warning: \"a\" is used before its declaration\n")
	expectWarning(t, "if (a = b) c", "<stdin>:1:5: warning: Assignment used as a condition; wrap it in parentheses if this is intentional\n")
	expectWarning(t, "if ((a = b)) c", "")
	expectWarning(t, "debugger", "<stdin>:1:1: warning: The \"debugger\" statement should not be left in production code\n")
	expectWarning(t, "new Array(3)", "<stdin>:1:1: warning: Calling \"new Array\" with one argument creates an array with that many empty slots\n")
	expectWarning(t, "function f(Array) { new Array(3) }", "")
	expectWarning(t, "function f() { return; a() }", "<stdin>:1:24: warning: This code will never be executed\n")
	expectWarning(t, "function f() { return; function g() {} var x }", "")

	// Nothing is reported unless warnings are turned on
	_, _, msgs := analyzeForTest(t, "debugger; var a; var a", config.Options{})
	test.AssertEqualWithDiff(t, msgs, "")
}

func TestSubstituteConstants(t *testing.T) {
	expectSubstituted(t, "function f() { var a = 1 + 1; return a * x }",
		"function f() {\n  var a = 1 + 1;\n  return 2 * x;\n}\n")
	expectSubstituted(t, "function f() { var a = 0.5; return a }",
		"function f() {\n  var a = 0.5;\n  return 0.5;\n}\n")
	expectSubstituted(t, "function f() { var a = !0; return a }",
		"function f() {\n  var a = !0;\n  return true;\n}\n")

	// Reads that may happen before the assignment, or from another scope,
	// are left alone
	expectSubstituted(t, "function f() { g(a); var a = 2 }",
		"function f() {\n  g(a);\n  var a = 2;\n}\n")
	expectSubstituted(t, "function f() { var a = 2; return function () { return a } }",
		"function f() {\n  var a = 2;\n  return function() {\n    return a;\n  };\n}\n")

	// Anything that might change the value disqualifies the variable
	expectSubstituted(t, "function f() { var a = 2; a++; return a }",
		"function f() {\n  var a = 2;\n  a++;\n  return a;\n}\n")
	expectSubstituted(t, "function f() { var a = 2; function g() { a = 3 } return a }",
		"function f() {\n  var a = 2;\n  function g() {\n    a = 3;\n  }\n  return a;\n}\n")
	expectSubstituted(t, "function f() { var a = 2; var a = 3; return a }",
		"function f() {\n  var a = 2;\n  var a = 3;\n  return a;\n}\n")
	expectSubstituted(t, "function f() { var a = 2; eval(s); return a }",
		"function f() {\n  var a = 2;\n  eval(s);\n  return a;\n}\n")
	expectSubstituted(t, "function f() { var a = 2; return delete a }",
		"function f() {\n  var a = 2;\n  return delete a;\n}\n")
	expectSubstituted(t, "function f() { var a = b; return a }",
		"function f() {\n  var a = b;\n  return a;\n}\n")

	// Globals may be changed by other scripts
	expectSubstituted(t, "var a = 2; x = a", "var a = 2;\nx = a;\n")
}

func TestSubstituteConstantsCounts(t *testing.T) {
	tree, scopes, _ := analyzeForTest(t, "function f() { var a = 2; return a + a }", config.Options{})
	js_scope.SubstituteConstants(scopes, &tree)
	test.AssertEqual(t, scopes.Scopes[1].Local("a").Count, uint32(1))
}

func TestCatchShadowedByVarIsPinned(t *testing.T) {
	_, scopes, _ := analyzeForTest(t, "function f(x) { try {} catch (e) { var e = 1, v } return e }", config.Options{})
	fn, catch := scopes.Scopes[1], scopes.Scopes[2]
	test.AssertEqual(t, catch.Local("e").IsPinned, true)
	test.AssertEqual(t, fn.Local("e").IsPinned, true)
	test.AssertEqual(t, fn.Local("v").IsPinned, false)
	test.AssertEqual(t, fn.Local("x").IsPinned, false)

	// A plain "var" in a catch clause leaves the binding alone
	_, scopes, _ = analyzeForTest(t, "function f() { try {} catch (e) { var v = e } }", config.Options{})
	test.AssertEqual(t, scopes.Scopes[2].Local("e").IsPinned, false)
}
