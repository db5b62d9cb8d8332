package js_parser

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/jsshrink/jsshrink/internal/config"
	"github.com/jsshrink/jsshrink/internal/helpers"
	"github.com/jsshrink/jsshrink/internal/js_ast"
	"github.com/jsshrink/jsshrink/internal/js_printer"
	"github.com/jsshrink/jsshrink/internal/js_scope"
	"github.com/jsshrink/jsshrink/internal/logger"
	"github.com/jsshrink/jsshrink/internal/test"
)

func expectParseError(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		Parse(log, test.SourceForTest(contents))
		msgs := log.Done()
		text := ""
		for _, msg := range msgs {
			text += msg.String(logger.OutputOptions{}, logger.TerminalInfo{})
		}
		test.AssertEqualWithDiff(t, text, expected)
	})
}

func expectPrinted(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		source := test.SourceForTest(contents)
		tree, ok := Parse(log, source)
		msgs := log.Done()
		text := ""
		for _, msg := range msgs {
			text += msg.String(logger.OutputOptions{}, logger.TerminalInfo{})
		}
		test.AssertEqualWithDiff(t, text, "")
		if !ok {
			t.Fatal("Parse error")
		}
		scopes := js_scope.Analyze(logger.NewDeferLog(), source, &tree, config.Options{})
		js_scope.ComputeRanks(scopes)
		js := js_printer.Print(tree, scopes, js_printer.Options{}).JS
		test.AssertEqualWithDiff(t, string(js), expected)
	})
}

func expectParsedStmts(t *testing.T, contents string, expected []js_ast.Stmt) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		tree, ok := Parse(log, test.SourceForTest(contents))
		if !ok {
			t.Fatal("Parse error")
		}
		if diff := cmp.Diff(expected, tree.Stmts, cmpopts.IgnoreTypes(logger.Loc{})); diff != "" {
			t.Fatalf("Unexpected tree (-want +got):\n%s\nFull tree:\n%s", diff, spew.Sdump(tree.Stmts))
		}
	})
}

func id(name string) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EIdentifier{Name: name}}
}

func integer(value int64) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EInteger{Value: value}}
}

func exprStmt(value js_ast.Expr) js_ast.Stmt {
	return js_ast.Stmt{Data: &js_ast.SExpr{Value: value}}
}

func TestTreeShape(t *testing.T) {
	expectParsedStmts(t, "a + b * c", []js_ast.Stmt{
		exprStmt(js_ast.Expr{Data: &js_ast.EBinary{
			Op:   js_ast.BinOpAdd,
			Left: id("a"),
			Right: js_ast.Expr{Data: &js_ast.EBinary{
				Op:    js_ast.BinOpMul,
				Left:  id("b"),
				Right: id("c"),
			}},
		}}),
	})

	expectParsedStmts(t, "a = b = 1", []js_ast.Stmt{
		exprStmt(js_ast.Expr{Data: &js_ast.EBinary{
			Op:   js_ast.BinOpAssign,
			Left: id("a"),
			Right: js_ast.Expr{Data: &js_ast.EBinary{
				Op:    js_ast.BinOpAssign,
				Left:  id("b"),
				Right: integer(1),
			}},
		}}),
	})

	// Parentheses are kept in the tree until simplification
	expectParsedStmts(t, "(a)", []js_ast.Stmt{
		exprStmt(js_ast.Expr{Data: &js_ast.EParen{Value: id("a")}}),
	})

	expectParsedStmts(t, "new a.b(c)", []js_ast.Stmt{
		exprStmt(js_ast.Expr{Data: &js_ast.ENew{
			Target: js_ast.Expr{Data: &js_ast.EDot{Target: id("a"), Name: "b"}},
			Args:   []js_ast.Expr{id("c")},
		}}),
	})

	expectParsedStmts(t, "var x = 0x10, y = 1.5", []js_ast.Stmt{
		{Data: &js_ast.SVar{Decls: []js_ast.Decl{
			{Binding: js_ast.LocName{Name: "x"}, ValueOrNil: integer(16)},
			{Binding: js_ast.LocName{Name: "y"}, ValueOrNil: js_ast.Expr{Data: &js_ast.ENumber{Value: 1.5, Raw: "1.5"}}},
		}}},
	})

	expectParsedStmts(t, "a = {b: 'c'}", []js_ast.Stmt{
		exprStmt(js_ast.Expr{Data: &js_ast.EBinary{
			Op:   js_ast.BinOpAssign,
			Left: id("a"),
			Right: js_ast.Expr{Data: &js_ast.EObject{Properties: []js_ast.Property{{
				Key:   js_ast.Expr{Data: &js_ast.EString{Value: helpers.StringToUTF16("b")}},
				Value: js_ast.Expr{Data: &js_ast.EString{Value: helpers.StringToUTF16("c")}},
			}}}},
		}}),
	})
}

func TestScopeIDs(t *testing.T) {
	log := logger.NewDeferLog()
	tree, ok := Parse(log, test.SourceForTest(`
		function a() { try {} catch (e) {} }
		b = function () {}
	`))
	if !ok {
		t.Fatal("Parse error")
	}

	// The program is scope 0 and every function and catch clause gets the
	// next number in source order
	test.AssertEqual(t, tree.ScopeCount, 4)
	fn := tree.Stmts[0].Data.(*js_ast.SFunction).Fn
	test.AssertEqual(t, fn.ScopeID, js_ast.ScopeID(1))
	test.AssertEqual(t, fn.Body.Stmts[0].Data.(*js_ast.STry).Catches[0].ScopeID, js_ast.ScopeID(2))
	assign := tree.Stmts[1].Data.(*js_ast.SExpr).Value.Data.(*js_ast.EBinary)
	test.AssertEqual(t, assign.Right.Data.(*js_ast.EFunction).Fn.ScopeID, js_ast.ScopeID(3))
}

func TestImportantComments(t *testing.T) {
	log := logger.NewDeferLog()
	tree, ok := Parse(log, test.SourceForTest("/*! one */ a(); /* two */ /*! three */"))
	if !ok {
		t.Fatal("Parse error")
	}
	test.AssertEqual(t, len(tree.ImportantComments), 2)
	test.AssertEqual(t, tree.ImportantComments[0], "/*! one */")
	test.AssertEqual(t, tree.ImportantComments[1], "/*! three */")
}

func TestExpressions(t *testing.T) {
	expectPrinted(t, "a ? b : c", "a ? b : c;\n")
	expectPrinted(t, "a, b, c", "a, b, c;\n")
	expectPrinted(t, "a[b]", "a[b];\n")
	expectPrinted(t, "a.if", "a[\"if\"];\n")
	expectPrinted(t, "a = {if: 1}", "a = {\n  \"if\": 1\n};\n")
	expectPrinted(t, "a = {1: b}", "a = {\n  1: b\n};\n")
	expectPrinted(t, "a = {get: 1, set: 2}", "a = {\n  get: 1,\n  set: 2\n};\n")
	expectPrinted(t, "a += b", "a += b;\n")
	expectPrinted(t, "a >>>= b", "a >>>= b;\n")
	expectPrinted(t, "a instanceof b", "a instanceof b;\n")
	expectPrinted(t, "delete a.b", "delete a.b;\n")
	expectPrinted(t, "void 0", "void 0;\n")
	expectPrinted(t, "x = /[/]/g", "x = /[/]/g;\n")
	expectPrinted(t, "x = a / b / c", "x = a / b / c;\n")
	expectPrinted(t, "x = [,]", "x = [,];\n")
	expectPrinted(t, "x = this", "x = this;\n")
	expectPrinted(t, "x = null", "x = null;\n")
}

func TestEscapedKeywords(t *testing.T) {
	expectPrinted(t, "var @if = 1", "var if = 1;\n")
	expectPrinted(t, "@if + 1", "if + 1;\n")
}

func TestStatements(t *testing.T) {
	expectPrinted(t, "if (a) b; else c", "if (a)\n  b;\nelse\n  c;\n")
	expectPrinted(t, "for (a in b) c", "for (a in b)\n  c;\n")
	expectPrinted(t, "for (var a = (b in c);;) d", "for (var a = (b in c); ; )\n  d;\n")
	expectPrinted(t, "with (a) b", "with (a)\n  b;\n")
	expectPrinted(t, "debugger", "debugger;\n")
	expectPrinted(t, "a: while (1) continue a", "a:\n  while (1)\n    continue a;\n")
	expectPrinted(t, "a: { break a }", "a: {\n  break a;\n}\n")
	expectPrinted(t, "try {} finally {}", "try {\n} finally {\n}\n")
	expectPrinted(t, "function f() { return\na }", "function f() {\n  return;\n  a;\n}\n")
	expectPrinted(t, "do ; while (a) b", "do\n  ;\nwhile (a);\nb;\n")
}

func TestASI(t *testing.T) {
	expectPrinted(t, "a\nb", "a;\nb;\n")
	expectPrinted(t, "a\n++b", "a;\n++b;\n")
	expectPrinted(t, "{a}", "{\n  a;\n}\n")

	expectParseError(t, "a b", "<stdin>:1:3: error: Expected \";\" but found \"b\"\n")
	expectParseError(t, "var a b", "<stdin>:1:7: error: Expected \";\" but found \"b\"\n")
}

func TestSyntaxErrors(t *testing.T) {
	expectParseError(t, "a = ", "<stdin>:1:5: error: Unexpected end of file\n")
	expectParseError(t, "a(", "<stdin>:1:3: error: Unexpected end of file\n")
	expectParseError(t, "{", "<stdin>:1:2: error: Expected \"}\" but found end of file\n")
	expectParseError(t, "function () {}", "<stdin>:1:10: error: Expected identifier but found \"(\"\n")
	expectParseError(t, "try {}", "<stdin>:1:7: error: Expected \"finally\" but found end of file\n")
	expectParseError(t, "throw\na", "<stdin>:1:6: error: Unexpected newline after \"throw\"\n")
	expectParseError(t, "switch (a) { b() }", "<stdin>:1:14: error: Expected \"case\" or \"default\" but found \"b\"\n")
	expectParseError(t, "switch (a) { default: default: }", "<stdin>:1:23: error: Multiple default clauses are not allowed\n")
}

func TestAssignTargets(t *testing.T) {
	expectParseError(t, "1 = 2", "<stdin>:1:1: error: Invalid assignment target\n")
	expectParseError(t, "a + 1 = 2", "<stdin>:1:1: error: Invalid assignment target\n")
	expectParseError(t, "a() = 1", "<stdin>:1:1: error: Invalid assignment target\n")
	expectParseError(t, "++a()", "<stdin>:1:3: error: Invalid assignment target\n")
	expectParseError(t, "a()++", "<stdin>:1:1: error: Invalid assignment target\n")

	expectPrinted(t, "a.b = 1", "a.b = 1;\n")
	expectPrinted(t, "a[b]++", "a[b]++;\n")
	expectPrinted(t, "(a) = 1", "a = 1;\n")
}

func TestJumps(t *testing.T) {
	expectParseError(t, "return 1", "<stdin>:1:1: error: A return statement cannot be used here\n")
	expectParseError(t, "break", "<stdin>:1:1: error: Cannot use \"break\" here\n")
	expectParseError(t, "continue", "<stdin>:1:1: error: Cannot use \"continue\" here\n")
	expectParseError(t, "switch (a) { case 1: continue }", "<stdin>:1:22: error: Cannot use \"continue\" here\n")
	expectParseError(t, "for (;;) break foo", "<stdin>:1:16: error: There is no containing label named \"foo\"\n")
	expectParseError(t, "a: a: ;", "<stdin>:1:4: error: Duplicate label \"a\"\n")

	// Labels and loops don't cross function boundaries
	expectParseError(t, "for (;;) { function f() { break } }", "<stdin>:1:27: error: Cannot use \"break\" here\n")
	expectParseError(t, "a: { function f() { break a } }", "<stdin>:1:27: error: There is no containing label named \"a\"\n")

	expectPrinted(t, "switch (a) { case 1: break }", "switch (a) {\n  case 1:\n    break;\n}\n")
	expectPrinted(t, "a: b: ;", "a:\n  b:\n    ;\n")
}

func TestForIn(t *testing.T) {
	expectParseError(t, "for (var a, b in c);", "<stdin>:1:13: error: Only one variable can be declared in a for-in loop\n")
	expectParseError(t, "for (var a = 1 in b);", "<stdin>:1:14: error: For-in loop variables cannot have an initializer\n")
	expectParseError(t, "for (a() in b);", "<stdin>:1:6: error: Invalid assignment target in for-in loop\n")

	expectPrinted(t, "for (var a in b);", "for (var a in b)\n  ;\n")
	expectPrinted(t, "for (a.b in c);", "for (a.b in c)\n  ;\n")
}

func TestAccessors(t *testing.T) {
	expectParseError(t, "({get a(b) {}})", "<stdin>:1:9: error: Getter functions must have no arguments\n")
	expectParseError(t, "({set a() {}})", "<stdin>:1:7: error: Setter functions must have exactly one argument\n")
	expectParseError(t, "({set a(b, c) {}})", "<stdin>:1:7: error: Setter functions must have exactly one argument\n")
}

func TestCatchGuards(t *testing.T) {
	expectPrinted(t, "try {} catch (e if e > 1) {} catch (e) {}",
		"try {\n} catch (e if e > 1) {\n} catch (e) {\n}\n")
	expectParseError(t, "try {} catch () {}", "<stdin>:1:15: error: Expected identifier but found \")\"\n")
}
