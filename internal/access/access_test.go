package access

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jsshrink/jsshrink/internal/config"
	"github.com/jsshrink/jsshrink/internal/test"
)

type query struct {
	kind   config.ScopeKind
	path   string
	member string
}

func global(member string) query { return query{kind: config.ScopeGlobal, member: member} }

func function(path string, member string) query {
	return query{kind: config.ScopeFunction, path: path, member: member}
}

func catch(path string, member string) query {
	return query{kind: config.ScopeCatch, path: path, member: member}
}

func expectKept(t *testing.T, patterns []string, q query, expected bool) {
	t.Helper()
	policy, err := Compile(patterns)
	if err != nil {
		t.Fatal(err)
	}
	test.AssertEqual(t, !policy.IsNameRenameable(q.kind, q.path, q.member), expected)
}

func expectCompileError(t *testing.T, pattern string, expected string) {
	t.Helper()
	_, err := Compile([]string{pattern})
	if err == nil {
		t.Fatalf("Expected an error for %q", pattern)
	}
	test.AssertEqualWithDiff(t, err.Error(), expected)
}

func TestExact(t *testing.T) {
	expectKept(t, []string{"init"}, global("init"), true)
	expectKept(t, []string{"init"}, function("lib", "init"), true)
	expectKept(t, []string{"init"}, global("initialize"), false)

	expectKept(t, []string{"lib.init"}, function("lib", "init"), true)
	expectKept(t, []string{"lib.init"}, function("other", "init"), false)
	expectKept(t, []string{"lib.init"}, global("init"), false)
	expectKept(t, []string{"lib.init"}, function("outer.lib", "init"), false)
}

func TestScopePrefix(t *testing.T) {
	expectKept(t, []string{"global:init"}, global("init"), true)
	expectKept(t, []string{"global:init"}, function("lib", "init"), false)
	expectKept(t, []string{"function:init"}, function("lib", "init"), true)
	expectKept(t, []string{"catch:e"}, catch("", "e"), true)
	expectKept(t, []string{"catch:e"}, function("f", "e"), false)
	expectKept(t, []string{"function:lib.*"}, function("lib", "x"), true)
}

func TestGlob(t *testing.T) {
	expectKept(t, []string{"_*"}, global("_private"), true)
	expectKept(t, []string{"_*"}, function("lib", "_private"), true)
	expectKept(t, []string{"_*"}, global("public"), false)

	expectKept(t, []string{"lib.*"}, function("lib", "init"), true)
	expectKept(t, []string{"lib.*"}, function("lib.inner", "init"), false)
	expectKept(t, []string{"lib.**"}, function("lib.inner", "init"), true)
	expectKept(t, []string{"**.init"}, function("a.b.c", "init"), true)
	expectKept(t, []string{"**.init"}, global("init"), false)
	expectKept(t, []string{"a.*.c"}, function("a.b", "c"), true)
	expectKept(t, []string{"a.*.c"}, function("a.b.b", "c"), false)
}

func TestRegExp(t *testing.T) {
	expectKept(t, []string{"/^on[A-Z]/"}, global("onClick"), true)
	expectKept(t, []string{"/^on[A-Z]/"}, global("once"), false)

	// Regular expressions see the whole path
	expectKept(t, []string{"/^lib\\./"}, function("lib", "x"), true)
	expectKept(t, []string{"/^lib\\./"}, global("lib"), false)
	expectKept(t, []string{"function:/init$/"}, function("a.b", "init"), true)
	expectKept(t, []string{"/a:b/"}, global("x"), false)
}

func TestClaimedNames(t *testing.T) {
	policy, err := Compile([]string{"init", "lib.start", "_*", "/^x/", "global:init", "main"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"init", "main"}, policy.ClaimedNames()); diff != "" {
		t.Fatal(diff)
	}
	test.AssertEqual(t, policy.String(), "init, lib.start, _*, /^x/, global:init, main")
}

func TestCompileErrors(t *testing.T) {
	expectCompileError(t, "functon:init", "Invalid scope \"functon\" in pattern \"functon:init\" (did you mean \"function\"?)")
	expectCompileError(t, "local:init", "Invalid scope \"local\" in pattern \"local:init\" (expected \"global\", \"function\", or \"catch\")")
	expectCompileError(t, "global:", "Empty pattern \"global:\"")
	if _, err := Compile([]string{"/(/"}); err == nil {
		t.Fatal("Expected an error for an invalid regular expression")
	}
}

func TestConcurrentUse(t *testing.T) {
	policy, err := Compile([]string{"/^keep/", "lib.**"})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if policy.IsNameRenameable(config.ScopeGlobal, "", "keepMe") {
					t.Error("Expected \"keepMe\" to be kept")
				}
				if !policy.IsNameRenameable(config.ScopeFunction, "other", "x") {
					t.Error("Expected \"other.x\" to be renameable")
				}
			}
		}()
	}
	wg.Wait()
}

func TestPolicyInterface(t *testing.T) {
	policy, err := Compile(nil)
	if err != nil {
		t.Fatal(err)
	}
	var _ config.Policy = policy
	test.AssertEqual(t, policy.IsNameRenameable(config.ScopeGlobal, "", "anything"), true)
	test.AssertEqual(t, len(policy.ClaimedNames()), 0)
}
