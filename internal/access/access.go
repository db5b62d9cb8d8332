package access

// This implements the accessibility policy: a list of patterns naming the
// declarations that other code refers to by name, and which therefore must
// not be renamed. Each pattern is written as
//
//   [global:|function:|catch:]PATTERN
//
// where the optional prefix restricts the pattern to declarations in one
// kind of scope. PATTERN is matched against the dotted path of a
// declaration, which is the chain of named functions enclosing it followed
// by its own name ("lib.init" is "init" declared inside "function lib"). A
// PATTERN without any "." is matched against the name alone so "init"
// covers every declaration named "init". PATTERN is one of:
//
//   - an exact path such as "lib.init" or "init"
//   - a glob where "*" stays within one path segment and "**" may cross them
//   - a regular expression such as "/^_/", which is matched against the
//     full dotted path

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"

	"github.com/jsshrink/jsshrink/internal/config"
	"github.com/jsshrink/jsshrink/internal/helpers"
)

type patternKind uint8

const (
	patternExact patternKind = iota
	patternGlob
	patternRegExp
)

type pattern struct {
	text string
	kind patternKind

	// Patterns without a scope prefix apply to every kind of scope
	hasScope bool
	scope    config.ScopeKind

	// Whether the pattern is matched against the full dotted path or just
	// against the member name
	matchesPath bool

	exact  string
	glob   []helpers.GlobPart
	regexp *regexp2.Regexp

	// Results by subject. Every render sharing this policy asks about the
	// same names.
	cacheMutex sync.Mutex
	cache      map[string]bool
}

type Policy struct {
	patterns []*pattern
	claimed  []string
}

var scopePrefixes = map[string]config.ScopeKind{
	"global":   config.ScopeGlobal,
	"function": config.ScopeFunction,
	"catch":    config.ScopeCatch,
}

var scopePrefixTypos = helpers.MakeTypoDetector([]string{"global", "function", "catch"})

// Compiles every pattern, stopping at the first one that is invalid. The
// returned policy is safe for concurrent use.
func Compile(texts []string) (*Policy, error) {
	policy := &Policy{}
	claimed := make(map[string]bool)

	for _, text := range texts {
		p, err := compilePattern(text)
		if err != nil {
			return nil, err
		}
		policy.patterns = append(policy.patterns, p)

		// An exact name must never be generated for anything else either,
		// since the declaration that keeps it could be shadowed
		if p.kind == patternExact && !p.matchesPath && !claimed[p.exact] {
			claimed[p.exact] = true
			policy.claimed = append(policy.claimed, p.exact)
		}
	}

	return policy, nil
}

func compilePattern(text string) (*pattern, error) {
	p := &pattern{text: text, cache: make(map[string]bool)}
	body := text

	// Regular expressions may contain ":" so only look for a prefix before
	// the first "/"
	if colon := strings.IndexByte(body, ':'); colon >= 0 && (strings.IndexByte(body, '/') < 0 || colon < strings.IndexByte(body, '/')) {
		prefix := body[:colon]
		scope, ok := scopePrefixes[prefix]
		if !ok {
			if corrected, ok := scopePrefixTypos.MaybeCorrectTypo(prefix); ok {
				return nil, fmt.Errorf("Invalid scope %q in pattern %q (did you mean %q?)", prefix, text, corrected)
			}
			return nil, fmt.Errorf("Invalid scope %q in pattern %q (expected \"global\", \"function\", or \"catch\")", prefix, text)
		}
		p.hasScope = true
		p.scope = scope
		body = body[colon+1:]
	}

	if body == "" {
		return nil, fmt.Errorf("Empty pattern %q", text)
	}

	if len(body) >= 2 && body[0] == '/' && body[len(body)-1] == '/' {
		re, err := regexp2.Compile(body[1:len(body)-1], regexp2.ECMAScript)
		if err != nil {
			return nil, fmt.Errorf("Invalid regular expression in pattern %q: %s", text, err.Error())
		}
		p.kind = patternRegExp
		p.regexp = re
		p.matchesPath = true
		return p, nil
	}

	p.matchesPath = strings.IndexByte(body, '.') >= 0
	if glob := helpers.ParseGlobPattern(body); len(glob) > 1 {
		p.kind = patternGlob
		p.glob = glob
	} else {
		p.kind = patternExact
		p.exact = body
	}
	return p, nil
}

func (p *pattern) matches(kind config.ScopeKind, path string, member string) bool {
	if p.hasScope && p.scope != kind {
		return false
	}

	subject := member
	if p.matchesPath && path != "" {
		subject = path + "." + member
	}

	p.cacheMutex.Lock()
	defer p.cacheMutex.Unlock()
	if result, ok := p.cache[subject]; ok {
		return result
	}

	var result bool
	switch p.kind {
	case patternExact:
		result = subject == p.exact

	case patternGlob:
		result = helpers.MatchGlobPattern(p.glob, subject)

	case patternRegExp:
		// A match that fails to complete is treated as no match
		result, _ = p.regexp.MatchString(subject)
	}

	p.cache[subject] = result
	return result
}

func (policy *Policy) IsNameRenameable(kind config.ScopeKind, targetPath string, memberName string) bool {
	for _, p := range policy.patterns {
		if p.matches(kind, targetPath, memberName) {
			return false
		}
	}
	return true
}

func (policy *Policy) ClaimedNames() []string {
	return policy.claimed
}

// Returns the patterns as they were written, for debug output
func (policy *Policy) String() string {
	texts := make([]string, len(policy.patterns))
	for i, p := range policy.patterns {
		texts[i] = p.text
	}
	return strings.Join(texts, ", ")
}
