package helpers

import "strings"

type GlobWildcard uint8

const (
	GlobNone GlobWildcard = iota
	GlobAllExceptDot
	GlobAllIncludingDot
)

type GlobPart struct {
	Prefix   string
	Wildcard GlobWildcard
}

// Patterns match dotted paths such as "outer.inner.name". A "*" matches
// within one path segment and a "**" matches across segments.
//
// The returned array will always be at least one element. If there are no
// wildcards then it will be exactly one element, and if there are wildcards
// then it will be more than one element.
func ParseGlobPattern(text string) (pattern []GlobPart) {
	for {
		star := strings.IndexByte(text, '*')
		if star < 0 {
			pattern = append(pattern, GlobPart{Prefix: text})
			break
		}
		count := 1
		for star+count < len(text) && text[star+count] == '*' {
			count++
		}
		wildcard := GlobAllExceptDot
		if count > 1 {
			wildcard = GlobAllIncludingDot
		}
		pattern = append(pattern, GlobPart{Prefix: text[:star], Wildcard: wildcard})
		text = text[star+count:]
	}
	return
}

func GlobPatternToString(pattern []GlobPart) string {
	sb := strings.Builder{}
	for _, part := range pattern {
		sb.WriteString(part.Prefix)
		switch part.Wildcard {
		case GlobAllExceptDot:
			sb.WriteByte('*')
		case GlobAllIncludingDot:
			sb.WriteString("**")
		}
	}
	return sb.String()
}

func MatchGlobPattern(pattern []GlobPart, text string) bool {
	if len(pattern) == 0 {
		return text == ""
	}

	part := pattern[0]
	if !strings.HasPrefix(text, part.Prefix) {
		return false
	}
	text = text[len(part.Prefix):]

	switch part.Wildcard {
	case GlobNone:
		return len(pattern) == 1 && text == ""

	case GlobAllExceptDot:
		// Try every length up to the end of the current segment
		for i := 0; i <= len(text); i++ {
			if MatchGlobPattern(pattern[1:], text[i:]) {
				return true
			}
			if i < len(text) && text[i] == '.' {
				break
			}
		}

	case GlobAllIncludingDot:
		for i := 0; i <= len(text); i++ {
			if MatchGlobPattern(pattern[1:], text[i:]) {
				return true
			}
		}
	}

	return false
}
