// Package title validates pull request titles against a conventional-commit
// style grammar: <type>(<scope>)?!?: <description>.
package title

import (
	"strings"
	"unicode/utf8"

	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/policy"
)

// Validate checks a pull request title against the configured title policy.
// It is a pure function: no side effects, deterministic for a given input.
func Validate(rawTitle string, pol policy.TitlePolicy) core.TitleVerdict {
	title := strings.TrimSpace(rawTitle)
	if title == "" {
		return core.Rejectf("title must not be empty")
	}

	if pol.MaxLength > 0 && utf8.RuneCountInString(title) > pol.MaxLength {
		return core.Rejectf("title is %d characters, the limit is %d", utf8.RuneCountInString(title), pol.MaxLength)
	}

	colon := strings.Index(title, ":")
	if colon < 0 {
		return core.Rejectf("missing type prefix, expected '<type>(<scope>): <description>'")
	}

	prefix := title[:colon]
	description := strings.TrimSpace(title[colon+1:])

	// A trailing "!" marks a breaking change and is allowed after the scope.
	prefix = strings.TrimSuffix(prefix, "!")

	typeToken, scope, verdict := splitScope(prefix)
	if !verdict.Accepted {
		return verdict
	}

	if !typeAllowed(typeToken, pol.AllowedTypes) {
		return core.Rejectf("type '%s' not allowed (allowed: %s)", typeToken, strings.Join(pol.AllowedTypes, ", "))
	}

	if pol.RequireScope && scope == "" {
		return core.Rejectf("scope is required, expected '%s(<scope>): %s'", strings.ToLower(typeToken), description)
	}

	if description == "" {
		return core.Rejectf("description must not be empty")
	}
	if strings.HasSuffix(description, ".") {
		return core.Rejectf("description must not end with a period")
	}

	return core.Accept()
}

// splitScope splits "<type>(<scope>)" into its parts. An absent scope is not
// an error here; RequireScope is enforced by the caller.
func splitScope(prefix string) (typeToken, scope string, verdict core.TitleVerdict) {
	open := strings.Index(prefix, "(")
	if open < 0 {
		return prefix, "", core.Accept()
	}
	if !strings.HasSuffix(prefix, ")") {
		return "", "", core.Rejectf("scope parenthesis is not closed in '%s'", prefix)
	}

	typeToken = prefix[:open]
	scope = prefix[open+1 : len(prefix)-1]
	if scope == "" {
		return "", "", core.Rejectf("scope must not be empty")
	}
	if !isLowerToken(scope) {
		return "", "", core.Rejectf("scope '%s' must be a lowercase token", scope)
	}
	return typeToken, scope, core.Accept()
}

func typeAllowed(typeToken string, allowed []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(typeToken))
	for _, t := range allowed {
		if normalized == t {
			return true
		}
	}
	return false
}

func isLowerToken(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '/':
		default:
			return false
		}
	}
	return true
}
