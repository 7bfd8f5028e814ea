// Package subst expands command templates against layered variable
// namespaces. Expansion is recursive (values may reference further
// variables), keeps list values as discrete tokens until a generator
// escapes them, and fails hard on unknown or cyclic references.
//
// Supported syntax:
//
//	$var, ${var}         bare reference, environment scope
//	$tool.var            namespaced reference, single tool scope
//	$$                   one literal dollar, never re-expanded
//	${prefix(p, list)}   list functions: prefix, suffix, wrap, join, pairwise
package subst

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	tokenPattern = regexp.MustCompile(
		`(\$\$)` +
			`|\$\{(\w+)\(([^)]*)\)\}` +
			`|\$\{([a-zA-Z_][a-zA-Z0-9_.]*)\}` +
			`|\$([a-zA-Z_][a-zA-Z0-9_.]*)`)
	fullFuncPattern = regexp.MustCompile(`^\$\{(\w+)\(([^)]*)\)\}$`)
	fullVarPattern  = regexp.MustCompile(`^(?:\$\{([a-zA-Z_][a-zA-Z0-9_.]*)\}|\$([a-zA-Z_][a-zA-Z0-9_.]*))$`)
)

// dollarSentinel protects the dollar produced by "$$" from re-expansion.
// It is swapped back for "$" once a token has fully settled.
const dollarSentinel = "\x00"

// Expand expands a template into a single string. List values interpolated
// into the result are joined with single spaces. Paths are rendered as
// declared (no relativization).
func Expand(template string, ns *Namespace) (string, error) {
	tokens, err := ExpandTokens(template, ns)
	if err != nil {
		return "", err
	}
	return strings.Join(RenderAll(tokens, nil), " "), nil
}

// ExpandTokens splits a template on whitespace and expands each piece,
// returning the structured token sequence for per-token escaping.
func ExpandTokens(template string, ns *Namespace) ([]Token, error) {
	return ExpandList(strings.Fields(template), ns)
}

// ExpandList expands an explicit token list. A token that resolves to a
// list value contributes one output token per element.
func ExpandList(tokens []string, ns *Namespace) ([]Token, error) {
	var out []Token
	for _, tok := range tokens {
		expanded, err := expandToken(tok, ns, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	// Settle escaped dollars now that no further expansion will happen.
	for i, t := range out {
		if text, ok := t.(TextToken); ok {
			out[i] = TextToken(strings.ReplaceAll(string(text), dollarSentinel, "$"))
		}
	}
	return out, nil
}

// expandToken expands one token. chain holds the variables currently being
// expanded on this call stack, for cycle detection.
func expandToken(token string, ns *Namespace, chain []string) ([]Token, error) {
	trimmed := strings.TrimSpace(token)

	if m := fullFuncPattern.FindStringSubmatch(trimmed); m != nil {
		return callFunction(m[1], m[2], ns, chain)
	}

	if m := fullVarPattern.FindStringSubmatch(trimmed); m != nil {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		value, err := lookupVar(name, ns, chain)
		if err != nil {
			return nil, err
		}
		return expandValue(name, value, ns, chain)
	}

	// Mixed content: substitute references in place, then re-scan.
	var firstErr error
	var substituted []string
	result := tokenPattern.ReplaceAllStringFunc(token, func(match string) string {
		if firstErr != nil {
			return match
		}
		m := tokenPattern.FindStringSubmatch(match)
		switch {
		case m[1] != "": // $$
			return dollarSentinel
		case m[2] != "": // ${func(args)}
			tokens, err := callFunction(m[2], m[3], ns, chain)
			if err != nil {
				firstErr = err
				return match
			}
			return strings.Join(RenderAll(tokens, nil), " ")
		default:
			name := m[4]
			if name == "" {
				name = m[5]
			}
			value, err := lookupVar(name, ns, chain)
			if err != nil {
				firstErr = err
				return match
			}
			if isList(value) {
				firstErr = &EmbedError{Variable: name, Token: token}
				return match
			}
			substituted = append(substituted, name)
			return scalarText(value)
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}

	if result != token && strings.Contains(result, "$") {
		return expandToken(result, ns, append(chain, substituted...))
	}
	return []Token{TextToken(result)}, nil
}

// expandValue turns a resolved variable value into output tokens, recursing
// into elements that themselves contain references.
func expandValue(name string, value any, ns *Namespace, chain []string) ([]Token, error) {
	switch v := value.(type) {
	case []Token:
		return v, nil
	case PathToken:
		return []Token{v}, nil
	case ProjectPath:
		return []Token{PathToken{Path: string(v), Kind: ProjectRelative}}, nil
	case BuildPath:
		return []Token{PathToken{Path: string(v), Kind: BuildRelative}}, nil
	case *Namespace:
		return nil, fmt.Errorf("variable %s names a tool scope, not a value", name)
	}

	if items, ok := asList(value); ok {
		var out []Token
		for _, item := range items {
			elems, err := expandValue(name, item, ns, chain)
			if err != nil {
				return nil, err
			}
			out = append(out, elems...)
		}
		return out, nil
	}

	text := scalarText(value)
	if strings.Contains(text, "$") {
		// A multiword value is a command template: re-tokenize so list
		// variables referenced as their own word stay legal.
		if fields := strings.Fields(text); len(fields) > 1 {
			var out []Token
			for _, f := range fields {
				elems, err := expandToken(f, ns, append(chain, name))
				if err != nil {
					return nil, err
				}
				out = append(out, elems...)
			}
			return out, nil
		}
		return expandToken(text, ns, append(chain, name))
	}
	return []Token{TextToken(text)}, nil
}

// lookupVar resolves a variable, failing on unknown names and on chains
// that revisit a variable already being expanded.
func lookupVar(name string, ns *Namespace, chain []string) (any, error) {
	for _, seen := range chain {
		if seen == name {
			return nil, &CircularReferenceError{Chain: append(append([]string{}, chain...), name)}
		}
	}
	value, ok := ns.Lookup(name)
	if !ok {
		return nil, &MissingVariableError{Variable: name}
	}
	return value, nil
}

func isList(value any) bool {
	_, ok := asList(value)
	return ok
}

func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items, true
	case []Token:
		items := make([]any, len(v))
		for i, t := range v {
			items[i] = t
		}
		return items, true
	default:
		return nil, false
	}
}

func scalarText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case TextToken:
		return string(v)
	case PathToken:
		return v.Render(nil)
	case ProjectPath:
		return string(v)
	case BuildPath:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
