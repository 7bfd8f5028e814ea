package subst

import (
	"regexp"
	"strconv"
)

var (
	argSplit    = regexp.MustCompile(`,\s*`)
	dottedName  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)
	simpleName  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// callFunction evaluates a ${func(args)} call. Functions operate on list
// values and always yield a token list so each element stays escapable.
func callFunction(name, rawArgs string, ns *Namespace, chain []string) ([]Token, error) {
	var args []string
	for _, a := range argSplit.Split(rawArgs, -1) {
		if a != "" {
			args = append(args, a)
		}
	}

	need := func(n int) error {
		if len(args) != n {
			return &FunctionError{Function: name, Reason: "requires " + strconv.Itoa(n) + " args, got " + strconv.Itoa(len(args))}
		}
		return nil
	}

	switch name {
	case "prefix":
		if err := need(2); err != nil {
			return nil, err
		}
		prefix, err := resolveScalarArg(args[0], ns, chain)
		if err != nil {
			return nil, err
		}
		items, err := resolveListArg(args[1], ns, chain)
		if err != nil {
			return nil, err
		}
		out := make([]Token, 0, len(items))
		for _, item := range items {
			switch v := item.(type) {
			case ProjectPath:
				out = append(out, PathToken{Prefix: prefix, Path: string(v), Kind: ProjectRelative})
			case BuildPath:
				out = append(out, PathToken{Prefix: prefix, Path: string(v), Kind: BuildRelative})
			case PathToken:
				out = append(out, PathToken{Prefix: prefix + v.Prefix, Path: v.Path, Kind: v.Kind})
			default:
				out = append(out, TextToken(prefix+scalarText(item)))
			}
		}
		return out, nil

	case "suffix":
		if err := need(2); err != nil {
			return nil, err
		}
		items, err := resolveListArg(args[0], ns, chain)
		if err != nil {
			return nil, err
		}
		suffix, err := resolveScalarArg(args[1], ns, chain)
		if err != nil {
			return nil, err
		}
		out := make([]Token, 0, len(items))
		for _, item := range items {
			out = append(out, TextToken(scalarText(item)+suffix))
		}
		return out, nil

	case "wrap":
		if err := need(3); err != nil {
			return nil, err
		}
		prefix, err := resolveScalarArg(args[0], ns, chain)
		if err != nil {
			return nil, err
		}
		items, err := resolveListArg(args[1], ns, chain)
		if err != nil {
			return nil, err
		}
		suffix, err := resolveScalarArg(args[2], ns, chain)
		if err != nil {
			return nil, err
		}
		out := make([]Token, 0, len(items))
		for _, item := range items {
			out = append(out, TextToken(prefix+scalarText(item)+suffix))
		}
		return out, nil

	case "join":
		if err := need(2); err != nil {
			return nil, err
		}
		sep, err := resolveScalarArg(args[0], ns, chain)
		if err != nil {
			return nil, err
		}
		items, err := resolveListArg(args[1], ns, chain)
		if err != nil {
			return nil, err
		}
		joined := ""
		for i, item := range items {
			if i > 0 {
				joined += sep
			}
			joined += scalarText(item)
		}
		return []Token{TextToken(joined)}, nil

	case "pairwise":
		// pairwise(-framework, $link.frameworks) -> -framework A -framework B.
		// Keeps flag/argument pairs discrete so deduplication treats them as units.
		if err := need(2); err != nil {
			return nil, err
		}
		prefix, err := resolveScalarArg(args[0], ns, chain)
		if err != nil {
			return nil, err
		}
		items, err := resolveListArg(args[1], ns, chain)
		if err != nil {
			return nil, err
		}
		out := make([]Token, 0, 2*len(items))
		for _, item := range items {
			out = append(out, TextToken(prefix), TextToken(scalarText(item)))
		}
		return out, nil

	default:
		return nil, &FunctionError{Function: name, Reason: "unknown function"}
	}
}

// resolveArg interprets a function argument as a variable reference when it
// looks like one, otherwise as a literal.
func resolveArg(arg string, ns *Namespace, chain []string) (any, error) {
	if len(arg) > 3 && arg[0] == '$' && arg[1] == '{' && arg[len(arg)-1] == '}' {
		return lookupVar(arg[2:len(arg)-1], ns, chain)
	}
	if len(arg) > 1 && arg[0] == '$' {
		return lookupVar(arg[1:], ns, chain)
	}
	// A dotted bare name is always a reference; a simple name is a
	// reference only when it resolves.
	if dottedName.MatchString(arg) && splitKeyHasDot(arg) {
		return lookupVar(arg, ns, chain)
	}
	if simpleName.MatchString(arg) {
		if v, ok := ns.Lookup(arg); ok {
			return v, nil
		}
	}
	return arg, nil
}

func resolveScalarArg(arg string, ns *Namespace, chain []string) (string, error) {
	v, err := resolveArg(arg, ns, chain)
	if err != nil {
		return "", err
	}
	return scalarText(v), nil
}

func resolveListArg(arg string, ns *Namespace, chain []string) ([]any, error) {
	v, err := resolveArg(arg, ns, chain)
	if err != nil {
		return nil, err
	}
	if items, ok := asList(v); ok {
		return items, nil
	}
	return []any{v}, nil
}

func splitKeyHasDot(s string) bool {
	_, _, nested := splitKey(s)
	return nested
}
