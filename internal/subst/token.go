package subst

// PathKind says what a path inside a token is relative to, so a generator
// can rewrite it for the build-file location without parsing flag prefixes.
type PathKind string

const (
	// ProjectRelative paths are relative to the project root.
	ProjectRelative PathKind = "project"
	// BuildRelative paths are relative to the build output directory.
	BuildRelative PathKind = "build"
	// AbsolutePath paths are emitted unchanged.
	AbsolutePath PathKind = "absolute"
)

// Relativizer rewrites a path of the given kind for the target build-file
// syntax. The identity function keeps paths as declared.
type Relativizer func(path string, kind PathKind) string

// Token is a single command-line token produced by expansion. Tokens stay
// discrete (never pre-joined) so generators can escape and relativize each
// one independently.
type Token interface {
	// Render produces the final token text. rel may be nil, in which case
	// paths are kept as declared.
	Render(rel Relativizer) string
}

// TextToken is a plain literal token.
type TextToken string

func (t TextToken) Render(Relativizer) string { return string(t) }

// PathToken is a token of the form prefix+path ("-Isrc/include") whose path
// part still needs generator-specific relativization.
type PathToken struct {
	Prefix string
	Path   string
	Kind   PathKind
}

func (t PathToken) Render(rel Relativizer) string {
	if rel == nil {
		return t.Prefix + t.Path
	}
	return t.Prefix + rel(t.Path, t.Kind)
}

// ProjectPath marks a namespace value as a path relative to the project
// root. ${prefix(...)} turns it into a PathToken with ProjectRelative kind.
type ProjectPath string

// BuildPath marks a namespace value as a path relative to the build output
// directory. ${prefix(...)} turns it into a PathToken with BuildRelative kind.
type BuildPath string

// RenderAll renders every token with the given relativizer.
func RenderAll(tokens []Token, rel Relativizer) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Render(rel)
	}
	return out
}
