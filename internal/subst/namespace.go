package subst

// Namespace is a layered variable scope for template expansion. Lookups walk
// dotted keys ("cc.flags" resolves "flags" inside the nested "cc" scope) and
// fall through to the parent when a key is absent. Values are strings, token
// slices ([]string or []Token), or nested *Namespace scopes.
type Namespace struct {
	data   map[string]any
	parent *Namespace
}

// NewNamespace builds a namespace over the given data. The map is copied so
// later mutation of the caller's map does not leak into expansions.
func NewNamespace(data map[string]any) *Namespace {
	d := make(map[string]any, len(data))
	for k, v := range data {
		d[k] = v
	}
	return &Namespace{data: d}
}

// Layer returns a child namespace whose entries shadow this one. The
// receiver is not modified; expansion against the child sees overrides
// first, then the base scope.
func (n *Namespace) Layer(overrides map[string]any) *Namespace {
	child := NewNamespace(overrides)
	child.parent = n
	return child
}

// Set stores a value under key. A dotted key creates the intermediate
// scope if it does not exist yet.
func (n *Namespace) Set(key string, value any) {
	head, rest, nested := splitKey(key)
	if !nested {
		n.data[key] = value
		return
	}
	sub, ok := n.data[head].(*Namespace)
	if !ok {
		sub = NewNamespace(nil)
		n.data[head] = sub
	}
	sub.Set(rest, value)
}

// Lookup resolves a possibly dotted key. The second result reports whether
// the key was found in this namespace or any parent.
func (n *Namespace) Lookup(key string) (any, bool) {
	if v, ok := n.resolve(key); ok {
		return v, true
	}
	if n.parent != nil {
		return n.parent.Lookup(key)
	}
	return nil, false
}

func (n *Namespace) resolve(key string) (any, bool) {
	head, rest, nested := splitKey(key)
	if !nested {
		v, ok := n.data[key]
		return v, ok
	}
	sub, ok := n.data[head]
	if !ok {
		return nil, false
	}
	switch s := sub.(type) {
	case *Namespace:
		return s.resolve(rest)
	case map[string]any:
		v, ok := s[rest]
		return v, ok
	default:
		return nil, false
	}
}

func splitKey(key string) (head, rest string, nested bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return key[:i], key[i+1:], true
		}
	}
	return key, "", false
}
