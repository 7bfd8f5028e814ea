package env

// ToolConfig is the variable namespace for one tool (a compiler, linker,
// archiver). Values are scalars or ordered string lists. Access goes through
// an explicit key/value map: well-known variables get typed accessors, and
// anything tool-specific uses the generic Get/Set.
type ToolConfig struct {
	name  string
	vars  map[string]any
	order []string
}

// Well-known tool variable names.
const (
	VarCommand  = "cmd"
	VarFlags    = "flags"
	VarDefines  = "defines"
	VarIncludes = "includes"
)

// NewToolConfig returns an empty namespace for the named tool.
func NewToolConfig(name string) *ToolConfig {
	return &ToolConfig{name: name, vars: make(map[string]any)}
}

// Name returns the tool name ("cc", "link", ...).
func (t *ToolConfig) Name() string { return t.name }

// Set stores a variable value (string or []string).
func (t *ToolConfig) Set(key string, value any) {
	if _, exists := t.vars[key]; !exists {
		t.order = append(t.order, key)
	}
	t.vars[key] = value
}

// SetDefault stores a value only when the key is not yet set.
func (t *ToolConfig) SetDefault(key string, value any) {
	if _, exists := t.vars[key]; !exists {
		t.Set(key, value)
	}
}

// Get returns a variable value.
func (t *ToolConfig) Get(key string) (any, bool) {
	v, ok := t.vars[key]
	return v, ok
}

// GetString returns a scalar variable, or "" when unset or not a string.
func (t *ToolConfig) GetString(key string) string {
	if s, ok := t.vars[key].(string); ok {
		return s
	}
	return ""
}

// GetList returns a list variable. A scalar value is returned as a
// one-element list; unset keys return nil.
func (t *ToolConfig) GetList(key string) []string {
	switch v := t.vars[key].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	default:
		return nil
	}
}

// Append extends a list variable, creating it when absent.
func (t *ToolConfig) Append(key string, values ...string) {
	t.Set(key, append(t.GetList(key), values...))
}

// Command returns the tool's executable ($tool.cmd).
func (t *ToolConfig) Command() string { return t.GetString(VarCommand) }

// SetCommand sets the tool's executable.
func (t *ToolConfig) SetCommand(cmd string) { t.Set(VarCommand, cmd) }

// Flags returns the tool's flag list ($tool.flags).
func (t *ToolConfig) Flags() []string { return t.GetList(VarFlags) }

// AddFlags appends to the tool's flag list.
func (t *ToolConfig) AddFlags(flags ...string) { t.Append(VarFlags, flags...) }

// Includes returns the tool's include directory list ($tool.includes).
func (t *ToolConfig) Includes() []string { return t.GetList(VarIncludes) }

// Defines returns the tool's preprocessor define list ($tool.defines).
func (t *ToolConfig) Defines() []string { return t.GetList(VarDefines) }

// Keys returns the configured variable names in first-set order.
func (t *ToolConfig) Keys() []string {
	return append([]string(nil), t.order...)
}

// Clone returns a deep copy: list values are copied, so mutating the clone
// never leaks into the original.
func (t *ToolConfig) Clone() *ToolConfig {
	c := NewToolConfig(t.name)
	for _, key := range t.order {
		switch v := t.vars[key].(type) {
		case []string:
			c.Set(key, append([]string(nil), v...))
		default:
			c.Set(key, v)
		}
	}
	return c
}

// namespaceData exposes the variables for substitution.
func (t *ToolConfig) namespaceData() map[string]any {
	data := make(map[string]any, len(t.vars))
	for k, v := range t.vars {
		data[k] = v
	}
	return data
}
