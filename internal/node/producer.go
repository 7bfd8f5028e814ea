package node

import "github.com/vk/ninjaplan/internal/subst"

// Producer is the build step that creates a node: which environment and
// tool run, which template variable holds the command, and the per-build
// variable values computed from a target's effective requirements.
//
// A Producer is plain data rather than a closure so that rebinding an
// operation to a cloned environment is an explicit field update.
type Producer struct {
	// EnvName identifies the environment whose tool configuration renders
	// the command. Rules are emitted per environment, never shared.
	EnvName string
	// Tool is the tool namespace running this step ("cc", "link", "ar", ...).
	Tool string
	// CommandVar is the tool variable holding the command template
	// ("objcmd", "progcmd", ...).
	CommandVar string
	// Language of the step, for descriptions and linker selection.
	Language string
	// Sources are the primary inputs ($in).
	Sources []Node
	// OrderOnly are ordering-only prerequisites, e.g. an output directory
	// that must exist. Emitted distinctly from data dependencies.
	OrderOnly []Node
	// Depfile and DepsStyle configure header-dependency discovery in the
	// executor ("$out.d", "gcc" / "msvc"). Empty when not applicable.
	Depfile   string
	DepsStyle string
	// Vars are the per-build variable values (includes, defines,
	// extra_flags, ldflags, libdirs, libs) as discrete tokens, in a fixed
	// emission order given by VarOrder.
	Vars     map[string][]subst.Token
	VarOrder []string
	// Description is a short human line for the executor's status output.
	Description string
}

// SetVar records a per-build variable, keeping first-set order stable.
func (p *Producer) SetVar(name string, tokens []subst.Token) {
	if len(tokens) == 0 {
		return
	}
	if p.Vars == nil {
		p.Vars = make(map[string][]subst.Token)
	}
	if _, exists := p.Vars[name]; !exists {
		p.VarOrder = append(p.VarOrder, name)
	}
	p.Vars[name] = tokens
}
