package subst

import (
	"runtime"
	"strings"
)

// Shell names accepted by ShellCommand.
const (
	ShellAuto  = "auto"
	ShellBash  = "bash"
	ShellCmd   = "cmd"
	ShellNinja = "ninja"
)

// ShellCommand renders tokens into one command string with quoting
// appropriate for the target shell. Ninja output is never quoted here:
// the ninja generator escapes per its own syntax, and $in/$out must
// survive as ninja variables.
func ShellCommand(tokens []Token, shell string) string {
	if shell == ShellAuto {
		if runtime.GOOS == "windows" {
			shell = ShellCmd
		} else {
			shell = ShellBash
		}
	}
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = quoteForShell(tok.Render(nil), shell)
	}
	return strings.Join(parts, " ")
}

func quoteForShell(s, shell string) string {
	if s == "" {
		switch shell {
		case ShellCmd:
			return `""`
		case ShellNinja:
			return ""
		default:
			return "''"
		}
	}

	switch shell {
	case ShellNinja:
		return s

	case ShellBash:
		if !strings.ContainsAny(s, " \t\n\"'\\$`!*?[](){}|&;<>") {
			return s
		}
		if !strings.Contains(s, "'") {
			return "'" + s + "'"
		}
		escaped := strings.NewReplacer(
			`\`, `\\`,
			`"`, `\"`,
			`$`, `\$`,
			"`", "\\`",
		).Replace(s)
		return `"` + escaped + `"`

	case ShellCmd:
		if !strings.ContainsAny(s, " \t\"^&|<>()%!") {
			return s
		}
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}

	if strings.Contains(s, " ") {
		return `"` + s + `"`
	}
	return s
}

// EscapeDollars doubles dollar signs so literal text survives expansion.
func EscapeDollars(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
