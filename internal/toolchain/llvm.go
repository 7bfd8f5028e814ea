package toolchain

import (
	"runtime"

	"github.com/vk/ninjaplan/internal/env"
)

// LLVM is the clang toolchain. It shares the gnu command-line surface
// with gcc but drives clang, clang++, and llvm-ar.
type LLVM struct {
	goos string
}

// NewLLVM creates the llvm toolchain for the host platform.
func NewLLVM() *LLVM { return &LLVM{goos: runtime.GOOS} }

func (l *LLVM) Name() string { return "llvm" }

func (l *LLVM) Setup(e *env.Environment) {
	setupGnuTools(e, "clang", "clang++", "llvm-ar")
}

func (l *LLVM) SourceHandler(suffix string) (env.SourceHandler, bool) {
	h, ok := gnuHandlers[suffix]
	return h, ok
}

func (l *LLVM) ObjectSuffix() string { return ".o" }

func (l *LLVM) StaticLibraryName(base string) string { return "lib" + base + ".a" }

func (l *LLVM) SharedLibraryName(base string) string {
	switch l.goos {
	case "darwin":
		return "lib" + base + ".dylib"
	case "windows":
		return base + ".dll"
	}
	return "lib" + base + ".so"
}

func (l *LLVM) ProgramName(base string) string {
	if l.goos == "windows" {
		return base + ".exe"
	}
	return base
}

func (l *LLVM) ArchiverTool() string { return "ar" }

func (l *LLVM) LinkerTool([]string) string { return "link" }

func (l *LLVM) CompileFlagsForKind(kind string) []string {
	if kind == "shared_library" && l.goos != "windows" {
		return []string{"-fPIC"}
	}
	return nil
}

func (l *LLVM) SeparatedArgFlags() map[string]bool { return gnuSeparated }

func (l *LLVM) Prefixes() env.Prefixes {
	return env.Prefixes{Include: "-I", Define: "-D", LibDir: "-L", Lib: "-l"}
}
