// Package toolchain provides the built-in toolchains: gcc, llvm, and
// msvc. A toolchain seeds an environment's tool configurations with
// default commands and templates and answers the resolver's questions
// about source handling and output naming. Defaults never overwrite
// values the build description already set.
package toolchain

import (
	"runtime"

	"github.com/vk/ninjaplan/internal/env"
)

// gnuHandlers maps source suffixes for gcc-flavored toolchains.
var gnuHandlers = map[string]env.SourceHandler{
	".c":   {Tool: "cc", Language: "c", CommandVar: "objcmd", Depfile: "$out.d", DepsStyle: "gcc"},
	".m":   {Tool: "cc", Language: "objc", CommandVar: "objcmd", Depfile: "$out.d", DepsStyle: "gcc"},
	".cpp": {Tool: "cxx", Language: "cxx", CommandVar: "objcmd", Depfile: "$out.d", DepsStyle: "gcc"},
	".cxx": {Tool: "cxx", Language: "cxx", CommandVar: "objcmd", Depfile: "$out.d", DepsStyle: "gcc"},
	".cc":  {Tool: "cxx", Language: "cxx", CommandVar: "objcmd", Depfile: "$out.d", DepsStyle: "gcc"},
	".c++": {Tool: "cxx", Language: "cxx", CommandVar: "objcmd", Depfile: "$out.d", DepsStyle: "gcc"},
	".C":   {Tool: "cxx", Language: "cxx", CommandVar: "objcmd", Depfile: "$out.d", DepsStyle: "gcc"},
	".mm":  {Tool: "cxx", Language: "objcxx", CommandVar: "objcmd", Depfile: "$out.d", DepsStyle: "gcc"},
}

// gnuSeparated are gcc/clang flags that take their argument as the next
// token.
var gnuSeparated = map[string]bool{
	"-framework": true,
	"-arch":      true,
	"-isystem":   true,
	"-include":   true,
	"-Xlinker":   true,
	"-Xclang":    true,
}

// GCC is the GNU compiler toolchain: gcc, g++, ar, and gcc as the link
// driver.
type GCC struct {
	goos string
}

// NewGCC creates the gcc toolchain for the host platform.
func NewGCC() *GCC { return &GCC{goos: runtime.GOOS} }

func (g *GCC) Name() string { return "gcc" }

func (g *GCC) Setup(e *env.Environment) {
	setupGnuTools(e, "gcc", "g++", "ar")
}

// setupGnuTools seeds the four standard tools shared by the gcc and llvm
// toolchains.
func setupGnuTools(e *env.Environment, ccCmd, cxxCmd, arCmd string) {
	cc := e.AddTool("cc")
	cc.SetDefault("cmd", ccCmd)
	cc.SetDefault("flags", []string{})
	cc.SetDefault("depflags", "-MD -MF $$out.d")
	cc.SetDefault("objcmd", "$cc.cmd $cc.flags $extra_flags $defines $includes $cc.depflags -c -o $$out $$in")

	cxx := e.AddTool("cxx")
	cxx.SetDefault("cmd", cxxCmd)
	cxx.SetDefault("flags", []string{})
	cxx.SetDefault("depflags", "-MD -MF $$out.d")
	cxx.SetDefault("objcmd", "$cxx.cmd $cxx.flags $extra_flags $defines $includes $cxx.depflags -c -o $$out $$in")

	ar := e.AddTool("ar")
	ar.SetDefault("cmd", arCmd)
	ar.SetDefault("flags", []string{"rcs"})
	ar.SetDefault("libcmd", "$ar.cmd $ar.flags $$out $$in")

	link := e.AddTool("link")
	link.SetDefault("cmd", ccCmd)
	link.SetDefault("flags", []string{})
	link.SetDefault("progcmd", "$link.cmd $link.flags $ldflags -o $$out $$in $libdirs $libs")
	link.SetDefault("sharedcmd", "$link.cmd -shared $link.flags $ldflags -o $$out $$in $libdirs $libs")
}

func (g *GCC) SourceHandler(suffix string) (env.SourceHandler, bool) {
	h, ok := gnuHandlers[suffix]
	return h, ok
}

func (g *GCC) ObjectSuffix() string { return ".o" }

func (g *GCC) StaticLibraryName(base string) string { return "lib" + base + ".a" }

func (g *GCC) SharedLibraryName(base string) string {
	switch g.goos {
	case "darwin":
		return "lib" + base + ".dylib"
	case "windows":
		return base + ".dll"
	}
	return "lib" + base + ".so"
}

func (g *GCC) ProgramName(base string) string {
	if g.goos == "windows" {
		return base + ".exe"
	}
	return base
}

func (g *GCC) ArchiverTool() string { return "ar" }

func (g *GCC) LinkerTool([]string) string { return "link" }

func (g *GCC) CompileFlagsForKind(kind string) []string {
	if kind == "shared_library" && g.goos != "windows" {
		return []string{"-fPIC"}
	}
	return nil
}

func (g *GCC) SeparatedArgFlags() map[string]bool { return gnuSeparated }

func (g *GCC) Prefixes() env.Prefixes {
	return env.Prefixes{Include: "-I", Define: "-D", LibDir: "-L", Lib: "-l"}
}
