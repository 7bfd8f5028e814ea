package toolchain

import "github.com/vk/ninjaplan/internal/env"

var msvcHandlers = map[string]env.SourceHandler{
	".c":   {Tool: "cc", Language: "c", CommandVar: "objcmd", DepsStyle: "msvc"},
	".cpp": {Tool: "cxx", Language: "cxx", CommandVar: "objcmd", DepsStyle: "msvc"},
	".cxx": {Tool: "cxx", Language: "cxx", CommandVar: "objcmd", DepsStyle: "msvc"},
	".cc":  {Tool: "cxx", Language: "cxx", CommandVar: "objcmd", DepsStyle: "msvc"},
	// Resources compile with rc.exe and keep their own object suffix.
	".rc": {Tool: "rc", Language: "rc", CommandVar: "rescmd", ObjectSuffix: ".res"},
}

// MSVC is the Microsoft toolchain: cl.exe for compilation, lib.exe for
// static libraries, link.exe for linking, and rc.exe for resources.
// Header dependencies come from /showIncludes rather than a depfile.
type MSVC struct{}

// NewMSVC creates the msvc toolchain.
func NewMSVC() *MSVC { return &MSVC{} }

func (m *MSVC) Name() string { return "msvc" }

func (m *MSVC) Setup(e *env.Environment) {
	cc := e.AddTool("cc")
	cc.SetDefault("cmd", "cl.exe")
	cc.SetDefault("flags", []string{"/nologo"})
	cc.SetDefault("depflags", "/showIncludes")
	cc.SetDefault("objcmd", "$cc.cmd $cc.flags $extra_flags $defines $includes $cc.depflags /c /Fo$$out $$in")

	cxx := e.AddTool("cxx")
	cxx.SetDefault("cmd", "cl.exe")
	cxx.SetDefault("flags", []string{"/nologo", "/EHsc"})
	cxx.SetDefault("depflags", "/showIncludes")
	cxx.SetDefault("objcmd", "$cxx.cmd $cxx.flags $extra_flags $defines $includes $cxx.depflags /c /Fo$$out $$in")

	rc := e.AddTool("rc")
	rc.SetDefault("cmd", "rc.exe")
	rc.SetDefault("flags", []string{"/nologo"})
	rc.SetDefault("rescmd", "$rc.cmd $rc.flags $defines $includes /fo $$out $$in")

	lib := e.AddTool("lib")
	lib.SetDefault("cmd", "lib.exe")
	lib.SetDefault("flags", []string{"/nologo"})
	lib.SetDefault("libcmd", "$lib.cmd $lib.flags /OUT:$$out $$in")

	link := e.AddTool("link")
	link.SetDefault("cmd", "link.exe")
	link.SetDefault("flags", []string{"/nologo"})
	link.SetDefault("progcmd", "$link.cmd $link.flags $ldflags /OUT:$$out $$in $libdirs $libs")
	link.SetDefault("sharedcmd", "$link.cmd /DLL $link.flags $ldflags /OUT:$$out $$in $libdirs $libs")
}

func (m *MSVC) SourceHandler(suffix string) (env.SourceHandler, bool) {
	h, ok := msvcHandlers[suffix]
	return h, ok
}

func (m *MSVC) ObjectSuffix() string { return ".obj" }

func (m *MSVC) StaticLibraryName(base string) string { return base + ".lib" }

func (m *MSVC) SharedLibraryName(base string) string { return base + ".dll" }

func (m *MSVC) ProgramName(base string) string { return base + ".exe" }

func (m *MSVC) ArchiverTool() string { return "lib" }

func (m *MSVC) LinkerTool([]string) string { return "link" }

func (m *MSVC) CompileFlagsForKind(string) []string { return nil }

func (m *MSVC) SeparatedArgFlags() map[string]bool { return nil }

// Prefixes: libraries are named in full ("foo.lib"), so the lib prefix
// is empty.
func (m *MSVC) Prefixes() env.Prefixes {
	return env.Prefixes{Include: "/I", Define: "/D", LibDir: "/LIBPATH:"}
}
