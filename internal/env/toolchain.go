package env

// SourceHandler says how one source suffix turns into a build step: which
// tool runs, the tool variable holding its command template, and the
// executor-side dependency discovery settings.
type SourceHandler struct {
	Tool         string
	Language     string
	CommandVar   string
	ObjectSuffix string
	Depfile      string
	DepsStyle    string
}

// Prefixes are the flag prefixes a toolchain uses to render requirement
// lists into command-line arguments.
type Prefixes struct {
	Include string
	Define  string
	LibDir  string
	Lib     string
}

// Toolchain is the boundary interface a coordinated tool set implements.
// The core consumes it to know how sources map to commands and how outputs
// are named; it carries no compiler-specific knowledge itself.
type Toolchain interface {
	// Name identifies the toolchain ("gcc", "llvm", "msvc").
	Name() string
	// Setup adds the toolchain's ToolConfigs with default variables to an
	// environment. Existing settings are not overwritten.
	Setup(e *Environment)
	// SourceHandler maps a source suffix (".c") to its handler.
	SourceHandler(suffix string) (SourceHandler, bool)
	// ObjectSuffix is the default object-file suffix (".o", ".obj").
	ObjectSuffix() string
	// StaticLibraryName, SharedLibraryName, and ProgramName produce the
	// platform-and-toolchain default file name for a target base name.
	StaticLibraryName(base string) string
	SharedLibraryName(base string) string
	ProgramName(base string) string
	// ArchiverTool names the tool that builds static libraries.
	ArchiverTool() string
	// LinkerTool names the tool that links the given source languages.
	LinkerTool(languages []string) string
	// CompileFlagsForKind returns extra compile flags a target kind needs
	// (e.g. -fPIC for shared libraries).
	CompileFlagsForKind(kind string) []string
	// SeparatedArgFlags is the set of flags whose argument is the next
	// token, so deduplication keeps flag/argument pairs intact.
	SeparatedArgFlags() map[string]bool
	// Prefixes returns the flag prefixes for includes, defines, library
	// directories, and libraries.
	Prefixes() Prefixes
}
