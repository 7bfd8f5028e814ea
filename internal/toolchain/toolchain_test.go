package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/ninjaplan/internal/env"
	"github.com/vk/ninjaplan/internal/origin"
)

func TestGCCSourceHandlers(t *testing.T) {
	tc := NewGCC()

	tests := []struct {
		suffix   string
		tool     string
		language string
	}{
		{".c", "cc", "c"},
		{".cpp", "cxx", "cxx"},
		{".cc", "cxx", "cxx"},
		{".C", "cxx", "cxx"},
		{".m", "cc", "objc"},
		{".mm", "cxx", "objcxx"},
	}
	for _, tt := range tests {
		t.Run(tt.suffix, func(t *testing.T) {
			h, ok := tc.SourceHandler(tt.suffix)
			require.True(t, ok)
			assert.Equal(t, tt.tool, h.Tool)
			assert.Equal(t, tt.language, h.Language)
			assert.Equal(t, "objcmd", h.CommandVar)
			assert.Equal(t, "gcc", h.DepsStyle)
		})
	}

	_, ok := tc.SourceHandler(".rs")
	assert.False(t, ok)
}

func TestGCCSetupSeedsTools(t *testing.T) {
	e := env.New("base", NewGCC(), nil, origin.Origin{})

	for _, tool := range []string{"cc", "cxx", "ar", "link"} {
		assert.True(t, e.HasTool(tool), tool)
	}
	assert.Equal(t, "gcc", e.Tool("cc").Command())
	assert.Equal(t, "g++", e.Tool("cxx").Command())

	cmd, err := e.Subst("${cc.objcmd}", map[string]any{
		"extra_flags": "$$extra_flags",
		"defines":     "$$defines",
		"includes":    "$$includes",
	})
	require.NoError(t, err)
	assert.Equal(t, "gcc $extra_flags $defines $includes -MD -MF $out.d -c -o $out $in", cmd)
}

func TestSetupKeepsExistingSettings(t *testing.T) {
	e := env.New("base", NewGCC(), nil, origin.Origin{})
	e.Tool("cc").SetCommand("gcc-13")

	// Re-running setup must not clobber the explicit command.
	NewGCC().Setup(e)
	assert.Equal(t, "gcc-13", e.Tool("cc").Command())
}

func TestGCCNaming(t *testing.T) {
	tc := &GCC{goos: "linux"}
	assert.Equal(t, "libm.a", tc.StaticLibraryName("m"))
	assert.Equal(t, "libm.so", tc.SharedLibraryName("m"))
	assert.Equal(t, "app", tc.ProgramName("app"))

	mac := &GCC{goos: "darwin"}
	assert.Equal(t, "libm.dylib", mac.SharedLibraryName("m"))

	win := &GCC{goos: "windows"}
	assert.Equal(t, "app.exe", win.ProgramName("app"))
	assert.Equal(t, "m.dll", win.SharedLibraryName("m"))
}

func TestGCCSharedLibraryCompileFlags(t *testing.T) {
	tc := &GCC{goos: "linux"}
	assert.Equal(t, []string{"-fPIC"}, tc.CompileFlagsForKind("shared_library"))
	assert.Empty(t, tc.CompileFlagsForKind("program"))

	win := &GCC{goos: "windows"}
	assert.Empty(t, win.CompileFlagsForKind("shared_library"))
}

func TestLLVMUsesClang(t *testing.T) {
	e := env.New("base", NewLLVM(), nil, origin.Origin{})
	assert.Equal(t, "clang", e.Tool("cc").Command())
	assert.Equal(t, "clang++", e.Tool("cxx").Command())
	assert.Equal(t, "llvm-ar", e.Tool("ar").Command())
}

func TestMSVC(t *testing.T) {
	tc := NewMSVC()

	h, ok := tc.SourceHandler(".c")
	require.True(t, ok)
	assert.Equal(t, "msvc", h.DepsStyle)
	assert.Empty(t, h.Depfile)

	res, ok := tc.SourceHandler(".rc")
	require.True(t, ok)
	assert.Equal(t, "rc", res.Tool)
	assert.Equal(t, ".res", res.ObjectSuffix)

	assert.Equal(t, ".obj", tc.ObjectSuffix())
	assert.Equal(t, "m.lib", tc.StaticLibraryName("m"))
	assert.Equal(t, "m.dll", tc.SharedLibraryName("m"))
	assert.Equal(t, "app.exe", tc.ProgramName("app"))
	assert.Equal(t, "lib", tc.ArchiverTool())

	px := tc.Prefixes()
	assert.Equal(t, "/I", px.Include)
	assert.Equal(t, "/LIBPATH:", px.LibDir)
	assert.Empty(t, px.Lib)
}

func TestByName(t *testing.T) {
	for _, name := range []string{"gcc", "llvm", "clang", "msvc"} {
		tc, ok := ByName(name)
		require.True(t, ok, name)
		assert.NotNil(t, tc)
	}
	_, ok := ByName("tcl")
	assert.False(t, ok)
}

func TestDefaultPerPlatform(t *testing.T) {
	assert.Equal(t, "gcc", Default("linux").Name())
	assert.Equal(t, "llvm", Default("darwin").Name())
	assert.Equal(t, "msvc", Default("windows").Name())
}
