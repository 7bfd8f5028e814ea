package toolchain

import "github.com/vk/ninjaplan/internal/env"

// ByName returns the named built-in toolchain.
func ByName(name string) (env.Toolchain, bool) {
	switch name {
	case "gcc":
		return NewGCC(), true
	case "llvm", "clang":
		return NewLLVM(), true
	case "msvc":
		return NewMSVC(), true
	}
	return nil, false
}

// Default returns the toolchain a platform uses when the build
// description names none.
func Default(goos string) env.Toolchain {
	switch goos {
	case "windows":
		return NewMSVC()
	case "darwin":
		return NewLLVM()
	}
	return NewGCC()
}
