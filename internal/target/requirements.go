package target

import (
	"hash/fnv"
	"strconv"

	"github.com/vk/ninjaplan/internal/flags"
)

// Requirements is the value type for usage requirements: what consumers of
// a target need in order to compile against it and link it. Lists are
// ordered and duplicate-free; merging preserves first-seen order and is
// associative, so resolving the same graph twice yields identical lists.
type Requirements struct {
	IncludeDirs  []string
	Defines      []string
	CompileFlags []string
	LinkFlags    []string
	LinkLibs     []string
	LibDirs      []string
}

// Clone returns an independent copy.
func (r Requirements) Clone() Requirements {
	return Requirements{
		IncludeDirs:  append([]string(nil), r.IncludeDirs...),
		Defines:      append([]string(nil), r.Defines...),
		CompileFlags: append([]string(nil), r.CompileFlags...),
		LinkFlags:    append([]string(nil), r.LinkFlags...),
		LinkLibs:     append([]string(nil), r.LinkLibs...),
		LibDirs:      append([]string(nil), r.LibDirs...),
	}
}

// Merge folds other into r, dropping exact duplicates while keeping
// first-seen order. separated names flags whose argument is the following
// token, so flag/argument pairs in the flag lists are treated as units;
// nil is fine when no toolchain is in play.
func (r *Requirements) Merge(other Requirements, separated map[string]bool) {
	r.IncludeDirs = mergeUnique(r.IncludeDirs, other.IncludeDirs)
	r.Defines = mergeUnique(r.Defines, other.Defines)
	r.CompileFlags = flags.Deduplicate(append(r.CompileFlags, other.CompileFlags...), separated)
	r.LinkFlags = flags.Deduplicate(append(r.LinkFlags, other.LinkFlags...), separated)
	r.LinkLibs = mergeUnique(r.LinkLibs, other.LinkLibs)
	r.LibDirs = mergeUnique(r.LibDirs, other.LibDirs)
}

// CompileHash fingerprints the compile-affecting part of the requirements.
// The resolver keys its object-node cache on (source path, this hash) so a
// source compiled identically by several targets shares one object node.
func (r Requirements) CompileHash() string {
	h := fnv.New64a()
	write := func(field string, items []string) {
		h.Write([]byte(field))
		h.Write([]byte{0})
		for _, it := range items {
			h.Write([]byte(it))
			h.Write([]byte{0})
		}
	}
	write("inc", r.IncludeDirs)
	write("def", r.Defines)
	write("cfl", r.CompileFlags)
	return strconv.FormatUint(h.Sum64(), 16)
}

func mergeUnique(dst, src []string) []string {
	seen := make(map[string]bool, len(dst)+len(src))
	out := make([]string, 0, len(dst)+len(src))
	for _, s := range dst {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range src {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
