// Package flags deduplicates compiler and linker flag lists while keeping
// flag/argument pairs intact. Flags like -F or -framework take their
// argument as the following token, so naive token deduplication would
// collapse "-F a -F b" into "-F a b".
package flags

// Deduplicate removes exact duplicates from a flag list, preserving
// first-seen order. separated names the flags whose argument arrives as the
// next token; such pairs are compared and kept as a unit. The set comes
// from the active toolchain; a nil set treats every token independently.
func Deduplicate(in []string, separated map[string]bool) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))

	for i := 0; i < len(in); i++ {
		tok := in[i]
		if separated[tok] && i+1 < len(in) {
			pair := tok + "\x00" + in[i+1]
			if !seen[pair] {
				seen[pair] = true
				out = append(out, tok, in[i+1])
			}
			i++
			continue
		}
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}
