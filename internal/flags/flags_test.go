package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicate(t *testing.T) {
	separated := map[string]bool{"-F": true, "-framework": true}

	testCases := []struct {
		name     string
		in       []string
		expected []string
	}{
		{
			name:     "simple flags",
			in:       []string{"-O2", "-Wall", "-O2"},
			expected: []string{"-O2", "-Wall"},
		},
		{
			name:     "attached arguments are whole tokens",
			in:       []string{"-DFOO", "-DBAR", "-DFOO"},
			expected: []string{"-DFOO", "-DBAR"},
		},
		{
			name:     "separated pairs stay pairs",
			in:       []string{"-F", "a", "-F", "b", "-F", "a"},
			expected: []string{"-F", "a", "-F", "b"},
		},
		{
			name:     "framework pairs",
			in:       []string{"-framework", "Foundation", "-framework", "Foundation"},
			expected: []string{"-framework", "Foundation"},
		},
		{
			name:     "order preserved first seen wins",
			in:       []string{"-g", "-O2", "-g", "-Wall"},
			expected: []string{"-g", "-O2", "-Wall"},
		},
		{
			name:     "empty input",
			in:       nil,
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Deduplicate(tc.in, separated))
		})
	}
}

func TestDeduplicateNilSeparatedSet(t *testing.T) {
	got := Deduplicate([]string{"-I", "a", "-I", "b"}, nil)
	// Without a separated set, "-I" is treated as an ordinary token.
	assert.Equal(t, []string{"-I", "a", "b"}, got)
}
