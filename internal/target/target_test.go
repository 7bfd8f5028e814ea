package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/ninjaplan/internal/origin"
)

func newTarget(name string, kind Kind) *Target {
	return New(name, kind, nil, origin.Origin{})
}

func TestRequirementsMerge(t *testing.T) {
	a := Requirements{
		IncludeDirs: []string{"inc_a"},
		Defines:     []string{"A"},
	}
	b := Requirements{
		IncludeDirs: []string{"inc_b", "inc_a"},
		Defines:     []string{"B"},
	}

	a.Merge(b, nil)
	assert.Equal(t, []string{"inc_a", "inc_b"}, a.IncludeDirs)
	assert.Equal(t, []string{"A", "B"}, a.Defines)
}

func TestRequirementsMergeSeparatedPairs(t *testing.T) {
	separated := map[string]bool{"-F": true}
	a := Requirements{LinkFlags: []string{"-F", "a"}}
	b := Requirements{LinkFlags: []string{"-F", "b", "-F", "a"}}

	a.Merge(b, separated)
	assert.Equal(t, []string{"-F", "a", "-F", "b"}, a.LinkFlags)
}

func TestCompileHashStableAndFlagSensitive(t *testing.T) {
	a := Requirements{IncludeDirs: []string{"inc"}, CompileFlags: []string{"-O2"}}
	b := Requirements{IncludeDirs: []string{"inc"}, CompileFlags: []string{"-O2"}}
	c := Requirements{IncludeDirs: []string{"inc"}, CompileFlags: []string{"-O0"}}

	assert.Equal(t, a.CompileHash(), b.CompileHash())
	assert.NotEqual(t, a.CompileHash(), c.CompileHash())

	// Link flags do not affect compilation.
	d := a.Clone()
	d.LinkFlags = []string{"-static"}
	assert.Equal(t, a.CompileHash(), d.CompileHash())
}

func TestEffectiveTransitivePublicIncludes(t *testing.T) {
	c := newTarget("c", StaticLibrary)
	c.Public.IncludeDirs = []string{"inc_c"}

	b := newTarget("b", StaticLibrary)
	b.Link(c)

	a := newTarget("a", Program)
	a.Link(b)

	eff := Effective(a, nil)
	assert.Equal(t, []string{"inc_c"}, eff.IncludeDirs)
}

func TestEffectiveDiamondMergesOnce(t *testing.T) {
	c := newTarget("c", StaticLibrary)
	c.Public.IncludeDirs = []string{"inc_c"}

	b := newTarget("b", StaticLibrary)
	b.Link(c)
	d := newTarget("d", StaticLibrary)
	d.Link(c)

	a := newTarget("a", Program)
	a.Link(b, d)

	eff := Effective(a, nil)
	assert.Equal(t, []string{"inc_c"}, eff.IncludeDirs)
}

func TestEffectivePrivateLinkDoesNotLeak(t *testing.T) {
	l := newTarget("l", StaticLibrary)
	l.Public.Defines = []string{"FROM_L"}

	mid := newTarget("mid", StaticLibrary)
	mid.LinkPrivate(l)

	app := newTarget("app", Program)
	app.Link(mid)

	// mid itself sees l's public requirements...
	midEff := Effective(mid, nil)
	assert.Contains(t, midEff.Defines, "FROM_L")

	// ...but its dependents do not.
	appEff := Effective(app, nil)
	assert.NotContains(t, appEff.Defines, "FROM_L")
}

func TestEffectiveIncludesOwnPublicAndPrivate(t *testing.T) {
	tgt := newTarget("lib", StaticLibrary)
	tgt.Public.IncludeDirs = []string{"include"}
	tgt.Private.Defines = []string{"BUILDING_LIB"}

	eff := Effective(tgt, nil)
	assert.Equal(t, []string{"include"}, eff.IncludeDirs)
	assert.Equal(t, []string{"BUILDING_LIB"}, eff.Defines)
}

func TestNodesFailLoudlyBeforeResolution(t *testing.T) {
	tgt := newTarget("lib", StaticLibrary)

	_, err := tgt.OutputNodes()
	var notResolved *NotResolvedError
	require.ErrorAs(t, err, &notResolved)
	assert.Equal(t, "lib", notResolved.Name)

	_, err = tgt.ObjectNodes()
	require.Error(t, err)

	tgt.MarkResolved()
	_, err = tgt.OutputNodes()
	assert.NoError(t, err)
}

func TestLinkIsIdempotent(t *testing.T) {
	dep := newTarget("dep", StaticLibrary)
	app := newTarget("app", Program)

	app.Link(dep)
	app.Link(dep)
	assert.Len(t, app.Links(), 1)
}

func TestTransitiveDepsOrder(t *testing.T) {
	c := newTarget("c", StaticLibrary)
	b := newTarget("b", StaticLibrary)
	b.Link(c)
	a := newTarget("a", Program)
	a.Link(b)

	deps := a.TransitiveDeps()
	require.Len(t, deps, 2)
	// Dependencies come before their dependents.
	assert.Equal(t, "c", deps[0].Name)
	assert.Equal(t, "b", deps[1].Name)
}
