package target

// Effective computes the merged requirement set used to build a target's
// own sources: its private and public requirements plus the public
// requirements of every dependency reachable over public links. A private
// link contributes its target's public requirements here, but traversal
// does not continue past it when it appears deeper in the graph, and
// nothing of it is offered to this target's dependents.
//
// Diamond dependencies are merged once; the visit order follows link
// declaration order, so the result is stable across runs.
func Effective(t *Target, separated map[string]bool) Requirements {
	result := t.Private.Clone()
	result.Merge(t.Public, separated)

	visited := map[string]bool{}
	var collect func(dep *Target)
	collect = func(dep *Target) {
		if visited[dep.Name] {
			return
		}
		visited[dep.Name] = true
		result.Merge(dep.Public, separated)
		for _, l := range dep.Links() {
			if l.Private {
				// The dependency consumed this privately; its dependents
				// (including us) never see it.
				continue
			}
			collect(l.Target)
		}
	}
	for _, l := range t.Links() {
		collect(l.Target)
	}
	return result
}
