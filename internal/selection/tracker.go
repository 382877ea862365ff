package selection

// Decision is the tracker's verdict for a type reached during traversal.
type Decision int

const (
	// Proceed expands the type normally.
	Proceed Decision = iota
	// SkipWithMark keeps the field bare with a circular-reference comment.
	SkipWithMark
	// OmitSilently drops the field.
	OmitSilently
	// BoundedReenter expands the type again, selecting leaf fields only.
	BoundedReenter
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case SkipWithMark:
		return "skip"
	case OmitSilently:
		return "omit"
	case BoundedReenter:
		return "reenter"
	}
	return "unknown"
}

// visitedSet is an immutable set of type names linked towards the root of
// the traversal. with never modifies the receiver, so sibling branches that
// share a parent never see each other's entries.
type visitedSet struct {
	name   string
	parent *visitedSet
}

func (v *visitedSet) has(name string) bool {
	for n := v; n != nil; n = n.parent {
		if n.name == name {
			return true
		}
	}
	return false
}

func (v *visitedSet) with(name string) *visitedSet {
	return &visitedSet{name: name, parent: v}
}

// path is the per-branch traversal state. It is passed by value.
type path struct {
	visited   *visitedSet
	depth     int
	fieldPath string
}

func (p path) descend(field string) path {
	fp := field
	if p.fieldPath != "" {
		fp = p.fieldPath + "." + field
	}
	return path{
		visited:   p.visited,
		depth:     p.depth + 1,
		fieldPath: fp,
	}
}

func (p path) enter(typeName string) path {
	p.visited = p.visited.with(typeName)
	return p
}

type tracker struct {
	mode      CircularMode
	budget    int
	overrides map[string]int
}

func newTracker(o Options) tracker {
	return tracker{mode: o.CircularRefs, budget: o.CircularRefDepth, overrides: o.CircularRefTypes}
}

// reentryBudget returns the deepest level at which typeName may be re-entered:
// the per-type override when present, otherwise the global budget.
func (t tracker) reentryBudget(typeName string) int {
	if n, ok := t.overrides[typeName]; ok {
		return n
	}
	return t.budget
}

func (t tracker) decide(p path, typeName string) Decision {
	if !p.visited.has(typeName) {
		return Proceed
	}
	switch t.mode {
	case CircularSilent:
		return OmitSilently
	case CircularAllow:
		if p.depth <= t.reentryBudget(typeName) {
			return BoundedReenter
		}
	}
	return SkipWithMark
}
