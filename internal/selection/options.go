package selection

// CircularMode selects how a type that is already being expanded on the
// current branch is handled when it shows up again.
type CircularMode string

const (
	// CircularSkip keeps the field and marks it with a comment.
	CircularSkip CircularMode = "skip"
	// CircularSilent drops the field from the selection.
	CircularSilent CircularMode = "silent"
	// CircularAllow re-enters the type once more with a leaf-only selection.
	CircularAllow CircularMode = "allow"
)

// Valid reports whether m is a known mode.
func (m CircularMode) Valid() bool {
	switch m {
	case CircularSkip, CircularSilent, CircularAllow:
		return true
	}
	return false
}

// Options bounds a generation pass. It is read-only once a Synthesizer has
// been built from it.
type Options struct {
	// MaxDepth is the number of nested selection levels, at least 1.
	MaxDepth int
	// MaxFields caps the fields selected per type, at least 1.
	MaxFields int
	// CircularRefs is the cycle handling mode.
	CircularRefs CircularMode
	// CircularRefDepth is the deepest field level at which allow mode may
	// re-enter a type already on the branch. Cycles closing deeper are
	// skipped with a mark.
	CircularRefDepth int
	// CircularRefTypes overrides CircularRefDepth for specific type names.
	CircularRefTypes map[string]int
	// ExcludeTypes lists type names whose fields are never selected.
	ExcludeTypes []string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MaxDepth:         5,
		MaxFields:        50,
		CircularRefs:     CircularSkip,
		CircularRefDepth: 1,
	}
}

func (o Options) normalized() Options {
	if o.MaxDepth < 1 {
		o.MaxDepth = 1
	}
	if o.MaxFields < 1 {
		o.MaxFields = 1
	}
	if !o.CircularRefs.Valid() {
		o.CircularRefs = CircularSkip
	}
	if o.CircularRefDepth < 0 {
		o.CircularRefDepth = 0
	}
	return o
}
