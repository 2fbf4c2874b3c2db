package model

// Graph is handed from one extraction phase to the next. A phase that receives a Graph owns it
// until it returns it, and the caller must not use its previous reference afterwards.
type Graph struct {
	Nodes NodeMap
	Links LinkMap
}

type Violations struct {
	Cycles         *int
	Uninstrumented *int
}

func (v Violations) IsEmpty() bool {
	return v.Cycles == nil && v.Uninstrumented == nil
}

type Summary struct {
	Violations       Violations
	HasViolations    bool
	TracesConsidered int
}

type ServiceInsights struct {
	Summary Summary
	Nodes   []Node
	Links   []Link
}
