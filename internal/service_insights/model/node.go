package model

type NodeType string

const (
	Edge           NodeType = "edge"
	Gateway        NodeType = "gateway"
	Mesh           NodeType = "mesh"
	Database       NodeType = "database"
	Outbound       NodeType = "outbound"
	Service        NodeType = "service"
	Uninstrumented NodeType = "uninstrumented"
)

// Node is one logical component of the dependency graph, aggregated from every span that
// classifies to the same id.
type Node struct {
	Id           string
	Name         string
	ServiceName  string
	Type         NodeType
	DatabaseType string // only set for Database nodes
	Count        int
	Duration     int64 // sum of span durations in microseconds
	AvgDuration  int64 // milliseconds, truncated
	Operations   map[string]int
	TraceIds     []string // one entry per folded span, duplicates allowed

	IsLeaf               bool
	IsCentral            bool
	InvalidCycleDetected bool
	InvalidCyclePath     []string
}

// Clone returns a deep copy of the node so the copy can be mutated independently.
func (n *Node) Clone() *Node {
	clone := *n
	clone.Operations = make(map[string]int, len(n.Operations))
	for operation, count := range n.Operations {
		clone.Operations[operation] = count
	}
	clone.TraceIds = append([]string(nil), n.TraceIds...)
	clone.InvalidCyclePath = append([]string(nil), n.InvalidCyclePath...)
	return &clone
}

type NodeMap map[string]*Node
