package handler

// ServiceInsightsResponseDTO is the dependency graph around a service
// @swagger:model ServiceInsightsResponseDTO
type ServiceInsightsResponseDTO struct {
	Summary SummaryDTO `json:"summary"`
	// Nodes ordered by id
	Nodes []NodeDTO `json:"nodes"`
	// Links ordered by source, then target
	Links []LinkDTO `json:"links"`
}

// SummaryDTO describes the violations found in the graph
// @swagger:model SummaryDTO
type SummaryDTO struct {
	Violations       ViolationsDTO `json:"violations"`
	HasViolations    bool          `json:"hasViolations"`
	TracesConsidered int           `json:"tracesConsidered"`
}

// ViolationsDTO only carries the kinds of violation that were found
// @swagger:model ViolationsDTO
type ViolationsDTO struct {
	// Number of cycles in the graph
	Cycles *int `json:"cycles,omitempty"`
	// Number of calls that left no trace behind
	Uninstrumented *int `json:"uninstrumented,omitempty"`
}

// NodeDTO is a service, gateway, database or other participant in the traces
// @swagger:model NodeDTO
type NodeDTO struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	ServiceName string `json:"serviceName"`
	// One of edge, gateway, mesh, database, outbound, service, uninstrumented
	Type string `json:"type"`
	// Only set for database nodes
	DatabaseType string `json:"databaseType,omitempty"`
	Count        int    `json:"count"`
	// Total duration in microseconds
	Duration int64 `json:"duration"`
	// Average duration in milliseconds
	AvgDuration int64 `json:"avgDuration"`
	// Number of spans per operation name
	Operations           map[string]int `json:"operations"`
	TraceIds             []string       `json:"traceIds"`
	IsLeaf               bool           `json:"isLeaf"`
	IsCentral            bool           `json:"isCentral"`
	InvalidCycleDetected bool           `json:"invalidCycleDetected"`
	InvalidCyclePath     []string       `json:"invalidCyclePath"`
}

// LinkDTO is an observed call from one node to another
// @swagger:model LinkDTO
type LinkDTO struct {
	Source               string   `json:"source"`
	Target               string   `json:"target"`
	Count                int      `json:"count"`
	Tps                  int      `json:"tps"`
	IsUninstrumented     bool     `json:"isUninstrumented"`
	InvalidCycleDetected bool     `json:"invalidCycleDetected"`
	InvalidCyclePath     []string `json:"invalidCyclePath"`
}
