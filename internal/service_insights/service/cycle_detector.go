package service

import (
	"github.com/Avi18971911/Insights/internal/service_insights/model"
	"sort"
)

const (
	white = iota
	gray
	black
)

// DetectCycles marks every node and link on a cycle of the call graph and returns the number of
// cycles found, one per back edge of a depth-first search. Nodes are visited in id order so the
// reported paths are stable for a given graph. A node or link on several cycles keeps the path of
// the first cycle that reached it. Cycles the search never closes with a back edge of their own are
// still marked through their strongly connected component, whose sorted members become the path.
func DetectCycles(graph model.Graph) (model.Graph, int) {
	adjacency := buildAdjacency(graph)

	ids := make([]string, 0, len(graph.Nodes))
	for id := range graph.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	color := make(map[string]int, len(graph.Nodes))
	stackIndex := make(map[string]int, len(graph.Nodes))
	var stack []string
	cyclesFound := 0

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		stackIndex[id] = len(stack)
		stack = append(stack, id)
		for _, child := range adjacency[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				path := append([]string(nil), stack[stackIndex[child]:]...)
				markCycle(graph, path)
				cyclesFound++
			}
		}
		stack = stack[:len(stack)-1]
		delete(stackIndex, id)
		color[id] = black
	}

	for _, id := range ids {
		if color[id] == white {
			dfs(id)
		}
	}

	for _, component := range stronglyConnectedComponents(ids, adjacency) {
		if len(component) > 1 {
			markComponent(graph, component)
		}
	}
	return graph, cyclesFound
}

// stronglyConnectedComponents runs Tarjan's algorithm over the nodes in ids order.
func stronglyConnectedComponents(ids []string, adjacency map[string][]string) [][]string {
	index := make(map[string]int, len(ids))
	lowLink := make(map[string]int, len(ids))
	onStack := make(map[string]bool, len(ids))
	var stack []string
	var components [][]string

	var connect func(id string)
	connect = func(id string) {
		index[id] = len(index)
		lowLink[id] = index[id]
		stack = append(stack, id)
		onStack[id] = true

		for _, child := range adjacency[id] {
			if _, visited := index[child]; !visited {
				connect(child)
				lowLink[id] = min(lowLink[id], lowLink[child])
			} else if onStack[child] {
				lowLink[id] = min(lowLink[id], index[child])
			}
		}

		if lowLink[id] != index[id] {
			return
		}
		var component []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == id {
				break
			}
		}
		sort.Strings(component)
		components = append(components, component)
	}

	for _, id := range ids {
		if _, visited := index[id]; !visited {
			connect(id)
		}
	}
	return components
}

// markComponent flags the members of a strongly connected component and every link between them
// that no back edge has marked yet.
func markComponent(graph model.Graph, component []string) {
	members := make(map[string]bool, len(component))
	for _, id := range component {
		members[id] = true
		node := graph.Nodes[id]
		if !node.InvalidCycleDetected {
			node.InvalidCycleDetected = true
			node.InvalidCyclePath = component
		}
	}
	for _, link := range graph.Links {
		if !members[link.Source] || !members[link.Target] || link.InvalidCycleDetected {
			continue
		}
		link.InvalidCycleDetected = true
		link.InvalidCyclePath = component
	}
}

func buildAdjacency(graph model.Graph) map[string][]string {
	adjacency := make(map[string][]string, len(graph.Nodes))
	for _, link := range graph.Links {
		if _, ok := graph.Nodes[link.Source]; !ok {
			continue
		}
		if _, ok := graph.Nodes[link.Target]; !ok {
			continue
		}
		adjacency[link.Source] = append(adjacency[link.Source], link.Target)
	}
	for _, children := range adjacency {
		sort.Strings(children)
	}
	return adjacency
}

// markCycle flags the nodes of path and the links joining consecutive nodes, including the link
// from the last node back to the first.
func markCycle(graph model.Graph, path []string) {
	for i, id := range path {
		node := graph.Nodes[id]
		if !node.InvalidCycleDetected {
			node.InvalidCycleDetected = true
			node.InvalidCyclePath = path
		}

		next := path[(i+1)%len(path)]
		link, ok := graph.Links[model.LinkId(id, next)]
		if !ok || link.InvalidCycleDetected {
			continue
		}
		link.InvalidCycleDetected = true
		link.InvalidCyclePath = path
	}
}
