package catalog

import (
	"sort"
	"strings"
)

// graph is the directed reference graph between indexed instances, keyed by
// URN. Node and neighbor lists are kept sorted so traversal order and cycle
// reporting are deterministic.
type graph struct {
	nodes []string
	adj   map[string][]string
}

func newGraph() *graph {
	return &graph{adj: map[string][]string{}}
}

func (g *graph) addNode(n string) {
	if _, ok := g.adj[n]; ok {
		return
	}
	g.adj[n] = nil
	g.nodes = append(g.nodes, n)
	sort.Strings(g.nodes)
}

func (g *graph) addEdge(from, to string) {
	g.addNode(from)
	g.addNode(to)
	for _, existing := range g.adj[from] {
		if existing == to {
			return
		}
	}
	g.adj[from] = append(g.adj[from], to)
	sort.Strings(g.adj[from])
}

// DFS colors
const (
	white = iota // unvisited
	gray         // on the current path
	black        // fully explored
)

// detectCycles finds every distinct cycle via three-color depth-first
// search. A back edge to a gray node closes a cycle; the cycle is the stack
// slice from that node to the top. Cycles are canonicalized up to rotation
// (start at the lexicographically smallest node) and deduplicated, so the
// same loop is never reported twice under different entry points. A
// self-loop is a cycle of length 1.
func (g *graph) detectCycles() [][]string {
	color := map[string]int{}
	pos := map[string]int{}
	var stack []string
	seen := map[string]bool{}
	var cycles [][]string

	var visit func(n string)
	visit = func(n string) {
		color[n] = gray
		pos[n] = len(stack)
		stack = append(stack, n)

		for _, next := range g.adj[n] {
			switch color[next] {
			case white:
				visit(next)
			case gray:
				cycle := rotateToSmallest(stack[pos[next]:])
				key := strings.Join(cycle, " -> ")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			}
		}

		stack = stack[:len(stack)-1]
		delete(pos, n)
		color[n] = black
	}

	for _, n := range g.nodes {
		if color[n] == white {
			visit(n)
		}
	}
	return cycles
}

// rotateToSmallest returns a copy of the cycle rotated so it starts at its
// lexicographically smallest node.
func rotateToSmallest(cycle []string) []string {
	smallest := 0
	for i, n := range cycle {
		if n < cycle[smallest] {
			smallest = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[smallest:]...)
	out = append(out, cycle[:smallest]...)
	return out
}
