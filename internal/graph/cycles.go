package graph

import "sort"

// Cycle is one loop in the claim relation graph, listed in traversal order
// starting from the smallest claim ID it contains.
type Cycle struct {
	ClaimIDs []string
}

// Cycles finds loops in the directed supports/contradicts edge list. Claims
// that mutually support each other are the structural signature of circular
// reasoning, so this runs as a discrete pass over the edge list rather than
// anything held as object references.
func (g *Graph) Cycles() []Cycle {
	edges := make(map[string][]string, len(g.claims))
	for _, c := range g.claims {
		for _, to := range append(append([]string{}, c.Supports...), c.Contradicts...) {
			if g.claimIDs[to] {
				edges[c.ID] = append(edges[c.ID], to)
			}
		}
	}
	for _, tos := range edges {
		sort.Strings(tos)
	}

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(g.claims))
	var stack []string
	var cycles []Cycle
	seen := make(map[string]bool) // Dedup by canonical key

	var visit func(id string)
	visit = func(id string) {
		state[id] = inStack
		stack = append(stack, id)
		for _, to := range edges[id] {
			switch state[to] {
			case unvisited:
				visit(to)
			case inStack:
				// Back edge: the cycle is the stack suffix from `to`
				var loop []string
				for i := len(stack) - 1; i >= 0; i-- {
					loop = append([]string{stack[i]}, loop...)
					if stack[i] == to {
						break
					}
				}
				c := canonicalize(loop)
				key := joinIDs(c.ClaimIDs)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, c)
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
	}

	// Iterate claims in decomposition order for deterministic output
	for _, c := range g.claims {
		if state[c.ID] == unvisited {
			visit(c.ID)
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return joinIDs(cycles[i].ClaimIDs) < joinIDs(cycles[j].ClaimIDs)
	})
	return cycles
}

// canonicalize rotates the loop so it starts at its smallest claim ID
func canonicalize(loop []string) Cycle {
	min := 0
	for i, id := range loop {
		if id < loop[min] {
			min = i
		}
	}
	rotated := append(append([]string{}, loop[min:]...), loop[:min]...)
	return Cycle{ClaimIDs: rotated}
}

func joinIDs(ids []string) string {
	out := ""
	for _, id := range ids {
		out += id + "\x00"
	}
	return out
}
