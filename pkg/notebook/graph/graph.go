// Package graph implements the dependency graph (L2): a directed graph of
// cells whose edges are derived from a last-writer-wins variable→producer
// map, with a dry-run cycle check ahead of every mutation and a
// topologically-ordered cascade scheduler.
//
// The graph and the registry live entirely inside the kernel's
// single-threaded loop; nothing here is safe for concurrent access by
// design (ground in dag_utils.go's single-owner BuildDAG/TopologicalSort
// pair, generalized from "rebuild the whole DAG per run" to "mutate one
// cell and patch the edge set").
package graph

import "github.com/carter293/reactive-notebook/pkg/notebook"

type cellEntry struct {
	reads  []string
	writes []string
}

// Graph is the private dependency graph described in spec §3.
type Graph struct {
	cells    map[string]*cellEntry
	writerOf map[string]string          // variable -> producing cell_id
	edges    map[string]map[string]bool // producer -> set of consumers
	regOrder map[string]int             // cell_id -> registration sequence number
	nextSeq  int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		cells:    make(map[string]*cellEntry),
		writerOf: make(map[string]string),
		edges:    make(map[string]map[string]bool),
		regOrder: make(map[string]int),
	}
}

// WouldCreateCycle computes the edge set as if cellID were updated to the
// given reads/writes and reports whether a directed cycle would result.
// It is pure: it mutates no graph state.
func (g *Graph) WouldCreateCycle(cellID string, reads, writes []string) (bool, []string) {
	shadowWriter := make(map[string]string, len(g.writerOf))
	for k, v := range g.writerOf {
		shadowWriter[k] = v
	}
	if old, ok := g.cells[cellID]; ok {
		newWrites := toSet(writes)
		for _, v := range old.writes {
			if !newWrites[v] && shadowWriter[v] == cellID {
				delete(shadowWriter, v)
			}
		}
	}
	for _, v := range writes {
		shadowWriter[v] = cellID
	}

	shadowReads := map[string][]string{cellID: reads}
	adjacency := buildAdjacency(g.cells, shadowWriter, shadowReads, cellID)

	return findCycleFrom(adjacency, cellID)
}

// UpdateCell applies the mutation described in spec §4.2. It performs its
// own cycle check before mutating (the precondition is the source of
// truth, not merely advisory) so a caller that skips WouldCreateCycle
// cannot corrupt the graph.
func (g *Graph) UpdateCell(cellID string, reads, writes []string) error {
	if hasCycle, path := g.WouldCreateCycle(cellID, reads, writes); hasCycle {
		return &notebook.CycleError{Path: path}
	}

	old, existed := g.cells[cellID]
	if existed {
		newWrites := toSet(writes)
		for _, v := range old.writes {
			if !newWrites[v] && g.writerOf[v] == cellID {
				delete(g.writerOf, v)
			}
		}
	}
	for _, v := range writes {
		g.writerOf[v] = cellID
	}

	g.cells[cellID] = &cellEntry{reads: append([]string(nil), reads...), writes: append([]string(nil), writes...)}
	if !existed {
		g.regOrder[cellID] = g.nextSeq
		g.nextSeq++
	}

	g.rebuildEdges()
	return nil
}

// RemoveCell strips cellID from all maps.
func (g *Graph) RemoveCell(cellID string) {
	delete(g.cells, cellID)
	for v, c := range g.writerOf {
		if c == cellID {
			delete(g.writerOf, v)
		}
	}
	delete(g.regOrder, cellID)
	g.rebuildEdges()
}

// DirectDependencies returns the cells that produce a variable cellID reads.
func (g *Graph) DirectDependencies(cellID string) []string {
	var deps []string
	for producer, consumers := range g.edges {
		if consumers[cellID] {
			deps = append(deps, producer)
		}
	}
	return sortByRegOrder(deps, g.regOrder)
}

// DirectDependents returns the cells that read a variable cellID writes.
func (g *Graph) DirectDependents(cellID string) []string {
	consumers := g.edges[cellID]
	deps := make([]string, 0, len(consumers))
	for c := range consumers {
		deps = append(deps, c)
	}
	return sortByRegOrder(deps, g.regOrder)
}

// CascadeOrder returns root and its transitive descendants in a
// topological order compatible with edges, ties broken by registration
// order (P4, P5).
func (g *Graph) CascadeOrder(root string) []string {
	if _, ok := g.cells[root]; !ok {
		return []string{root}
	}

	reachable := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for c := range g.edges[n] {
			if !reachable[c] {
				reachable[c] = true
				queue = append(queue, c)
			}
		}
	}

	inDegree := make(map[string]int, len(reachable))
	for n := range reachable {
		inDegree[n] = 0
	}
	for p := range reachable {
		for c := range g.edges[p] {
			if reachable[c] {
				inDegree[c]++
			}
		}
	}

	var order []string
	for len(order) < len(reachable) {
		var wave []string
		for n, d := range inDegree {
			if d == 0 {
				wave = append(wave, n)
			}
		}
		if len(wave) == 0 {
			break // should be unreachable given G1 (acyclic)
		}
		wave = sortByRegOrder(wave, g.regOrder)
		order = append(order, wave...)
		for _, n := range wave {
			delete(inDegree, n)
			for c := range g.edges[n] {
				if _, ok := inDegree[c]; ok {
					inDegree[c]--
				}
			}
		}
	}
	return order
}

// rebuildEdges recomputes the full edge set from cells + writerOf. A full
// rebuild is simpler than surgical incident-edge patching and stays within
// the O(|V|+|E|) bound the dry-run cycle check already assumes.
func (g *Graph) rebuildEdges() {
	edges := make(map[string]map[string]bool)
	for consumer, entry := range g.cells {
		for _, v := range entry.reads {
			producer, ok := g.writerOf[v]
			if !ok || producer == consumer {
				continue
			}
			if edges[producer] == nil {
				edges[producer] = make(map[string]bool)
			}
			edges[producer][consumer] = true
		}
	}
	g.edges = edges
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, i := range items {
		m[i] = true
	}
	return m
}

func sortByRegOrder(items []string, regOrder map[string]int) []string {
	sorted := append([]string(nil), items...)
	for i := 1; i < len(sorted); i++ {
		j := i
		for j > 0 && regOrder[sorted[j-1]] > regOrder[sorted[j]] {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
			j--
		}
	}
	return sorted
}
