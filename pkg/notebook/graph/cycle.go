package graph

// buildAdjacency builds a producer->consumers adjacency list as if
// changedCell's reads were overrideReads[changedCell], using shadowWriter
// in place of the graph's real writer_of map. Every other cell uses its
// already-recorded reads.
func buildAdjacency(cells map[string]*cellEntry, shadowWriter map[string]string, overrideReads map[string][]string, changedCell string) map[string][]string {
	adjacency := make(map[string][]string)

	readsFor := func(cellID string) []string {
		if r, ok := overrideReads[cellID]; ok {
			return r
		}
		if entry, ok := cells[cellID]; ok {
			return entry.reads
		}
		return nil
	}

	consumers := map[string]bool{changedCell: true}
	for id := range cells {
		consumers[id] = true
	}

	for consumer := range consumers {
		for _, v := range readsFor(consumer) {
			producer, ok := shadowWriter[v]
			if !ok || producer == consumer {
				continue
			}
			adjacency[producer] = append(adjacency[producer], consumer)
		}
	}
	return adjacency
}

// findCycleFrom reports whether start can reach itself in adjacency, and
// if so returns one example cycle path (start, ..., start).
func findCycleFrom(adjacency map[string][]string, start string) (bool, []string) {
	visiting := map[string]bool{}
	var path []string

	var dfs func(node string) []string
	dfs = func(node string) []string {
		visiting[node] = true
		path = append(path, node)
		for _, next := range adjacency[node] {
			if next == start {
				return append(append([]string(nil), path...), start)
			}
			if !visiting[next] {
				if cyc := dfs(next); cyc != nil {
					return cyc
				}
			}
		}
		path = path[:len(path)-1]
		visiting[node] = false
		return nil
	}

	if cyc := dfs(start); cyc != nil {
		return true, cyc
	}
	return false, nil
}
