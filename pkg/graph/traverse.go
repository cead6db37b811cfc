// Package graph - traversal algorithms built only on the engine's public
// get operations.
package graph

// EdgePredicate decides whether a conditional traversal may follow an edge,
// given the edge's property map.
type EdgePredicate func(properties map[string]any) bool

// Neighbors returns every node reachable from id over one outgoing edge.
//
// The node's outgoing edges are fetched in one batch, then the edges' end
// nodes in another. The result is unordered. An absent node or a node with
// no outgoing edges yields an empty slice, not an error.
func (db *DB) Neighbors(id NodeID) ([]*Node, error) {
	node, err := db.GetNode(id)
	if err != nil {
		return nil, err
	}
	if node == nil || len(node.OutgoingEdges) == 0 {
		return []*Node{}, nil
	}

	edgeMap, err := db.GetBatchEdges(node.OutgoingEdges)
	if err != nil {
		return nil, err
	}

	neighborIDs := make([]NodeID, 0, len(edgeMap))
	for _, edge := range edgeMap {
		neighborIDs = append(neighborIDs, edge.EndNode)
	}

	nodeMap, err := db.GetBatchNodes(neighborIDs)
	if err != nil {
		return nil, err
	}

	neighbors := make([]*Node, 0, len(nodeMap))
	for _, n := range nodeMap {
		neighbors = append(neighbors, n)
	}
	return neighbors, nil
}

// BFS explores the graph level by level from start.
//
// Each dequeued identifier is visited exactly once, which bounds work to
// O(nodes + edges) regardless of cycles. With a non-empty targetLabel, BFS
// returns the first visited node whose label matches and stops exploring;
// if the frontier is exhausted without a match, the node result is nil.
// With an empty targetLabel, the full visitation order is returned.
func (db *DB) BFS(start NodeID, targetLabel string) (*Node, []NodeID, error) {
	if err := db.ensureOpen(); err != nil {
		return nil, nil, err
	}

	visited := make(map[NodeID]struct{})
	queue := []NodeID{start}
	var order []NodeID

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if _, ok := visited[current]; ok {
			continue
		}
		visited[current] = struct{}{}

		node, err := db.GetNode(current)
		if err != nil {
			return nil, nil, err
		}
		if node == nil {
			continue
		}
		order = append(order, current)

		if targetLabel != "" && node.Label == targetLabel {
			return node, order, nil
		}

		neighbors, err := db.Neighbors(current)
		if err != nil {
			return nil, nil, err
		}
		for _, neighbor := range neighbors {
			if _, ok := visited[neighbor.ID]; !ok {
				queue = append(queue, neighbor.ID)
			}
		}
	}

	return nil, order, nil
}

// ConditionalBFS explores up to maxLevels hops from start, following only
// edges whose properties satisfy pred.
//
// Unlike BFS, expansion iterates each node's outgoing edge IDs directly and
// evaluates pred per edge instead of delegating to Neighbors. The result
// maps each level in 0..maxLevels to the node IDs first discovered at that
// level; a node reached again by a later path is not re-added (first
// discovery wins). Level 0 always contains exactly the start identifier,
// even when it has no outgoing edges.
func (db *DB) ConditionalBFS(start NodeID, pred EdgePredicate, maxLevels int) (map[int][]NodeID, error) {
	if err := db.ensureOpen(); err != nil {
		return nil, err
	}
	if maxLevels < 0 {
		maxLevels = 0
	}

	levels := make(map[int][]NodeID, maxLevels+1)
	for level := 0; level <= maxLevels; level++ {
		levels[level] = []NodeID{}
	}

	type frontierItem struct {
		id    NodeID
		depth int
	}

	visited := make(map[NodeID]struct{})
	queue := []frontierItem{{id: start, depth: 0}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if _, ok := visited[item.id]; ok {
			continue
		}
		visited[item.id] = struct{}{}

		if item.depth <= maxLevels {
			levels[item.depth] = append(levels[item.depth], item.id)
		}
		if item.depth >= maxLevels {
			continue
		}

		node, err := db.GetNode(item.id)
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}

		edgeMap, err := db.GetBatchEdges(node.OutgoingEdges)
		if err != nil {
			return nil, err
		}

		// Evaluate edges in outgoing order so level ordering is
		// deterministic.
		for _, edgeID := range node.OutgoingEdges {
			edge, ok := edgeMap[edgeID]
			if !ok {
				continue
			}
			if !pred(edge.Properties) {
				continue
			}
			if _, ok := visited[edge.EndNode]; !ok {
				queue = append(queue, frontierItem{id: edge.EndNode, depth: item.depth + 1})
			}
		}
	}

	return levels, nil
}
