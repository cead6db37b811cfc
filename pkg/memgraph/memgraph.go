// Package memgraph provides an in-memory, index-free adjacency graph.
//
// Instead of the persisted engine's explicit edge-ID lists, each node record
// holds the index of its most recent relationship, and each relationship
// record links to the previous relationship of both of its endpoints. That
// trades O(1) insertion without rewriting the node record for O(degree)
// neighbor enumeration and no persistence.
//
// Records live in arenas addressed by integer index; index 0 is reserved as
// the nil link. This package is deliberately separate from the persisted
// engine in pkg/graph: the two represent different space/time tradeoffs,
// not one evolving into the other.
//
// Example:
//
//	g := memgraph.New()
//	alice := g.CreateNode("Person", map[string]any{"name": "Alice"})
//	bob := g.CreateNode("Person", map[string]any{"name": "Bob"})
//	g.CreateRelationship(alice, bob, "FRIENDS_WITH", nil)
//
//	for _, n := range g.Neighbors(alice) {
//		fmt.Println(n.NeighborID, n.RelID)
//	}
package memgraph

import (
	"errors"
	"sync"
)

// ErrInvalidEndpoint means a relationship referenced a node ID that does
// not exist in the graph.
var ErrInvalidEndpoint = errors.New("invalid start or end node id")

// nilLink marks the end of a relationship chain. Record indices start at 1
// so the zero value is never a valid link.
const nilLink = 0

// NodeRecord is a node in the index-free graph. FirstRel points at the most
// recently inserted relationship touching this node, or nilLink.
type NodeRecord struct {
	ID         int
	Label      string
	Properties map[string]any
	FirstRel   int
}

// RelRecord is a relationship in the index-free graph. NextForStart and
// NextForEnd continue the relationship chains of the start and end node
// respectively.
type RelRecord struct {
	ID           int
	StartNode    int
	EndNode      int
	Type         string
	Properties   map[string]any
	NextForStart int
	NextForEnd   int
}

// Neighbor pairs a reachable node with the relationship that reaches it.
type Neighbor struct {
	NeighborID int
	RelID      int
}

// Graph is an in-memory index-free adjacency graph.
//
// Node and relationship records are kept in append-only arenas; record IDs
// are arena indices and are never reused. Safe for concurrent use.
type Graph struct {
	mu    sync.RWMutex
	nodes []NodeRecord // index 0 unused
	rels  []RelRecord  // index 0 unused
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make([]NodeRecord, 1),
		rels:  make([]RelRecord, 1),
	}
}

// CreateNode appends a node record and returns its ID.
func (g *Graph) CreateNode(label string, properties map[string]any) int {
	if properties == nil {
		properties = map[string]any{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id := len(g.nodes)
	g.nodes = append(g.nodes, NodeRecord{
		ID:         id,
		Label:      label,
		Properties: properties,
		FirstRel:   nilLink,
	})
	return id
}

// CreateRelationship inserts a directed relationship start -> end and
// splices it onto the front of both endpoints' relationship chains. The
// node records themselves are updated in place; no list is rewritten.
func (g *Graph) CreateRelationship(start, end int, relType string, properties map[string]any) (int, error) {
	if properties == nil {
		properties = map[string]any{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.validNode(start) || !g.validNode(end) {
		return 0, ErrInvalidEndpoint
	}

	id := len(g.rels)
	g.rels = append(g.rels, RelRecord{
		ID:           id,
		StartNode:    start,
		EndNode:      end,
		Type:         relType,
		Properties:   properties,
		NextForStart: g.nodes[start].FirstRel,
		NextForEnd:   g.nodes[end].FirstRel,
	})

	g.nodes[start].FirstRel = id
	g.nodes[end].FirstRel = id
	return id, nil
}

// Node returns the node record for id, or (zero, false).
func (g *Graph) Node(id int) (NodeRecord, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.validNode(id) {
		return NodeRecord{}, false
	}
	return g.nodes[id], true
}

// Relationship returns the relationship record for id, or (zero, false).
func (g *Graph) Relationship(id int) (RelRecord, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if id < 1 || id >= len(g.rels) {
		return RelRecord{}, false
	}
	return g.rels[id], true
}

type direction int

const (
	directionBoth direction = iota
	directionOut
	directionIn
)

// Neighbors walks the relationship chain of id and returns every node
// connected to it, outgoing and incoming alike, paired with the reaching
// relationship. An unknown id yields an empty slice.
func (g *Graph) Neighbors(id int) []Neighbor {
	return g.neighbors(id, directionBoth)
}

// OutgoingNeighbors returns only the nodes id points at.
func (g *Graph) OutgoingNeighbors(id int) []Neighbor {
	return g.neighbors(id, directionOut)
}

// IncomingNeighbors returns only the nodes pointing at id.
func (g *Graph) IncomingNeighbors(id int) []Neighbor {
	return g.neighbors(id, directionIn)
}

func (g *Graph) neighbors(id int, dir direction) []Neighbor {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.validNode(id) {
		return []Neighbor{}
	}

	wantOut := dir == directionBoth || dir == directionOut
	wantIn := dir == directionBoth || dir == directionIn

	neighbors := []Neighbor{}
	seen := make(map[int]struct{})

	current := g.nodes[id].FirstRel
	for current != nilLink {
		if _, ok := seen[current]; ok {
			break
		}
		seen[current] = struct{}{}

		rel := g.rels[current]
		if rel.StartNode == id {
			// A self-loop is both outgoing and incoming.
			if wantOut || (wantIn && rel.EndNode == id) {
				neighbors = append(neighbors, Neighbor{NeighborID: rel.EndNode, RelID: current})
			}
			current = rel.NextForStart
		} else {
			if wantIn {
				neighbors = append(neighbors, Neighbor{NeighborID: rel.StartNode, RelID: current})
			}
			current = rel.NextForEnd
		}
	}
	return neighbors
}

// Traverse runs a breadth-first walk from start up to depth hops, treating
// relationships as undirected. It returns each reached node ID mapped to
// its distance from start. An unknown start yields an empty map.
func (g *Graph) Traverse(start, depth int) map[int]int {
	if _, ok := g.Node(start); !ok {
		return map[int]int{}
	}

	type item struct {
		id   int
		dist int
	}

	visited := map[int]int{start: 0}
	queue := []item{{id: start, dist: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.dist >= depth {
			continue
		}
		for _, n := range g.Neighbors(current.id) {
			if _, ok := visited[n.NeighborID]; !ok {
				visited[n.NeighborID] = current.dist + 1
				queue = append(queue, item{id: n.NeighborID, dist: current.dist + 1})
			}
		}
	}
	return visited
}

// NodeCount returns the number of node records.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes) - 1
}

// RelationshipCount returns the number of relationship records.
func (g *Graph) RelationshipCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rels) - 1
}

// validNode reports whether id addresses an existing node record.
// Caller must hold g.mu.
func (g *Graph) validNode(id int) bool {
	return id >= 1 && id < len(g.nodes)
}
