// Package graph implements the Ratatosk property-graph engine.
//
// The engine persists nodes and directed, labeled edges in a storage.Store,
// keeps each node's outgoing-edge identifiers on the node record itself so
// neighbors can be expanded without a scan, and fronts the store with LRU
// caches and a batched read/write path.
//
// Three pieces of state evolve together: persisted records, the persisted
// adjacency lists, and the in-memory caches. Edge creation commits the new
// edge record and the re-encoded start node in one backend batch, so no
// reader of this engine can observe an edge without its start node's
// adjacency entry, or vice versa.
//
// Example:
//
//	store, err := storage.NewBadgerStore("./data")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	db, err := graph.Open(store, graph.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	alice, _ := db.CreateNode("Person", map[string]any{"name": "Alice"})
//	bob, _ := db.CreateNode("Person", map[string]any{"name": "Bob"})
//	db.CreateEdge("KNOWS", alice.ID, bob.ID, nil)
//
//	neighbors, _ := db.Neighbors(alice.ID)
package graph

import "errors"

// Errors returned by engine operations.
var (
	// ErrMissingEndpoint means an edge create referenced a node that does
	// not exist. The call aborts before any write; retrying with valid IDs
	// is safe.
	ErrMissingEndpoint = errors.New("start or end node does not exist")

	// ErrCorruptRecord means a stored value failed to decode. Fatal for
	// that lookup; retrying cannot fix corrupted bytes.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrClosed means the engine was used after Close.
	ErrClosed = errors.New("graph engine closed")
)

// NodeID is a strongly-typed unique identifier for graph nodes.
type NodeID string

// EdgeID is a strongly-typed unique identifier for graph edges.
type EdgeID string

// Node represents a graph node in the labeled property graph.
//
// OutgoingEdges lists the IDs of every committed edge whose start endpoint
// is this node, in creation order. The engine maintains this list; callers
// should treat it as read-only.
//
// Property values survive a store round-trip with their numeric type
// intact: an int64 decodes as int64, a float64 as float64, including inside
// nested maps and slices.
type Node struct {
	ID            NodeID         `json:"id"`
	Label         string         `json:"label"`
	Properties    map[string]any `json:"properties"`
	OutgoingEdges []EdgeID       `json:"outgoing_edge_ids"`
}

// Edge represents a directed relationship between two nodes.
//
// Both endpoints are validated at creation time; an edge can never be
// committed pointing at a node absent from the store.
type Edge struct {
	ID         EdgeID         `json:"id"`
	Label      string         `json:"label"`
	StartNode  NodeID         `json:"start_node_id"`
	EndNode    NodeID         `json:"end_node_id"`
	Properties map[string]any `json:"properties"`
}

// NodeSpec describes a node to be created by CreateNodesBatch.
type NodeSpec struct {
	Label      string
	Properties map[string]any
}

// EdgeSpec describes an edge to be created by CreateEdgesBatch.
type EdgeSpec struct {
	Label      string
	StartNode  NodeID
	EndNode    NodeID
	Properties map[string]any
}
