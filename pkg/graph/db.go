// Package graph - DB orchestrates key construction, cache lookups, backend
// batch calls, and adjacency maintenance.
package graph

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ratatosk-db/ratatosk/pkg/cache"
	"github.com/ratatosk-db/ratatosk/pkg/storage"
)

// Key prefixes partitioning the backend key space by entity kind.
// Node and edge records can never collide even when their raw identifiers
// coincide as strings.
const (
	prefixNode = byte(0x01) // 0x01 + nodeID -> JSON(Node)
	prefixEdge = byte(0x02) // 0x02 + edgeID -> JSON(Edge)
)

// nodeKey creates the backend key for a node record.
func nodeKey(id NodeID) []byte {
	return append([]byte{prefixNode}, id...)
}

// edgeKey creates the backend key for an edge record.
func edgeKey(id EdgeID) []byte {
	return append([]byte{prefixEdge}, id...)
}

// Options configures a DB.
type Options struct {
	// CacheCapacity bounds each of the node and edge caches. Values below
	// 1 fall back to the cache package default.
	CacheCapacity int

	// DecodeWorkers bounds how many records a batch get decodes
	// concurrently. Values below 1 are clamped to 1.
	DecodeWorkers int
}

// DefaultOptions returns the options used when callers have no opinion.
func DefaultOptions() Options {
	return Options{
		CacheCapacity: 1000,
		DecodeWorkers: 4,
	}
}

// DB is the graph engine. It owns one LRU cache for nodes and one for
// edges, and reaches the backend only through the storage.Store contract.
//
// Concurrency: read operations (single and batch gets, traversals) are safe
// to run in parallel. Create operations follow a single-writer discipline:
// the read-modify-write of a start node's adjacency list is not atomic
// across the batch boundary, so concurrent creates against overlapping
// nodes are not supported.
type DB struct {
	store storage.Store

	nodes *cache.Cache[NodeID, *Node]
	edges *cache.Cache[EdgeID, *Edge]

	decodeWorkers int

	mu     sync.RWMutex // protects closed
	closed bool
}

// Open wires a DB on top of store.
func Open(store storage.Store, opts Options) (*DB, error) {
	if store == nil {
		return nil, fmt.Errorf("graph: nil store")
	}
	workers := opts.DecodeWorkers
	if workers < 1 {
		workers = 1
	}
	return &DB{
		store:         store,
		nodes:         cache.New[NodeID, *Node](opts.CacheCapacity),
		edges:         cache.New[EdgeID, *Edge](opts.CacheCapacity),
		decodeWorkers: workers,
	}, nil
}

func (db *DB) ensureOpen() error {
	db.mu.RLock()
	closed := db.closed
	db.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return nil
}

// newID generates an identifier for a new entity.
func newID() string {
	return uuid.New().String()
}

// Create Operations
// ============================================================================

// CreateNode persists a new node with the given label and properties and
// populates the node cache. The node starts with no outgoing edges.
func (db *DB) CreateNode(label string, properties map[string]any) (*Node, error) {
	if err := db.ensureOpen(); err != nil {
		return nil, err
	}

	node := newNode(label, properties)
	data, err := encodeNode(node)
	if err != nil {
		return nil, fmt.Errorf("encoding node: %w", err)
	}

	if err := db.store.Put(nodeKey(node.ID), data); err != nil {
		return nil, fmt.Errorf("backend put: %w", err)
	}

	db.nodes.Put(node.ID, node)
	return node, nil
}

// CreateEdge persists a new edge after validating both endpoints exist.
//
// The edge record and the start node's updated adjacency list are committed
// in a single backend batch, so no reader can observe one without the
// other. Fails with ErrMissingEndpoint (before any write) if either
// endpoint is absent.
func (db *DB) CreateEdge(label string, start, end NodeID, properties map[string]any) (*Edge, error) {
	if err := db.ensureOpen(); err != nil {
		return nil, err
	}

	startNode, err := db.GetNode(start)
	if err != nil {
		return nil, err
	}
	endNode, err := db.GetNode(end)
	if err != nil {
		return nil, err
	}
	if startNode == nil || endNode == nil {
		return nil, fmt.Errorf("%w: %s -> %s", ErrMissingEndpoint, start, end)
	}

	edge := newEdge(label, start, end, properties)

	// Work on a copy so a failed write can't leave a mutated node in the
	// cache.
	updated := copyNode(startNode)
	updated.OutgoingEdges = append(updated.OutgoingEdges, edge.ID)

	edgeData, err := encodeEdge(edge)
	if err != nil {
		return nil, fmt.Errorf("encoding edge: %w", err)
	}
	nodeData, err := encodeNode(updated)
	if err != nil {
		return nil, fmt.Errorf("encoding node: %w", err)
	}

	batch := map[string][]byte{
		string(edgeKey(edge.ID)):    edgeData,
		string(nodeKey(updated.ID)): nodeData,
	}
	if err := db.store.PutBatch(batch); err != nil {
		return nil, fmt.Errorf("backend batch put: %w", err)
	}

	db.edges.Put(edge.ID, edge)
	db.nodes.Put(updated.ID, updated)
	return edge, nil
}

// CreateNodesBatch creates one node per spec in a single backend batch
// write, then populates the cache for every created node.
//
// No partial application: if encoding or the batch write fails, no node
// from this call becomes visible.
func (db *DB) CreateNodesBatch(specs []NodeSpec) ([]*Node, error) {
	if err := db.ensureOpen(); err != nil {
		return nil, err
	}

	nodes := make([]*Node, 0, len(specs))
	batch := make(map[string][]byte, len(specs))
	for _, spec := range specs {
		node := newNode(spec.Label, spec.Properties)
		data, err := encodeNode(node)
		if err != nil {
			return nil, fmt.Errorf("encoding node: %w", err)
		}
		nodes = append(nodes, node)
		batch[string(nodeKey(node.ID))] = data
	}

	if err := db.store.PutBatch(batch); err != nil {
		return nil, fmt.Errorf("backend batch put: %w", err)
	}

	for _, node := range nodes {
		db.nodes.Put(node.ID, node)
	}
	return nodes, nil
}

// CreateEdgesBatch creates one edge per spec in a single backend batch
// write.
//
// Every endpoint is resolved up front; any unresolved endpoint aborts the
// whole call with ErrMissingEndpoint before any write is issued. A start
// node referenced by several new edges accumulates all of their IDs and is
// re-encoded once, in submission order. New edge records and updated start
// node records are merged into ONE backend batch, so adjacency updates and
// edge creation commit together.
func (db *DB) CreateEdgesBatch(specs []EdgeSpec) ([]*Edge, error) {
	if err := db.ensureOpen(); err != nil {
		return nil, err
	}

	// Resolve every endpoint before creating anything; any miss aborts
	// the whole call before a write is issued.
	resolved := make(map[NodeID]*Node)
	for _, spec := range specs {
		for _, id := range []NodeID{spec.StartNode, spec.EndNode} {
			if _, ok := resolved[id]; ok {
				continue
			}
			node, err := db.GetNode(id)
			if err != nil {
				return nil, err
			}
			if node == nil {
				return nil, fmt.Errorf("%w: %s -> %s", ErrMissingEndpoint, spec.StartNode, spec.EndNode)
			}
			resolved[id] = node
		}
	}

	edges := make([]*Edge, 0, len(specs))
	updated := make(map[NodeID]*Node, len(specs))
	batch := make(map[string][]byte, 2*len(specs))

	for _, spec := range specs {
		edge := newEdge(spec.Label, spec.StartNode, spec.EndNode, spec.Properties)
		data, err := encodeEdge(edge)
		if err != nil {
			return nil, fmt.Errorf("encoding edge: %w", err)
		}
		edges = append(edges, edge)
		batch[string(edgeKey(edge.ID))] = data

		// Each distinct start node is copied once and accumulates every
		// new edge ID in submission order.
		start, ok := updated[spec.StartNode]
		if !ok {
			start = copyNode(resolved[spec.StartNode])
			updated[spec.StartNode] = start
		}
		start.OutgoingEdges = append(start.OutgoingEdges, edge.ID)
	}

	// Each updated start node is encoded once, after all of its new edges
	// have been appended.
	for _, node := range updated {
		data, err := encodeNode(node)
		if err != nil {
			return nil, fmt.Errorf("encoding node: %w", err)
		}
		batch[string(nodeKey(node.ID))] = data
	}

	if err := db.store.PutBatch(batch); err != nil {
		return nil, fmt.Errorf("backend batch put: %w", err)
	}

	for _, edge := range edges {
		db.edges.Put(edge.ID, edge)
	}
	for _, node := range updated {
		db.nodes.Put(node.ID, node)
	}
	return edges, nil
}

// Get Operations
// ============================================================================

// GetNode retrieves a node by ID, cache first. Returns (nil, nil) when the
// node does not exist.
func (db *DB) GetNode(id NodeID) (*Node, error) {
	if err := db.ensureOpen(); err != nil {
		return nil, err
	}

	if node, ok := db.nodes.Get(id); ok {
		return node, nil
	}

	raw, err := db.store.Get(nodeKey(id))
	if err != nil {
		return nil, fmt.Errorf("backend get: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	db.nodes.Put(id, node)
	return node, nil
}

// GetEdge retrieves an edge by ID, cache first. Returns (nil, nil) when the
// edge does not exist.
func (db *DB) GetEdge(id EdgeID) (*Edge, error) {
	if err := db.ensureOpen(); err != nil {
		return nil, err
	}

	if edge, ok := db.edges.Get(id); ok {
		return edge, nil
	}

	raw, err := db.store.Get(edgeKey(id))
	if err != nil {
		return nil, fmt.Errorf("backend get: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	edge, err := decodeEdge(raw)
	if err != nil {
		return nil, err
	}
	db.edges.Put(id, edge)
	return edge, nil
}

// GetBatchNodes retrieves multiple nodes at once.
//
// Requested IDs are partitioned into cache hits and misses; misses are
// fetched in one backend batch and decoded concurrently across a bounded
// worker pool. IDs with no backing record are simply absent from the result
// map.
func (db *DB) GetBatchNodes(ids []NodeID) (map[NodeID]*Node, error) {
	if err := db.ensureOpen(); err != nil {
		return nil, err
	}

	results := make(map[NodeID]*Node, len(ids))
	var toFetch []NodeID
	seen := make(map[NodeID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if node, ok := db.nodes.Get(id); ok {
			results[id] = node
		} else {
			toFetch = append(toFetch, id)
		}
	}
	if len(toFetch) == 0 {
		return results, nil
	}

	keys := make([][]byte, len(toFetch))
	for i, id := range toFetch {
		keys[i] = nodeKey(id)
	}
	rawMap, err := db.store.GetBatch(keys)
	if err != nil {
		return nil, fmt.Errorf("backend batch get: %w", err)
	}

	decoded := make([]*Node, len(toFetch))
	var g errgroup.Group
	g.SetLimit(db.decodeWorkers)
	for i, id := range toFetch {
		raw := rawMap[string(nodeKey(id))]
		if raw == nil {
			continue
		}
		i := i
		g.Go(func() error {
			node, err := decodeNode(raw)
			if err != nil {
				return err
			}
			decoded[i] = node
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, node := range decoded {
		if node == nil {
			continue
		}
		db.nodes.Put(toFetch[i], node)
		results[toFetch[i]] = node
	}
	return results, nil
}

// GetBatchEdges retrieves multiple edges at once. Same shape as
// GetBatchNodes.
func (db *DB) GetBatchEdges(ids []EdgeID) (map[EdgeID]*Edge, error) {
	if err := db.ensureOpen(); err != nil {
		return nil, err
	}

	results := make(map[EdgeID]*Edge, len(ids))
	var toFetch []EdgeID
	seen := make(map[EdgeID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if edge, ok := db.edges.Get(id); ok {
			results[id] = edge
		} else {
			toFetch = append(toFetch, id)
		}
	}
	if len(toFetch) == 0 {
		return results, nil
	}

	keys := make([][]byte, len(toFetch))
	for i, id := range toFetch {
		keys[i] = edgeKey(id)
	}
	rawMap, err := db.store.GetBatch(keys)
	if err != nil {
		return nil, fmt.Errorf("backend batch get: %w", err)
	}

	decoded := make([]*Edge, len(toFetch))
	var g errgroup.Group
	g.SetLimit(db.decodeWorkers)
	for i, id := range toFetch {
		raw := rawMap[string(edgeKey(id))]
		if raw == nil {
			continue
		}
		i := i
		g.Go(func() error {
			edge, err := decodeEdge(raw)
			if err != nil {
				return err
			}
			decoded[i] = edge
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, edge := range decoded {
		if edge == nil {
			continue
		}
		db.edges.Put(toFetch[i], edge)
		results[toFetch[i]] = edge
	}
	return results, nil
}

// Lifecycle & Stats
// ============================================================================

// Close releases the backend handle. Safe to call more than once; any other
// operation after Close fails with ErrClosed.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}
	db.closed = true
	return db.store.Close()
}

// Stats reports cache hit/miss counters for both caches.
type Stats struct {
	NodeCache cache.Stats
	EdgeCache cache.Stats
}

// Stats returns a snapshot of the engine's cache counters.
func (db *DB) Stats() Stats {
	return Stats{
		NodeCache: db.nodes.Stats(),
		EdgeCache: db.edges.Stats(),
	}
}

// Helpers
// ============================================================================

func newNode(label string, properties map[string]any) *Node {
	if properties == nil {
		properties = map[string]any{}
	}
	return &Node{
		ID:            NodeID(newID()),
		Label:         label,
		Properties:    properties,
		OutgoingEdges: []EdgeID{},
	}
}

func newEdge(label string, start, end NodeID, properties map[string]any) *Edge {
	if properties == nil {
		properties = map[string]any{}
	}
	return &Edge{
		ID:         EdgeID(newID()),
		Label:      label,
		StartNode:  start,
		EndNode:    end,
		Properties: properties,
	}
}

// copyNode clones node deeply enough for adjacency editing: the
// OutgoingEdges slice is copied, the property map is shared.
func copyNode(node *Node) *Node {
	out := *node
	out.OutgoingEdges = make([]EdgeID, len(node.OutgoingEdges))
	copy(out.OutgoingEdges, node.OutgoingEdges)
	return &out
}
