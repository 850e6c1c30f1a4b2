package bulletin

import (
	"sort"
	"sync"

	"gazette/internal/models"
)

// Edge is a formal reference from one published identifier to an earlier
// one, e.g. a correction pointing at the announcement it amends.
type Edge struct {
	From     string
	To       string
	Relation string
}

// ReferenceGraph is a directed graph of document references keyed by
// published identifier. It is built incrementally as documents are fetched
// and only keeps identifiers and relations, never document bodies.
type ReferenceGraph struct {
	mu  sync.RWMutex
	out map[string][]Edge
	in  map[string][]Edge
}

// NewReferenceGraph returns an empty graph.
func NewReferenceGraph() *ReferenceGraph {
	return &ReferenceGraph{
		out: make(map[string][]Edge),
		in:  make(map[string][]Edge),
	}
}

// Add records the references of doc. Adding the same document twice is a
// no-op.
func (g *ReferenceGraph) Add(doc *models.BulletinDocument) {
	if doc == nil || doc.ID == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, ref := range doc.References {
		if ref.ID == "" || ref.ID == doc.ID || g.hasEdge(doc.ID, ref.ID) {
			continue
		}

		e := Edge{From: doc.ID, To: ref.ID, Relation: ref.Relation}
		g.out[doc.ID] = append(g.out[doc.ID], e)
		g.in[ref.ID] = append(g.in[ref.ID], e)
	}
}

func (g *ReferenceGraph) hasEdge(from, to string) bool {
	for _, e := range g.out[from] {
		if e.To == to {
			return true
		}
	}

	return false
}

// References returns the identifiers id formally references.
func (g *ReferenceGraph) References(id string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return append([]Edge(nil), g.out[id]...)
}

// ReferencedBy returns the later documents that reference id.
func (g *ReferenceGraph) ReferencedBy(id string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return append([]Edge(nil), g.in[id]...)
}

// Descendants returns every identifier that references id directly or
// through a chain of references, sorted. This answers "what superseded this
// entry".
func (g *ReferenceGraph) Descendants(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := map[string]bool{id: true}
	queue := []string{id}

	var out []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range g.in[cur] {
			if seen[e.From] {
				continue
			}

			seen[e.From] = true
			out = append(out, e.From)
			queue = append(queue, e.From)
		}
	}

	sort.Strings(out)

	return out
}

// Len returns the number of edges.
func (g *ReferenceGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := 0
	for _, edges := range g.out {
		n += len(edges)
	}

	return n
}
