// Package gallery holds the in-memory set of reference face embeddings and
// the matcher gateway built on top of it.
package gallery

import (
	"sync/atomic"

	"github.com/coder/hnsw"
)

// hnswMaxNeighbors is the M parameter of the HNSW graph.
const hnswMaxNeighbors = 16

// Identity is one known face: a student name and its reference embedding.
type Identity struct {
	Name      string
	Embedding []float32
}

// Neighbor is the nearest gallery entry to a probe embedding.
type Neighbor struct {
	Name     string
	Distance float64
}

// snapshot is an immutable gallery build. Reads never lock: a reload builds
// a fresh snapshot off the hot path and the Gallery swaps the pointer, so
// in-flight searches keep the build they started with.
type snapshot struct {
	graph      *hnsw.Graph[int]
	identities []Identity
}

func buildSnapshot(identities []Identity) *snapshot {
	s := &snapshot{}
	for _, id := range identities {
		if len(id.Embedding) == 0 {
			continue
		}
		s.identities = append(s.identities, id)
	}
	if len(s.identities) == 0 {
		return s
	}

	g := hnsw.NewGraph[int]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors) // standard HNSW formula
	g.Distance = hnsw.CosineDistance

	for i := range s.identities {
		g.Add(hnsw.MakeNode(i, s.identities[i].Embedding))
	}
	s.graph = g
	return s
}

// nearest returns the closest identity. ok is false when the gallery is
// empty, so an empty gallery can never produce a spurious match.
func (s *snapshot) nearest(embedding []float32) (Neighbor, bool) {
	if s.graph == nil || len(s.identities) == 0 {
		return Neighbor{}, false
	}

	neighbors := s.graph.Search(embedding, 1)
	if len(neighbors) == 0 {
		return Neighbor{}, false
	}

	n := neighbors[0]
	return Neighbor{
		Name: s.identities[n.Key].Name,
		// Exact distance from the node's own vector; the graph search
		// distance is approximate.
		Distance: CosineDistance(embedding, n.Value),
	}, true
}

// Gallery is the swappable set of known faces.
type Gallery struct {
	snap atomic.Pointer[snapshot]
}

// New creates an empty gallery.
func New() *Gallery {
	g := &Gallery{}
	g.snap.Store(buildSnapshot(nil))
	return g
}

// Load replaces the gallery contents atomically.
func (g *Gallery) Load(identities []Identity) {
	g.snap.Store(buildSnapshot(identities))
}

// Size returns the number of identities in the current snapshot.
func (g *Gallery) Size() int {
	return len(g.snap.Load().identities)
}

// Names returns the identity names in the current snapshot.
func (g *Gallery) Names() []string {
	ids := g.snap.Load().identities
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.Name
	}
	return names
}

// Nearest returns the closest known identity to the probe embedding.
func (g *Gallery) Nearest(embedding []float32) (Neighbor, bool) {
	return g.snap.Load().nearest(embedding)
}
