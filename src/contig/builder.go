// Package contig turns a cleaned de Bruijn graph into contigs, the unambiguous sequences spelled by the
// unbranched paths of the graph.
package contig

import (
	"github.com/pkg/errors"
	"github.com/will-rowe/padena/src/graph"
)

// ErrPartition is returned when the contigs do not visit every live node of the graph exactly once
var ErrPartition = errors.New("contigs do not partition the graph")

// Contig is a sequence assembled from a path through the graph
type Contig struct {
	Seq      []byte
	Path     graph.Path
	Coverage float64 // mean k-mer count along the path
}

// Len returns the length of the contig sequence
func (c Contig) Len() int {
	return len(c.Seq)
}

// Builder walks the simple paths of a graph
type Builder struct{}

// NewBuilder is the constructor
func NewBuilder() *Builder {
	return &Builder{}
}

// view is a copy of the graph edges that the builder can cut without touching the graph
type view struct {
	g     *graph.Graph
	left  map[int][]graph.Edge
	right map[int][]graph.Edge
}

// side returns the edges on one side of a node
func (v *view) side(id int, right bool) []graph.Edge {
	if right {
		return v.right[id]
	}
	return v.left[id]
}

func (v *view) setSide(id int, right bool, edges []graph.Edge) {
	if right {
		v.right[id] = edges
	} else {
		v.left[id] = edges
	}
}

// extensions mirrors graph.Extensions on the view
func (v *view) extensions(id int, forward, rightward bool) []graph.Edge {
	return v.side(id, forward == rightward)
}

// newView copies the live edges of a graph
func newView(g *graph.Graph) *view {
	v := &view{
		g:     g,
		left:  make(map[int][]graph.Edge),
		right: make(map[int][]graph.Edge),
	}
	for _, id := range g.LiveNodes() {
		v.left[id] = append([]graph.Edge{}, g.Nodes[id].Left...)
		v.right[id] = append([]graph.Edge{}, g.Nodes[id].Right...)
	}
	return v
}

// removeEdge deletes an edge and its reciprocal from the view
func (v *view) removeEdge(id int, right bool, e graph.Edge) {
	before := len(v.side(id, right))
	v.setSide(id, right, without(v.side(id, right), func(x graph.Edge) bool { return x == e }))
	if before == len(v.side(id, right)) {
		return
	}
	back := graph.ReciprocalSide(right, e.Same)
	edge := graph.Edge{To: id, Same: e.Same}
	before = len(v.side(e.To, back))
	v.setSide(e.To, back, without(v.side(e.To, back), func(x graph.Edge) bool { return x == edge }))
	if before != len(v.side(e.To, back)) {
		return
	}

	// palindromes do not always hold the reciprocal on the expected side
	for _, r := range []bool{false, true} {
		v.setSide(e.To, r, without(v.side(e.To, r), func(x graph.Edge) bool { return x.To == id }))
	}
}

// without returns the edges that do not match
func without(edges []graph.Edge, match func(graph.Edge) bool) []graph.Edge {
	kept := []graph.Edge{}
	for _, e := range edges {
		if !match(e) {
			kept = append(kept, e)
		}
	}
	return kept
}

// cutAmbiguous removes every edge from a side that has more than one extension, self-loops included.
// Palindromic nodes lose all of their edges so that they are never walked in both orientations. A
// self-loop that is the only extension on its side is dropped. The sides are judged on the uncut graph.
func (v *view) cutAmbiguous() {
	type cut struct {
		id    int
		right bool
		edge  graph.Edge
	}
	cuts := []cut{}
	for _, id := range v.g.LiveNodes() {
		palindrome := v.g.Nodes[id].Palindrome
		for _, right := range []bool{false, true} {
			edges := v.side(id, right)
			switch {
			case palindrome || len(edges) > 1:
				for _, e := range edges {
					cuts = append(cuts, cut{id, right, e})
				}
			case len(edges) == 1 && edges[0].To == id:
				cuts = append(cuts, cut{id, right, edges[0]})
			}
		}
	}
	for _, c := range cuts {
		v.removeEdge(c.id, c.right, c.edge)
	}
}

// Build returns the contigs of a graph. Every live node ends up in exactly one contig.
func (builder *Builder) Build(g *graph.Graph) ([]Contig, error) {
	v := newView(g)
	v.cutAmbiguous()

	visited := make(map[int]int, g.LiveCount())
	contigs := []Contig{}
	add := func(path graph.Path) {
		for _, id := range path.Nodes {
			visited[id]++
		}
		contigs = append(contigs, Contig{
			Seq:      g.PathSequence(path),
			Path:     path,
			Coverage: g.PathCoverage(path),
		})
	}
	live := g.LiveNodes()

	// isolated nodes and then the paths that start at an end
	for _, id := range live {
		if visited[id] != 0 {
			continue
		}
		left, right := len(v.left[id]), len(v.right[id])
		switch {
		case left == 0 && right == 0:
			add(graph.Path{Nodes: []int{id}, Orientations: []bool{true}})
		case left == 0:
			add(v.trace(id, true, visited))
		case right == 0:
			add(v.trace(id, false, visited))
		}
	}

	// anything left over sits on a cycle
	for _, id := range live {
		if visited[id] == 0 {
			add(v.trace(id, true, visited))
		}
	}

	for _, id := range live {
		if visited[id] != 1 {
			return nil, errors.Wrapf(ErrPartition, "node %d was visited %d times", id, visited[id])
		}
	}
	return contigs, nil
}

// trace follows the single extensions from a node until a dead end or a node that has already been used
func (v *view) trace(id int, forward bool, visited map[int]int) graph.Path {
	path := graph.Path{}
	seen := map[int]struct{}{}
	for {
		path.Append(id, forward)
		seen[id] = struct{}{}
		ahead := v.extensions(id, forward, true)
		if len(ahead) != 1 {
			return path
		}
		next := ahead[0].To
		if _, ok := seen[next]; ok || visited[next] != 0 {
			return path
		}
		id, forward = next, graph.NextOrientation(ahead[0], forward)
	}
}
