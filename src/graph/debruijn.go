// Package graph contains the de Bruijn graph used by PADENA. Nodes are canonical k-mers held in an arena
// (a slice indexed by node ID) and edges are stored as ID lists on the left and right of each node.
package graph

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/will-rowe/padena/src/kmer"
)

// ErrInconsistent is returned when an edge has no reciprocal edge on its neighbour
var ErrInconsistent = errors.New("graph is inconsistent")

// Edge links a node to a neighbour, Same is true when both nodes are read in the same orientation across the edge
type Edge struct {
	To   int
	Same bool
}

// Node is a canonical k-mer in the graph
// Note: Nodes are not set up for concurrent mutation, the graph is owned by a single stage once built
type Node struct {
	Kmer       kmer.Kmer
	Count      int
	Left       []Edge // extensions that prepend a base to the stored k-mer
	Right      []Edge // extensions that append a base to the stored k-mer
	Palindrome bool
	Deleted    bool
}

// Degree returns the number of edges on the left and right of a node
func (node *Node) Degree() (int, int) {
	return len(node.Left), len(node.Right)
}

// Graph is the de Bruijn graph
type Graph struct {
	K      int
	Nodes  []Node
	lookup map[kmer.Kmer]int
	live   int
}

// newGraph builds the node arena from a set of canonical k-mer counts and then links the nodes
func newGraph(k int, counts map[kmer.Kmer]int) *Graph {
	kmers := make([]kmer.Kmer, 0, len(counts))
	for km := range counts {
		kmers = append(kmers, km)
	}
	sort.Slice(kmers, func(i, j int) bool { return kmers[i] < kmers[j] })
	g := &Graph{
		K:      k,
		Nodes:  make([]Node, len(kmers)),
		lookup: make(map[kmer.Kmer]int, len(kmers)),
		live:   len(kmers),
	}
	for id, km := range kmers {
		g.Nodes[id] = Node{
			Kmer:       km,
			Count:      counts[km],
			Palindrome: kmer.IsPalindrome(km, k),
		}
		g.lookup[km] = id
	}
	g.generateLinks()
	return g
}

// generateLinks probes the four left and four right (k-1)-overlap extensions of every node
func (g *Graph) generateLinks() {
	mask := kmer.Mask(g.K)
	shift := 2 * uint(g.K-1)
	for id := range g.Nodes {
		node := &g.Nodes[id]
		for b := kmer.Kmer(0); b < 4; b++ {
			if to, same, ok := g.find((node.Kmer<<2 | b) & mask); ok {
				node.Right = addEdge(node.Right, Edge{To: to, Same: same})
			}
			if to, same, ok := g.find(b<<shift | node.Kmer>>2); ok {
				node.Left = addEdge(node.Left, Edge{To: to, Same: same})
			}
		}
	}
}

// find looks up the node holding a k-mer in either orientation
func (g *Graph) find(km kmer.Kmer) (int, bool, bool) {
	canonical, same := kmer.Canonical(km, g.K)
	id, ok := g.lookup[canonical]
	return id, same, ok
}

// addEdge appends an edge unless it is already present
func addEdge(edges []Edge, e Edge) []Edge {
	for _, existing := range edges {
		if existing == e {
			return edges
		}
	}
	return append(edges, e)
}

// NodeCount returns the number of nodes ever added to the graph, including deleted nodes
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// LiveCount returns the number of nodes that haven't been deleted
func (g *Graph) LiveCount() int {
	return g.live
}

// Lookup returns the ID of the node holding a k-mer (in either orientation)
func (g *Graph) Lookup(seq []byte) (int, bool) {
	if len(seq) != g.K {
		return 0, false
	}
	km, ok := kmer.Encode(seq)
	if !ok {
		return 0, false
	}
	id, _, found := g.find(km)
	if found && g.Nodes[id].Deleted {
		return 0, false
	}
	return id, found
}

// LiveNodes returns the IDs of all nodes that haven't been deleted, in ID order
func (g *Graph) LiveNodes() []int {
	ids := make([]int, 0, g.live)
	for id := range g.Nodes {
		if !g.Nodes[id].Deleted {
			ids = append(ids, id)
		}
	}
	return ids
}

// Neighbours returns the distinct live neighbours of a node, in ID order
func (g *Graph) Neighbours(id int) []int {
	seen := make(map[int]struct{})
	neighbours := []int{}
	for _, edges := range [][]Edge{g.Nodes[id].Left, g.Nodes[id].Right} {
		for _, e := range edges {
			if e.To == id || g.Nodes[e.To].Deleted {
				continue
			}
			if _, ok := seen[e.To]; !ok {
				seen[e.To] = struct{}{}
				neighbours = append(neighbours, e.To)
			}
		}
	}
	sort.Ints(neighbours)
	return neighbours
}

// Within returns the live nodes within a number of edges of the given nodes (the given nodes included if live)
func (g *Graph) Within(ids []int, radius int) []int {
	dist := make(map[int]int)
	queue := []int{}
	for _, id := range ids {
		if _, ok := dist[id]; !ok {
			dist[id] = 0
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if dist[id] == radius {
			continue
		}
		for _, edges := range [][]Edge{g.Nodes[id].Left, g.Nodes[id].Right} {
			for _, e := range edges {
				if _, ok := dist[e.To]; !ok {
					dist[e.To] = dist[id] + 1
					queue = append(queue, e.To)
				}
			}
		}
	}
	nodes := make([]int, 0, len(dist))
	for id := range dist {
		if !g.Nodes[id].Deleted {
			nodes = append(nodes, id)
		}
	}
	sort.Ints(nodes)
	return nodes
}

// RemoveNodes marks nodes as deleted and removes any edges pointing to them from live neighbours
func (g *Graph) RemoveNodes(ids []int) int {
	removed := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if g.Nodes[id].Deleted {
			continue
		}
		g.Nodes[id].Deleted = true
		removed[id] = struct{}{}
		g.live--
	}
	for id := range removed {
		node := &g.Nodes[id]
		for _, edges := range [][]Edge{node.Left, node.Right} {
			for _, e := range edges {
				neighbour := &g.Nodes[e.To]
				if neighbour.Deleted {
					continue
				}
				neighbour.Left = dropEdges(neighbour.Left, removed)
				neighbour.Right = dropEdges(neighbour.Right, removed)
			}
		}
	}
	for id := range removed {
		g.Nodes[id].Left = nil
		g.Nodes[id].Right = nil
	}
	return len(removed)
}

// dropEdges filters out any edges to the removed nodes
func dropEdges(edges []Edge, removed map[int]struct{}) []Edge {
	kept := edges[:0]
	for _, e := range edges {
		if _, ok := removed[e.To]; !ok {
			kept = append(kept, e)
		}
	}
	return kept
}

// ReciprocalSide returns the side of a neighbour that holds the reciprocal of an edge:
// the opposite side when the nodes are read in the same orientation, otherwise the same side
func ReciprocalSide(right, same bool) bool {
	if same {
		return !right
	}
	return right
}

// Validate checks that every edge between live nodes has a reciprocal edge on the neighbour,
// orientation is ignored when either node is a palindrome
func (g *Graph) Validate() error {
	for id := range g.Nodes {
		node := &g.Nodes[id]
		if node.Deleted {
			continue
		}
		for _, right := range []bool{false, true} {
			edges := node.Left
			if right {
				edges = node.Right
			}
			for _, e := range edges {
				neighbour := &g.Nodes[e.To]
				if neighbour.Deleted {
					return errors.Wrapf(ErrInconsistent, "node %d has an edge to deleted node %d", id, e.To)
				}
				back := neighbour.Left
				if ReciprocalSide(right, e.Same) {
					back = neighbour.Right
				}
				if hasEdge(back, id, e.Same) {
					continue
				}
				if (node.Palindrome || neighbour.Palindrome) && (hasEdge(neighbour.Left, id, true) || hasEdge(neighbour.Left, id, false) || hasEdge(neighbour.Right, id, true) || hasEdge(neighbour.Right, id, false)) {
					continue
				}
				return errors.Wrapf(ErrInconsistent, "edge %d->%d has no reciprocal edge", id, e.To)
			}
		}
	}
	return nil
}

func hasEdge(edges []Edge, to int, same bool) bool {
	for _, e := range edges {
		if e.To == to && e.Same == same {
			return true
		}
	}
	return false
}
