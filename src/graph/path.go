package graph

import (
	"github.com/will-rowe/padena/src/kmer"
)

// Path is a walk through the graph, each node is paired with the orientation it is read in
// (true means the stored canonical k-mer is read as is)
type Path struct {
	Nodes        []int
	Orientations []bool
}

// Append adds a node to the end of a path
func (p *Path) Append(id int, forward bool) {
	p.Nodes = append(p.Nodes, id)
	p.Orientations = append(p.Orientations, forward)
}

// Len returns the number of nodes in a path
func (p Path) Len() int {
	return len(p.Nodes)
}

// Contains returns true if a node is on the path
func (p Path) Contains(id int) bool {
	for _, n := range p.Nodes {
		if n == id {
			return true
		}
	}
	return false
}

// Extensions returns the edges leaving a node in the direction of travel, for a given reading orientation
func (g *Graph) Extensions(id int, forward, rightward bool) []Edge {
	if forward == rightward {
		return g.Nodes[id].Right
	}
	return g.Nodes[id].Left
}

// NextOrientation returns the reading orientation of the neighbour reached by following an edge
func NextOrientation(e Edge, forward bool) bool {
	return e.Same == forward
}

// OrientedKmer returns the k-mer of a node in a given reading orientation
func (g *Graph) OrientedKmer(id int, forward bool) kmer.Kmer {
	if forward {
		return g.Nodes[id].Kmer
	}
	return kmer.ReverseComplement(g.Nodes[id].Kmer, g.K)
}

// NodeSequence returns the sequence of a node in a given reading orientation
func (g *Graph) NodeSequence(id int, forward bool) []byte {
	return kmer.Decode(g.OrientedKmer(id, forward), g.K)
}

// PathSequence joins the k-mers of a path, each node after the first adds one base
func (g *Graph) PathSequence(p Path) []byte {
	if p.Len() == 0 {
		return nil
	}
	seq := make([]byte, 0, g.K+p.Len()-1)
	seq = append(seq, g.NodeSequence(p.Nodes[0], p.Orientations[0])...)
	for i := 1; i < p.Len(); i++ {
		seq = append(seq, kmer.LastBase(g.OrientedKmer(p.Nodes[i], p.Orientations[i])))
	}
	return seq
}

// PathCoverage returns the mean k-mer count along a path
func (g *Graph) PathCoverage(p Path) float64 {
	if p.Len() == 0 {
		return 0
	}
	total := 0
	for _, id := range p.Nodes {
		total += g.Nodes[id].Count
	}
	return float64(total) / float64(p.Len())
}

// KmerCounts returns the count of every live node
func (g *Graph) KmerCounts() []int {
	counts := make([]int, 0, g.live)
	for id := range g.Nodes {
		if !g.Nodes[id].Deleted {
			counts = append(counts, g.Nodes[id].Count)
		}
	}
	return counts
}
