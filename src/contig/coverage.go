package contig

import (
	"github.com/pkg/errors"
	"github.com/will-rowe/padena/src/graph"
)

// RemoveLowCoverage deletes the nodes of every contig whose mean k-mer count is below the threshold,
// returning the number of nodes removed
func RemoveLowCoverage(g *graph.Graph, threshold float64) (int, error) {
	if threshold <= 0 {
		return 0, nil
	}
	contigs, err := NewBuilder().Build(g)
	if err != nil {
		return 0, err
	}
	remove := []int{}
	for _, c := range contigs {
		if c.Coverage < threshold {
			remove = append(remove, c.Path.Nodes...)
		}
	}
	removed := g.RemoveNodes(remove)
	if err := g.Validate(); err != nil {
		return removed, errors.Wrap(err, "coverage removal left the graph inconsistent")
	}
	return removed, nil
}
