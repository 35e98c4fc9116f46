package purger

import (
	"github.com/pkg/errors"
	"github.com/will-rowe/padena/src/graph"
)

// Erode repeatedly removes graph end nodes whose count is below the threshold, returning the number removed.
// Nodes with links on both sides are never eroded.
func Erode(g *graph.Graph, threshold int) (int, error) {
	if threshold <= 1 {
		return 0, nil
	}
	total := 0
	queue := g.LiveNodes()
	for len(queue) != 0 {
		remove := []int{}
		for _, id := range queue {
			node := &g.Nodes[id]
			if node.Deleted || node.Count >= threshold {
				continue
			}
			if left, right := node.Degree(); left == 0 || right == 0 {
				remove = append(remove, id)
			}
		}
		if len(remove) == 0 {
			break
		}
		queue = touchedNodes(g, remove)
		total += g.RemoveNodes(remove)
	}
	if err := g.Validate(); err != nil {
		return total, errors.Wrap(err, "erosion left the graph inconsistent")
	}
	return total, nil
}
