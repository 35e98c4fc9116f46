// Package purger removes erroneous nodes from the de Bruijn graph: short dead-end branches (dangling links),
// bubbles (redundant paths) and low coverage graph ends.
package purger

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/will-rowe/padena/src/graph"
)

// DanglingLinksPurger removes chains of nodes that hang off the graph
type DanglingLinksPurger struct {
	LengthThreshold int // the maximum number of nodes in a chain that will be removed
}

// NewDanglingLinksPurger is the constructor
func NewDanglingLinksPurger(threshold int) *DanglingLinksPurger {
	return &DanglingLinksPurger{LengthThreshold: threshold}
}

// DetectErroneousNodes returns every dangling link in the graph
func (purger *DanglingLinksPurger) DetectErroneousNodes(g *graph.Graph) []graph.Path {
	if purger.LengthThreshold <= 0 {
		return nil
	}
	return purger.detect(g, g.LiveNodes())
}

// RemoveErroneousNodes deletes the nodes of a set of paths from the graph, returning the number removed
func (purger *DanglingLinksPurger) RemoveErroneousNodes(g *graph.Graph, paths []graph.Path) int {
	return g.RemoveNodes(pathNodes(paths))
}

// Purge removes dangling links until no more can be found. Removing a chain can expose a new one, so after
// the first pass only the neighbourhood of the removed nodes is examined again.
func (purger *DanglingLinksPurger) Purge(g *graph.Graph) (int, error) {
	if purger.LengthThreshold <= 0 {
		return 0, nil
	}
	total := 0
	candidates := g.LiveNodes()
	for len(candidates) != 0 {
		links := purger.detect(g, candidates)
		if len(links) == 0 {
			break
		}
		removed := pathNodes(links)
		touched := touchedNodes(g, removed)
		total += g.RemoveNodes(removed)
		candidates = g.Within(touched, purger.LengthThreshold+1)
	}
	if err := g.Validate(); err != nil {
		return total, errors.Wrap(err, "dangling link purge left the graph inconsistent")
	}
	return total, nil
}

// PurgeIncremental runs the purge at every threshold from 1 up to the configured threshold, so that the
// shortest links are cleared before longer ones are measured
func (purger *DanglingLinksPurger) PurgeIncremental(g *graph.Graph) (int, error) {
	total := 0
	for t := 1; t <= purger.LengthThreshold; t++ {
		removed, err := (&DanglingLinksPurger{LengthThreshold: t}).Purge(g)
		total += removed
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// detect traces the dangling link from each candidate end node
func (purger *DanglingLinksPurger) detect(g *graph.Graph, candidates []int) []graph.Path {
	links := []graph.Path{}
	for _, id := range candidates {
		node := &g.Nodes[id]
		if node.Deleted {
			continue
		}
		left, right := node.Degree()
		var link graph.Path
		switch {
		case left == 0 && right == 0:
			link.Append(id, true)
		case right == 0:
			link = purger.trace(g, id, false)
		case left == 0:
			link = purger.trace(g, id, true)
		default:
			continue
		}
		if link.Len() != 0 {
			links = append(links, link)
		}
	}
	return links
}

// trace walks away from an end node until it reaches a branch point or a dead end, returning an empty path
// if the chain grows beyond the threshold
func (purger *DanglingLinksPurger) trace(g *graph.Graph, id int, forward bool) graph.Path {
	link := graph.Path{}
	for {
		ahead := g.Extensions(id, forward, true)
		behind := g.Extensions(id, forward, false)

		// a node entered from more than one direction joins the rest of the graph, stop before it
		if len(ahead) != 0 && len(behind) > 1 {
			return link
		}
		if link.Contains(id) {
			return link
		}
		if link.Len() >= purger.LengthThreshold {
			return graph.Path{}
		}
		link.Append(id, forward)
		if len(ahead) != 1 {
			return link
		}
		id, forward = ahead[0].To, graph.NextOrientation(ahead[0], forward)
	}
}

// pathNodes collects the distinct node IDs of a set of paths, in ID order
func pathNodes(paths []graph.Path) []int {
	seen := make(map[int]struct{})
	ids := []int{}
	for _, p := range paths {
		for _, id := range p.Nodes {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	sort.Ints(ids)
	return ids
}

// touchedNodes returns the live neighbours of a set of nodes that are about to be removed
func touchedNodes(g *graph.Graph, ids []int) []int {
	removing := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		removing[id] = struct{}{}
	}
	touched := []int{}
	for _, id := range ids {
		for _, n := range g.Neighbours(id) {
			if _, ok := removing[n]; !ok {
				touched = append(touched, n)
			}
		}
	}
	return touched
}
