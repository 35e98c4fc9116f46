package purger

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/will-rowe/padena/src/graph"
)

// RedundantPathsPurger collapses bubbles: paths that diverge from a branch node and reconverge on the same node
type RedundantPathsPurger struct {
	LengthThreshold int // the maximum number of nodes in a diverging path
}

// NewRedundantPathsPurger is the constructor
func NewRedundantPathsPurger(threshold int) *RedundantPathsPurger {
	return &RedundantPathsPurger{LengthThreshold: threshold}
}

// Bubble is a set of paths that share a start and end node
type Bubble struct {
	Paths []graph.Path
}

// start and end return the shared ends of a bubble
func (b Bubble) start() int { return b.Paths[0].Nodes[0] }
func (b Bubble) end() int   { return b.Paths[0].Nodes[b.Paths[0].Len()-1] }

// DetectErroneousNodes returns every bubble in the graph
func (purger *RedundantPathsPurger) DetectErroneousNodes(g *graph.Graph) []Bubble {
	if purger.LengthThreshold < 2 {
		return nil
	}
	return purger.detect(g, g.LiveNodes())
}

// RemoveErroneousNodes collapses each bubble onto its best path, bubbles that overlap an earlier collapse are skipped.
// It returns the number of nodes removed.
func (purger *RedundantPathsPurger) RemoveErroneousNodes(g *graph.Graph, bubbles []Bubble) int {
	removed := 0
	for _, bubble := range bubbles {
		if bubbleTouched(g, bubble) {
			continue
		}
		best := bestPath(g, bubble.Paths)
		keep := make(map[int]struct{})
		for _, id := range bubble.Paths[best].Nodes {
			keep[id] = struct{}{}
		}
		losers := []int{}
		for i, p := range bubble.Paths {
			if i == best {
				continue
			}
			for _, id := range p.Nodes[1 : p.Len()-1] {
				if _, ok := keep[id]; !ok {
					losers = append(losers, id)
				}
			}
		}
		removed += g.RemoveNodes(losers)
	}
	return removed
}

// Purge collapses bubbles until none remain, after the first pass only nodes near a collapsed bubble are examined
func (purger *RedundantPathsPurger) Purge(g *graph.Graph) (int, error) {
	if purger.LengthThreshold < 2 {
		return 0, nil
	}
	total := 0
	candidates := g.LiveNodes()
	for len(candidates) != 0 {
		bubbles := purger.detect(g, candidates)
		if len(bubbles) == 0 {
			break
		}
		touched := []int{}
		for _, b := range bubbles {
			touched = append(touched, b.start(), b.end())
		}
		removed := purger.RemoveErroneousNodes(g, bubbles)
		if removed == 0 {
			break
		}
		total += removed
		candidates = g.Within(touched, purger.LengthThreshold+1)
	}
	if err := g.Validate(); err != nil {
		return total, errors.Wrap(err, "redundant path purge left the graph inconsistent")
	}
	return total, nil
}

// detect looks for a bubble on each side of every branching candidate node
func (purger *RedundantPathsPurger) detect(g *graph.Graph, candidates []int) []Bubble {
	bubbles := []Bubble{}
	for _, id := range candidates {
		if g.Nodes[id].Deleted {
			continue
		}
		for _, forward := range []bool{true, false} {
			if len(g.Extensions(id, forward, true)) < 2 {
				continue
			}
			if bubble, ok := purger.expand(g, id, forward); ok {
				bubbles = append(bubbles, bubble)
			}
		}
	}
	return bubbles
}

// pathState is a diverging path being extended
type pathState struct {
	path graph.Path
	done bool
}

// visit records where a path reached a node
type visit struct {
	path    int
	forward bool
}

// expand grows the diverging paths from a branch node breadth first until two of them reach the same
// node in the same orientation or none can be extended within the length threshold
func (purger *RedundantPathsPurger) expand(g *graph.Graph, start int, forward bool) (Bubble, bool) {
	paths := []*pathState{}
	seen := make(map[int][]visit)
	converged, convergedForward := -1, false

	// step records that a path has reached a node and checks for convergence
	step := func(pi, id int, orientation bool) {
		p := paths[pi]
		p.path.Append(id, orientation)
		for _, v := range seen[id] {
			if v.path != pi && v.forward == orientation && converged == -1 {
				converged, convergedForward = id, orientation
			}
		}
		seen[id] = append(seen[id], visit{pi, orientation})

		// stop at nodes that are also entered from elsewhere
		if len(g.Extensions(id, orientation, false)) > 1 {
			p.done = true
		}
	}
	for _, e := range g.Extensions(start, forward, true) {
		if e.To == start {
			continue
		}
		p := &pathState{}
		p.path.Append(start, forward)
		paths = append(paths, p)
		step(len(paths)-1, e.To, graph.NextOrientation(e, forward))
	}
	for converged == -1 {
		extended := false
		for pi, p := range paths {
			if p.done {
				continue
			}
			if p.path.Len() > purger.LengthThreshold {
				p.done = true
				continue
			}
			last := p.path.Len() - 1
			ext := g.Extensions(p.path.Nodes[last], p.path.Orientations[last], true)
			if len(ext) != 1 || ext[0].To == start || p.path.Contains(ext[0].To) {
				p.done = true
				continue
			}
			step(pi, ext[0].To, graph.NextOrientation(ext[0], p.path.Orientations[last]))
			extended = true
			if converged != -1 {
				break
			}
		}
		if !extended {
			break
		}
	}
	if converged == -1 {
		return Bubble{}, false
	}

	// trim the paths that reached the convergent node
	bubble := Bubble{}
	for _, p := range paths {
		for i, id := range p.path.Nodes {
			if i > 0 && id == converged && p.path.Orientations[i] == convergedForward {
				bubble.Paths = append(bubble.Paths, graph.Path{
					Nodes:        append([]int(nil), p.path.Nodes[:i+1]...),
					Orientations: append([]bool(nil), p.path.Orientations[:i+1]...),
				})
				break
			}
		}
	}
	if len(bubble.Paths) < 2 {
		return Bubble{}, false
	}
	return bubble, true
}

// bestPath picks the path with the highest mean k-mer count, ties go to the path whose k-mers sort first
func bestPath(g *graph.Graph, paths []graph.Path) int {
	order := make([]int, len(paths))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := paths[order[a]], paths[order[b]]
		ca, cb := g.PathCoverage(pa), g.PathCoverage(pb)
		if ca != cb {
			return ca > cb
		}
		return kmerLess(g, pa, pb)
	})
	return order[0]
}

// kmerLess compares two paths by the k-mer values of their nodes
func kmerLess(g *graph.Graph, a, b graph.Path) bool {
	for i := 0; i < a.Len() && i < b.Len(); i++ {
		ka, kb := g.OrientedKmer(a.Nodes[i], a.Orientations[i]), g.OrientedKmer(b.Nodes[i], b.Orientations[i])
		if ka != kb {
			return ka < kb
		}
	}
	return a.Len() < b.Len()
}

// bubbleTouched reports whether any node of a bubble has already been removed
func bubbleTouched(g *graph.Graph, b Bubble) bool {
	for _, p := range b.Paths {
		for _, id := range p.Nodes {
			if g.Nodes[id].Deleted {
				return true
			}
		}
	}
	return false
}
