package scaffold

import (
	"math"

	"github.com/pkg/errors"
)

// TracePath searches the mate-pair links of a contig graph for chains of consistently placed contigs
type TracePath struct {
	Depth         int     // the most contigs a path can hold
	SDWindow      float64 // how many standard deviations a placement may be from a link estimate
	MaxExpansions int     // the most search states explored from one start
}

// NewTracePath is the constructor
func NewTracePath() *TracePath {
	return &TracePath{
		Depth:         10,
		SDWindow:      3,
		MaxExpansions: 1 << 16,
	}
}

// traceState is a partial path and the start position of each of its contigs
type traceState struct {
	path      ScaffoldPath
	positions []float64
	support   int
	mate      bool // the last step followed a mate link
}

// FindPaths returns the best path found from every oriented contig that has outgoing mate links
func (tp *TracePath) FindPaths(cg *ContigGraph) ([]ScaffoldPath, error) {
	if tp.Depth <= 0 {
		return nil, errors.Wrapf(ErrConfig, "trace depth must be positive (got %d)", tp.Depth)
	}
	if tp.SDWindow <= 0 {
		return nil, errors.Wrapf(ErrConfig, "SD window must be positive (got %v)", tp.SDWindow)
	}
	if tp.MaxExpansions <= 0 {
		return nil, errors.Wrapf(ErrConfig, "expansion cap must be positive (got %d)", tp.MaxExpansions)
	}
	paths := []ScaffoldPath{}
	for i := range cg.Contigs {
		for _, forward := range []bool{true, false} {
			start := OrientedContig{i, forward}
			if len(cg.MateLinks(start)) == 0 {
				continue
			}
			if best := tp.trace(cg, start); best != nil {
				paths = append(paths, best.path)
			}
		}
	}
	return paths, nil
}

// trace runs a depth-first search from one oriented contig and returns the best path. The search follows
// mate links and exact overlaps, a path may only end on an overlap if that reaches a mate of the start.
func (tp *TracePath) trace(cg *ContigGraph, start OrientedContig) *traceState {
	partners := make(map[int]struct{})
	for _, e := range cg.MateLinks(start) {
		partners[e.To.Contig] = struct{}{}
	}
	covered := func(s *traceState) int {
		n := 0
		for _, step := range s.path[1:] {
			if _, ok := partners[step.Contig]; ok {
				n++
			}
		}
		return n
	}
	overlaps := func(s *traceState) int {
		n := 0
		for i := 1; i < len(s.path); i++ {
			if cg.HasOverlap(s.path[i-1].OrientedContig(), s.path[i].OrientedContig()) {
				n++
			}
		}
		return n
	}
	eligible := func(s *traceState) bool {
		if len(s.path) < 2 {
			return false
		}
		_, ok := partners[s.path[len(s.path)-1].Contig]
		return ok || s.mate
	}
	better := func(a, b *traceState) bool {
		if b == nil {
			return true
		}
		if ca, cb := covered(a), covered(b); ca != cb {
			return ca > cb
		}
		if oa, ob := overlaps(a), overlaps(b); oa != ob {
			return oa > ob
		}
		if len(a.path) != len(b.path) {
			return len(a.path) > len(b.path)
		}
		if a.support != b.support {
			return a.support > b.support
		}
		return a.path.Key() < b.path.Key()
	}

	var best *traceState
	stack := []*traceState{{
		path:      ScaffoldPath{{Contig: start.Contig, Forward: start.Forward}},
		positions: []float64{0},
	}}
	for expansions := 0; len(stack) != 0 && expansions < tp.MaxExpansions; expansions++ {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if eligible(s) && better(s, best) {
			best = s
		}
		if len(s.path) >= tp.Depth {
			continue
		}
		last := len(s.path) - 1
		end := s.positions[last] + float64(cg.Contigs[s.path[last].Contig].Len())
		edges := append(cg.MateLinks(s.path[last].OrientedContig()), cg.OverlapEdges(s.path[last].OrientedContig())...)

		// push in reverse so the best supported mate link is explored first
		for i := len(edges) - 1; i >= 0; i-- {
			e := edges[i]
			if s.path.Contains(e.To.Contig) {
				continue
			}
			pos := end + e.Gap
			if !tp.consistent(cg, s, e.To, pos) {
				continue
			}
			stack = append(stack, &traceState{
				path:      append(append(ScaffoldPath{}, s.path...), PathStep{Contig: e.To.Contig, Forward: e.To.Forward, Gap: e.Gap, Overlap: e.Overlap}),
				positions: append(append([]float64{}, s.positions...), pos),
				support:   s.support + e.Support,
				mate:      e.Mate,
			})
		}
	}
	return best
}

// consistent checks a placement against the mate links of every contig already on the path. Where a placed
// contig has links to the candidate in more than one layout, one of them has to agree.
func (tp *TracePath) consistent(cg *ContigGraph, s *traceState, candidate OrientedContig, pos float64) bool {
	for i, step := range s.path {
		member := step.OrientedContig()
		end := s.positions[i] + float64(cg.Contigs[step.Contig].Len())
		linked, agreed := false, false
		for _, e := range cg.MateLinks(member) {
			if e.To.Contig != candidate.Contig {
				continue
			}
			linked = true
			if e.To.Forward == candidate.Forward && math.Abs(pos-(end+e.Gap)) <= tp.SDWindow*math.Max(e.SD, 1) {
				agreed = true
			}
		}
		if linked && !agreed {
			return false
		}

		// the candidate should not be expected before a contig already placed
		for _, e := range cg.MateLinks(candidate) {
			if e.To == member {
				return false
			}
		}
	}
	return true
}
