package scaffold

import (
	"sort"
)

// PathPurger tidies up the paths found by TracePath, removing any path held within another, joining
// paths that overlap end to end and making sure no contig is placed twice
type PathPurger struct{}

// NewPathPurger is the constructor
func NewPathPurger() *PathPurger {
	return &PathPurger{}
}

// Purge returns the reduced set of paths, longest first
func (purger *PathPurger) Purge(paths []ScaffoldPath) []ScaffoldPath {
	kept := removeContained(paths)
	for {
		merged := false
		for i := 0; i < len(kept) && !merged; i++ {
			for j := 0; j < len(kept) && !merged; j++ {
				if i == j {
					continue
				}
				if joined, ok := mergePaths(kept[i], kept[j]); ok {
					kept[i] = joined
					kept = append(kept[:j], kept[j+1:]...)
					kept = removeContained(kept)
					merged = true
				}
			}
		}
		if !merged {
			break
		}
	}
	return separate(kept)
}

// separate walks the paths longest first and keeps the runs of each path that avoid the contigs already placed,
// runs of a single contig are not kept
func separate(paths []ScaffoldPath) []ScaffoldPath {
	sortPaths(paths)
	placed := make(map[int]struct{})
	kept := []ScaffoldPath{}
	for _, p := range paths {
		runs := []ScaffoldPath{}
		run := ScaffoldPath{}
		for _, step := range p {
			if _, ok := placed[step.Contig]; ok {
				runs = append(runs, run)
				run = ScaffoldPath{}
				continue
			}
			if len(run) == 0 {
				step.Gap, step.Overlap = 0, false
			}
			run = append(run, step)
		}
		runs = append(runs, run)
		for _, r := range runs {
			if len(r) < 2 {
				continue
			}
			for _, step := range r {
				placed[step.Contig] = struct{}{}
			}
			kept = append(kept, r)
		}
	}
	sortPaths(kept)
	return kept
}

// sortPaths orders paths by length and then key
func sortPaths(paths []ScaffoldPath) {
	sort.SliceStable(paths, func(i, j int) bool {
		if len(paths[i]) != len(paths[j]) {
			return len(paths[i]) > len(paths[j])
		}
		return paths[i].Key() < paths[j].Key()
	})
}

// removeContained drops empty paths and any path that sits within a longer (or equal, earlier) path
func removeContained(paths []ScaffoldPath) []ScaffoldPath {
	sorted := []ScaffoldPath{}
	for _, p := range paths {
		if len(p) != 0 {
			sorted = append(sorted, p)
		}
	}
	sortPaths(sorted)
	kept := []ScaffoldPath{}
	for _, p := range sorted {
		contained := false
		for _, q := range kept {
			if containsRun(q, p) || containsRun(q, p.Reverse()) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, p)
		}
	}
	return kept
}

// containsRun returns true if p appears as a contiguous run of q
func containsRun(q, p ScaffoldPath) bool {
	for i := 0; i+len(p) <= len(q); i++ {
		if sameSteps(q[i:i+len(p)], p) {
			return true
		}
	}
	return false
}

// mergePaths joins b onto the end of a where the end of a matches the start of b (in either orientation of b),
// using the longest such overlap. Joins that would use a contig twice are refused.
func mergePaths(a, b ScaffoldPath) (ScaffoldPath, bool) {
	for _, candidate := range []ScaffoldPath{b, b.Reverse()} {
		max := len(a)
		if len(candidate) < max {
			max = len(candidate)
		}
		for overlap := max; overlap > 0; overlap-- {
			if !sameSteps(a[len(a)-overlap:], candidate[:overlap]) {
				continue
			}
			joined := append(append(ScaffoldPath{}, a...), candidate[overlap:]...)
			if hasDuplicates(joined) {
				break
			}
			return joined, true
		}
	}
	return nil, false
}

// hasDuplicates returns true if a contig appears more than once on a path
func hasDuplicates(p ScaffoldPath) bool {
	seen := make(map[int]struct{}, len(p))
	for _, step := range p {
		if _, ok := seen[step.Contig]; ok {
			return true
		}
		seen[step.Contig] = struct{}{}
	}
	return false
}
