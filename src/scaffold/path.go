package scaffold

import (
	"strings"
)

// PathStep is one contig of a scaffold path
type PathStep struct {
	Contig  int
	Forward bool
	Gap     float64 // distance from the previous step, 0 for the first step
	Overlap bool    // the contig is thought to overlap the previous step
}

// OrientedContig returns the contig of a step as it is read on the path
func (step PathStep) OrientedContig() OrientedContig {
	return OrientedContig{step.Contig, step.Forward}
}

// ScaffoldPath is an ordered run of oriented contigs
type ScaffoldPath []PathStep

// Reverse returns the path read from the other end, each gap moves with the join it describes
func (p ScaffoldPath) Reverse() ScaffoldPath {
	n := len(p)
	rev := make(ScaffoldPath, n)
	for j := 0; j < n; j++ {
		step := p[n-1-j]
		rev[j] = PathStep{Contig: step.Contig, Forward: !step.Forward}
		if j > 0 {
			rev[j].Gap, rev[j].Overlap = p[n-j].Gap, p[n-j].Overlap
		}
	}
	return rev
}

// Contains returns true if a contig is on the path in either orientation
func (p ScaffoldPath) Contains(contig int) bool {
	for _, step := range p {
		if step.Contig == contig {
			return true
		}
	}
	return false
}

// Key identifies a path by its oriented contigs
func (p ScaffoldPath) Key() string {
	names := make([]string, len(p))
	for i, step := range p {
		names[i] = step.OrientedContig().String()
	}
	return strings.Join(names, ",")
}

// sameSteps compares the oriented contigs of two runs of steps
func sameSteps(a, b []PathStep) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].OrientedContig() != b[i].OrientedContig() {
			return false
		}
	}
	return true
}
