package scaffold

import (
	"bytes"
	"math"

	"github.com/pkg/errors"
	"github.com/will-rowe/padena/src/contig"
	"github.com/will-rowe/padena/src/kmer"
	"github.com/will-rowe/padena/src/seqio"
)

// Scaffold is a sequence built from one or more oriented contigs, gaps are filled with N
type Scaffold struct {
	Seq  []byte
	Path ScaffoldPath
}

// Result holds a scaffold run and the data used to build it
type Result struct {
	Scaffolds []Scaffold
	Paths     []ScaffoldPath
	Links     []Link
	Graph     *ContigGraph
	ReadMap   ReadContigMap
	Reads     []seqio.Sequence // the paired reads that were mapped
}

// GraphScaffoldBuilder runs the scaffolding steps
type GraphScaffoldBuilder struct {
	KmerLength    int
	Depth         int
	Redundancy    int
	SDWindow      float64
	MaxExpansions int
	Workers       int
}

// NewGraphScaffoldBuilder is the constructor, it sets the default search limits
func NewGraphScaffoldBuilder(k int) *GraphScaffoldBuilder {
	tp := NewTracePath()
	return &GraphScaffoldBuilder{
		KmerLength:    k,
		Depth:         tp.Depth,
		Redundancy:    2,
		SDWindow:      tp.SDWindow,
		MaxExpansions: tp.MaxExpansions,
		Workers:       1,
	}
}

// Validate checks the builder settings
func (builder *GraphScaffoldBuilder) Validate() error {
	if err := kmer.CheckSize(builder.KmerLength); err != nil {
		return errors.Wrap(ErrConfig, err.Error())
	}
	if builder.Depth <= 0 {
		return errors.Wrapf(ErrConfig, "depth must be positive (got %d)", builder.Depth)
	}
	if builder.Redundancy < 0 {
		return errors.Wrapf(ErrConfig, "redundancy can't be negative (got %d)", builder.Redundancy)
	}
	if builder.SDWindow <= 0 {
		return errors.Wrapf(ErrConfig, "SD window must be positive (got %v)", builder.SDWindow)
	}
	if builder.MaxExpansions <= 0 {
		return errors.Wrapf(ErrConfig, "expansion cap must be positive (got %d)", builder.MaxExpansions)
	}
	return nil
}

// BuildScaffold returns the scaffolds for a set of contigs
func (builder *GraphScaffoldBuilder) BuildScaffold(reads []seqio.Sequence, contigs []contig.Contig, libraries LibraryTable) ([]Scaffold, error) {
	result, err := builder.Run(reads, contigs, libraries)
	if err != nil {
		return nil, err
	}
	return result.Scaffolds, nil
}

// Run maps the mate pairs, estimates the contig distances, traces and purges the paths and then builds the scaffold sequences
func (builder *GraphScaffoldBuilder) Run(reads []seqio.Sequence, contigs []contig.Contig, libraries LibraryTable) (*Result, error) {
	if err := builder.Validate(); err != nil {
		return nil, err
	}
	result := &Result{
		Graph: NewContigGraph(contigs, builder.KmerLength),
	}

	// only clean reads that follow the mate-pair naming are any use here
	for _, read := range reads {
		if seqio.IsACGT(read.Seq) && IsMateRead(string(read.ID)) {
			result.Reads = append(result.Reads, read)
		}
	}
	readMap, err := NewReadContigMapper(builder.Workers).Map(contigs, result.Reads, builder.KmerLength)
	if err != nil {
		return nil, errors.Wrap(err, "could not map reads to contigs")
	}
	result.ReadMap = readMap

	mpm := NewMatePairMapper()
	cmp := mpm.MapToContigs(contigs, readMap, mpm.Map(result.Reads, libraries), libraries)
	cmp, err = NewOrientationBasedMatePairFilter().Filter(cmp, builder.Redundancy)
	if err != nil {
		return nil, err
	}
	result.Links = NewDistanceCalculator().Calculate(cmp)
	result.Graph.AddLinks(result.Links)

	tp := &TracePath{Depth: builder.Depth, SDWindow: builder.SDWindow, MaxExpansions: builder.MaxExpansions}
	paths, err := tp.FindPaths(result.Graph)
	if err != nil {
		return nil, err
	}
	result.Paths = NewPathPurger().Purge(paths)

	used := make(map[int]struct{})
	for _, p := range result.Paths {
		result.Scaffolds = append(result.Scaffolds, Scaffold{Seq: builder.stitch(result.Graph, p), Path: p})
		for _, step := range p {
			used[step.Contig] = struct{}{}
		}
	}
	for i := range contigs {
		if _, ok := used[i]; ok {
			continue
		}
		p := ScaffoldPath{{Contig: i, Forward: true}}
		result.Scaffolds = append(result.Scaffolds, Scaffold{Seq: append([]byte{}, contigs[i].Seq...), Path: p})
	}
	return result, nil
}

// stitch joins the contigs of a path into one sequence. Exact overlaps are merged, estimated overlaps are
// merged only where the sequences agree and every other join is filled with N.
func (builder *GraphScaffoldBuilder) stitch(cg *ContigGraph, p ScaffoldPath) []byte {
	seq := append([]byte{}, cg.Sequence(p[0].OrientedContig())...)
	for i := 1; i < len(p); i++ {
		next := cg.Sequence(p[i].OrientedContig())
		switch {
		case cg.HasOverlap(p[i-1].OrientedContig(), p[i].OrientedContig()):
			seq = append(seq, next[builder.KmerLength-1:]...)
		case p[i].Overlap:

			// without a shared k-1 the contigs are kept apart by a single N
			n := suffixPrefixOverlap(seq, next, builder.KmerLength-1)
			if n == 0 {
				seq = append(seq, 'N')
			}
			seq = append(seq, next[n:]...)
		case p[i].Gap < 0:
			trim := int(math.Round(-p[i].Gap))
			if trim > len(next) {
				trim = len(next)
			}
			seq = append(seq, next[trim:]...)
		default:
			seq = append(seq, bytes.Repeat([]byte("N"), gapLength(p[i].Gap))...)
			seq = append(seq, next...)
		}
	}
	return seq
}

// gapLength is the number of Ns for an estimated gap, a join that no sequence backs up always gets one
func gapLength(gap float64) int {
	n := int(math.Round(gap))
	if n < 1 {
		return 1
	}
	return n
}

// suffixPrefixOverlap returns the length of the longest suffix of a that is a prefix of b, if it is at least min bases long
func suffixPrefixOverlap(a, b []byte, min int) int {
	longest := len(a)
	if len(b) < longest {
		longest = len(b)
	}
	for n := longest; n >= min && n > 0; n-- {
		if bytes.Equal(a[len(a)-n:], b[:n]) {
			return n
		}
	}
	return 0
}
