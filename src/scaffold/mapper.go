package scaffold

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/will-rowe/padena/src/contig"
	"github.com/will-rowe/padena/src/kmer"
	"github.com/will-rowe/padena/src/seqio"
	"golang.org/x/sync/errgroup"
)

// OverlapType says whether a whole read maps to a contig
type OverlapType int

const (
	// FullOverlap means every base of the read is covered
	FullOverlap OverlapType = iota
	// PartialOverlap means only part of the read is covered
	PartialOverlap
)

// ReadMap is a run of read k-mers found consecutively on a contig
type ReadMap struct {
	ContigStart int // lowest contig position covered
	ReadStart   int // lowest read position covered
	Length      int
	Reverse     bool // the read maps to the reverse complement of the contig
	Overlap     OverlapType
}

// ReadContigMap holds the mappings of each read: read ID -> contig index -> runs
type ReadContigMap map[string]map[int][]ReadMap

// hit is an occurrence of a k-mer on a contig
type hit struct {
	contig  int
	pos     int
	forward bool // the contig holds the k-mer in its canonical orientation
}

// ReadContigMapper maps reads to contigs by shared k-mers
type ReadContigMapper struct {
	Workers int
	index   map[kmer.Kmer][]hit
}

// NewReadContigMapper is the constructor
func NewReadContigMapper(workers int) *ReadContigMapper {
	if workers < 1 {
		workers = 1
	}
	return &ReadContigMapper{Workers: workers}
}

// buildIndex records every k-mer position of the contigs
func (mapper *ReadContigMapper) buildIndex(contigs []contig.Contig, k int) {
	mapper.index = make(map[kmer.Kmer][]hit)
	for i, c := range contigs {
		it := kmer.NewIterator(c.Seq, k)
		for it.Next() {
			km, forward := it.Canonical()
			mapper.index[km] = append(mapper.index[km], hit{contig: i, pos: it.Position(), forward: forward})
		}
	}
}

// Map finds where each read sits on the contigs. Reads that do not map are left out of the result.
func (mapper *ReadContigMapper) Map(contigs []contig.Contig, reads []seqio.Sequence, k int) (ReadContigMap, error) {
	if err := kmer.CheckSize(k); err != nil {
		return nil, errors.Wrap(ErrConfig, err.Error())
	}
	seen := make(map[string]struct{}, len(reads))
	for _, read := range reads {
		if _, ok := seen[string(read.ID)]; ok {
			return nil, errors.Errorf("duplicate read ID: %v", string(read.ID))
		}
		seen[string(read.ID)] = struct{}{}
	}
	mapper.buildIndex(contigs, k)

	// each worker fills its own slots so no locking is needed
	results := make([]map[int][]ReadMap, len(reads))
	chunk := (len(reads) + mapper.Workers - 1) / mapper.Workers
	var eg errgroup.Group
	for start := 0; start < len(reads); start += chunk {
		start, end := start, start+chunk
		if end > len(reads) {
			end = len(reads)
		}
		eg.Go(func() error {
			for i := start; i < end; i++ {
				results[i] = mapper.mapRead(reads[i].Seq, k)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	readMap := make(ReadContigMap)
	for i, result := range results {
		if len(result) != 0 {
			readMap[string(reads[i].ID)] = result
		}
	}
	return readMap, nil
}

// diagonal groups hits from one read that could belong to the same run
type diagonal struct {
	contig  int
	reverse bool
	offset  int
}

// mapRead merges the k-mer hits of a read into runs
func (mapper *ReadContigMapper) mapRead(seq []byte, k int) map[int][]ReadMap {
	positions := make(map[diagonal][]int)
	order := []diagonal{}
	it := kmer.NewIterator(seq, k)
	for it.Next() {
		p := it.Position()
		km, forward := it.Canonical()
		for _, h := range mapper.index[km] {
			d := diagonal{contig: h.contig, reverse: forward != h.forward}
			if d.reverse {
				d.offset = h.pos + p
			} else {
				d.offset = h.pos - p
			}
			if _, ok := positions[d]; !ok {
				order = append(order, d)
			}
			positions[d] = append(positions[d], p)
		}
	}
	if len(order) == 0 {
		return nil
	}
	result := make(map[int][]ReadMap)
	for _, d := range order {
		ps := positions[d]
		runStart := 0
		for i := 1; i <= len(ps); i++ {
			if i < len(ps) && ps[i] == ps[i-1]+1 {
				continue
			}
			first, last := ps[runStart], ps[i-1]
			rm := ReadMap{
				ReadStart: first,
				Length:    k + last - first,
				Reverse:   d.reverse,
				Overlap:   PartialOverlap,
			}
			if d.reverse {
				rm.ContigStart = d.offset - last
			} else {
				rm.ContigStart = d.offset + first
			}
			if rm.Length == len(seq) {
				rm.Overlap = FullOverlap
			}
			result[d.contig] = append(result[d.contig], rm)
			runStart = i
		}
	}
	for c := range result {
		maps := result[c]
		sort.Slice(maps, func(i, j int) bool {
			if maps[i].ReadStart != maps[j].ReadStart {
				return maps[i].ReadStart < maps[j].ReadStart
			}
			if maps[i].ContigStart != maps[j].ContigStart {
				return maps[i].ContigStart < maps[j].ContigStart
			}
			return !maps[i].Reverse && maps[j].Reverse
		})
	}
	return result
}
