// Package reporting writes the read mappings of an assembly as BAM and summarises contig and k-mer coverage.
package reporting

import (
	"io"
	"sort"
	"strconv"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"
	"github.com/will-rowe/padena/src/contig"
	"github.com/will-rowe/padena/src/scaffold"
	"github.com/will-rowe/padena/src/seqio"
	"github.com/will-rowe/padena/src/version"
)

// ContigName is the reference name used for a contig
func ContigName(id int) string {
	return "contig_" + strconv.Itoa(id)
}

// References converts the contigs to SAM references
func References(contigs []contig.Contig) ([]*sam.Reference, error) {
	refs := make([]*sam.Reference, len(contigs))
	for i, c := range contigs {
		ref, err := sam.NewReference(ContigName(i), "", "", c.Len(), nil, nil)
		if err != nil {
			return nil, err
		}
		refs[i] = ref
	}
	return refs, nil
}

// WriteBAM writes a record for every read mapping, returning the number of records written.
// Only the first mapping of a read is primary.
func WriteBAM(w io.Writer, contigs []contig.Contig, readMap scaffold.ReadContigMap, reads []seqio.Sequence) (int, error) {
	refs, err := References(contigs)
	if err != nil {
		return 0, err
	}
	header, err := sam.NewHeader(nil, refs)
	if err != nil {
		return 0, errors.Wrap(err, "could not create SAM header")
	}
	programInfo := sam.NewProgram("1", "padena", "padena assemble", "", version.GetVersion())
	if err := header.AddProgram(programInfo); err != nil {
		return 0, err
	}
	bw, err := bam.NewWriter(w, header, 0)
	if err != nil {
		return 0, errors.Wrap(err, "could not create BAM writer")
	}
	written := 0
	for _, read := range reads {
		mappings, ok := readMap[string(read.ID)]
		if !ok {
			continue
		}
		ids := make([]int, 0, len(mappings))
		total := 0
		for id := range mappings {
			ids = append(ids, id)
			total += len(mappings[id])
		}
		sort.Ints(ids)
		counter := 0
		for _, id := range ids {
			for _, rm := range mappings[id] {
				record := newRecord(read, refs[id], rm)
				if total > 1 {
					record.MapQ = 0
				}
				if counter != 0 {
					record.Flags |= sam.Secondary
				}
				if err := bw.Write(record); err != nil {
					return written, errors.Wrapf(err, "could not write record for %v", string(read.ID))
				}
				counter++
				written++
			}
		}
	}
	return written, bw.Close()
}

// newRecord builds an alignment record for one mapping, any part of the read outside the mapping is soft clipped
func newRecord(read seqio.Sequence, ref *sam.Reference, rm scaffold.ReadMap) *sam.Record {
	seq := read.Seq
	before, after := rm.ReadStart, len(read.Seq)-rm.ReadStart-rm.Length
	if rm.Reverse {
		seq = seqio.ReverseComplement(read.Seq)
		before, after = after, before
	}
	qual := make([]byte, len(seq))
	for i := range qual {
		qual[i] = 0xff
	}
	record := &sam.Record{
		Name: string(read.ID),
		Seq:  sam.NewSeq(seq),
		Qual: qual,
		Ref:  ref,
		Pos:  rm.ContigStart,
		MapQ: 30,
	}
	cigar := sam.Cigar{}
	if before > 0 {
		cigar = append(cigar, sam.NewCigarOp(sam.CigarSoftClipped, before))
	}
	cigar = append(cigar, sam.NewCigarOp(sam.CigarMatch, rm.Length))
	if after > 0 {
		cigar = append(cigar, sam.NewCigarOp(sam.CigarSoftClipped, after))
	}
	record.Cigar = cigar
	if rm.Reverse {
		record.Flags |= sam.Reverse
	}
	return record
}
