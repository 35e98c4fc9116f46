package scaffold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/will-rowe/padena/src/contig"
	"github.com/will-rowe/padena/src/seqio"
)

// toContigs is a helper to wrap sequences as contigs
func toContigs(seqs ...string) []contig.Contig {
	contigs := make([]contig.Contig, len(seqs))
	for i, s := range seqs {
		contigs[i] = contig.Contig{Seq: []byte(s)}
	}
	return contigs
}

// numberedReads gives each sequence its index as the read ID
func numberedReads(seqs ...string) []seqio.Sequence {
	reads := make([]seqio.Sequence, len(seqs))
	for i, s := range seqs {
		reads[i] = seqio.NewSequence(string(rune('0'+i)), []byte(s))
	}
	return reads
}

// mapperCase is a read and where it should land
type mapperCase struct {
	read        string
	contig      int
	length      int
	contigStart int
}

func runMapperCases(t *testing.T, contigs []contig.Contig, k int, cases []mapperCase) {
	seqs := make([]string, len(cases))
	for i, c := range cases {
		seqs[i] = c.read
	}
	reads := numberedReads(seqs...)
	readMap, err := NewReadContigMapper(2).Map(contigs, reads, k)
	require.NoError(t, err)
	require.Len(t, readMap, len(reads))
	for i, c := range cases {
		maps := readMap[string(reads[i].ID)][c.contig]
		require.NotEmpty(t, maps, "read %v did not map", c.read)
		assert.Equal(t, c.length, maps[0].Length, c.read)
		assert.Equal(t, c.contigStart, maps[0].ContigStart, c.read)
		assert.Equal(t, 0, maps[0].ReadStart, c.read)
		assert.Equal(t, FullOverlap, maps[0].Overlap, c.read)
	}
}

func TestMapReadToContig(t *testing.T) {
	contigs := toContigs("TCTGATAAGG")
	for _, read := range []string{"CTGATAAGG", "CCTTATCAG"} {
		readMap, err := NewReadContigMapper(1).Map(contigs, numberedReads(read), 6)
		require.NoError(t, err)
		maps := readMap["0"][0]
		require.Len(t, maps, 1)
		assert.Equal(t, 9, maps[0].Length)
		assert.Equal(t, 1, maps[0].ContigStart)
		assert.Equal(t, 0, maps[0].ReadStart)
		assert.Equal(t, FullOverlap, maps[0].Overlap)
		assert.Equal(t, read == "CCTTATCAG", maps[0].Reverse)
	}
}

func TestMapReadsSingleContig(t *testing.T) {
	runMapperCases(t, toContigs("GATGCCTCCTATC"), 6, []mapperCase{
		{"GATGCCTC", 0, 8, 0},
		{"CCTCCTAT", 0, 8, 4},
		{"TCCTATC", 0, 7, 6},
		{"GCCTCCTAT", 0, 9, 3},
		{"TGCCTCCT", 0, 8, 2},
	})
	runMapperCases(t, toContigs("ATGCCTCCTATCTTAGCG"), 6, []mapperCase{
		{"ATGCCTC", 0, 7, 0},
		{"CCTCCTAT", 0, 8, 3},
		{"TCCTATC", 0, 7, 5},
		{"TGCCTCCT", 0, 8, 1},
		{"ATCTTAGC", 0, 8, 9},
		{"CTATCTTAG", 0, 9, 7},
		{"CTTAGCG", 0, 7, 11},
		{"GCCTCCTAT", 0, 9, 2},
	})
}

func TestMapReadsTwoContigs(t *testing.T) {
	runMapperCases(t, toContigs("GATCTGATAAGG", "TTTTTGATGGCA"), 6, []mapperCase{
		{"GATCTGATAA", 0, 10, 0},
		{"ATCTGATAAG", 0, 10, 1},
		{"TCTGATAAGG", 0, 10, 2},
		{"TTTTTGATGG", 1, 10, 0},
		{"TTTTGATGGC", 1, 10, 1},
		{"TTTGATGGCA", 1, 10, 2},
	})
}

func TestMapPartialAndMissing(t *testing.T) {
	contigs := toContigs("GATCTGATAAGG")
	readMap, err := NewReadContigMapper(1).Map(contigs, numberedReads("CTGATACCCCCC", "CCCCCCCCCC"), 6)
	require.NoError(t, err)
	require.Len(t, readMap, 1, "unmapped reads should be left out")
	maps := readMap["0"][0]
	require.Len(t, maps, 1)
	assert.Equal(t, PartialOverlap, maps[0].Overlap)
	assert.Equal(t, 6, maps[0].Length)
	assert.Equal(t, 3, maps[0].ContigStart)
}

func TestMapErrors(t *testing.T) {
	contigs := toContigs("GATCTGATAAGG")
	reads := []seqio.Sequence{seqio.NewSequence("r", []byte("GATCTGA")), seqio.NewSequence("r", []byte("TGATAAG"))}
	_, err := NewReadContigMapper(1).Map(contigs, reads, 6)
	assert.Error(t, err, "duplicate read IDs should be rejected")
	_, err = NewReadContigMapper(1).Map(contigs, reads[:1], 0)
	assert.Error(t, err)
}
