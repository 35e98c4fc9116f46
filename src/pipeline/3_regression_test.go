package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/will-rowe/padena/src/seqio"
)

// a small read set with a tandem repeat, a poly-T tail and three reads from the abc library
var regressionReads = [][2]string{
	{"10.x1:abc", "ATGCCTC"}, {"1", "CCTCCTAT"}, {"2", "TCCTATC"}, {"3", "TGCCTCCT"},
	{"4", "ATCTTAGC"}, {"5", "CTATCTTAG"}, {"6", "CTTAGCG"}, {"8.x1:abc", "GCCTCCTAT"},
	{"8.y1:abc", "TAGCGCGCTA"}, {"9.x1:abc", "AGCGCGC"}, {"7", "TTTTTT"}, {"8", "TTTTTAAA"},
	{"9", "TAAAAA"}, {"10", "TTTTAG"}, {"11", "TTTAGC"}, {"12", "GCGCGCCGCGCG"},
}

// canonicalSet collects sequences so that a sequence and its reverse complement are equal
func canonicalSet(seqs [][]byte) map[string]int {
	set := make(map[string]int, len(seqs))
	for _, seq := range seqs {
		s, r := string(seq), string(seqio.ReverseComplement(seq))
		if r < s {
			s = r
		}
		set[s]++
	}
	return set
}

func TestRegression(t *testing.T) {
	info := newTestInfo("")
	info.Assembler.KmerSize = 6
	info.Assembler.DanglingThreshold = 3
	info.Assembler.RedundantThreshold = 7
	info.Assembler.Scaffold = true
	info.Assembler.Libraries = []string{"abc:5:20"}
	info.Assembler.Depth = 3
	info.Assembler.Redundancy = 0
	require.NoError(t, info.Assembler.Check())

	assembly := &Assembly{}
	lengths := []int{}
	for _, read := range regressionReads {
		assembly.Reads = append(assembly.Reads, seqio.NewSequence(read[0], []byte(read[1])))
		lengths = append(lengths, len(read[1]))
	}
	require.NoError(t, assemble(info, assembly, lengths))

	contigs := [][]byte{}
	for _, c := range assembly.Contigs {
		contigs = append(contigs, c.Seq)
	}
	expectedContigs := [][]byte{
		[]byte("TTTTTT"), []byte("TTAGCGCG"), []byte("CGCGCCGCGC"), []byte("CGCGCG"), []byte("GCGCGC"),
		[]byte("TTTTTA"), []byte("TTTTAGC"), []byte("TTTTAA"), []byte("TTTAAA"), []byte("ATGCCTCCTATCTTAGC"),
	}
	require.Len(t, contigs, 10)
	assert.Equal(t, canonicalSet(expectedContigs), canonicalSet(contigs))

	require.NoError(t, scaffoldAssembly(info, assembly))
	scaffolds := [][]byte{}
	for _, s := range assembly.Result.Scaffolds {
		scaffolds = append(scaffolds, s.Seq)
	}
	expectedScaffolds := [][]byte{
		[]byte("ATGCCTCCTATCTTAGCGCGC"), []byte("CGCGCG"), []byte("CGCGCCGCGC"), []byte("TTTTTA"),
		[]byte("TTTTTT"), []byte("TTTTAGC"), []byte("TTTTAA"), []byte("TTTAAA"),
	}
	require.Len(t, scaffolds, 8)
	assert.Equal(t, canonicalSet(expectedScaffolds), canonicalSet(scaffolds))
	assert.Contains(t, canonicalSet(scaffolds), "ATGCCTCCTATCTTAGCGCGC")

	// one path joins three contigs, and the two it absorbs are not given a scaffold of their own
	require.Len(t, assembly.Result.Paths, 1)
	assert.Len(t, assembly.Result.Paths[0], 3)
}
