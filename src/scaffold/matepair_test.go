package scaffold

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/will-rowe/padena/src/seqio"
)

// test input, two contigs 30 bases apart and mate pairs from a library with a 60 base insert
var (
	testK     = 7
	contigOne = "CTCCAACTAAATACAGGTTCACCGTAACCTTTAATCTCTT"
	contigTwo = "CATTACCATCACACAATATCCATGACTATAACCCGATAAA"
	contigSix = "AAAGTTACACTCACTAAGAACAAGGGGGCTGCAAAAACTT"
	testLibs  = LibraryTable{"lib1": {Mean: 60, SD: 5}}
	mateReads = []seqio.Sequence{
		seqio.NewSequence("frag1.F:lib1", []byte("ACCGTAACCT")),
		seqio.NewSequence("frag1.R:lib1", []byte("GATGGTAATG")),
		seqio.NewSequence("frag2.F:lib1", []byte("AACCTTTAAT")),
		seqio.NewSequence("frag2.R:lib1", []byte("TGTGTGATGG")),
		seqio.NewSequence("frag3.F:lib1", []byte("TTAATCTCTT")),
		seqio.NewSequence("frag3.R:lib1", []byte("GATATTGTGT")),
	}
)

func TestParseMateID(t *testing.T) {
	name, tag, library, ok := ParseMateID("read42.X1:libA")
	require.True(t, ok)
	assert.Equal(t, "read42", name)
	assert.Equal(t, "X1", tag)
	assert.Equal(t, "libA", library)
	_, _, _, ok = ParseMateID("read42/1")
	assert.False(t, ok)
	assert.True(t, IsMateRead("a.b.2:lib"))
}

func TestLibraries(t *testing.T) {
	lt, err := ParseLibraries([]string{"lib1:3000:300", "lib2:500:50"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib1", "lib2"}, lt.Names())
	assert.Equal(t, Library{Mean: 3000, SD: 300}, lt["lib1"])
	for _, bad := range []string{"lib1", "lib1:x:3", "lib1:30:y", ":30:3", "lib1:-30:3"} {
		_, err := ParseLibraries([]string{bad})
		require.Error(t, err, bad)
		assert.Equal(t, ErrConfig, errors.Cause(err))
	}
}

func TestMatePairMap(t *testing.T) {
	reads := append([]seqio.Sequence{
		seqio.NewSequence("lonely.1:lib1", []byte("ACGT")),
		seqio.NewSequence("other.F:lib9", []byte("ACGT")),
		seqio.NewSequence("other.R:lib9", []byte("ACGT")),
		seqio.NewSequence("unpaired", []byte("ACGT")),
	}, mateReads...)
	pairs := NewMatePairMapper().Map(reads, testLibs)
	require.Len(t, pairs, 3)
	assert.Equal(t, MatePair{ForwardID: "frag1.F:lib1", ReverseID: "frag1.R:lib1", Library: "lib1"}, pairs[0])
}

// mappedPairs runs the read mapping and pairing for the test contigs
func mappedPairs(t *testing.T) ContigMatePairs {
	contigs := toContigs(contigOne, contigTwo)
	readMap, err := NewReadContigMapper(2).Map(contigs, mateReads, testK)
	require.NoError(t, err)
	mpm := NewMatePairMapper()
	return mpm.MapToContigs(contigs, readMap, mpm.Map(mateReads, testLibs), testLibs)
}

func TestMapToContigs(t *testing.T) {
	cmp := mappedPairs(t)
	require.Len(t, cmp, 1)
	observations := cmp[ContigPair{0, 1}]
	require.Len(t, observations, 3)
	for _, obs := range observations {
		assert.True(t, obs.FromFwd && obs.ToFwd)
		assert.Equal(t, 30.0, obs.Gap)
	}

	// swapping the contigs should give the mirrored layout
	contigs := toContigs(contigTwo, contigOne)
	readMap, err := NewReadContigMapper(1).Map(contigs, mateReads, testK)
	require.NoError(t, err)
	mpm := NewMatePairMapper()
	cmp = mpm.MapToContigs(contigs, readMap, mpm.Map(mateReads, testLibs), testLibs)
	for _, obs := range cmp[ContigPair{0, 1}] {
		assert.True(t, !obs.FromFwd && !obs.ToFwd)
		assert.Equal(t, 30.0, obs.Gap)
	}
}

// observations is a helper to build a contig pair with some layouts
func observations(layouts ...layout) []Observation {
	obs := make([]Observation, len(layouts))
	for i, l := range layouts {
		obs[i] = Observation{From: 0, FromFwd: l.fromFwd, To: 1, ToFwd: l.toFwd, Gap: 10, SD: 5}
	}
	return obs
}

func TestOrientationFilter(t *testing.T) {
	filter := NewOrientationBasedMatePairFilter()
	cmp := ContigMatePairs{
		{0, 1}: observations(layout{true, true}, layout{true, true}, layout{false, true}),
		{0, 2}: observations(layout{false, true}),
		{3, 3}: observations(layout{true, true}, layout{true, true}),
	}
	filtered, err := filter.Filter(cmp, 2)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Len(t, filtered[ContigPair{0, 1}], 2)
	for _, obs := range filtered[ContigPair{0, 1}] {
		assert.True(t, obs.FromFwd && obs.ToFwd)
	}

	// a redundancy of 0 keeps the lone observation
	filtered, err = filter.Filter(cmp, 0)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	// tied layouts are all kept, same relative orientation first
	filtered, err = filter.Filter(ContigMatePairs{{0, 1}: observations(layout{true, false}, layout{false, false})}, 1)
	require.NoError(t, err)
	require.Len(t, filtered[ContigPair{0, 1}], 2)
	assert.False(t, filtered[ContigPair{0, 1}][0].FromFwd)
	assert.False(t, filtered[ContigPair{0, 1}][0].ToFwd)
	assert.True(t, filtered[ContigPair{0, 1}][1].FromFwd)
	assert.False(t, filtered[ContigPair{0, 1}][1].ToFwd)

	_, err = filter.Filter(cmp, -1)
	assert.Equal(t, ErrConfig, errors.Cause(err))
}

func TestDistanceCalculator(t *testing.T) {
	cmp := ContigMatePairs{{0, 1}: {
		{From: 0, FromFwd: true, To: 1, ToFwd: true, Gap: 10, SD: 1},
		{From: 0, FromFwd: true, To: 1, ToFwd: true, Gap: 12, SD: 1},
		{From: 0, FromFwd: true, To: 1, ToFwd: true, Gap: 11, SD: 1},
	}}
	links := NewDistanceCalculator().Calculate(cmp)
	require.Len(t, links, 1)
	assert.InDelta(t, 11.0, links[0].Gap, 1e-9)
	assert.InDelta(t, 1.0, links[0].SD, 1e-9)
	assert.Equal(t, 3, links[0].Support)
	assert.False(t, links[0].Overlap)

	// a single observation gets the library deviation
	links = NewDistanceCalculator().Calculate(ContigMatePairs{{0, 1}: observations(layout{true, true})})
	require.Len(t, links, 1)
	assert.InDelta(t, 5.0, links[0].SD, 1e-9)

	// overlapping contigs are clamped
	cmp[ContigPair{0, 1}] = []Observation{{From: 0, FromFwd: true, To: 1, ToFwd: true, Gap: -20, SD: 5}}
	links = NewDistanceCalculator().Calculate(cmp)
	assert.Equal(t, 0.0, links[0].Gap)
	assert.True(t, links[0].Overlap)

	// the mate pairs of the test contigs
	filtered, err := NewOrientationBasedMatePairFilter().Filter(mappedPairs(t), 2)
	require.NoError(t, err)
	links = NewDistanceCalculator().Calculate(filtered)
	require.Len(t, links, 1)
	assert.InDelta(t, 30.0, links[0].Gap, 1e-9)
	assert.Equal(t, Link{From: 1, FromFwd: false, To: 0, ToFwd: false, Gap: links[0].Gap, SD: links[0].SD, Support: 3}, links[0].Mirror())
}
