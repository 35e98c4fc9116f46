package kmer

// Iterator rolls a window of size k along a sequence, skipping any window containing a base that isn't ACGT
type Iterator struct {
	seq    []byte
	k      int
	mask   Kmer
	shift  uint
	i      int
	filled int
	fwd    Kmer
	rev    Kmer
}

// NewIterator returns an Iterator for a sequence, k must be a valid k-mer size
func NewIterator(seq []byte, k int) *Iterator {
	return &Iterator{
		seq:   seq,
		k:     k,
		mask:  Mask(k),
		shift: 2 * uint(k-1),
	}
}

// Next moves to the next valid k-mer, returning false once the sequence is exhausted
func (it *Iterator) Next() bool {
	for it.i < len(it.seq) {
		c := seqNT4table[it.seq[it.i]]
		it.i++
		if c > 3 {
			it.filled, it.fwd, it.rev = 0, 0, 0
			continue
		}
		it.fwd = (it.fwd<<2 | Kmer(c)) & it.mask
		it.rev = (it.rev >> 2) | (Kmer(3-c) << it.shift)
		it.filled++
		if it.filled >= it.k {
			return true
		}
	}
	return false
}

// Position is the offset of the current k-mer in the sequence
func (it *Iterator) Position() int {
	return it.i - it.k
}

// Forward returns the current k-mer as it appears in the sequence
func (it *Iterator) Forward() Kmer {
	return it.fwd
}

// Canonical returns the canonical form of the current k-mer and true if it appears in the sequence in canonical orientation
func (it *Iterator) Canonical() (Kmer, bool) {
	if it.fwd >= it.rev {
		return it.fwd, true
	}
	return it.rev, false
}
