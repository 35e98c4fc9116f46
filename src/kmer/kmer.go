// Package kmer contains the 2-bit k-mer encoding used by the assembly graph, a rolling k-mer iterator and an ntHash based Bloom filter.
package kmer

import (
	"math"

	"github.com/pkg/errors"
)

// MaxK is the largest k-mer size that fits the 2-bit encoding
const MaxK = 31

// Kmer is a 2-bit encoded k-mer (A=0, C=1, G=2, T=3), the first base occupies the highest bits
type Kmer uint64

// seqNT4table converts a nucleotide to its 2-bit code, anything that isn't ACGT is 4
var seqNT4table [256]uint8

// nt4Bases converts a 2-bit code back to a nucleotide
var nt4Bases = [4]byte{'A', 'C', 'G', 'T'}

func init() {
	for i := range seqNT4table {
		seqNT4table[i] = 4
	}
	for code, base := range nt4Bases {
		seqNT4table[base] = uint8(code)
		seqNT4table[base+32] = uint8(code)
	}
}

// CheckSize returns an error if k can't be used
func CheckSize(k int) error {
	if k <= 0 || k > MaxK {
		return errors.Errorf("k-mer size must be between 1 and %d (got %d)", MaxK, k)
	}
	return nil
}

// Mask returns the bit mask covering a k-mer of size k
func Mask(k int) Kmer {
	return Kmer((uint64(1) << (2 * uint(k))) - 1)
}

// Encode converts a sequence to a k-mer, returning false if it contains anything other than ACGT
func Encode(seq []byte) (Kmer, bool) {
	var km Kmer
	for _, base := range seq {
		c := seqNT4table[base]
		if c > 3 {
			return 0, false
		}
		km = km<<2 | Kmer(c)
	}
	return km, true
}

// Decode converts a k-mer of size k back to a sequence
func Decode(km Kmer, k int) []byte {
	seq := make([]byte, k)
	for i := k - 1; i >= 0; i-- {
		seq[i] = nt4Bases[km&3]
		km >>= 2
	}
	return seq
}

// ReverseComplement returns the reverse complement of a k-mer of size k
func ReverseComplement(km Kmer, k int) Kmer {
	var rc Kmer
	for i := 0; i < k; i++ {
		rc = rc<<2 | (3 - km&3)
		km >>= 2
	}
	return rc
}

// Canonical returns the canonical form of a k-mer (the larger of the k-mer and its reverse complement)
// and true if the supplied k-mer is already in canonical orientation
func Canonical(km Kmer, k int) (Kmer, bool) {
	rc := ReverseComplement(km, k)
	if km >= rc {
		return km, true
	}
	return rc, false
}

// IsPalindrome returns true if a k-mer is its own reverse complement
func IsPalindrome(km Kmer, k int) bool {
	return km == ReverseComplement(km, k)
}

// FirstBase returns the nucleotide at the start of a k-mer
func FirstBase(km Kmer, k int) byte {
	return nt4Bases[(km>>(2*uint(k-1)))&3]
}

// LastBase returns the nucleotide at the end of a k-mer
func LastBase(km Kmer) byte {
	return nt4Bases[km&3]
}

// EstimateKmerLength suggests a k-mer size for a set of read lengths: the midpoint between half
// the longest read and the shortest read, forced odd so that palindromic k-mers can't occur
func EstimateKmerLength(readLengths []int) (int, error) {
	if len(readLengths) == 0 {
		return 0, errors.New("no reads to estimate a k-mer size from")
	}
	minLen, maxLen := readLengths[0], readLengths[0]
	for _, l := range readLengths[1:] {
		if l < minLen {
			minLen = l
		}
		if l > maxLen {
			maxLen = l
		}
	}
	lower := float64(maxLen / 2)
	if lower < 1 {
		lower = 1
	}
	upper := float64(minLen)
	var k int
	if lower < upper {
		k = int(math.Ceil((lower + upper) / 2))
	} else {
		k = int(upper)
	}
	if k%2 == 0 {
		k++
		if float64(k) > upper {
			k -= 2
		}
		if k <= 0 {
			k = 1
		}
	}
	if float64(k) > upper || k <= 0 {
		return 0, errors.Errorf("can't estimate a k-mer size for reads of length %d to %d", minLen, maxLen)
	}
	if k > MaxK {
		k = MaxK
	}
	return k, nil
}
