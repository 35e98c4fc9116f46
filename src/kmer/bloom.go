package kmer

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/will-rowe/ntHash"
)

// defaultBloomSize used to create a bloom filter
const defaultBloomSize = 1 << 20

var bitMask [64]uint64

// init will prepare the mask prior to creating a bloom filter
func init() {
	bitMask[0] = 1
	for i := 1; i < len(bitMask); i++ {
		bitMask[i] = 2 * bitMask[i-1]
	}
}

// BloomFilter records canonical ntHash values of k-mers
type BloomFilter struct {
	k      int
	size   uint64
	sketch []uint64
	lock   sync.RWMutex
}

// NewBloomFilter is a Bloom Filter constructor, the number of bits is rounded up to a multiple of 64
func NewBloomFilter(k, bits int) *BloomFilter {
	cells := 1
	if bits > 64 {
		cells = (bits + 63) / 64
	}
	return &BloomFilter{
		k:      k,
		size:   64 * uint64(cells),
		sketch: make([]uint64, cells),
	}
}

// NewDefaultBloomFilter is a Bloom Filter constructor, using the default size
func NewDefaultBloomFilter(k int) *BloomFilter {
	return NewBloomFilter(k, defaultBloomSize)
}

// Add is a method to add a hashed k-mer to the Bloom Filter sketch
func (bf *BloomFilter) Add(hv uint64) {
	h := hv % bf.size
	bf.lock.Lock()
	bf.sketch[h/64] |= bitMask[h%64]
	bf.lock.Unlock()
}

// Check is a method to check a hashed k-mer against the Bloom Filter sketch
func (bf *BloomFilter) Check(hv uint64) bool {
	h := hv % bf.size
	bf.lock.RLock()
	defer bf.lock.RUnlock()
	return (bf.sketch[h/64] & bitMask[h%64]) > 0
}

// CheckAndAdd adds a hashed k-mer to the sketch and reports whether it was already there
func (bf *BloomFilter) CheckAndAdd(hv uint64) bool {
	h := hv % bf.size
	bf.lock.Lock()
	defer bf.lock.Unlock()
	seen := (bf.sketch[h/64] & bitMask[h%64]) > 0
	bf.sketch[h/64] |= bitMask[h%64]
	return seen
}

// HashSequence returns the canonical ntHash value for every k-mer window of a sequence, in sequence order.
// Windows holding bases other than ACGT are hashed too, so the result always has len(seq)-k+1 values.
func HashSequence(seq []byte, k int) ([]uint64, error) {
	if len(seq) < k {
		return nil, nil
	}
	hasher, err := ntHash.New(&seq, uint(k))
	if err != nil {
		return nil, errors.Wrap(err, "could not initialise ntHash")
	}
	hashes := make([]uint64, 0, len(seq)-k+1)
	for hv := range hasher.Hash(true) {
		hashes = append(hashes, hv)
	}
	return hashes, nil
}
