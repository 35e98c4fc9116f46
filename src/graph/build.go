package graph

import (
	"sync"

	farm "github.com/dgryski/go-farm"
	"github.com/pkg/errors"
	"github.com/will-rowe/padena/src/kmer"
	"github.com/will-rowe/padena/src/seqio"
	"golang.org/x/sync/errgroup"
)

// numShards is the number of independently locked k-mer count maps used during graph construction
const numShards = 64

// countShard is a k-mer count map with its own lock
type countShard struct {
	sync.Mutex
	counts map[kmer.Kmer]int
}

// shardedCounter spreads canonical k-mer counts over several locked maps
type shardedCounter struct {
	shards [numShards]countShard
}

func newShardedCounter() *shardedCounter {
	sc := &shardedCounter{}
	for i := range sc.shards {
		sc.shards[i].counts = make(map[kmer.Kmer]int)
	}
	return sc
}

// shard selects the shard for a k-mer
func (sc *shardedCounter) shard(km kmer.Kmer) *countShard {
	return &sc.shards[farm.Hash64WithSeed(nil, uint64(km))%numShards]
}

// add records a batch of k-mers
func (sc *shardedCounter) add(kmers []kmer.Kmer) {
	for _, km := range kmers {
		shard := sc.shard(km)
		shard.Lock()
		shard.counts[km]++
		shard.Unlock()
	}
}

// merge collects all the shards into a single map
func (sc *shardedCounter) merge() map[kmer.Kmer]int {
	total := 0
	for i := range sc.shards {
		total += len(sc.shards[i].counts)
	}
	counts := make(map[kmer.Kmer]int, total)
	for i := range sc.shards {
		for km, c := range sc.shards[i].counts {
			counts[km] = c
		}
	}
	return counts
}

// inBatches splits the reads between the workers and runs fn on each batch
func inBatches(reads []seqio.Sequence, workers int, fn func(batch []seqio.Sequence) error) error {
	if workers < 1 {
		workers = 1
	}
	var eg errgroup.Group
	chunk := (len(reads) + workers - 1) / workers
	for start := 0; start < len(reads); start += chunk {
		end := start + chunk
		if end > len(reads) {
			end = len(reads)
		}
		batch := reads[start:end]
		eg.Go(func() error {
			return fn(batch)
		})
	}
	return eg.Wait()
}

// Build constructs a de Bruijn graph from a set of reads in a single parallel pass. Each distinct canonical
// k-mer becomes a node annotated with its occurrence count and nodes are linked wherever they overlap by k-1 bases.
// Reads shorter than k, and windows containing bases other than ACGT, contribute nothing.
func Build(reads []seqio.Sequence, k, workers int) (*Graph, error) {
	if err := kmer.CheckSize(k); err != nil {
		return nil, errors.Wrap(err, "can't build graph")
	}
	counter := newShardedCounter()
	err := inBatches(reads, workers, func(batch []seqio.Sequence) error {
		kmers := []kmer.Kmer{}
		for _, read := range batch {
			if len(read.Seq) < k {
				continue
			}
			kmers = kmers[:0]
			it := kmer.NewIterator(read.Seq, k)
			for it.Next() {
				km, _ := it.Canonical()
				kmers = append(kmers, km)
			}
			counter.add(kmers)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newGraph(k, counter.merge()), nil
}

// BuildSolid constructs a de Bruijn graph from the k-mers that occur at least twice in the reads. The first
// pass records the ntHash value of every k-mer in a Bloom filter and a k-mer is only counted from its second
// sighting, so the singletons left by sequencing errors never reach the counter. The second pass counts the
// surviving k-mers exactly, which also drops the Bloom filter's false positives. A bloomBits of 0 uses the
// default filter size.
func BuildSolid(reads []seqio.Sequence, k, workers, bloomBits int) (*Graph, error) {
	if err := kmer.CheckSize(k); err != nil {
		return nil, errors.Wrap(err, "can't build graph")
	}
	bf := kmer.NewDefaultBloomFilter(k)
	if bloomBits > 0 {
		bf = kmer.NewBloomFilter(k, bloomBits)
	}
	candidates := newShardedCounter()
	err := inBatches(reads, workers, func(batch []seqio.Sequence) error {
		kmers := []kmer.Kmer{}
		for _, read := range batch {
			if len(read.Seq) < k {
				continue
			}
			hashes, err := kmer.HashSequence(read.Seq, k)
			if err != nil {
				return err
			}
			kmers = kmers[:0]
			it := kmer.NewIterator(read.Seq, k)
			for it.Next() {
				if bf.CheckAndAdd(hashes[it.Position()]) {
					km, _ := it.Canonical()
					kmers = append(kmers, km)
				}
			}
			candidates.add(kmers)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	solid := candidates.merge()

	// the candidate set is only read from here on
	counter := newShardedCounter()
	err = inBatches(reads, workers, func(batch []seqio.Sequence) error {
		kmers := []kmer.Kmer{}
		for _, read := range batch {
			if len(read.Seq) < k {
				continue
			}
			kmers = kmers[:0]
			it := kmer.NewIterator(read.Seq, k)
			for it.Next() {
				km, _ := it.Canonical()
				if _, ok := solid[km]; ok {
					kmers = append(kmers, km)
				}
			}
			counter.add(kmers)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	counts := counter.merge()
	for km, c := range counts {
		if c < 2 {
			delete(counts, km)
		}
	}
	return BuildFromKmers(counts, k)
}

// BuildFromKmers constructs a graph directly from canonical k-mer counts
func BuildFromKmers(counts map[kmer.Kmer]int, k int) (*Graph, error) {
	if err := kmer.CheckSize(k); err != nil {
		return nil, errors.Wrap(err, "can't build graph")
	}
	canonical := make(map[kmer.Kmer]int, len(counts))
	for km, c := range counts {
		ckm, _ := kmer.Canonical(km&kmer.Mask(k), k)
		canonical[ckm] += c
	}
	return newGraph(k, canonical), nil
}
