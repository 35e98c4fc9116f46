/*
	tests for the contig package
*/
package contig

import (
	"testing"

	"github.com/will-rowe/padena/src/graph"
	"github.com/will-rowe/padena/src/seqio"
)

// test input
var (
	genome  = "CGAGTCGGTTATCTTCGGATACTGTATAGTCCCACCTGGT"
	tipRead = "CGAGTCGGTTATCTTCGGATACTGTTTT"
)

// buildGraph is a helper to get a graph from some reads
func buildGraph(t *testing.T, k int, seqs ...string) *graph.Graph {
	reads := make([]seqio.Sequence, len(seqs))
	for i, s := range seqs {
		reads[i] = seqio.NewSequence("r", []byte(s))
	}
	g, err := graph.Build(reads, k, 2)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// checkPartition makes sure every live node is used once and the contig lengths add up
func checkPartition(t *testing.T, g *graph.Graph, contigs []Contig) {
	seen := make(map[int]int)
	total := 0
	for _, c := range contigs {
		for _, id := range c.Path.Nodes {
			seen[id]++
		}
		total += c.Len()
		if c.Len() != c.Path.Len()+g.K-1 {
			t.Fatalf("contig of %d nodes has length %d", c.Path.Len(), c.Len())
		}
	}
	for _, id := range g.LiveNodes() {
		if seen[id] != 1 {
			t.Fatalf("node %d used %d times", id, seen[id])
		}
	}
	if total != g.LiveCount()+len(contigs)*(g.K-1) {
		t.Fatalf("total contig length %d does not match the graph", total)
	}
}

func TestPalindrome(t *testing.T) {
	g := buildGraph(t, 4, "ATGC", "TGCA")
	contigs, err := NewBuilder().Build(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(contigs) != 2 {
		t.Fatalf("the palindrome should be cut loose into its own contig, got %d contigs", len(contigs))
	}
	found := false
	for _, c := range contigs {
		if string(c.Seq) == "TGCA" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected TGCA as a contig")
	}
	checkPartition(t, g, contigs)
}

func TestSelfLoop(t *testing.T) {

	// TTTT extends into itself and into TTTA, so its right side is ambiguous
	g := buildGraph(t, 4, "TTTTTTAC")
	contigs, err := NewBuilder().Build(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(contigs) != 2 {
		t.Fatalf("expected 2 contigs, got %d", len(contigs))
	}
	got := map[string]bool{}
	for _, c := range contigs {
		seq := string(c.Seq)
		if rc := string(seqio.ReverseComplement(c.Seq)); rc < seq {
			seq = rc
		}
		got[seq] = true
	}
	if !got["AAAA"] || !got["GTAAA"] {
		t.Fatalf("unexpected contigs: %v", got)
	}
	checkPartition(t, g, contigs)

	// a lone self-loop is dropped and the rest of the path is walked as normal
	g = buildGraph(t, 4, "CCCTTTT")
	contigs, err = NewBuilder().Build(g)
	if err != nil {
		t.Fatal(err)
	}
	checkPartition(t, g, contigs)
}

func TestLinear(t *testing.T) {
	g := buildGraph(t, 5, "GATTACAGGCT")
	contigs, err := NewBuilder().Build(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(contigs) != 1 {
		t.Fatalf("expected 1 contig, got %d", len(contigs))
	}
	seq := contigs[0].Seq
	if string(seq) != "GATTACAGGCT" && string(seqio.ReverseComplement(seq)) != "GATTACAGGCT" {
		t.Fatalf("contig does not spell the read: %v", string(seq))
	}
	if contigs[0].Coverage != 1.0 {
		t.Fatalf("expected coverage of 1, got %v", contigs[0].Coverage)
	}
}

func TestBranch(t *testing.T) {
	reads := []string{tipRead}
	for i := 0; i < 4; i++ {
		reads = append(reads, genome)
	}
	g := buildGraph(t, 7, reads...)
	contigs, err := NewBuilder().Build(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(contigs) != 3 {
		t.Fatalf("a branching graph should give 3 contigs, got %d", len(contigs))
	}
	checkPartition(t, g, contigs)

	// the builder must not touch the graph
	if g.LiveCount() != 37 {
		t.Fatalf("the graph was modified by the contig builder")
	}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestCycleAndIsland(t *testing.T) {
	circular := genome + genome[:6]
	g := buildGraph(t, 7, circular, "ACGTTGC")
	contigs, err := NewBuilder().Build(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(contigs) != 2 {
		t.Fatalf("expected a cycle and an island, got %d contigs", len(contigs))
	}
	lengths := map[int]bool{}
	for _, c := range contigs {
		lengths[c.Len()] = true
	}
	if !lengths[7] || !lengths[len(genome)+6] {
		t.Fatalf("unexpected contig lengths: %v", lengths)
	}
	checkPartition(t, g, contigs)
}

func TestRemoveLowCoverage(t *testing.T) {
	reads := []string{tipRead}
	for i := 0; i < 4; i++ {
		reads = append(reads, genome)
	}
	g := buildGraph(t, 7, reads...)
	removed, err := RemoveLowCoverage(g, 0)
	if err != nil || removed != 0 {
		t.Fatal("a threshold of 0 should not remove anything")
	}
	removed, err = RemoveLowCoverage(g, 2)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 3 {
		t.Fatalf("expected the 3 tip nodes to be removed, got %d", removed)
	}
	contigs, err := NewBuilder().Build(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(contigs) != 1 || contigs[0].Len() != len(genome) {
		t.Fatalf("expected the genome back as a single contig")
	}
}
