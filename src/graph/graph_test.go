/*
	tests for the graph package
*/
package graph

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/will-rowe/padena/src/kmer"
	"github.com/will-rowe/padena/src/seqio"
)

// test input
var (
	linearRead  = []byte("GATTACAGGCT")
	linearK     = 5
	linearKmers = []string{"AGGCT", "CCTGT", "GCCTG", "GTAAT", "TAATC", "TACAG", "TTACA"}
)

// reads is a helper to wrap some sequences as reads
func reads(seqs ...string) []seqio.Sequence {
	reads := make([]seqio.Sequence, len(seqs))
	for i, s := range seqs {
		reads[i] = seqio.NewSequence("r", []byte(s))
	}
	return reads
}

func TestBuild(t *testing.T) {
	g, err := Build(reads(string(linearRead), "GAT"), linearK, 2)
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != len(linearKmers) || g.LiveCount() != len(linearKmers) {
		t.Fatalf("expected %d nodes, got %d", len(linearKmers), g.NodeCount())
	}
	for id, expected := range linearKmers {
		if got := string(g.NodeSequence(id, true)); got != expected {
			t.Fatalf("node %d should hold %v, got %v", id, expected, got)
		}
	}
	ends := 0
	for id := range g.Nodes {
		l, r := g.Nodes[id].Degree()
		if l > 1 || r > 1 {
			t.Fatalf("node %d should not branch (%d, %d)", id, l, r)
		}
		if l == 0 || r == 0 {
			ends++
		}
	}
	if ends != 2 {
		t.Fatalf("a linear read should give a graph with 2 ends, got %d", ends)
	}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
	if id, ok := g.Lookup([]byte("ACAGG")); !ok || id != 1 {
		t.Fatalf("could not look up a k-mer by its reverse complement")
	}
}

func TestBuildErrors(t *testing.T) {
	if _, err := Build(reads("ACGT"), 0, 1); err == nil {
		t.Fatal("k=0 should be rejected")
	}
	if _, err := Build(reads("ACGT"), 32, 1); err == nil {
		t.Fatal("k=32 should be rejected")
	}
	g, err := Build(nil, 5, 4)
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 0 {
		t.Fatal("an empty read set should give an empty graph")
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	input := reads("GATTACAGGCTTAGGCATCGA", "CATCGATTAGCCGATTACAGG", "TTTTTAGGCATCGAGATTACA", "ACGGTGTTAGCCA")
	g1, err := Build(input, 7, 1)
	if err != nil {
		t.Fatal(err)
	}
	g2, err := Build(input, 7, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(g1.Nodes, g2.Nodes) {
		t.Fatal("graph content depends on the number of workers")
	}
}

func TestBuildSolid(t *testing.T) {
	input := reads(string(linearRead), string(linearRead), "GATTACTGGCT")
	all, err := Build(input, linearK, 2)
	if err != nil {
		t.Fatal(err)
	}
	if all.NodeCount() != len(linearKmers)+5 {
		t.Fatalf("expected the error read to add 5 k-mers, got %d nodes", all.NodeCount())
	}
	g, err := BuildSolid(input, linearK, 2, 1<<12)
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != len(linearKmers) {
		t.Fatalf("expected %d solid nodes, got %d", len(linearKmers), g.NodeCount())
	}
	for id, expected := range linearKmers {
		if got := string(g.NodeSequence(id, true)); got != expected {
			t.Fatalf("node %d should hold %v, got %v", id, expected, got)
		}
	}
	if id, ok := g.Lookup([]byte("GATTA")); !ok || g.Nodes[id].Count != 3 {
		t.Fatal("solid k-mers should keep their full count")
	}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
	if g, err = BuildSolid(input, linearK, 1, 0); err != nil || g.NodeCount() != len(linearKmers) {
		t.Fatal("the default Bloom filter should give the same graph")
	}
	if _, err := BuildSolid(input, 0, 2, 1<<12); err == nil {
		t.Fatal("bad k-mer size should fail")
	}
}

func TestBuildFromKmers(t *testing.T) {
	counts := make(map[kmer.Kmer]int)
	for _, s := range []string{"GATTA", "TAATC", "ATTAC"} {
		km, ok := kmer.Encode([]byte(s))
		if !ok {
			t.Fatal("could not encode k-mer")
		}
		counts[km] = 2
	}
	g, err := BuildFromKmers(counts, linearK)
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 2 {
		t.Fatalf("GATTA and TAATC share a canonical k-mer, got %d nodes", g.NodeCount())
	}
	if id, ok := g.Lookup([]byte("GATTA")); !ok || g.Nodes[id].Count != 4 {
		t.Fatal("counts of a k-mer and its reverse complement should merge")
	}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestPalindrome(t *testing.T) {
	g, err := Build(reads("ATGC", "TGCA"), 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.NodeCount())
	}
	id, ok := g.Lookup([]byte("TGCA"))
	if !ok || !g.Nodes[id].Palindrome {
		t.Fatal("TGCA should be a palindromic node")
	}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestRemoveNodes(t *testing.T) {
	g, err := Build(reads(string(linearRead)), linearK, 1)
	if err != nil {
		t.Fatal(err)
	}
	// remove a node from the middle of the chain (GTAAT links TAATC and TTACA)
	if removed := g.RemoveNodes([]int{3, 3}); removed != 1 {
		t.Fatalf("expected 1 node removed, got %d", removed)
	}
	if g.LiveCount() != len(linearKmers)-1 {
		t.Fatal("live count not updated")
	}
	if l, r := g.Nodes[4].Degree(); l != 0 || r != 0 {
		t.Fatal("edges to the removed node were not scrubbed")
	}
	if _, ok := g.Lookup([]byte("GTAAT")); ok {
		t.Fatal("removed node should not be found")
	}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
	if got := g.Within([]int{6}, 1); !reflect.DeepEqual(got, []int{5, 6}) {
		t.Fatalf("unexpected nodes within 1 edge: %v", got)
	}
}

func TestValidate(t *testing.T) {
	g, err := Build(reads(string(linearRead)), linearK, 1)
	if err != nil {
		t.Fatal(err)
	}
	g.Nodes[5].Right = nil
	if err := g.Validate(); err == nil {
		t.Fatal("a missing reciprocal edge should be reported")
	}
}

func TestPathSequence(t *testing.T) {
	g, err := Build(reads(string(linearRead)), linearK, 1)
	if err != nil {
		t.Fatal(err)
	}
	// walk right from TAATC read in reverse (GATTA)
	p := Path{}
	id, forward := 4, false
	for {
		p.Append(id, forward)
		ext := g.Extensions(id, forward, true)
		if len(ext) == 0 {
			break
		}
		id, forward = ext[0].To, NextOrientation(ext[0], forward)
	}
	if got := g.PathSequence(p); !bytes.Equal(got, linearRead) {
		t.Fatalf("path spelled %v", string(got))
	}
	if p.Len() != len(linearKmers) || g.PathCoverage(p) != 1 {
		t.Fatal("unexpected path length or coverage")
	}
}

func TestDOT(t *testing.T) {
	g, err := Build(reads(string(linearRead)), linearK, 1)
	if err != nil {
		t.Fatal(err)
	}
	dot, err := g.DOT()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dot, "digraph") || strings.Count(dot, "->") != len(linearKmers)-1 {
		t.Fatalf("unexpected DOT output:\n%v", dot)
	}
}

func BenchmarkBuild(b *testing.B) {
	input := reads("GATTACAGGCTTAGGCATCGA", "CATCGATTAGCCGATTACAGG", "TTTTTAGGCATCGAGATTACA", "ACGGTGTTAGCCA")
	for i := 0; i < b.N; i++ {
		if _, err := Build(input, 7, 4); err != nil {
			b.Fatal(err)
		}
	}
}
