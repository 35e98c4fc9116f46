package seqio

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// setup variables
var (
	fastqData = []byte("@read1.F:lib\nacgtACGTnn\n+\nIIIIIIIIII\n@read1.R:lib\nTTTTGGGGCC\n+\nIIIIIIIIII\n")
	fastaData = []byte("\n>contig1 some description\nATGCATGCAT\nGCA\n>contig2\nTTTT\n")
)

// test results
var (
	expectedUpperCase = []byte("ACGTACGTNN")
	expectedRevComp   = []byte("GGCCCCAAAA")
)

// writeTmp is a helper to write some data to a temporary file
func writeTmp(t *testing.T, dir, name string, data []byte, compress bool) string {
	path := filepath.Join(dir, name)
	if compress {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(data); err != nil {
			t.Fatal(err)
		}
		if err := gz.Close(); err != nil {
			t.Fatal(err)
		}
		data = buf.Bytes()
	}
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSeqMethods(t *testing.T) {
	read := NewSequence("read1", []byte("acgtACGTxn"))
	if read.BaseCheck() {
		t.Fatalf("BaseCheck should report the non-ACGT bases")
	}
	if !bytes.Equal(read.Seq, expectedUpperCase) {
		t.Fatalf("BaseCheck failed: %v", string(read.Seq))
	}
	if IsACGT(read.Seq) || IsACGT(nil) || !IsACGT([]byte("ACGT")) {
		t.Fatalf("IsACGT failed")
	}
	if rc := ReverseComplement([]byte("TTTTGGGGCC")); !bytes.Equal(rc, expectedRevComp) {
		t.Fatalf("ReverseComplement failed: %v", string(rc))
	}
}

func TestReadAll(t *testing.T) {
	tmp, err := ioutil.TempDir("", "padena-seqio")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmp)
	fq := writeTmp(t, tmp, "reads.fq", fastqData, false)
	fa := writeTmp(t, tmp, "contigs.fa.gz", fastaData, true)

	seqs, err := ReadAll(fq, fa)
	if err != nil {
		t.Fatal(err)
	}
	if len(seqs) != 4 {
		t.Fatalf("expected 4 sequences, got %d", len(seqs))
	}
	if string(seqs[0].ID) != "read1.F:lib" || string(seqs[1].ID) != "read1.R:lib" {
		t.Fatalf("FASTQ IDs not parsed correctly: %v %v", string(seqs[0].ID), string(seqs[1].ID))
	}
	if string(seqs[2].ID) != "contig1" || string(seqs[2].Seq) != "ATGCATGCATGCA" {
		t.Fatalf("multi-line FASTA not parsed correctly: %v %v", string(seqs[2].ID), string(seqs[2].Seq))
	}
	if !seqs[1].BaseCheck() {
		t.Fatalf("clean read failed BaseCheck")
	}
}

func TestWriteFASTA(t *testing.T) {
	var buf bytes.Buffer
	long := bytes.Repeat([]byte("A"), FASTAwidth+5)
	if err := WriteFASTA(&buf, []Sequence{NewSequence("s1", long), NewSequence("s2", []byte("ACGT"))}); err != nil {
		t.Fatal(err)
	}
	reader, err := NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	count := 0
	for reader.Next() {
		count++
		if count == 1 && !bytes.Equal(reader.Sequence().Seq, long) {
			t.Fatalf("wrapped sequence did not round trip")
		}
	}
	if reader.Err() != nil {
		t.Fatal(reader.Err())
	}
	if count != 2 {
		t.Fatalf("expected 2 sequences, got %d", count)
	}
}

func TestEmptyInput(t *testing.T) {
	reader, err := NewReader(bytes.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	if reader.Next() {
		t.Fatalf("empty input should not yield sequences")
	}
	if _, err := NewReader(bytes.NewReader([]byte("not a sequence file"))); err == nil {
		t.Fatalf("unrecognised format should be an error")
	}
}
