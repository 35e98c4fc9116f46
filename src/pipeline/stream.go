package pipeline

/*
 this part of the pipeline reads the FASTA/FASTQ input, from files or STDIN, and cleans up the bases
*/

import (
	"log"
	"os"

	"github.com/will-rowe/padena/src/misc"
	"github.com/will-rowe/padena/src/seqio"
)

// ReadStreamer is a pipeline process that streams reads from STDIN/file
type ReadStreamer struct {
	info   *Info
	input  []string
	output chan seqio.Sequence
}

// NewReadStreamer is the constructor
func NewReadStreamer(info *Info) *ReadStreamer {
	return &ReadStreamer{info: info, output: make(chan seqio.Sequence, BUFFERSIZE)}
}

// Connect is the method to connect the ReadStreamer to some data source
func (proc *ReadStreamer) Connect(input []string) {
	proc.input = input
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *ReadStreamer) Run() {
	defer close(proc.output)

	// if an input file path has not been provided, read from STDIN
	if len(proc.input) == 0 {
		reader, err := seqio.NewReader(os.Stdin)
		misc.ErrorCheck(err)
		proc.stream(reader, "STDIN")
		return
	}
	for _, fileName := range proc.input {
		reader, err := seqio.Open(fileName)
		misc.ErrorCheck(err)
		proc.stream(reader, fileName)
		misc.ErrorCheck(reader.Close())
	}
}

// stream sends on every sequence from a reader, upper casing the bases and masking anything that isn't ACTG
func (proc *ReadStreamer) stream(reader *seqio.Reader, source string) {
	numReads, numMasked := 0, 0
	for reader.Next() {
		read := reader.Sequence()
		if !read.BaseCheck() {
			numMasked++
		}
		numReads++
		proc.output <- read
	}
	misc.ErrorCheck(reader.Err())
	log.Printf("\tread %d sequences from %v (%d contained non-ACTG bases)", numReads, source, numMasked)
}
