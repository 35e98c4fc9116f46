package pipeline

/*
 this part of the pipeline builds the de Bruijn graph from the reads, cleans it and walks it to get the contigs
*/

import (
	"log"

	"github.com/pkg/errors"
	"github.com/will-rowe/padena/src/contig"
	"github.com/will-rowe/padena/src/graph"
	"github.com/will-rowe/padena/src/misc"
	"github.com/will-rowe/padena/src/purger"
	"github.com/will-rowe/padena/src/scaffold"
	"github.com/will-rowe/padena/src/seqio"
)

// Assembly is passed along the pipeline and collects the results of each stage
type Assembly struct {
	Reads      []seqio.Sequence
	KmerCounts []int // k-mer counts of the graph before cleaning
	Graph      *graph.Graph
	Contigs    []contig.Contig

	// set by the Scaffolder
	ReadMap     scaffold.ReadContigMap
	MappedReads []seqio.Sequence
	Result      *scaffold.Result
}

// Assembler is a pipeline process that collects the reads and assembles them into contigs
type Assembler struct {
	info   *Info
	input  chan seqio.Sequence
	output chan *Assembly
}

// NewAssembler is the constructor
func NewAssembler(info *Info) *Assembler {
	return &Assembler{info: info, output: make(chan *Assembly, 1)}
}

// Connect is the method to join the input of this process with the output of a ReadStreamer
func (proc *Assembler) Connect(previous *ReadStreamer) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *Assembler) Run() {
	defer close(proc.output)
	assembly := &Assembly{}
	readLengths := []int{}
	for read := range proc.input {
		assembly.Reads = append(assembly.Reads, read)
		readLengths = append(readLengths, len(read.Seq))
	}
	if len(assembly.Reads) == 0 {
		misc.ErrorCheck(errors.New("no reads were received"))
	}
	misc.ErrorCheck(assemble(proc.info, assembly, readLengths))
	proc.output <- assembly
}

// assemble runs the graph stages on a set of reads
func assemble(info *Info, assembly *Assembly, readLengths []int) error {
	config := &info.Assembler
	if err := config.SetKmerSize(readLengths); err != nil {
		return err
	}
	log.Printf("building the de Bruijn graph...")
	log.Printf("\tk-mer size: %d", config.KmerSize)
	var g *graph.Graph
	var err error
	if config.SolidKmers {
		log.Printf("\tusing a Bloom filter to skip k-mers seen only once")
		g, err = graph.BuildSolid(assembly.Reads, config.KmerSize, info.NumProc, config.BloomBits)
	} else {
		g, err = graph.Build(assembly.Reads, config.KmerSize, info.NumProc)
	}
	if err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return err
	}
	assembly.Graph = g
	assembly.KmerCounts = g.KmerCounts()
	log.Printf("\tnumber of nodes: %d", g.NodeCount())

	log.Printf("cleaning the graph...")
	if config.Erode {
		threshold := config.ErosionThreshold
		if threshold == 0 {
			threshold = int(AutoThreshold(assembly.KmerCounts))
		}
		removed, err := purger.Erode(g, threshold)
		if err != nil {
			return err
		}
		log.Printf("\terosion (count < %d) removed %d nodes", threshold, removed)
	}
	if config.DanglingThreshold > 0 {
		dlp := purger.NewDanglingLinksPurger(config.DanglingThreshold)
		purge := dlp.Purge
		if config.Incremental {
			purge = dlp.PurgeIncremental
		}
		removed, err := purge(g)
		if err != nil {
			return err
		}
		log.Printf("\tdangling links purger (threshold %d) removed %d nodes", config.DanglingThreshold, removed)
	}
	if config.RedundantThreshold > 0 {
		removed, err := purger.NewRedundantPathsPurger(config.RedundantThreshold).Purge(g)
		if err != nil {
			return err
		}
		log.Printf("\tredundant paths purger (threshold %d) removed %d nodes", config.RedundantThreshold, removed)
	}
	if config.LowCoverage {
		threshold := config.CoverageThreshold
		if threshold == 0 {
			threshold = AutoThreshold(assembly.KmerCounts)
		}
		removed, err := contig.RemoveLowCoverage(g, threshold)
		if err != nil {
			return err
		}
		log.Printf("\tlow coverage removal (mean count < %.2f) removed %d nodes", threshold, removed)
	}
	log.Printf("\tnodes remaining: %d", g.LiveCount())

	log.Printf("building contigs...")
	contigs, err := contig.NewBuilder().Build(g)
	if err != nil {
		return err
	}
	assembly.Contigs = contigs
	totalLen, longest := 0, 0
	for _, c := range contigs {
		totalLen += c.Len()
		if c.Len() > longest {
			longest = c.Len()
		}
	}
	log.Printf("\tnumber of contigs: %d", len(contigs))
	log.Printf("\ttotal length: %d, longest contig: %d", totalLen, longest)
	return nil
}
