package pipeline

/*
 this part of the pipeline maps the reads back to the contigs and, if requested, scaffolds the contigs using the mate pairs
*/

import (
	"log"

	"github.com/will-rowe/padena/src/misc"
	"github.com/will-rowe/padena/src/scaffold"
	"github.com/will-rowe/padena/src/seqio"
)

// Scaffolder is a pipeline process that maps reads to contigs and joins the contigs into scaffolds
type Scaffolder struct {
	info   *Info
	input  chan *Assembly
	output chan *Assembly
}

// NewScaffolder is the constructor
func NewScaffolder(info *Info) *Scaffolder {
	return &Scaffolder{info: info, output: make(chan *Assembly, 1)}
}

// Connect is the method to join the input of this process with the output of an Assembler
func (proc *Scaffolder) Connect(previous *Assembler) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *Scaffolder) Run() {
	defer close(proc.output)
	for assembly := range proc.input {
		misc.ErrorCheck(scaffoldAssembly(proc.info, assembly))
		proc.output <- assembly
	}
}

// scaffoldAssembly fills in the read mappings and the scaffolds for an assembly
func scaffoldAssembly(info *Info, assembly *Assembly) error {
	config := &info.Assembler
	if !config.Scaffold {
		log.Printf("mapping reads to contigs...")
		reads := []seqio.Sequence{}
		seen := make(map[string]struct{}, len(assembly.Reads))
		for _, read := range assembly.Reads {
			if _, ok := seen[string(read.ID)]; ok || !seqio.IsACGT(read.Seq) {
				continue
			}
			seen[string(read.ID)] = struct{}{}
			reads = append(reads, read)
		}
		readMap, err := scaffold.NewReadContigMapper(info.NumProc).Map(assembly.Contigs, reads, config.KmerSize)
		if err != nil {
			return err
		}
		assembly.ReadMap, assembly.MappedReads = readMap, reads
		log.Printf("\tmapped %d of %d reads", len(readMap), len(reads))
		return nil
	}

	log.Printf("scaffolding contigs...")
	libraries, err := config.LibraryTable()
	if err != nil {
		return err
	}
	for _, name := range libraries.Names() {
		log.Printf("\tlibrary %v: mean %.1f, sd %.1f", name, libraries[name].Mean, libraries[name].SD)
	}
	result, err := config.ScaffoldBuilder(info.NumProc).Run(assembly.Reads, assembly.Contigs, libraries)
	if err != nil {
		return err
	}
	assembly.Result = result
	assembly.ReadMap, assembly.MappedReads = result.ReadMap, result.Reads
	log.Printf("\tmapped %d of %d paired reads", len(result.ReadMap), len(result.Reads))
	log.Printf("\tcontig links: %d", len(result.Links))
	log.Printf("\tscaffold paths: %d", len(result.Paths))
	log.Printf("\tnumber of scaffolds: %d", len(result.Scaffolds))
	return nil
}
