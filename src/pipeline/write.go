package pipeline

/*
 this part of the pipeline writes the assembly to the output directory
*/

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver"
	"github.com/will-rowe/padena/src/misc"
	"github.com/will-rowe/padena/src/reporting"
	"github.com/will-rowe/padena/src/scaffold"
	"github.com/will-rowe/padena/src/seqio"
)

// MaxGraphDOT is the largest de Bruijn graph (in live nodes) that will be written as DOT
const MaxGraphDOT = 10000

// BundleName is the name of the tarball made from the output files
const BundleName = "padena-results.tar.gz"

// ResultWriter is a pipeline process that writes the contigs, scaffolds, graphs and read mappings
type ResultWriter struct {
	info  *Info
	input chan *Assembly
	files []string
}

// NewResultWriter is the constructor
func NewResultWriter(info *Info) *ResultWriter {
	return &ResultWriter{info: info}
}

// Connect is the method to join the input of this process with the output of a Scaffolder
func (proc *ResultWriter) Connect(previous *Scaffolder) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *ResultWriter) Run() {
	for assembly := range proc.input {
		log.Printf("writing results...")
		misc.ErrorCheck(misc.PrepareDir(proc.info.OutDir))
		misc.ErrorCheck(proc.write(assembly))
		for _, file := range proc.files {
			log.Printf("\t%v", file)
		}
	}
}

// Files returns the files written by the process
func (proc *ResultWriter) Files() []string {
	return proc.files
}

// path returns a file name in the output directory and records it
func (proc *ResultWriter) path(name string) string {
	fileName := filepath.Join(proc.info.OutDir, name)
	proc.files = append(proc.files, fileName)
	return fileName
}

// writeFile creates a file and hands it to a write function
func (proc *ResultWriter) writeFile(name string, write func(fh *os.File) error) error {
	fh, err := os.Create(proc.path(name))
	if err != nil {
		return err
	}
	if err := write(fh); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

func (proc *ResultWriter) write(assembly *Assembly) error {
	config := &proc.info.Assembler

	// sequences
	contigs := make([]seqio.Sequence, len(assembly.Contigs))
	for i, c := range assembly.Contigs {
		contigs[i] = seqio.NewSequence(reporting.ContigName(i), c.Seq)
	}
	if err := proc.writeFile("contigs.fasta", func(fh *os.File) error {
		return seqio.WriteFASTA(fh, contigs)
	}); err != nil {
		return err
	}
	cg := scaffold.NewContigGraph(assembly.Contigs, config.KmerSize)
	var paths []scaffold.ScaffoldPath
	if assembly.Result != nil {
		cg, paths = assembly.Result.Graph, assembly.Result.Paths
		scaffolds := make([]seqio.Sequence, len(assembly.Result.Scaffolds))
		for i, s := range assembly.Result.Scaffolds {
			scaffolds[i] = seqio.NewSequence(fmt.Sprintf("scaffold_%d", i), s.Seq)
		}
		if err := proc.writeFile("scaffolds.fasta", func(fh *os.File) error {
			return seqio.WriteFASTA(fh, scaffolds)
		}); err != nil {
			return err
		}
	}

	// graphs
	if err := proc.writeFile("contig-graph.gfa", func(fh *os.File) error {
		return cg.WriteGFA(fh, paths)
	}); err != nil {
		return err
	}
	dot, err := cg.DOT()
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(proc.path("contig-graph.dot"), []byte(dot), 0644); err != nil {
		return err
	}
	if assembly.Graph != nil && assembly.Graph.LiveCount() <= MaxGraphDOT {
		dot, err := assembly.Graph.DOT()
		if err != nil {
			return err
		}
		if err := ioutil.WriteFile(proc.path("debruijn-graph.dot"), []byte(dot), 0644); err != nil {
			return err
		}
	}

	// read mappings and coverage
	var bamBuf bytes.Buffer
	numRecords, err := reporting.WriteBAM(&bamBuf, assembly.Contigs, assembly.ReadMap, assembly.MappedReads)
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(proc.path("read-mappings.bam"), bamBuf.Bytes(), 0644); err != nil {
		return err
	}
	log.Printf("\tBAM records: %d", numRecords)
	reports, err := reporting.ContigCoverage(bytes.NewReader(bamBuf.Bytes()))
	if err != nil {
		return err
	}
	lines := []string{"contig\treads\tlength\tcovered\tcoverage"}
	for _, report := range reports {
		lines = append(lines, report.String())
	}
	if err := ioutil.WriteFile(proc.path("contig-coverage.tsv"), []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		return err
	}
	if config.PlotCoverage {
		plotDir := filepath.Join(proc.info.OutDir, "coverage-plots")
		if err := misc.PrepareDir(plotDir); err != nil {
			return err
		}
		for _, report := range reports {
			plotFile, err := reporting.PlotContigCoverage(report, plotDir)
			if err != nil {
				return err
			}
			proc.files = append(proc.files, plotFile)
		}
		if len(assembly.KmerCounts) != 0 {
			if err := reporting.PlotKmerCoverage(assembly.KmerCounts, proc.path("kmer-coverage.png")); err != nil {
				return err
			}
		}
	}

	// run info
	if err := NewCheckpoint(proc.info, assembly).Dump(proc.path("checkpoint.msgpack")); err != nil {
		return err
	}
	if err := proc.info.Dump(proc.path("padena.info")); err != nil {
		return err
	}
	if config.Bundle {
		bundle := filepath.Join(proc.info.OutDir, BundleName)
		if err := os.RemoveAll(bundle); err != nil {
			return err
		}
		if err := archiver.Archive(proc.files, bundle); err != nil {
			return err
		}
		proc.files = append(proc.files, bundle)
	}
	return nil
}
