// Copyright © 2017 Will Rowe <will.rowe@stfc.ac.uk>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.


package cmd

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/will-rowe/padena/src/misc"
	"github.com/will-rowe/padena/src/pipeline"
	"github.com/will-rowe/padena/src/version"
)

// the command line arguments
var (
	reads         *[]string                                                            // list of FASTA/FASTQ files to assemble
	outDir        *string                                                              // directory to save the results to
	defaultOutDir = "./padena-assembly-" + string(time.Now().Format("20060102150405")) // a default dir to store the results
	assembler     pipeline.AssemblerConfig                                             // the assembler settings, filled in by viper
)

// the assemble command (used by cobra)
var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble a set of reads into contigs and, optionally, scaffolds",
	Long: `Assemble a set of reads into contigs and, optionally, scaffolds.

Settings can also be given in a config file (--config) or as PADENA_ environment
variables (e.g. PADENA_KMERSIZE=21). Flags on the command line take precedence.

Mate-pair reads are recognised by their IDs, which should look like
<fragment>.<tag>:<library> where the tag is F/R, 1/2, X1/Y1 or a/b. Each
library needs an insert size, given as --libraries name:mean:sd.`,
	Run: func(cmd *cobra.Command, args []string) {
		runAssemble()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

// a function to initialise the command line arguments
func init() {
	reads = assembleCmd.Flags().StringSliceP("reads", "r", []string{}, "FASTA/FASTQ file(s) to assemble (can be gzipped), STDIN is used if none given")
	outDir = assembleCmd.Flags().StringP("outDir", "o", defaultOutDir, "directory to save the results to")
	assembleCmd.Flags().IntP("kmerSize", "k", 0, "size of k-mer (max 31), 0 picks one from the read lengths")
	assembleCmd.Flags().Bool("solidKmers", false, "only build the graph from k-mers seen at least twice (uses a Bloom filter pass over the reads)")
	assembleCmd.Flags().Int("bloomBits", 0, "size of the Bloom filter used with --solidKmers (0 uses the default size)")
	assembleCmd.Flags().Int("danglingThreshold", -1, "longest dangling link to purge (-1 uses k+1, 0 turns the purge off)")
	assembleCmd.Flags().Int("redundantThreshold", -1, "longest redundant path to purge (-1 uses 3(k+1), 0 turns the purge off)")
	assembleCmd.Flags().Bool("incremental", false, "purge dangling links at every length up to the threshold, shortest first")
	assembleCmd.Flags().Bool("erode", false, "erode low count k-mers from the ends of the graph before purging")
	assembleCmd.Flags().Int("erosionThreshold", 0, "k-mer count below which end nodes are eroded (0 picks one from the k-mer counts)")
	assembleCmd.Flags().Bool("lowCoverage", false, "remove contigs with low mean k-mer count before the final contigs are built")
	assembleCmd.Flags().Float64("coverageThreshold", 0, "mean k-mer count below which contigs are removed (0 picks one from the k-mer counts)")
	assembleCmd.Flags().Bool("scaffold", false, "scaffold the contigs using the mate-pair reads")
	assembleCmd.Flags().StringSliceP("libraries", "l", []string{}, "mate-pair libraries as name:mean:sd (needed with --scaffold)")
	assembleCmd.Flags().Int("depth", 10, "maximum number of contigs to add to a scaffold path")
	assembleCmd.Flags().Int("redundancy", 2, "minimum number of mate pairs needed to link two contigs")
	assembleCmd.Flags().Float64("sdWindow", 3, "number of standard deviations a contig position can be out by")
	assembleCmd.Flags().Int("maxExpansions", 1<<16, "maximum number of steps taken when tracing the paths from a contig")
	assembleCmd.Flags().Bool("bundle", false, "also bundle the results into a tar.gz")
	assembleCmd.Flags().Bool("plotCoverage", false, "plot the k-mer and contig coverage")
	for _, key := range []string{"kmerSize", "solidKmers", "bloomBits", "danglingThreshold", "redundantThreshold", "incremental", "erode", "erosionThreshold", "lowCoverage", "coverageThreshold",
		"scaffold", "libraries", "depth", "redundancy", "sdWindow", "maxExpansions", "bundle", "plotCoverage"} {
		misc.ErrorCheck(viper.BindPFlag(key, assembleCmd.Flags().Lookup(key)))
	}
	RootCmd.AddCommand(assembleCmd)
}

//  a function to check user supplied parameters
func assembleParamCheck() error {
	if len(*reads) == 0 {
		if err := misc.CheckSTDIN(); err != nil {
			return err
		}
		log.Printf("	input file: using STDIN")
	} else {
		for _, readFile := range *reads {
			if err := misc.CheckFile(readFile); err != nil {
				return err
			}
			if err := misc.CheckExt(readFile, []string{"fastq", "fq", "fasta", "fa", "fna"}); err != nil {
				return err
			}
		}
		log.Printf("	input files: %v", *reads)
	}
	if err := viper.Unmarshal(&assembler); err != nil {
		return fmt.Errorf("can't decode the assemble settings: %v", err)
	}
	if err := assembler.Check(); err != nil {
		return err
	}
	if err := misc.PrepareDir(*outDir); err != nil {
		return err
	}

	// set number of processors to use
	if *proc <= 0 || *proc > runtime.NumCPU() {
		*proc = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(*proc)
	return nil
}

/*
  The main function for the assemble command
*/
func runAssemble() {
	// set up profiling
	if *profiling {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}

	// start logging
	logFH, err := misc.StartLogging(*logFile)
	misc.ErrorCheck(err)
	defer logFH.Close()
	log.SetOutput(logFH)
	log.Printf("this is padena (version %s)", version.GetVersion())
	log.Printf("starting the assemble subcommand")

	// check the supplied files and then log some stuff
	log.Printf("checking parameters...")
	misc.ErrorCheck(assembleParamCheck())
	log.Printf("	processors: %d", *proc)
	if assembler.KmerSize == 0 {
		log.Printf("	k-mer size: picked from the reads")
	} else {
		log.Printf("	k-mer size: %d", assembler.KmerSize)
	}
	log.Printf("	erosion: %v", assembler.Erode)
	log.Printf("	low coverage removal: %v", assembler.LowCoverage)
	log.Printf("	scaffolding: %v", assembler.Scaffold)
	if assembler.Scaffold {
		log.Printf("	libraries: %v", assembler.Libraries)
		log.Printf("	max. path depth: %d", assembler.Depth)
		log.Printf("	min. mate pairs per link: %d", assembler.Redundancy)
	}
	log.Printf("	output directory: %v", *outDir)

	// store the runtime information
	info := &pipeline.Info{
		Version:   version.GetVersion(),
		NumProc:   *proc,
		Profiling: *profiling,
		ReadFiles: *reads,
		OutDir:    *outDir,
		Assembler: assembler,
	}

	// create the pipeline
	log.Printf("reading sequences...")
	assemblyPipeline := pipeline.NewPipeline()

	// initialise processes
	readStreamer := pipeline.NewReadStreamer(info)
	graphAssembler := pipeline.NewAssembler(info)
	scaffolder := pipeline.NewScaffolder(info)
	resultWriter := pipeline.NewResultWriter(info)

	// connect the pipeline processes
	readStreamer.Connect(*reads)
	graphAssembler.Connect(readStreamer)
	scaffolder.Connect(graphAssembler)
	resultWriter.Connect(scaffolder)

	// submit each process to the pipeline and run it
	assemblyPipeline.AddProcesses(readStreamer, graphAssembler, scaffolder, resultWriter)
	assemblyPipeline.Run()
	log.Printf("	%v", misc.PrintMemUsage())
	log.Println("finished")
}
