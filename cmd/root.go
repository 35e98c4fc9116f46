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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// the command line arguments
var (
	proc      *int    // number of processors to use
	profiling *bool   // create profile for go pprof
	logFile   *string // file to write the log to
	cfgFile   *string // optional config file for the assemble settings
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "padena",
	Short: "assemble short reads into contigs with a de Bruijn graph and scaffold them with mate pairs",
	Long: `
#####################################################################################
		PADENA: Parallel Assembler using DE bruijN grAphs
#####################################################################################

 PADENA is a de novo assembler for short reads.

 Reads are broken into k-mers which are linked into a de Bruijn graph. Sequencing
 errors are purged from the graph (dangling links and redundant paths) and the
 remaining unbranched paths are spelled out as contigs. Mate-pair reads mapped back
 to the contigs give distance estimates, which are used to order and orient the
 contigs into scaffolds.

 PADENA outputs the contigs and scaffolds as FASTA, the contig graph as GFA and the
 read mappings as BAM.`,
}

/*
  A function to add all child commands to the root command and sets flags appropriately
*/
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

/*
  A function to initalise the command line arguments
*/
func init() {
	cobra.OnInitialize(initConfig)
	proc = RootCmd.PersistentFlags().IntP("processors", "p", 1, "number of processors to use")
	profiling = RootCmd.PersistentFlags().Bool("profiling", false, "create the files needed to profile PADENA using the go tool pprof")
	logFile = RootCmd.PersistentFlags().String("log", "./padena.log", "filename for log file")
	cfgFile = RootCmd.PersistentFlags().String("config", "", "config file (YAML, TOML or JSON) with assemble settings, flags take precedence")
}

// initConfig reads in the config file and any PADENA_ environment variables
func initConfig() {
	viper.SetEnvPrefix("padena")
	viper.AutomaticEnv()
	if *cfgFile == "" {
		return
	}
	viper.SetConfigFile(*cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("can't read config file: %v\n", err)
		os.Exit(1)
	}
}
