package pipeline

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/will-rowe/padena/src/kmer"
	"github.com/will-rowe/padena/src/scaffold"
	"gonum.org/v1/gonum/stat"
)

// Info stores the runtime information
type Info struct {
	Version   string
	NumProc   int
	Profiling bool
	ReadFiles []string
	OutDir    string
	Assembler AssemblerConfig
}

// AssemblerConfig stores the settings for the assemble command, the mapstructure tags match the flag names
// so that viper can fill it from flags, config files and the environment
type AssemblerConfig struct {
	KmerSize           int      `mapstructure:"kmerSize"`           // 0 picks a size from the read lengths
	SolidKmers         bool     `mapstructure:"solidKmers"`
	BloomBits          int      `mapstructure:"bloomBits"`          // 0 uses the default size
	DanglingThreshold  int      `mapstructure:"danglingThreshold"`  // -1 uses k+1, 0 turns the purge off
	RedundantThreshold int      `mapstructure:"redundantThreshold"` // -1 uses 3(k+1), 0 turns the purge off
	Incremental        bool     `mapstructure:"incremental"`
	Erode              bool     `mapstructure:"erode"`
	ErosionThreshold   int      `mapstructure:"erosionThreshold"` // 0 picks a threshold from the k-mer counts
	LowCoverage        bool     `mapstructure:"lowCoverage"`
	CoverageThreshold  float64  `mapstructure:"coverageThreshold"` // 0 picks a threshold from the k-mer counts
	Scaffold           bool     `mapstructure:"scaffold"`
	Libraries          []string `mapstructure:"libraries"` // name:mean:sd
	Depth              int      `mapstructure:"depth"`
	Redundancy         int      `mapstructure:"redundancy"`
	SDWindow           float64  `mapstructure:"sdWindow"`
	MaxExpansions      int      `mapstructure:"maxExpansions"`
	Bundle             bool     `mapstructure:"bundle"`
	PlotCoverage       bool     `mapstructure:"plotCoverage"`
}

// Check validates the assembler settings that do not depend on the reads
func (config *AssemblerConfig) Check() error {
	if config.KmerSize != 0 {
		if err := kmer.CheckSize(config.KmerSize); err != nil {
			return err
		}
	}
	if config.DanglingThreshold < -1 || config.RedundantThreshold < -1 {
		return errors.New("purge thresholds must be -1 (auto), 0 (off) or positive")
	}
	if config.BloomBits < 0 || (config.BloomBits > 0 && config.BloomBits < 64) {
		return errors.New("the Bloom filter needs at least 64 bits (or 0 for the default size)")
	}
	if config.ErosionThreshold < 0 || config.CoverageThreshold < 0 {
		return errors.New("erosion and coverage thresholds can't be negative")
	}
	if config.Scaffold {
		libraries, err := config.LibraryTable()
		if err != nil {
			return err
		}
		if len(libraries) == 0 {
			return errors.New("scaffolding needs at least one mate-pair library")
		}
		builder := config.ScaffoldBuilder(1)
		builder.KmerLength = kmer.MaxK
		if err := builder.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SetKmerSize picks a k-mer size from the read lengths if one wasn't given, and then fills in the purge thresholds
func (config *AssemblerConfig) SetKmerSize(readLengths []int) error {
	if config.KmerSize == 0 {
		k, err := kmer.EstimateKmerLength(readLengths)
		if err != nil {
			return err
		}
		config.KmerSize = k
	}
	if config.DanglingThreshold == -1 {
		config.DanglingThreshold = config.KmerSize + 1
	}
	if config.RedundantThreshold == -1 {
		config.RedundantThreshold = 3 * (config.KmerSize + 1)
	}
	return nil
}

// LibraryTable parses the mate-pair libraries
func (config *AssemblerConfig) LibraryTable() (scaffold.LibraryTable, error) {
	return scaffold.ParseLibraries(config.Libraries)
}

// ScaffoldBuilder returns a scaffold builder using the assembler settings
func (config *AssemblerConfig) ScaffoldBuilder(workers int) *scaffold.GraphScaffoldBuilder {
	builder := scaffold.NewGraphScaffoldBuilder(config.KmerSize)
	builder.Depth = config.Depth
	builder.Redundancy = config.Redundancy
	builder.SDWindow = config.SDWindow
	builder.MaxExpansions = config.MaxExpansions
	builder.Workers = workers
	return builder
}

// AutoThreshold picks a cut off from the k-mer counts: the square root of the median count, ignoring counts
// of 2 or less which are mostly errors. It returns 2 if there is nothing to go on.
func AutoThreshold(counts []int) float64 {
	values := []float64{}
	for _, c := range counts {
		if c > 2 {
			values = append(values, float64(c))
		}
	}
	if len(values) == 0 {
		return 2
	}
	sort.Float64s(values)
	return math.Sqrt(stat.Quantile(0.5, stat.Empirical, values, nil))
}

// Dump is a method to dump the pipeline info to file
func (Info *Info) Dump(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	encoder := gob.NewEncoder(fh)
	return encoder.Encode(Info)
}

// Load is a method to load Info from file
func (Info *Info) Load(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	return Info.LoadFromBytes(data)
}

// LoadFromBytes is a method to load Info from bytes
func (Info *Info) LoadFromBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("padena info file appears empty")
	}
	buf := bytes.NewBuffer(data)
	decoder := gob.NewDecoder(buf)
	return decoder.Decode(Info)
}
