package pipeline

import (
	"fmt"
	"io/ioutil"

	"github.com/will-rowe/padena/src/scaffold"
	"github.com/will-rowe/padena/src/version"
	"gopkg.in/vmihailenco/msgpack.v2"
)

// CheckpointContig is a contig as stored in a checkpoint
type CheckpointContig struct {
	Seq      []byte
	Coverage float64
}

// Checkpoint holds the outcome of an assembly so that it can be reloaded without rebuilding the graph
type Checkpoint struct {
	Version   string
	KmerSize  int
	Contigs   []CheckpointContig
	Paths     []scaffold.ScaffoldPath
	Scaffolds [][]byte
}

// NewCheckpoint collects the contigs and any scaffolds from an assembly
func NewCheckpoint(info *Info, assembly *Assembly) *Checkpoint {
	cp := &Checkpoint{
		Version:  info.Version,
		KmerSize: info.Assembler.KmerSize,
		Contigs:  make([]CheckpointContig, len(assembly.Contigs)),
	}
	for i, c := range assembly.Contigs {
		cp.Contigs[i] = CheckpointContig{Seq: c.Seq, Coverage: c.Coverage}
	}
	if assembly.Result != nil {
		cp.Paths = assembly.Result.Paths
		for _, s := range assembly.Result.Scaffolds {
			cp.Scaffolds = append(cp.Scaffolds, s.Seq)
		}
	}
	return cp
}

// Dump writes the checkpoint to disk
func (cp *Checkpoint) Dump(path string) error {
	b, err := msgpack.Marshal(cp)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, b, 0644)
}

// Load reads a checkpoint from disk, a checkpoint from a release with a different base version is refused
func (cp *Checkpoint) Load(path string) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return fmt.Errorf("checkpoint file appears empty: %v", path)
	}
	if err := msgpack.Unmarshal(b, cp); err != nil {
		return err
	}
	if !version.Compatible(cp.Version) {
		return fmt.Errorf("checkpoint was written by padena %v, which can't be loaded by padena %v", cp.Version, version.GetVersion())
	}
	return nil
}
