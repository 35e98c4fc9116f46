// Package pipeline runs padena assemble as a chain of four processes joined by channels: the ReadStreamer
// parses the FASTA/FASTQ input, the Assembler builds and cleans the de Bruijn graph and walks it for contigs,
// the Scaffolder maps the reads back and joins contigs with the mate pairs, and the ResultWriter saves the
// sequences, reports and checkpoint. The process pattern follows S. Lampa's Gopher Academy article on
// composable concurrent pipelines (https://blog.gopheracademy.com/advent-2015/composable-pipelines-improvements/)
package pipeline

// BUFFERSIZE is the size of the buffer on the ReadStreamer output, the later stages pass one Assembly each
const BUFFERSIZE int = 64

// process is the interface used by pipeline
type process interface {
	Run()
}

// Pipeline holds the processes of an assembly run
type Pipeline struct {
	processes []process
}

// NewPipeline is the pipeline constructor
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// AddProcess is a method to add a single process to the pipeline
func (Pipeline *Pipeline) AddProcess(proc process) {
	Pipeline.processes = append(Pipeline.processes, proc)
}

// AddProcesses is a method to add multiple processes to the pipeline, they should be given in the order the data flows
func (Pipeline *Pipeline) AddProcesses(procs ...process) {
	for _, proc := range procs {
		Pipeline.AddProcess(proc)
	}
}

// Run is a method that starts the pipeline and blocks until the final process returns
func (Pipeline *Pipeline) Run() {
	// upstream processes run in goroutines, the last one runs in the foreground and controls the flow
	last := len(Pipeline.processes) - 1
	for i, proc := range Pipeline.processes {
		if i < last {
			go proc.Run()
			continue
		}
		proc.Run()
	}
}

// GetNumProcesses is a method to return the number of processes registered in a pipeline
func (Pipeline *Pipeline) GetNumProcesses() int {
	return len(Pipeline.processes)
}
