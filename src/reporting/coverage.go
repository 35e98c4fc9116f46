package reporting

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ContigReport summarises the reads that mapped to a contig
type ContigReport struct {
	Name     string
	Reads    int
	Length   int
	Covered  float64 // proportion of contig bases covered by at least one read
	Coverage string  // run length summary of covered (M) and uncovered (D) bases
	Pileup   []int
}

// String formats a report as a tab separated line
func (report ContigReport) String() string {
	return fmt.Sprintf("%v\t%d\t%d\t%.3f\t%v", report.Name, report.Reads, report.Length, report.Covered, report.Coverage)
}

// ContigCoverage reads a BAM stream of read mappings and returns a coverage report for every contig that has reads.
// Secondary alignments are counted.
func ContigCoverage(r io.Reader) ([]ContigReport, error) {
	b, err := bam.NewReader(r, 0)
	if err != nil {
		return nil, errors.Wrap(err, "could not read BAM")
	}
	defer b.Close()
	refs := b.Header().Refs()
	records := make(map[string][]*sam.Record, len(refs))
	for {
		record, err := b.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "error reading BAM")
		}
		if record.Flags&sam.Unmapped != 0 || record.Ref == nil {
			continue
		}
		records[record.Ref.Name()] = append(records[record.Ref.Name()], record)
	}
	reports := []ContigReport{}
	for _, ref := range refs {
		recs, ok := records[ref.Name()]
		if !ok || ref.Len() == 0 {
			continue
		}
		pileup := make([]int, ref.Len())
		covered := 0
		for _, rec := range recs {
			end := rec.Start() + rec.Len()
			if end > len(pileup) {
				end = len(pileup)
			}
			for i := rec.Start(); i < end; i++ {
				if pileup[i] == 0 {
					covered++
				}
				pileup[i]++
			}
		}
		reports = append(reports, ContigReport{
			Name:     ref.Name(),
			Reads:    len(recs),
			Length:   ref.Len(),
			Covered:  float64(covered) / float64(ref.Len()),
			Coverage: coverageString(pileup),
			Pileup:   pileup,
		})
	}
	return reports, nil
}

// coverageString run length encodes the covered (M) and uncovered (D) bases of a pileup
func coverageString(pileup []int) string {
	summary := ""
	count := 0
	prev := byte(0)
	for i, depth := range pileup {
		state := byte('M')
		if depth == 0 {
			state = 'D'
		}
		if i != 0 && state != prev {
			summary += strconv.Itoa(count) + string(prev)
			count = 0
		}
		prev = state
		count++
	}
	if count != 0 {
		summary += strconv.Itoa(count) + string(prev)
	}
	return summary
}

// PlotContigCoverage saves a line plot of the pileup for a contig into a directory
func PlotContigCoverage(report ContigReport, dir string) (string, error) {
	covPlot, err := plot.New()
	if err != nil {
		return "", err
	}
	covPlot.Title.Text = "coverage plot"
	covPlot.X.Label.Text = "position in contig"
	covPlot.Y.Label.Text = "coverage (number of reads at position)"
	coverage := make(plotter.XYs, len(report.Pileup))
	for i := range coverage {
		coverage[i].X = float64(i)
		coverage[i].Y = float64(report.Pileup[i])
	}
	if err := plotutil.AddLinePoints(covPlot, report.Name, coverage); err != nil {
		return "", err
	}
	fileName := filepath.Join(dir, fmt.Sprintf("coverage-for-%v.png", report.Name))
	if err := covPlot.Save(8*vg.Inch, 8*vg.Inch, fileName); err != nil {
		return "", err
	}
	return fileName, nil
}

// PlotKmerCoverage saves a histogram of k-mer counts, the usual way to eyeball sequencing depth and error k-mers
func PlotKmerCoverage(counts []int, fileName string) error {
	if len(counts) == 0 {
		return errors.New("no k-mer counts to plot")
	}
	values := make(plotter.Values, len(counts))
	max := 0
	for i, c := range counts {
		values[i] = float64(c)
		if c > max {
			max = c
		}
	}
	bins := max
	if bins < 1 {
		bins = 1
	}
	if bins > 100 {
		bins = 100
	}
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = "k-mer coverage"
	p.X.Label.Text = "k-mer count"
	p.Y.Label.Text = "number of k-mers"
	hist, err := plotter.NewHist(values, bins)
	if err != nil {
		return err
	}
	p.Add(hist)
	return p.Save(8*vg.Inch, 4*vg.Inch, fileName)
}
