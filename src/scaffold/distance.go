package scaffold

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Link is the estimated distance between two oriented contigs
type Link struct {
	From    int
	FromFwd bool
	To      int
	ToFwd   bool
	Gap     float64
	SD      float64
	Support int  // number of mate pairs behind the estimate
	Overlap bool // the contigs are estimated to overlap, Gap has been clamped to 0
}

// Mirror returns the same link read from the other contig
func (link Link) Mirror() Link {
	mirror := link
	mirror.From, mirror.FromFwd = link.To, !link.ToFwd
	mirror.To, mirror.ToFwd = link.From, !link.FromFwd
	return mirror
}

// DistanceCalculator turns the observations for each contig pair into a single distance estimate
type DistanceCalculator struct{}

// NewDistanceCalculator is the constructor
func NewDistanceCalculator() *DistanceCalculator {
	return &DistanceCalculator{}
}

// Calculate returns a link for every contig pair and layout. Observations are weighted by the inverse variance
// of their library.
func (calc *DistanceCalculator) Calculate(cmp ContigMatePairs) []Link {
	links := []Link{}
	for _, pair := range cmp.SortedPairs() {
		groups := make(map[layout][]Observation)
		for _, obs := range cmp[pair] {
			l := layout{obs.FromFwd, obs.ToFwd}
			groups[l] = append(groups[l], obs)
		}
		for _, l := range layouts {
			if len(groups[l]) == 0 {
				continue
			}
			link := estimate(groups[l])
			link.From, link.FromFwd, link.To, link.ToFwd = pair.A, l.fromFwd, pair.B, l.toFwd
			links = append(links, link)
		}
	}
	return links
}

// estimate works out the weighted mean gap and its standard deviation
func estimate(observations []Observation) Link {
	n := float64(len(observations))
	gaps := make([]float64, len(observations))
	weights := make([]float64, len(observations))
	total := 0.0
	for i, obs := range observations {
		gaps[i] = obs.Gap
		sd := obs.SD
		if sd <= 0 {
			sd = 1
		}
		weights[i] = 1 / (sd * sd)
		total += weights[i]
	}

	// scale the weights to sum to the number of observations so the spread is a sample deviation
	for i := range weights {
		weights[i] *= n / total
	}
	mean, spread := stat.MeanStdDev(gaps, weights)
	if len(observations) == 1 {
		spread = 0
	}
	link := Link{
		Gap:     mean,
		SD:      math.Max(spread, math.Sqrt(1/total)),
		Support: len(observations),
	}
	if link.Gap < 0 {
		link.Gap = 0
		link.Overlap = true
	}
	return link
}
