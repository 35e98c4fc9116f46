package scaffold

import (
	"github.com/pkg/errors"
)

// layout is the relative orientation of two contigs in an observation
type layout struct {
	fromFwd, toFwd bool
}

// layouts lists every layout, contigs in the same relative orientation first
var layouts = []layout{{true, true}, {false, false}, {true, false}, {false, true}}

// OrientationBasedMatePairFilter discards mate pairs that disagree with the majority on how two contigs are oriented.
// The layout of an observation already assumes forward-reverse mates: a forward read on the forward strand of
// one contig and a reverse read on the forward strand of another places the second contig reverse complemented.
type OrientationBasedMatePairFilter struct{}

// NewOrientationBasedMatePairFilter is the constructor
func NewOrientationBasedMatePairFilter() *OrientationBasedMatePairFilter {
	return &OrientationBasedMatePairFilter{}
}

// Filter keeps, for each contig pair, the observations in the most supported layout. Layouts tied for the
// most support are all kept and left for the contig graph to settle. Pairs with fewer than redundancy
// observations in that layout are dropped.
func (filter *OrientationBasedMatePairFilter) Filter(cmp ContigMatePairs, redundancy int) (ContigMatePairs, error) {
	if redundancy < 0 {
		return nil, errors.Wrapf(ErrConfig, "redundancy can't be negative (got %d)", redundancy)
	}
	filtered := make(ContigMatePairs)
	for _, pair := range cmp.SortedPairs() {
		if pair.A == pair.B {
			continue
		}
		groups := make(map[layout][]Observation)
		for _, obs := range cmp[pair] {
			l := layout{obs.FromFwd, obs.ToFwd}
			groups[l] = append(groups[l], obs)
		}
		support := 0
		for _, l := range layouts {
			if len(groups[l]) > support {
				support = len(groups[l])
			}
		}
		if support == 0 || support < redundancy {
			continue
		}
		for _, l := range layouts {
			if len(groups[l]) == support {
				filtered[pair] = append(filtered[pair], groups[l]...)
			}
		}
	}
	return filtered, nil
}
