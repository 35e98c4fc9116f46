package scaffold

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
	"github.com/will-rowe/gfa"
	"github.com/will-rowe/padena/src/contig"
	"github.com/will-rowe/padena/src/seqio"
	"github.com/will-rowe/padena/src/version"
)

// OrientedContig is a contig read in one direction
type OrientedContig struct {
	Contig  int
	Forward bool
}

// Flip returns the contig read the other way
func (oc OrientedContig) Flip() OrientedContig {
	return OrientedContig{oc.Contig, !oc.Forward}
}

// String gives the GFA style name of an oriented contig
func (oc OrientedContig) String() string {
	if oc.Forward {
		return segmentName(oc.Contig) + "+"
	}
	return segmentName(oc.Contig) + "-"
}

func segmentName(id int) string {
	return "contig_" + strconv.Itoa(id)
}

// ContigEdge joins two oriented contigs, either through an exact overlap or a mate-pair link
type ContigEdge struct {
	From    OrientedContig
	To      OrientedContig
	Gap     float64 // negative for overlaps
	SD      float64
	Support int
	Mate    bool
	Overlap bool // a mate link where the contigs are thought to overlap
}

// ContigGraph holds the contigs in both orientations and the edges between them
type ContigGraph struct {
	K       int
	Contigs []contig.Contig
	edges   map[OrientedContig][]ContigEdge
}

// NewContigGraph builds the overlap graph for a set of contigs: there is an edge wherever the last k-1 bases
// of one oriented contig are the first k-1 bases of another
func NewContigGraph(contigs []contig.Contig, k int) *ContigGraph {
	cg := &ContigGraph{
		K:       k,
		Contigs: contigs,
		edges:   make(map[OrientedContig][]ContigEdge),
	}
	overlap := k - 1
	prefixes := make(map[string][]OrientedContig)
	for i, c := range contigs {
		if c.Len() < overlap || overlap == 0 {
			continue
		}
		for _, forward := range []bool{true, false} {
			oc := OrientedContig{i, forward}
			prefix := string(cg.Sequence(oc)[:overlap])
			prefixes[prefix] = append(prefixes[prefix], oc)
		}
	}
	for i, c := range contigs {
		if c.Len() < overlap || overlap == 0 {
			continue
		}
		for _, forward := range []bool{true, false} {
			from := OrientedContig{i, forward}
			seq := cg.Sequence(from)
			for _, to := range prefixes[string(seq[len(seq)-overlap:])] {
				if to.Contig == i {
					continue
				}
				cg.edges[from] = append(cg.edges[from], ContigEdge{From: from, To: to, Gap: -float64(overlap)})
			}
		}
	}
	return cg
}

// Sequence returns the sequence of an oriented contig
func (cg *ContigGraph) Sequence(oc OrientedContig) []byte {
	if oc.Forward {
		return cg.Contigs[oc.Contig].Seq
	}
	return seqio.ReverseComplement(cg.Contigs[oc.Contig].Seq)
}

// AddLinks adds mate-pair links to the graph, each link is also added from the other contig
func (cg *ContigGraph) AddLinks(links []Link) {
	for _, link := range links {
		for _, l := range []Link{link, link.Mirror()} {
			from := OrientedContig{l.From, l.FromFwd}
			cg.edges[from] = append(cg.edges[from], ContigEdge{
				From:    from,
				To:      OrientedContig{l.To, l.ToFwd},
				Gap:     l.Gap,
				SD:      l.SD,
				Support: l.Support,
				Mate:    true,
				Overlap: l.Overlap,
			})
		}
	}
}

// Edges returns the edges leaving an oriented contig
func (cg *ContigGraph) Edges(oc OrientedContig) []ContigEdge {
	return cg.edges[oc]
}

// MateLinks returns the mate-pair links leaving an oriented contig, best supported first
func (cg *ContigGraph) MateLinks(oc OrientedContig) []ContigEdge {
	links := []ContigEdge{}
	for _, e := range cg.edges[oc] {
		if e.Mate {
			links = append(links, e)
		}
	}
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].Support != links[j].Support {
			return links[i].Support > links[j].Support
		}
		if links[i].To.Contig != links[j].To.Contig {
			return links[i].To.Contig < links[j].To.Contig
		}
		return links[i].To.Forward && !links[j].To.Forward
	})
	return links
}

// OverlapEdges returns the exact overlaps leaving an oriented contig
func (cg *ContigGraph) OverlapEdges(oc OrientedContig) []ContigEdge {
	edges := []ContigEdge{}
	for _, e := range cg.edges[oc] {
		if !e.Mate {
			edges = append(edges, e)
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].To.Contig != edges[j].To.Contig {
			return edges[i].To.Contig < edges[j].To.Contig
		}
		return edges[i].To.Forward && !edges[j].To.Forward
	})
	return edges
}

// HasOverlap returns true if two oriented contigs share an exact k-1 overlap
func (cg *ContigGraph) HasOverlap(from, to OrientedContig) bool {
	for _, e := range cg.edges[from] {
		if !e.Mate && e.To == to {
			return true
		}
	}
	return false
}

// sortedEdges returns every edge in a fixed order
func (cg *ContigGraph) sortedEdges() []ContigEdge {
	edges := []ContigEdge{}
	for i := range cg.Contigs {
		for _, forward := range []bool{true, false} {
			edges = append(edges, cg.edges[OrientedContig{i, forward}]...)
		}
	}
	return edges
}

// WriteGFA writes the contigs as segments, the overlaps as links and the scaffold paths as paths
func (cg *ContigGraph) WriteGFA(w io.Writer, paths []ScaffoldPath) error {
	newGFA := gfa.NewGFA()
	_ = newGFA.AddVersion(1)
	newGFA.AddComment([]byte(fmt.Sprintf("contig graph created by padena %v", version.GetVersion())))
	for i, c := range cg.Contigs {
		seg, err := gfa.NewSegment([]byte(segmentName(i)), c.Seq)
		if err != nil {
			return errors.Wrapf(err, "could not create segment for contig %d", i)
		}
		ofs, err := gfa.NewOptionalFields([]byte(fmt.Sprintf("KC:i:%d", int(c.Coverage*float64(c.Path.Len())))), []byte(fmt.Sprintf("LN:i:%d", c.Len())))
		if err != nil {
			return err
		}
		seg.AddOptionalFields(ofs)
		seg.Add(newGFA)
	}

	// each overlap appears twice in the graph, once from either end
	seen := make(map[[2]OrientedContig]struct{})
	for _, e := range cg.sortedEdges() {
		if e.Mate {
			continue
		}
		if _, ok := seen[[2]OrientedContig{e.To.Flip(), e.From.Flip()}]; ok {
			continue
		}
		seen[[2]OrientedContig{e.From, e.To}] = struct{}{}
		link, err := gfa.NewLink([]byte(segmentName(e.From.Contig)), orientation(e.From), []byte(segmentName(e.To.Contig)), orientation(e.To), []byte(fmt.Sprintf("%dM", cg.K-1)))
		if err != nil {
			return err
		}
		link.Add(newGFA)
	}
	for i, p := range paths {
		segments, overlaps := [][]byte{}, [][]byte{}
		for _, step := range p {
			segments = append(segments, []byte(step.OrientedContig().String()))
			overlap := "0M"
			if step.Gap < 0 {
				overlap = fmt.Sprintf("%dM", int(-step.Gap))
			}
			overlaps = append(overlaps, []byte(overlap))
		}
		path, err := gfa.NewPath([]byte(fmt.Sprintf("scaffold_%d", i)), segments, overlaps)
		if err != nil {
			return err
		}
		path.Add(newGFA)
	}
	writer, err := gfa.NewWriter(w, newGFA)
	if err != nil {
		return err
	}
	return newGFA.WriteGFAContent(writer)
}

func orientation(oc OrientedContig) []byte {
	if oc.Forward {
		return []byte("+")
	}
	return []byte("-")
}

// DOT renders the contig graph for graphviz, mate links are dashed and labelled with their gap
func (cg *ContigGraph) DOT() (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("contigs"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	for i := range cg.Contigs {
		for _, forward := range []bool{true, false} {
			oc := OrientedContig{i, forward}
			if err := g.AddNode("contigs", strconv.Quote(oc.String()), nil); err != nil {
				return "", err
			}
		}
	}
	for _, e := range cg.sortedEdges() {
		attrs := map[string]string{}
		if e.Mate {
			attrs["style"] = "dashed"
			attrs["label"] = strconv.Quote(fmt.Sprintf("%.0f (%d)", e.Gap, e.Support))
		}
		if err := g.AddEdge(strconv.Quote(e.From.String()), strconv.Quote(e.To.String()), true, attrs); err != nil {
			return "", err
		}
	}
	return g.String(), nil
}
