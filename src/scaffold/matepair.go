package scaffold

import (
	"regexp"
	"sort"

	"github.com/will-rowe/padena/src/contig"
	"github.com/will-rowe/padena/src/seqio"
)

// mate-pair read IDs look like name.tag:library
var matePairID = regexp.MustCompile(`^(.*)\.(X1|Y1|F|R|1|2|x1|y1|f|r|a|b|A|B):(.*)$`)

// mateTags maps each tag to the tag of its mate
var mateTags = map[string]string{
	"X1": "Y1", "Y1": "X1",
	"F": "R", "R": "F",
	"1": "2", "2": "1",
	"x1": "y1", "y1": "x1",
	"f": "r", "r": "f",
	"A": "B", "B": "A",
	"a": "b", "b": "a",
}

// forwardTags marks the tags used for the forward read of a pair
var forwardTags = map[string]bool{"X1": true, "F": true, "1": true, "x1": true, "f": true, "a": true, "A": true}

// ParseMateID splits a read ID into its fragment name, tag and library
func ParseMateID(id string) (name, tag, library string, ok bool) {
	m := matePairID.FindStringSubmatch(id)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

// IsMateRead returns true if a read ID follows the mate-pair naming convention
func IsMateRead(id string) bool {
	_, _, _, ok := ParseMateID(id)
	return ok
}

// MatePair links the forward and reverse reads of a fragment
type MatePair struct {
	ForwardID string
	ReverseID string
	Library   string
}

// Observation is a single mate pair spanning two contigs, the layout is normalised so that From < To
type Observation struct {
	ForwardID string
	ReverseID string
	Library   string
	From      int
	FromFwd   bool
	To        int
	ToFwd     bool
	Gap       float64 // estimated number of bases between the two contigs
	SD        float64
}

// ContigPair is an unordered pair of contigs, A is always the lower index
type ContigPair struct {
	A, B int
}

// ContigMatePairs collects the observations for each contig pair
type ContigMatePairs map[ContigPair][]Observation

// SortedPairs returns the contig pairs in index order
func (cmp ContigMatePairs) SortedPairs() []ContigPair {
	pairs := make([]ContigPair, 0, len(cmp))
	for pair := range cmp {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// MatePairMapper pairs up reads and places the pairs on contigs
type MatePairMapper struct{}

// NewMatePairMapper is the constructor
func NewMatePairMapper() *MatePairMapper {
	return &MatePairMapper{}
}

// Map pairs reads by fragment name and library. Reads without a mate, or from a library that is not in the
// table, are ignored.
func (mapper *MatePairMapper) Map(reads []seqio.Sequence, libraries LibraryTable) []MatePair {
	type fragment struct {
		forward, reverse string
		library          string
	}
	fragments := make(map[string]*fragment)
	for _, read := range reads {
		id := string(read.ID)
		name, tag, library, ok := ParseMateID(id)
		if !ok {
			continue
		}
		if _, ok := libraries[library]; !ok {
			continue
		}
		forwardTag := tag
		if !forwardTags[tag] {
			forwardTag = mateTags[tag]
		}
		key := name + "." + forwardTag + ":" + library
		f, ok := fragments[key]
		if !ok {
			f = &fragment{library: library}
			fragments[key] = f
		}
		if forwardTags[tag] {
			f.forward = id
		} else {
			f.reverse = id
		}
	}
	keys := make([]string, 0, len(fragments))
	for key, f := range fragments {
		if f.forward != "" && f.reverse != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	pairs := make([]MatePair, len(keys))
	for i, key := range keys {
		f := fragments[key]
		pairs[i] = MatePair{ForwardID: f.forward, ReverseID: f.reverse, Library: f.library}
	}
	return pairs
}

// MapToContigs finds every pair whose reads map to different contigs. The forward read is expected on the
// fragment strand and the reverse read on the opposite strand, each combination of mappings is an observation.
func (mapper *MatePairMapper) MapToContigs(contigs []contig.Contig, readMap ReadContigMap, pairs []MatePair, libraries LibraryTable) ContigMatePairs {
	cmp := make(ContigMatePairs)
	for _, pair := range pairs {
		lib, ok := libraries[pair.Library]
		if !ok {
			continue
		}
		forwardMaps, reverseMaps := readMap[pair.ForwardID], readMap[pair.ReverseID]
		if len(forwardMaps) == 0 || len(reverseMaps) == 0 {
			continue
		}
		for _, a := range sortedContigs(forwardMaps) {
			for _, b := range sortedContigs(reverseMaps) {
				if a == b {
					continue
				}
				for _, fm := range forwardMaps[a] {
					for _, rm := range reverseMaps[b] {
						obs := observe(pair, lib, a, contigs[a].Len(), fm, b, contigs[b].Len(), rm)
						key := ContigPair{obs.From, obs.To}
						cmp[key] = append(cmp[key], obs)
					}
				}
			}
		}
	}
	return cmp
}

// observe works out the layout and gap implied by one mapping of each read
func observe(pair MatePair, lib Library, a, lenA int, fm ReadMap, b, lenB int, rm ReadMap) Observation {
	aFwd := !fm.Reverse
	bFwd := rm.Reverse

	// bases of A after the start of the forward read, and of B up to the start of the reverse read
	tail := lenA - fm.ContigStart
	if !aFwd {
		tail = fm.ContigStart + fm.Length
	}
	head := rm.ContigStart + rm.Length
	if !bFwd {
		head = lenB - rm.ContigStart
	}
	obs := Observation{
		ForwardID: pair.ForwardID,
		ReverseID: pair.ReverseID,
		Library:   pair.Library,
		Gap:       lib.Mean - float64(tail) - float64(head),
		SD:        lib.SD,
	}
	if a < b {
		obs.From, obs.FromFwd, obs.To, obs.ToFwd = a, aFwd, b, bFwd
	} else {
		obs.From, obs.FromFwd, obs.To, obs.ToFwd = b, !bFwd, a, !aFwd
	}
	return obs
}

// sortedContigs returns the contig indices of a read's mappings in order
func sortedContigs(maps map[int][]ReadMap) []int {
	ids := make([]int, 0, len(maps))
	for id := range maps {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
