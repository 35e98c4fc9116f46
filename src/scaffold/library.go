// Package scaffold orders and orients contigs using mate-pair reads. Reads are mapped back to the contigs,
// mate pairs that land on different contigs give distance estimates between them, and these links are
// traced through a contig graph to find the scaffold paths.
package scaffold

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrConfig is returned when a scaffold builder is given bad settings
var ErrConfig = errors.New("invalid scaffold configuration")

// Library describes the insert size distribution of a mate-pair library
type Library struct {
	Mean float64
	SD   float64
}

// LibraryTable holds the known libraries, keyed by the name used in the read IDs
type LibraryTable map[string]Library

// Add registers a library, replacing any existing entry
func (lt LibraryTable) Add(name string, mean, sd float64) error {
	if name == "" {
		return errors.Wrap(ErrConfig, "library needs a name")
	}
	if mean <= 0 || sd < 0 {
		return errors.Wrapf(ErrConfig, "library %v has a bad insert size (mean %v, sd %v)", name, mean, sd)
	}
	lt[name] = Library{Mean: mean, SD: sd}
	return nil
}

// Names returns the library names in sorted order
func (lt LibraryTable) Names() []string {
	names := make([]string, 0, len(lt))
	for name := range lt {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseLibraries builds a LibraryTable from strings in the format name:mean:sd
func ParseLibraries(entries []string) (LibraryTable, error) {
	lt := make(LibraryTable)
	for _, entry := range entries {
		fields := strings.Split(entry, ":")
		if len(fields) != 3 {
			return nil, errors.Wrapf(ErrConfig, "library should be name:mean:sd, got %v", entry)
		}
		mean, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, errors.Wrapf(ErrConfig, "bad mean for library %v", fields[0])
		}
		sd, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, errors.Wrapf(ErrConfig, "bad standard deviation for library %v", fields[0])
		}
		if err := lt.Add(fields[0], mean, sd); err != nil {
			return nil, err
		}
	}
	return lt, nil
}
