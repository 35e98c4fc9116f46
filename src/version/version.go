// Package version holds the padena release number. The full version is written into the SAM header, the GFA
// comment, the run info and each checkpoint; checkpoints are only reloaded by a release with the same base version.
package version

import (
	"fmt"
	"strings"
)

// major is the major version number
const major = 0

// minor is the minor version number
const minor = 3

// patch is the patch version number
const patch = 0

// GetVersion returns the full version string for the current PADENA software
func GetVersion() string {
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}

// GetBaseVersion returns the major minor version string for the current PADENA software
func GetBaseVersion() string {
	return fmt.Sprintf("%d.%d", major, minor)
}

// Compatible reports whether output written by another padena version can be reloaded by this one
func Compatible(v string) bool {
	return strings.HasPrefix(v, GetBaseVersion()+".")
}
