/*
	the seqio package contains custom types and methods for holding, reading and writing sequence data
*/
package seqio

import (
	"unicode"
)

// complementBases is the lookup table used during reverse complementation
var complementBases = [256]byte{
	'A': 'T',
	'T': 'A',
	'C': 'G',
	'G': 'C',
	'N': 'N',
}

// Sequence is the base type for a read, contig or scaffold
type Sequence struct {
	ID  []byte
	Seq []byte
}

// NewSequence is a helper to build a Sequence from a string ID
func NewSequence(id string, seq []byte) Sequence {
	return Sequence{ID: []byte(id), Seq: seq}
}

// BaseCheck is a method to convert bases to upper case, replacing anything that isn't ACTG with N
// it returns true if the sequence only contains A, C, T and G
func (Sequence *Sequence) BaseCheck() bool {
	clean := true
	for i, j := 0, len(Sequence.Seq); i < j; i++ {
		switch base := unicode.ToUpper(rune(Sequence.Seq[i])); base {
		case 'A', 'C', 'T', 'G':
			Sequence.Seq[i] = byte(base)
		default:
			Sequence.Seq[i] = 'N'
			clean = false
		}
	}
	return clean
}

// IsACGT returns true if a sequence is non-empty and only contains upper case A, C, T and G
func IsACGT(seq []byte) bool {
	if len(seq) == 0 {
		return false
	}
	for _, base := range seq {
		switch base {
		case 'A', 'C', 'T', 'G':
		default:
			return false
		}
	}
	return true
}

// ReverseComplement returns a reverse complemented copy of a sequence
func ReverseComplement(seq []byte) []byte {
	rc := make([]byte, len(seq))
	for i, j := 0, len(seq)-1; j >= 0; i, j = i+1, j-1 {
		if c := complementBases[seq[j]]; c != 0 {
			rc[i] = c
		} else {
			rc[i] = 'N'
		}
	}
	return rc
}
