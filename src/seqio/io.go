package seqio

import (
	"bufio"
	"io"
	"os"

	"github.com/biogo/biogo/alphabet"
	bseqio "github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// FASTAwidth is the line width used when writing FASTA
const FASTAwidth = 60

// Reader streams sequences from FASTA or FASTQ data, which may be gzipped
type Reader struct {
	scanner *bseqio.Scanner
	closers []io.Closer
	current Sequence
}

// NewReader detects the compression and format of the data and returns a Reader
func NewReader(r io.Reader) (*Reader, error) {
	reader := &Reader{}
	buf := bufio.NewReader(r)
	magic, err := buf.Peek(2)
	if err == io.EOF {
		return reader, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not read sequence data")
	}
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(buf)
		if err != nil {
			return nil, errors.Wrap(err, "could not decompress sequence data")
		}
		reader.closers = append(reader.closers, gz)
		buf = bufio.NewReader(gz)
	}

	// skip any leading blank lines to find the format
	var first []byte
	for {
		first, err = buf.Peek(1)
		if err == io.EOF {
			return reader, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "could not read sequence data")
		}
		if first[0] != '\n' && first[0] != '\r' {
			break
		}
		buf.ReadByte()
	}
	switch first[0] {
	case '>':
		reader.scanner = bseqio.NewScanner(fasta.NewReader(buf, linear.NewSeq("", nil, alphabet.DNA)))
	case '@':
		reader.scanner = bseqio.NewScanner(fastq.NewReader(buf, linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger)))
	default:
		return nil, errors.Errorf("sequence data is not FASTA or FASTQ (starts with %q)", first[0])
	}
	return reader, nil
}

// Open returns a Reader for a FASTA/FASTQ file
func Open(path string) (*Reader, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %v", path)
	}
	reader, err := NewReader(fh)
	if err != nil {
		fh.Close()
		return nil, errors.Wrapf(err, "could not read %v", path)
	}
	reader.closers = append(reader.closers, fh)
	return reader, nil
}

// Next advances the reader to the next sequence
func (reader *Reader) Next() bool {
	if reader.scanner == nil || !reader.scanner.Next() {
		return false
	}
	s := reader.scanner.Seq()
	seq := make([]byte, s.Len())
	for i := range seq {
		seq[i] = byte(s.At(i).L)
	}
	reader.current = Sequence{ID: []byte(s.Name()), Seq: seq}
	return true
}

// Sequence returns the current sequence
func (reader *Reader) Sequence() Sequence {
	return reader.current
}

// Err returns any error encountered by the reader
func (reader *Reader) Err() error {
	if reader.scanner == nil {
		return nil
	}
	return reader.scanner.Error()
}

// Close closes any underlying decompressors and files
func (reader *Reader) Close() error {
	var err error
	for _, c := range reader.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// ReadAll collects every sequence from a set of files
func ReadAll(paths ...string) ([]Sequence, error) {
	seqs := []Sequence{}
	for _, path := range paths {
		reader, err := Open(path)
		if err != nil {
			return nil, err
		}
		for reader.Next() {
			seqs = append(seqs, reader.Sequence())
		}
		err = reader.Err()
		reader.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse %v", path)
		}
	}
	return seqs, nil
}

// WriteFASTA writes a set of sequences as FASTA
func WriteFASTA(w io.Writer, seqs []Sequence) error {
	writer := fasta.NewWriter(w, FASTAwidth)
	for _, s := range seqs {
		if _, err := writer.Write(linear.NewSeq(string(s.ID), alphabet.BytesToLetters(s.Seq), alphabet.DNA)); err != nil {
			return errors.Wrapf(err, "could not write %v", string(s.ID))
		}
	}
	return nil
}
