// Package htsio adapts github.com/biogo/hts/{bam,sam,bgzf} into the two
// small interfaces the rest of svgraph needs: a forward-only record
// stream, and a random-access stream restricted to a set of regions. It
// mirrors the iterator pattern grailbio/bio/encoding/bamprovider uses
// (reader + index + bgzf.Offset seeking), trimmed to what this module's
// single-threaded scanner needs.
package htsio

import (
	"io"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/sam"
)

// Source is a forward-only stream of alignment records.
type Source interface {
	// Header returns the BAM header. Valid for the lifetime of the Source.
	Header() *sam.Header
	// Next returns the next record, or io.EOF once exhausted.
	Next() (*sam.Record, error)
	Close() error
}

// RandomAccessSource additionally supports seeking to an arbitrary
// chromosome interval, for region-restricted scans.
type RandomAccessSource interface {
	Source
	// SeekRegion positions the stream so the next Next() call returns
	// the first record overlapping [start,end) on the reference named
	// chrom. Next must be called in a loop afterward until a record
	// past end (or on a different reference) is seen; SeekRegion only
	// guarantees a lower bound, matching bam.Index.Chunks' semantics.
	SeekRegion(chrom string, start, end int) error
	// Rewind repositions the stream at its very first record, for the
	// insert-size prelude's second pass.
	Rewind() error
}

// bamSource wraps a streaming *bam.Reader with no random access.
type bamSource struct {
	in     io.Closer
	reader *bam.Reader
}

// NewBAMSource opens a BAM file for sequential, start-to-finish reading.
// in is closed by Close.
func NewBAMSource(in io.ReadCloser) (Source, error) {
	reader, err := bam.NewReader(in, 1)
	if err != nil {
		return nil, err
	}
	return &bamSource{in: in, reader: reader}, nil
}

func (s *bamSource) Header() *sam.Header { return s.reader.Header() }

func (s *bamSource) Next() (*sam.Record, error) { return s.reader.Read() }

func (s *bamSource) Close() error {
	err := s.reader.Close()
	if cerr := s.in.Close(); err == nil {
		err = cerr
	}
	return err
}

// indexedBAMSource additionally holds the .bai index and the file's
// first-record offset, enabling SeekRegion/Rewind.
type indexedBAMSource struct {
	in          io.ReadSeeker
	inCloser    io.Closer
	reader      *bam.Reader
	index       *bam.Index
	firstRecord bgzf.Offset
}

// NewIndexedBAMSource opens a BAM file along with its index, enabling
// random access via SeekRegion. in must support Seek (bam.Reader.Seek
// requires the underlying stream to be seekable).
func NewIndexedBAMSource(in io.ReadSeekCloser, indexIn io.Reader) (RandomAccessSource, error) {
	idx, err := bam.ReadIndex(indexIn)
	if err != nil {
		return nil, err
	}
	reader, err := bam.NewReader(in, 1)
	if err != nil {
		return nil, err
	}
	return &indexedBAMSource{
		in:          in,
		inCloser:    in,
		reader:      reader,
		index:       idx,
		firstRecord: reader.LastChunk().End,
	}, nil
}

func (s *indexedBAMSource) Header() *sam.Header { return s.reader.Header() }

func (s *indexedBAMSource) Next() (*sam.Record, error) { return s.reader.Read() }

func (s *indexedBAMSource) Close() error {
	err := s.reader.Close()
	if cerr := s.inCloser.Close(); err == nil {
		err = cerr
	}
	return err
}

// SeekRegion implements RandomAccessSource, mirroring
// bamIterator.findRecordOffset: it looks up the first index chunk
// overlapping [start,end) and seeks there. If chrom is not in the header,
// or the index has no chunk for the interval, it returns io.EOF; an error
// from the index lookup itself is returned unchanged.
func (s *indexedBAMSource) SeekRegion(chrom string, start, end int) error {
	ref, ok := s.reader.Header().Refs()[0], false
	for _, r := range s.reader.Header().Refs() {
		if r.Name() == chrom {
			ref, ok = r, true
			break
		}
	}
	if !ok {
		return io.EOF
	}
	chunks, err := s.index.Chunks(ref, start, end)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return io.EOF
	}
	return s.reader.Seek(chunks[0].Begin)
}

func (s *indexedBAMSource) Rewind() error {
	return s.reader.Seek(s.firstRecord)
}
