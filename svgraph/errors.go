package svgraph

import "github.com/grailbio/base/errors"

// Sentinel errors for the fatal conditions in the scanner's error model.
// Per-record problems (bad flags, missing CIGAR, a malformed SA entry) are
// never surfaced this way; they are filtered or counted silently. These are
// only raised when the engine cannot make forward progress.
var (
	// ErrCannotInferReadLength is returned when InsertSizeEstimator and the
	// scanner together fail to observe a single record with an inferable
	// read length within the scan budget.
	ErrCannotInferReadLength = errors.New("svgraph: cannot infer read length from input")

	// ErrNoReads is returned when the record stream yields nothing at all.
	ErrNoReads = errors.New("svgraph: no reads in input")

	// ErrBufferOverflow is returned when the scanner is forced to buffer
	// alignments by node id (no random access available) and the buffer
	// exceeds Config.BufferSize.
	ErrBufferOverflow = errors.New("svgraph: read-offset buffer overflow; provide a seekable/indexed input or raise BufferSize")
)

// wrapf attaches op context to err using the teacher's errors.E convention.
// Returns nil if err is nil.
func wrapf(err error, op string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.E(err, append([]interface{}{op}, args...)...)
}
