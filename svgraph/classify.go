package svgraph

import (
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
)

// Flag masks used literally, per spec §3.
const (
	// FlagDropMask = dup | qcfail | unmapped. Alignments matching any of
	// these bits are never turned into nodes.
	FlagDropMask = 0x604
	// FlagSecondarySupplementary = secondary | supplementary.
	FlagSecondarySupplementary = 0x900
	// FlagOtherMask names the third literal mask in spec §3. It is not
	// consulted by any rule in this package; it is kept as a named
	// constant for parity with the spec's external contract.
	FlagOtherMask = 0x708
)

// ShouldDiscard reports whether r carries no SV signal at all: any of the
// FlagDropMask bits set, or a missing CIGAR/sequence.
func ShouldDiscard(r *sam.Record) bool {
	if r.Flags&FlagDropMask != 0 {
		return true
	}
	if len(r.Cigar) == 0 || r.Seq.Length == 0 {
		return true
	}
	return false
}

// ReferenceEnd returns the last reference position (half-open) covered by
// r's CIGAR, i.e. r.Pos plus every reference-consuming op's length.
func ReferenceEnd(r *sam.Record) int {
	end := r.Pos
	for _, op := range r.Cigar {
		if consumesReference(op.Type()) {
			end += op.Len()
		}
	}
	return end
}

// InferReadLength returns the length of r's underlying read: the sum of
// its CIGAR's query-consuming ops, or the raw sequence length if r has no
// CIGAR at all.
func InferReadLength(r *sam.Record) int {
	if len(r.Cigar) == 0 {
		return r.Seq.Length
	}
	n := 0
	for _, op := range r.Cigar {
		if consumesQuery(op.Type()) {
			n += op.Len()
		}
	}
	return n
}

func consumesReference(t sam.CigarOpType) bool {
	switch t {
	case sam.CigarMatch, sam.CigarDeletion, sam.CigarSkipped, sam.CigarEqual, sam.CigarMismatch:
		return true
	default:
		return false
	}
}

func consumesQuery(t sam.CigarOpType) bool {
	switch t {
	case sam.CigarMatch, sam.CigarInsertion, sam.CigarSoftClipped, sam.CigarEqual, sam.CigarMismatch:
		return true
	default:
		return false
	}
}

// leftClipLen and rightClipLen return the length of a leading/trailing
// soft clip, or 0 if the read isn't clipped on that side.
func leftClipLen(r *sam.Record) int {
	if len(r.Cigar) == 0 {
		return 0
	}
	if op := r.Cigar[0]; op.Type() == sam.CigarSoftClipped {
		return op.Len()
	}
	return 0
}

func rightClipLen(r *sam.Record) int {
	if len(r.Cigar) == 0 {
		return 0
	}
	if op := r.Cigar[len(r.Cigar)-1]; op.Type() == sam.CigarSoftClipped {
		return op.Len()
	}
	return 0
}

// leftClipSeq and rightClipSeq return the clipped bases themselves,
// suitable for feeding to ClipScoper.Update.
func leftClipSeq(r *sam.Record) []byte {
	n := leftClipLen(r)
	if n == 0 {
		return nil
	}
	seq := r.Seq.Expand()
	if n > len(seq) {
		n = len(seq)
	}
	return seq[:n]
}

func rightClipSeq(r *sam.Record) []byte {
	n := rightClipLen(r)
	if n == 0 {
		return nil
	}
	seq := r.Seq.Expand()
	if n > len(seq) {
		n = len(seq)
	}
	return seq[len(seq)-n:]
}

// SAEntry is one parsed entry of an "SA" auxiliary tag (spec §6 "Tag
// contracts"): chrom,pos,strand,cigar,mapq,nm.
type SAEntry struct {
	Chrom  string
	Pos    int
	Strand byte
	Cigar  string
	MapQ   int
	NM     int
}

var saTag = sam.Tag{'S', 'A'}
var zpTag = sam.Tag{'Z', 'P'}

// ParseSATag parses the raw value of an "SA" tag into its ';'-separated
// entries. Per spec §7, a malformed entry is silently skipped by
// breaking out of the parse loop: entries parsed before the malformed one
// are still returned, with no error.
func ParseSATag(value string) []SAEntry {
	var out []SAEntry
	for _, raw := range strings.Split(strings.TrimSuffix(value, ";"), ";") {
		if raw == "" {
			continue
		}
		fields := strings.Split(raw, ",")
		if len(fields) != 6 {
			break
		}
		pos, err := strconv.Atoi(fields[1])
		if err != nil {
			break
		}
		mapq, err := strconv.Atoi(fields[4])
		if err != nil {
			break
		}
		nm, err := strconv.Atoi(fields[5])
		if err != nil {
			break
		}
		if len(fields[2]) != 1 {
			break
		}
		out = append(out, SAEntry{
			Chrom:  fields[0],
			Pos:    pos - 1, // SA tag positions are 1-based.
			Strand: fields[2][0],
			Cigar:  fields[3],
			MapQ:   mapq,
			NM:     nm,
		})
	}
	return out
}

// GetSATag returns the record's "SA" tag value and whether it was present.
func GetSATag(r *sam.Record) (string, bool) {
	aux := r.AuxFields.Get(saTag)
	if aux == nil {
		return "", false
	}
	s, ok := aux.Value().(string)
	return s, ok
}

// HasExtendedTags reports whether r carries the "ZP" tag, which toggles
// InsertSizeEstimator's extended_tags flag (InsertSizeStats.ExtendedTags,
// spec §6).
func HasExtendedTags(r *sam.Record) bool {
	return r.AuxFields.Get(zpTag) != nil
}

// Event is one SV-signal-bearing occurrence derived from a single
// alignment record by ClassifyAlignment: the inputs add_to_graph needs to
// create a node and register it with the scopers.
type Event struct {
	Kind       ReadEnum
	CigarIndex int // -1 for a whole-read event
	EventPos   int
	Chrom1     int
	Pos1       int
	Chrom2     int
	Pos2       int
	LenCig     int // 0 if unknown/not applicable
}

// refResolver maps a chromosome name (as found in an SA tag) to the
// integer reference id used throughout the package.
type refResolver func(name string) (int, bool)

// ClassifyAlignment implements spec §4.2/§2's process_alignment: given an
// admitted record (the caller must have already applied ShouldDiscard),
// it returns every SV-signal event the record carries. A record can
// contribute more than one event (e.g. a split read yields one event per
// CIGAR boundary op, and a single record can carry both a qualifying
// in-read deletion and a discordant mate).
func ClassifyAlignment(r *sam.Record, chrom int, cfg Config, resolveRef refResolver) []Event {
	var events []Event

	if r.MapQ < byte(cfg.MapQThresh) {
		return events
	}
	isPrimary := r.Flags&FlagSecondarySupplementary == 0

	if saVal, ok := GetSATag(r); ok && isPrimary {
		events = append(events, classifySplit(r, chrom, saVal, resolveRef)...)
	} else if r.Flags&sam.Unmapped == 0 && isPrimary {
		if r.Flags&sam.MateUnmapped != 0 && r.Flags&sam.Paired != 0 {
			events = append(events, Event{
				Kind: Breakend, CigarIndex: -1,
				EventPos: r.Pos, Chrom1: chrom, Pos1: r.Pos,
				Chrom2: InsertionChrom, Pos2: r.Pos,
			})
		} else if r.Flags&sam.Paired != 0 && r.Flags&sam.ProperPair == 0 && r.MateRef != nil {
			mateChrom, ok := resolveRef(r.MateRef.Name())
			if ok {
				events = append(events, Event{
					Kind: Discordant, CigarIndex: -1,
					EventPos: r.Pos, Chrom1: chrom, Pos1: r.Pos,
					Chrom2: mateChrom, Pos2: r.MatePos,
				})
			}
		}
	}

	events = append(events, classifyIndels(r, chrom, cfg)...)
	return events
}

// classifySplit derives the two boundary events a split read contributes:
// one at the first CIGAR op (cigar_index 0) and one at the last
// (cigar_index len(cigar)-1), per spec §8 scenario 2. Whichever side
// carries the larger soft clip is the side that faces the SA partner, and
// gets chrom2/pos2 from the SA tag's first entry; the other boundary
// points back at it so both ends remain linked locally.
func classifySplit(r *sam.Record, chrom int, saVal string, resolveRef refResolver) []Event {
	entries := ParseSATag(saVal)
	if len(entries) == 0 {
		return nil
	}
	sa := entries[0]
	partnerChrom, ok := resolveRef(sa.Chrom)
	if !ok {
		return nil
	}

	left := Event{Kind: Split, CigarIndex: 0, EventPos: r.Pos, Chrom1: chrom, Pos1: r.Pos}
	right := Event{Kind: Split, CigarIndex: len(r.Cigar) - 1, EventPos: ReferenceEnd(r), Chrom1: chrom, Pos1: ReferenceEnd(r)}

	if leftClipLen(r) >= rightClipLen(r) {
		left.Chrom2, left.Pos2 = partnerChrom, sa.Pos
		right.Chrom2, right.Pos2 = chrom, left.EventPos
	} else {
		right.Chrom2, right.Pos2 = partnerChrom, sa.Pos
		left.Chrom2, left.Pos2 = chrom, right.EventPos
	}
	return []Event{left, right}
}

// classifyIndels scans r's CIGAR for deletions/insertions at or above
// Config.MinSVSize and emits one within-read event per qualifying op.
func classifyIndels(r *sam.Record, chrom int, cfg Config) []Event {
	var events []Event
	refPos := r.Pos
	for idx, op := range r.Cigar {
		switch op.Type() {
		case sam.CigarDeletion:
			if op.Len() >= cfg.MinSVSize {
				events = append(events, Event{
					Kind: Deletion, CigarIndex: idx, EventPos: refPos,
					Chrom1: chrom, Pos1: refPos,
					Chrom2: chrom, Pos2: refPos + op.Len(),
					LenCig: op.Len(),
				})
			}
		case sam.CigarInsertion:
			if op.Len() >= cfg.MinSVSize {
				events = append(events, Event{
					Kind: Insertion, CigarIndex: idx, EventPos: refPos,
					Chrom1: chrom, Pos1: refPos,
					Chrom2: InsertionChrom, Pos2: refPos,
					LenCig: op.Len(),
				})
			}
		}
		if consumesReference(op.Type()) {
			refPos += op.Len()
		}
	}
	return events
}
