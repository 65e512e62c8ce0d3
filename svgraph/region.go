package svgraph

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/store/interval"
)

// regionInterval adapts a half-open [start, end) genomic interval to
// biogo/store/interval's Interface, the way kortschak-ins and
// kortschak-loopy's command-line tools adapt gff.Feature for containment
// and overlap queries.
type regionInterval struct {
	id         uintptr
	start, end int
}

func (r regionInterval) ID() uintptr { return r.id }
func (r regionInterval) Range() interval.IntRange {
	return interval.IntRange{Start: r.start, End: r.end}
}
func (r regionInterval) Overlap(b interval.IntRange) bool {
	return r.end > b.Start && r.start < b.End
}

// RegionSet answers "is this position inside a region of interest", backed
// by one interval tree per chromosome (spec §4.2's "not inside a
// region of interest" checks, and §6's region file).
type RegionSet struct {
	trees map[int]*interval.IntTree
}

// NewRegionSet returns an empty set (every position reports "not in a
// region of interest").
func NewRegionSet() *RegionSet {
	return &RegionSet{trees: make(map[int]*interval.IntTree)}
}

// Add inserts [start, end) on chrom into the set. Call Finalize after all
// Adds are done and before any Contains query.
func (rs *RegionSet) Add(chrom, start, end int) {
	t, ok := rs.trees[chrom]
	if !ok {
		t = &interval.IntTree{}
		rs.trees[chrom] = t
	}
	id := uintptr(t.Len()) // AdjustRanges is deferred to Finalize; IDs only need to be distinct per tree.
	if err := t.Insert(regionInterval{id: id, start: start, end: end}, true); err != nil {
		// Only a duplicate-range collision can fail here; regions aren't
		// required to be distinct, so this is not an error condition.
		_ = err
	}
}

// Finalize must be called after all regions have been added and before the
// first Contains call.
func (rs *RegionSet) Finalize() {
	for _, t := range rs.trees {
		t.AdjustRanges()
	}
}

// Contains reports whether pos falls inside any region on chrom.
func (rs *RegionSet) Contains(chrom, pos int) bool {
	t, ok := rs.trees[chrom]
	if !ok {
		return false
	}
	return len(t.Get(regionInterval{start: pos, end: pos + 1})) > 0
}

// Empty reports whether no regions were ever added (i.e. the scanner
// should run in whole-genome mode with no over-coverage bypass).
func (rs *RegionSet) Empty() bool {
	return len(rs.trees) == 0
}

// Region is one merged, chromosome-scoped interval, as produced by
// MergeIntervals and consumed by GenomeScanner's region-restricted mode.
type Region struct {
	Chrom      int
	Start, End int
}

// MergeIntervals coalesces overlapping or adjacent same-chromosome
// intervals into the minimal covering set, via the standard sort+sweep
// used throughout the pack for interval coalescing (e.g.
// kortschak-loopy/cmd/rinse's interval handling).
func MergeIntervals(in []Region) []Region {
	if len(in) == 0 {
		return nil
	}
	sorted := append([]Region(nil), in...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Chrom != sorted[j].Chrom {
			return sorted[i].Chrom < sorted[j].Chrom
		}
		return sorted[i].Start < sorted[j].Start
	})
	out := []Region{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.Chrom == last.Chrom && r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// ParseRegionFile reads tab-separated "chrom\tstart\tend" lines (spec §6),
// ignoring leading '#' comment lines. chromID resolves a chromosome name
// to the integer reference id used elsewhere in the package.
func ParseRegionFile(r io.Reader, chromID func(string) (int, bool)) ([]Region, error) {
	sc := bufio.NewScanner(r)
	var out []Region
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		chrom, ok := chromID(fields[0])
		if !ok {
			continue
		}
		start, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		out = append(out, Region{Chrom: chrom, Start: start, End: end})
	}
	return out, sc.Err()
}
