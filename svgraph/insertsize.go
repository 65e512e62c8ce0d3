package svgraph

import (
	"sort"

	"github.com/biogo/hts/sam"
	"gonum.org/v1/gonum/stat"
)

// InsertSizeStats holds the read length and fragment insert-size estimate
// InsertSizeEstimator produces from a prelude scan (spec §4.3).
type InsertSizeStats struct {
	ReadLength   int
	Mean         float64
	Stdev        float64
	ExtendedTags bool
	InsertsUsed  int
}

const (
	defaultMean      = 300.0
	defaultStdev     = 150.0
	preludeCap       = 200000
	minUsableInserts = 101
	madOutlierFactor = 8.0
)

// InsertSizeEstimator accumulates a prelude of up to 200,000 records and,
// per spec §4.3, trims outliers by upper-MAD before computing mean/stdev.
type InsertSizeEstimator struct {
	readLengths  []int
	inserts      []float64
	extendedTags bool
	seen         int
}

// NewInsertSizeEstimator returns an empty estimator.
func NewInsertSizeEstimator() *InsertSizeEstimator {
	return &InsertSizeEstimator{}
}

// Done reports whether the estimator has consumed its prelude cap and the
// caller should stop feeding it records and rewind.
func (e *InsertSizeEstimator) Done() bool {
	return e.seen >= preludeCap
}

// Observe feeds one alignment record to the estimator. Only primary,
// properly-paired, mapped-pair records with a positive template length
// contribute an insert-size sample; every admitted record contributes an
// inferred read length.
func (e *InsertSizeEstimator) Observe(r *sam.Record) {
	if e.Done() {
		return
	}
	e.seen++

	if ShouldDiscard(r) {
		return
	}
	if HasExtendedTags(r) {
		e.extendedTags = true
	}

	e.readLengths = append(e.readLengths, InferReadLength(r))

	isPrimary := r.Flags&FlagSecondarySupplementary == 0
	if !isPrimary {
		return
	}
	if r.Flags&sam.ProperPair == 0 {
		return
	}
	if r.TempLen > 0 {
		e.inserts = append(e.inserts, float64(r.TempLen))
	}
}

// Finish computes the final stats from everything observed so far. It
// leaves ReadLength at 0 when nothing usable was observed; the caller is
// expected to treat that as ErrCannotInferReadLength rather than silently
// substituting a guessed default.
func (e *InsertSizeEstimator) Finish() InsertSizeStats {
	stats := InsertSizeStats{
		ReadLength:   medianInt(e.readLengths),
		ExtendedTags: e.extendedTags,
	}

	trimmed := trimByUpperMAD(e.inserts)
	stats.InsertsUsed = len(trimmed)
	if len(trimmed) < minUsableInserts {
		stats.Mean = defaultMean
		stats.Stdev = defaultStdev
		return stats
	}

	stats.Mean = stat.Mean(trimmed, nil)
	stats.Stdev = stat.StdDev(trimmed, nil)
	return stats
}

// trimByUpperMAD drops every value >= median + madOutlierFactor*upperMAD,
// where upperMAD is the median absolute deviation computed only from
// values above the median (spec §4.3 "upper-MAD trim": a long right tail
// of chimeric/discordant-seeming fragments shouldn't pull the estimate).
func trimByUpperMAD(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	med := medianSortedFloat(sorted)

	var aboveDevs []float64
	for _, v := range sorted {
		if v > med {
			aboveDevs = append(aboveDevs, v-med)
		}
	}
	if len(aboveDevs) == 0 {
		return sorted
	}
	sort.Float64s(aboveDevs)
	upperMAD := medianSortedFloat(aboveDevs)
	if upperMAD == 0 {
		return sorted
	}

	cutoff := med + madOutlierFactor*upperMAD
	out := make([]float64, 0, len(sorted))
	for _, v := range sorted {
		if v < cutoff {
			out = append(out, v)
		}
	}
	return out
}

func medianSortedFloat(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func medianInt(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
