package svgraph

const binSize = 100

// CoverageTracker keeps a per-chromosome, fractional 100bp-bin depth
// estimate (spec §3 "Coverage map" / §4.1). A read partially spanning a
// bin contributes its overlap fraction rather than a full unit, so the
// depth at a bin can be compared directly against Config.MaxCov without
// rounding error accumulating across many partially-overlapping reads.
type CoverageTracker struct {
	bins map[int][]float32 // refID -> dense bin array
}

// NewCoverageTracker returns an empty tracker.
func NewCoverageTracker() *CoverageTracker {
	return &CoverageTracker{bins: make(map[int][]float32)}
}

func (c *CoverageTracker) binsFor(chrom, upTo int) []float32 {
	b, ok := c.bins[chrom]
	need := upTo + 1
	if !ok {
		b = make([]float32, need)
	} else if len(b) < need {
		grown := make([]float32, need)
		copy(grown, b)
		b = grown
	}
	c.bins[chrom] = b
	return b
}

// Add records a read spanning the half-open interval [start, end) on
// chrom, distributing fractional overlap into the start and end bins and
// a full unit into every interior bin. It returns the updated depth at
// the start bin.
func (c *CoverageTracker) Add(start, end, chrom int) float32 {
	if end <= start {
		return c.Depth(chrom, start/binSize)
	}
	startBin := start / binSize
	endBin := end / binSize
	bins := c.binsFor(chrom, endBin)

	startFrac := float32(ceilToMultiple(start, binSize)-start) / binSize
	bins[startBin] += startFrac

	for b := startBin + 1; b < endBin; b++ {
		bins[b] += 1.0
	}
	if endBin > startBin {
		endFrac := float32(end-floorToMultiple(end, binSize)) / binSize
		bins[endBin] += endFrac
	}
	return bins[startBin]
}

// Depth returns the current depth of the given bin index on chrom, or 0 if
// nothing has been recorded there yet.
func (c *CoverageTracker) Depth(chrom, bin int) float32 {
	b, ok := c.bins[chrom]
	if !ok || bin < 0 || bin >= len(b) {
		return 0
	}
	return b[bin]
}

// MeanMax returns the mean and maximum depth over the bin range covering
// [start, end) on chrom, as in spec §4.1. Windows are capped at 20kb: a
// wider range is truncated to its first 20kb, and every 100bp bin of the
// capped range is visited (the stride-10 branch below is never taken once
// the cap applies). start==end returns the single bin's depth twice; an
// inverted (empty) range returns (0, 0).
func (c *CoverageTracker) MeanMax(chrom, start, end int) (mean, max float32) {
	if start == end {
		d := c.Depth(chrom, start/binSize)
		return d, d
	}
	if end < start {
		return 0, 0
	}
	const windowCap = 20000
	if end-start > windowCap {
		end = start + windowCap
	}
	startBin := start / binSize
	endBin := end / binSize
	stride := 1
	if endBin-startBin > windowCap/binSize {
		stride = 10
	}

	var sum float32
	var count int
	for b := startBin; b <= endBin; b += stride {
		d := c.Depth(chrom, b)
		sum += d
		if d > max {
			max = d
		}
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float32(count), max
}

func ceilToMultiple(x, m int) int {
	if x%m == 0 {
		return x
	}
	return (x/m + 1) * m
}

func floorToMultiple(x, m int) int {
	return (x / m) * m
}
