package svgraph

import (
	"io"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/svdisco/svgraph/htsio"
)

// GenomeScanner is the single entry point feeding alignment records to the
// rest of the pipeline (spec §4.2). In whole-genome mode it streams every
// record straight off the source, tracking coverage per bin and
// suppressing reads from over-covered bins outside any bypass region. In
// region-restricted mode it instead visits each merged interval via random
// access and de-duplicates records that straddle adjacent, overlapping
// fetches.
type GenomeScanner struct {
	cfg    Config
	cov    *CoverageTracker
	bypass *RegionSet // nil means "no bypass regions configured"

	currentChrom int
	haveChrom    bool
	currentBin   int
	binReadCount int
	readsDropped int

	regions []Region
	seen    map[dedupKey]bool
}

type dedupKey struct {
	qname uint64
	flag  uint16
	pos   int
}

// NewGenomeScanner returns a scanner in whole-genome mode. bypass may be
// nil.
func NewGenomeScanner(cfg Config, bypass *RegionSet) *GenomeScanner {
	return &GenomeScanner{cfg: cfg, cov: NewCoverageTracker(), bypass: bypass}
}

// NewRegionScanner returns a scanner restricted to the given merged
// regions (spec §4.2 region-restricted mode); regions must already be
// sorted and non-overlapping, as MergeIntervals produces.
func NewRegionScanner(cfg Config, regions []Region) *GenomeScanner {
	return &GenomeScanner{
		cfg:     cfg,
		cov:     NewCoverageTracker(),
		regions: regions,
		seen:    make(map[dedupKey]bool),
	}
}

// ReadsDropped returns the number of records suppressed by the
// over-coverage rule so far. A bin's suppressed-read count is folded into
// this running total the moment each read is suppressed, so a bin that
// rolls over to the next bin or chromosome before any admitted read is
// seen still contributes to the total rather than being reset away.
func (s *GenomeScanner) ReadsDropped() int { return s.readsDropped }

// Coverage exposes the tracker scanner-admitted reads feed, for
// CoverageTracker.MeanMax queries elsewhere in the pipeline (spec §4.1).
func (s *GenomeScanner) Coverage() *CoverageTracker { return s.cov }

// ScanWholeGenome reads src to completion, calling admit for every record
// that survives ShouldDiscard filtering and over-coverage suppression, along with
// the integer chromosome id assigned by resolveRef.
func (s *GenomeScanner) ScanWholeGenome(src htsio.Source, resolveRef func(string) (int, bool), admit func(*sam.Record, int)) error {
	for {
		r, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if r.Ref == nil {
			continue
		}
		chrom, ok := resolveRef(r.Ref.Name())
		if !ok {
			continue
		}
		if s.addToBinBuffer(r, chrom) {
			admit(r, chrom)
		}
	}
}

// addToBinBuffer implements spec §4.2's _add_to_bin_buffer: ShouldDiscard
// filtering (drop flags, missing CIGAR/sequence), coverage bookkeeping,
// and over-coverage suppression. It returns whether r should be admitted
// to the rest of the pipeline.
func (s *GenomeScanner) addToBinBuffer(r *sam.Record, chrom int) bool {
	if ShouldDiscard(r) {
		return false
	}

	bin := r.Pos / binSize
	if !s.haveChrom || chrom != s.currentChrom || bin != s.currentBin {
		s.currentChrom = chrom
		s.haveChrom = true
		s.currentBin = bin
		s.binReadCount = 0
	}

	end := ReferenceEnd(r)
	s.cov.Add(r.Pos, end, chrom)
	s.binReadCount++

	if s.cfg.MaxCov <= 0 || s.binReadCount <= s.cfg.MaxCov {
		return true
	}
	if s.bypass != nil && s.bypass.Contains(chrom, r.Pos) {
		return true
	}
	s.readsDropped++
	return false
}

// ScanRegions visits every configured region via src's random access,
// calling admit for each newly-seen record. Records are de-duplicated on
// (qname hash, flag, pos) because adjacent or overlapping regions can
// cause the same alignment to be fetched twice.
func (s *GenomeScanner) ScanRegions(src htsio.RandomAccessSource, chromName func(int) string, qnameHash func(string) uint64, admit func(*sam.Record, int)) error {
	for _, region := range s.regions {
		if err := src.SeekRegion(chromName(region.Chrom), region.Start, region.End); err != nil {
			if err == io.EOF {
				continue
			}
			return err
		}
		for {
			r, err := src.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			if r.Ref == nil || r.Ref.Name() != chromName(region.Chrom) {
				break
			}
			if r.Pos >= region.End {
				break
			}
			if ShouldDiscard(r) {
				continue
			}
			key := dedupKey{qname: qnameHash(r.Name), flag: uint16(r.Flags), pos: r.Pos}
			if s.seen[key] {
				continue
			}
			s.seen[key] = true
			s.cov.Add(r.Pos, ReferenceEnd(r), region.Chrom)
			admit(r, region.Chrom)
		}
	}
	return nil
}
