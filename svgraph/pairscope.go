package svgraph

import (
	"math"
	"sort"

	"github.com/biogo/store/llrb"
)

// lociKey orders PairedEndScoper.loci entries by their first breakpoint
// position, using the same llrb.Comparable pattern the teacher uses to key
// shard info by (refID, start) in
// grailbio/bio/encoding/bampair/shard_info.go.
type lociKey struct {
	pos   int
	entry pairEntry
}

func (k lociKey) Compare(c llrb.Comparable) int {
	return k.pos - c.(lociKey).pos
}

// pairEntry is the value PairedEndScoper stores for one breakpoint side:
// the partner coordinate, the originating node, its ReadEnum kind, and the
// CIGAR-derived span length (0 if unknown).
type pairEntry struct {
	partnerChrom int
	partnerPos   int
	node         int
	kind         ReadEnum
	lenCig       int
}

// scopeEntry is one entry in a per-partner-chromosome ordered scope: the
// position it was filed under, plus the pairEntry it carries.
type scopeEntry struct {
	pos int
	e   pairEntry
}

// orderedScope is a position-sorted slice supporting the "lower_bound,
// walk forward up to N, walk backward up to N" access pattern spec §4.5
// needs. llrb.Tree's ascending-only Do iteration doesn't serve a bounded
// bidirectional walk from an arbitrary point cleanly, so chrom_scope uses
// a small sorted-slice index instead (documented in DESIGN.md); loci,
// which only ever needs prefix eviction and insert, uses llrb.Tree
// directly.
type orderedScope struct {
	entries []scopeEntry
}

func (s *orderedScope) insert(pos int, e pairEntry) {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].pos >= pos })
	s.entries = append(s.entries, scopeEntry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = scopeEntry{pos: pos, e: e}
}

// lowerBound returns the index of the first entry with pos >= target.
func (s *orderedScope) lowerBound(target int) int {
	return sort.Search(len(s.entries), func(i int) bool { return s.entries[i].pos >= target })
}

// PairedEndScoper answers "which prior nodes partner with this event" by
// keeping recent breakpoints in per-chromosome ordered maps (spec §4.5).
type PairedEndScoper struct {
	cfg Config

	localChrom int
	haveChrom  bool

	loci       llrb.Tree
	chromScope map[int]*orderedScope
}

// NewPairedEndScoper returns an empty scoper.
func NewPairedEndScoper(cfg Config) *PairedEndScoper {
	return &PairedEndScoper{cfg: cfg, chromScope: make(map[int]*orderedScope)}
}

func (ps *PairedEndScoper) scopeFor(chrom int) *orderedScope {
	s, ok := ps.chromScope[chrom]
	if !ok {
		s = &orderedScope{}
		ps.chromScope[chrom] = s
	}
	return s
}

func (ps *PairedEndScoper) clearAll() {
	ps.loci = llrb.Tree{}
	ps.chromScope = make(map[int]*orderedScope)
}

func (ps *PairedEndScoper) maybeClear(c1 int) {
	if !ps.haveChrom || c1 != ps.localChrom {
		ps.clearAll()
		ps.localChrom = c1
		ps.haveChrom = true
	}
}

// AddItem records a new breakpoint pair, per spec §4.5's add_item.
func (ps *PairedEndScoper) AddItem(node, c1, p1, c2, p2 int, kind ReadEnum, lenCig int) {
	ps.maybeClear(c1)

	e := pairEntry{partnerChrom: c2, partnerPos: p2, node: node, kind: kind, lenCig: lenCig}
	ps.loci.Insert(lociKey{pos: p1, entry: e})

	if kind == Deletion {
		ps.scopeFor(c2).insert(p1, e)
	}
	ps.scopeFor(c2).insert(p2, pairEntry{partnerChrom: c1, partnerPos: p1, node: node, kind: kind, lenCig: lenCig})
}

// evictLoci drops every loci entry whose key falls below cutoff.
func (ps *PairedEndScoper) evictLoci(cutoff int) {
	for ps.loci.Len() > 0 {
		min := ps.loci.Min()
		if min == nil || min.(lociKey).pos >= cutoff {
			return
		}
		ps.loci.DeleteMin()
	}
}

// typeGate reports whether kind a and b are allowed to partner: a
// DELETION never partners an INSERTION (spec §4.5 "Type gate").
func typeGate(a, b ReadEnum) bool {
	if a == Deletion && b == Insertion {
		return false
	}
	if b == Deletion && a == Insertion {
		return false
	}
	return true
}

func reciprocalOverlap(aStart, aEnd, bStart, bEnd int) bool {
	if aEnd < aStart {
		aStart, aEnd = aEnd, aStart
	}
	if bEnd < bStart {
		bStart, bEnd = bEnd, bStart
	}
	lo := maxInt(aStart, bStart)
	hi := minInt(aEnd, bEnd)
	overlap := hi - lo
	if overlap <= 0 {
		return false
	}
	aLen := aEnd - aStart
	bLen := bEnd - bStart
	if aLen == 0 || bLen == 0 {
		return false
	}
	return float64(overlap) >= 0.5*float64(aLen) && float64(overlap) >= 0.5*float64(bLen)
}

// spanPositionDistance combines a normalized positional distance with a
// length-aware penalty, as spec §4.5 describes for the "distance bucket".
// trustInsLen gates whether insertion-length mismatches count fully
// against the score, since assembled insertion lengths are frequently
// only approximate.
func spanPositionDistance(p1, p2, vP1, vP2, lenCig, vLenCig int, kind ReadEnum, norm float64, trustInsLen bool) float64 {
	dx := float64(p1 - vP1)
	dy := float64(p2 - vP2)
	posDist := math.Sqrt(dx*dx+dy*dy) / norm

	if lenCig <= 0 || vLenCig <= 0 {
		return posDist
	}
	if kind == Insertion && !trustInsLen {
		return posDist
	}
	maxLen := maxInt(lenCig, vLenCig)
	lengthPenalty := float64(abs(lenCig-vLenCig)) / float64(maxLen)
	return posDist + lengthPenalty
}

// FindOtherNodes implements spec §4.5's find_other_nodes: it searches
// chrom_scope[c2] around p2 for prior breakpoints that plausibly
// represent the same SV as (c1,p1)->(c2,p2), returning their node ids. If
// any exact-bucket match is found, only exact matches are returned.
func (ps *PairedEndScoper) FindOtherNodes(node, c1, p1, c2, p2 int, kind ReadEnum, lenCig int, trustInsLen bool) []int {
	ps.maybeClear(c1)
	ps.evictLoci(p1 - ps.cfg.ClusterDist)

	scope := ps.scopeFor(c2)
	lb := scope.lowerBound(p2)

	var exact, distance []int
	visit := func(v scopeEntry) bool {
		if v.e.node == node {
			return true
		}
		if abs(v.pos-p2) >= ps.cfg.MaxDist {
			return false
		}
		if !typeGate(kind, v.e.kind) {
			return true
		}
		if c1 == c2 && !reciprocalOverlap(p1, p2, v.e.partnerPos, v.pos) {
			// Reciprocity gate failed: skip the exact bucket (a pure
			// distance check) but still allow the distance/span-position
			// test below.
			if abs(v.pos-p2) < ps.cfg.MaxDist && abs(v.e.partnerPos-p1) < ps.cfg.MaxDist {
				spd := spanPositionDistance(p1, p2, v.e.partnerPos, v.pos, lenCig, v.e.lenCig, kind, ps.cfg.NormThresh, trustInsLen)
				if spd < ps.cfg.SPDThresh {
					distance = append(distance, v.e.node)
				}
			}
			return true
		}
		if abs(v.pos-p2) < 35 {
			if lenCig == 0 || v.e.lenCig == 0 {
				exact = append(exact, v.e.node)
			} else {
				maxLen := maxInt(lenCig, v.e.lenCig)
				spanDist := float64(abs(lenCig-v.e.lenCig)) / float64(maxLen)
				if spanDist < 0.8 {
					exact = append(exact, v.e.node)
				}
			}
			return true
		}
		if abs(v.pos-p2) < ps.cfg.MaxDist && abs(v.e.partnerPos-p1) < ps.cfg.MaxDist {
			spd := spanPositionDistance(p1, p2, v.e.partnerPos, v.pos, lenCig, v.e.lenCig, kind, ps.cfg.NormThresh, trustInsLen)
			if spd < ps.cfg.SPDThresh {
				distance = append(distance, v.e.node)
			}
		}
		return true
	}

	const walkSteps = 6
	for i, steps := lb, 0; i < len(scope.entries) && steps < walkSteps; i, steps = i+1, steps+1 {
		if !visit(scope.entries[i]) {
			break
		}
	}
	for i, steps := lb-1, 0; i >= 0 && steps < walkSteps; i, steps = i-1, steps+1 {
		if !visit(scope.entries[i]) {
			break
		}
	}

	if len(exact) > 0 {
		return exact
	}
	return distance
}
