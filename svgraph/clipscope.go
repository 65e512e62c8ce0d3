package svgraph

import "container/list"

// ClipSide distinguishes the left and right soft-clip orientations
// ClipScoper indexes independently (spec §4.4).
type ClipSide int

const (
	ClipLeft ClipSide = iota
	ClipRight
)

type clipScopeEntry struct {
	pos  int
	node int
}

type postEntry struct {
	pos  int
	node int
}

// clipSideState is the per-orientation state described in spec §4.4: a
// position-ordered deque of recent (pos, node) pairs, and an inverted
// minimizer -> posting-list index built from the same pairs' clip
// sequences.
type clipSideState struct {
	scope        *list.List // of clipScopeEntry, oldest at Front
	postings     map[uint64][]postEntry
	minimizersOf map[int][]uint64 // node -> minimizers it contributed, for eviction bookkeeping
}

func newClipSideState() *clipSideState {
	return &clipSideState{
		scope:        list.New(),
		postings:     make(map[uint64][]postEntry),
		minimizersOf: make(map[int][]uint64),
	}
}

func (s *clipSideState) clear() {
	s.scope.Init()
	s.postings = make(map[uint64][]postEntry)
	s.minimizersOf = make(map[int][]uint64)
}

// evict drops scope-deque and posting-list entries that have fallen
// outside max_dist of pos. A minimizer whose posting list becomes empty is
// removed from postings; the caller derives the active-minimizer
// decrement from the change in len(postings).
func (s *clipSideState) evict(pos, maxDist int) {
	for s.scope.Len() > 0 && abs(s.scope.Front().Value.(clipScopeEntry).pos-pos) > maxDist {
		s.scope.Remove(s.scope.Front())
	}
	for m, entries := range s.postings {
		kept := entries[:0]
		for _, e := range entries {
			if abs(e.pos-pos) <= maxDist {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(s.postings, m)
		} else {
			s.postings[m] = kept
		}
	}
}

// ClipScoper is the minimizer-based soft-clip partner index described in
// spec §4.4.
type ClipScoper struct {
	cfg        Config
	chrom      int
	haveChrom  bool
	left       *clipSideState
	right      *clipSideState
	activeMins map[ClipSide]int
}

// NewClipScoper returns an empty scoper using cfg's ClipLength, MaxDist,
// K, M and MinimizerSupportThresh fields.
func NewClipScoper(cfg Config) *ClipScoper {
	return &ClipScoper{
		cfg:        cfg,
		left:       newClipSideState(),
		right:      newClipSideState(),
		activeMins: map[ClipSide]int{ClipLeft: 0, ClipRight: 0},
	}
}

func (cs *ClipScoper) sideState(side ClipSide) *clipSideState {
	if side == ClipLeft {
		return cs.left
	}
	return cs.right
}

// Update feeds one record's clip sequences (leftClip, rightClip; either
// may be nil/empty if that side isn't clipped) into the scoper and
// returns the node ids of clustered partners found on either side,
// capped at 5 total per spec §4.4.c. chrom/pos are the record's
// reference id and alignment position; readLength is the record's
// inferred read length, used by the density guard.
func (cs *ClipScoper) Update(node int, chrom, pos int, leftClip, rightClip []byte, readLength int) []int {
	if !cs.haveChrom || chrom != cs.chrom {
		cs.left.clear()
		cs.right.clear()
		cs.activeMins[ClipLeft] = 0
		cs.activeMins[ClipRight] = 0
		cs.chrom = chrom
		cs.haveChrom = true
	}

	var partners []int
	partners = cs.updateSide(ClipLeft, node, pos, leftClip, readLength, partners)
	partners = cs.updateSide(ClipRight, node, pos, rightClip, readLength, partners)
	return partners
}

func (cs *ClipScoper) updateSide(side ClipSide, node, pos int, clip []byte, readLength int, partners []int) []int {
	if len(clip) < cs.cfg.ClipLength {
		return partners
	}
	state := cs.sideState(side)

	before := len(state.postings)
	state.evict(pos, cs.cfg.MaxDist)
	cs.activeMins[side] -= before - len(state.postings)

	mins := Minimizers(clip, cs.cfg.K, cs.cfg.M)

	densityLimit := (1 + 0.15*float64(state.scope.Len())) * float64(readLength) * 2 / float64(cs.cfg.M+1)
	suppress := float64(len(mins)) > densityLimit

	if !suppress {
		targetCount := map[int]int{}
		totalMatches := 0
		for m := range mins {
			entries, ok := state.postings[m]
			if !ok {
				continue
			}
			for _, e := range entries {
				if abs(e.pos-pos) < 7 {
					targetCount[e.node]++
					totalMatches++
				}
			}
		}
		for target, count := range targetCount {
			if len(partners) >= 5 {
				break
			}
			support := float64(totalMatches)/2 + float64(count)
			if support >= float64(cs.cfg.MinimizerSupportThresh) {
				partners = append(partners, target)
			}
		}
	}

	for m := range mins {
		if _, ok := state.postings[m]; !ok {
			cs.activeMins[side]++
		}
		state.postings[m] = append(state.postings[m], postEntry{pos: pos, node: node})
	}
	state.minimizersOf[node] = keysOf(mins)

	state.scope.PushBack(clipScopeEntry{pos: pos, node: node})
	return partners
}

func keysOf(m map[uint64]bool) []uint64 {
	out := make([]uint64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
