package svgraph

import (
	"container/list"

	farm "github.com/dgryski/go-farm"
)

// minimizerSeed pins the hash seed used throughout the clip index, so
// outputs stay stable across runs and match prior results (spec §4.4 /
// §9 "Minimizer hashing").
const minimizerSeed = 42

// hashKmer hashes a k-mer with the same xxHash-class 64-bit function the
// teacher's fusion package uses for its kmer index
// (grailbio/bio/fusion/kmer_index.go's hashKmer), seeded per spec.
func hashKmer(kmer []byte) uint64 {
	return farm.Hash64WithSeed(kmer, minimizerSeed)
}

// kmerHasher slides a fixed-length window over a byte sequence, yielding
// each k-mer's hash in order. Shaped after fusion/kmer.go's kmerizer
// Reset/Scan/Get idiom, but working in hash space instead of 2-bit packed
// bases, since ClipScoper only ever needs the hash.
type kmerHasher struct {
	k   int
	seq []byte
	si  int
	cur uint64
}

func newKmerHasher(k int) *kmerHasher { return &kmerHasher{k: k} }

func (h *kmerHasher) Reset(seq []byte) {
	h.seq = seq
	h.si = 0
}

func (h *kmerHasher) Scan() bool {
	if h.si+h.k > len(h.seq) {
		return false
	}
	h.cur = hashKmer(h.seq[h.si : h.si+h.k])
	h.si++
	return true
}

func (h *kmerHasher) Pos() int     { return h.si - 1 }
func (h *kmerHasher) Hash() uint64 { return h.cur }

// Minimizers computes the set of distinct minimizer hashes for seq: the
// sliding-window minimum of k-mer hashes over a window of width w,
// forcibly including both boundary k-mers (spec §4.4). Returned as a set
// (map) to dedup, matching "set of observed minimizers is a hash set".
func Minimizers(seq []byte, k, w int) map[uint64]bool {
	out := map[uint64]bool{}
	if len(seq) < k {
		return out
	}

	h := newKmerHasher(k)
	h.Reset(seq)

	type kv struct {
		pos  int
		hash uint64
	}
	window := list.New() // monotonic increasing deque of candidate minima, back = most recent

	firstPos, lastPos := -1, -1
	for h.Scan() {
		pos, hash := h.Pos(), h.Hash()
		if firstPos == -1 {
			firstPos = pos
		}
		lastPos = pos

		for window.Len() > 0 && window.Back().Value.(kv).hash >= hash {
			window.Remove(window.Back())
		}
		window.PushBack(kv{pos: pos, hash: hash})
		for window.Front().Value.(kv).pos <= pos-w {
			window.Remove(window.Front())
		}
		if pos >= w-1 {
			out[window.Front().Value.(kv).hash] = true
		}
	}
	if firstPos >= 0 {
		out[hashKmer(seq[firstPos:firstPos+k])] = true
	}
	if lastPos >= 0 {
		out[hashKmer(seq[lastPos:lastPos+k])] = true
	}
	return out
}
