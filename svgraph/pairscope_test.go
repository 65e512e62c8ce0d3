package svgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testScoperConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxDist = 1000
	cfg.ClusterDist = 500
	cfg.NormThresh = 100
	cfg.SPDThresh = 0.3
	return cfg
}

// TestPairedEndScoperExactBucketSplit pins spec §8 scenario 2: a split
// read at chr1:1000 with SA partner chr2:9000, then a second at
// chr1:1005 with SA partner chr2:9003, links via the exact bucket
// (|9000-9003| < 35).
func TestPairedEndScoperExactBucketSplit(t *testing.T) {
	ps := NewPairedEndScoper(testScoperConfig())

	ps.AddItem(1 /*node*/, 0, 1000, 1, 9000, Split, 0)

	partners := ps.FindOtherNodes(2, 0, 1005, 1, 9003, Split, 0, false)
	assert.Equal(t, []int{1}, partners)
}

// TestPairedEndScoperExactBucketDeletionSpanGate pins spec §8 scenario
// 4: a 1kb deletion at chr1:10000 (pos2=11000) links to a later
// deletion at chr1:10003 (pos2=11002) via the exact bucket's span
// distance test.
func TestPairedEndScoperExactBucketDeletionSpanGate(t *testing.T) {
	ps := NewPairedEndScoper(testScoperConfig())

	ps.AddItem(1, 0, 10000, 0, 11000, Deletion, 1000)

	partners := ps.FindOtherNodes(2, 0, 10003, 0, 11002, Deletion, 999, false)
	assert.Equal(t, []int{1}, partners)
}

func TestPairedEndScoperExactBucketRejectsSpanMismatch(t *testing.T) {
	ps := NewPairedEndScoper(testScoperConfig())
	ps.AddItem(1, 0, 10000, 0, 11000, Deletion, 1000)

	// Same positions, but a wildly different CIGAR-derived length:
	// span_distance = |1000-100|/1000 = 0.9 >= 0.8, so the exact bucket
	// must reject this pairing.
	partners := ps.FindOtherNodes(2, 0, 10003, 0, 11002, Deletion, 100, false)
	assert.Empty(t, partners)
}

func TestPairedEndScoperTypeGateBlocksDeletionInsertion(t *testing.T) {
	ps := NewPairedEndScoper(testScoperConfig())
	ps.AddItem(1, 0, 10000, 0, 11000, Deletion, 1000)

	partners := ps.FindOtherNodes(2, 0, 10003, 0, 11002, Insertion, 1000, false)
	assert.Empty(t, partners)
}

func TestPairedEndScoperDistanceBucketFallback(t *testing.T) {
	cfg := testScoperConfig()
	cfg.NormThresh = 200 // widen the normalization so a 40bp offset clears spd_thresh
	ps := NewPairedEndScoper(cfg)
	ps.AddItem(1, 0, 1000, 1, 5000, Discordant, 0)

	// 40bp clears the exact bucket's <35 window but stays within
	// max_dist and spd_thresh, so this must land in the distance
	// bucket.
	partners := ps.FindOtherNodes(2, 0, 1000, 1, 5040, Discordant, 0, false)
	assert.Equal(t, []int{1}, partners)
}

func TestPairedEndScoperExcludesSelf(t *testing.T) {
	ps := NewPairedEndScoper(testScoperConfig())
	node := 1
	ps.AddItem(node, 0, 1000, 1, 9000, Split, 0)

	partners := ps.FindOtherNodes(node, 0, 1000, 1, 9000, Split, 0, false)
	assert.Empty(t, partners)
}

// TestPairedEndScoperClearsOnChromChange pins spec §8's invariant: on
// chromosome change, both loci and every chrom_scope[c] are empty before
// the next insertion.
func TestPairedEndScoperClearsOnChromChange(t *testing.T) {
	ps := NewPairedEndScoper(testScoperConfig())
	ps.AddItem(1, 0, 1000, 1, 9000, Split, 0)

	// Switch local chromosome to 1: everything recorded under local
	// chrom 0 must be gone, so a matching search on the new chromosome
	// finds nothing left over from before the clear.
	ps.AddItem(2, 1, 1000, 1, 9000, Split, 0)
	partners := ps.FindOtherNodes(3, 1, 1005, 1, 9003, Split, 0, false)
	assert.Equal(t, []int{2}, partners, "only node 2, inserted after the clear, should survive")
	assert.Equal(t, 1, ps.loci.Len(), "loci must hold only the post-clear insertion")
}

func TestPairedEndScoperEvictsStaleLoci(t *testing.T) {
	ps := NewPairedEndScoper(testScoperConfig())
	ps.AddItem(1, 0, 1000, 1, 9000, Split, 0)
	assert.Equal(t, 1, ps.loci.Len())

	// A later breakpoint far enough past p1-ClusterDist evicts the
	// stale loci entry.
	ps.FindOtherNodes(2, 0, 1000+testScoperConfig().ClusterDist+1, 1, 9000, Split, 0, false)
	assert.Equal(t, 0, ps.loci.Len())
}
