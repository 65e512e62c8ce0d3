package svgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testClipConfig() Config {
	cfg := DefaultConfig()
	cfg.ClipLength = 30
	cfg.MaxDist = 1000
	cfg.K = 16
	cfg.M = 7
	cfg.MinimizerSupportThresh = 2
	return cfg
}

func repeatSeq(pattern string, n int) []byte {
	out := make([]byte, 0, len(pattern)*n)
	for i := 0; i < n; i++ {
		out = append(out, pattern...)
	}
	return out
}

// TestClipScoperLinksMatchingClips pins spec §8 scenario 5: a
// translocation breakend signalled only by matching soft clips at
// chr5:2000 and chr5:2010 links via ClipScoper.
func TestClipScoperLinksMatchingClips(t *testing.T) {
	cs := NewClipScoper(testClipConfig())
	clip := repeatSeq("ACGTGGCATCGATTACG", 4) // 68bp, well above ClipLength

	partners := cs.Update(1, 0, 2000, clip, nil, 150)
	assert.Empty(t, partners)

	// Within the minimizer match window (|position - pos| < 7).
	partners = cs.Update(2, 0, 2003, clip, nil, 150)
	assert.Equal(t, []int{1}, partners)
}

func TestClipScoperIgnoresShortClips(t *testing.T) {
	cs := NewClipScoper(testClipConfig())
	short := make([]byte, 29) // one below ClipLength
	for i := range short {
		short[i] = "ACGT"[i%4]
	}
	partners := cs.Update(1, 0, 2000, short, nil, 150)
	assert.Empty(t, partners)
	assert.Equal(t, 0, cs.left.scope.Len(), "a too-short clip is never inserted into scope")
}

func TestClipScoperProcessesExactThreshold(t *testing.T) {
	cs := NewClipScoper(testClipConfig())
	clip := make([]byte, 30) // exactly ClipLength
	for i := range clip {
		clip[i] = "ACGT"[i%4]
	}
	cs.Update(1, 0, 2000, clip, nil, 150)
	assert.Equal(t, 1, cs.left.scope.Len(), "a clip at exactly ClipLength must be processed")
}

func TestClipScoperDoesNotLinkDissimilarClips(t *testing.T) {
	cs := NewClipScoper(testClipConfig())
	clipA := repeatSeq("ACGTGGCATCGATTACG", 4)
	clipB := repeatSeq("TTTTTTTTTTTTTTTTT", 4)

	cs.Update(1, 0, 2000, clipA, nil, 150)
	partners := cs.Update(2, 0, 2010, clipB, nil, 150)
	assert.Empty(t, partners)
}

func TestClipScoperClearsOnChromChange(t *testing.T) {
	cs := NewClipScoper(testClipConfig())
	clip := repeatSeq("ACGTGGCATCGATTACG", 4)

	cs.Update(1, 0, 2000, clip, nil, 150)
	cs.Update(2, 1, 2000, clip, nil, 150) // different chromosome clears state
	partners := cs.Update(3, 1, 2003, clip, nil, 150)
	assert.Equal(t, []int{2}, partners)
}

func TestClipScoperEvictsOutOfRangeEntries(t *testing.T) {
	cfg := testClipConfig()
	cfg.MaxDist = 50
	cs := NewClipScoper(cfg)
	clip := repeatSeq("ACGTGGCATCGATTACG", 4)

	cs.Update(1, 0, 2000, clip, nil, 150)
	// Far beyond MaxDist: the prior entry must be evicted, so no partner
	// is reported even though the clip sequence matches.
	partners := cs.Update(2, 0, 3000, clip, nil, 150)
	assert.Empty(t, partners)
}

func TestClipScoperCapsPartnersAtFive(t *testing.T) {
	cs := NewClipScoper(testClipConfig())
	clip := repeatSeq("ACGTGGCATCGATTACG", 4)

	for i := 0; i < 8; i++ {
		cs.Update(i+1, 0, 2000+i, clip, nil, 150)
	}
	partners := cs.Update(100, 0, 2009, clip, nil, 150)
	assert.LessOrEqual(t, len(partners), 5)
}
