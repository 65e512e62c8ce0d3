package svgraph

import (
	"testing"

	farm "github.com/dgryski/go-farm"
	"github.com/stretchr/testify/assert"
)

func TestHashKmerUsesSeed42(t *testing.T) {
	kmer := []byte("ACGTACGTAC")
	assert.Equal(t, farm.Hash64WithSeed(kmer, 42), hashKmer(kmer))
}

func TestMinimizersIncludesBoundaryKmers(t *testing.T) {
	seq := []byte("ACGTACGTACGTACGTACGT")
	k, w := 4, 5
	mins := Minimizers(seq, k, w)

	first := hashKmer(seq[0:k])
	last := hashKmer(seq[len(seq)-k:])
	assert.True(t, mins[first], "first k-mer must always be a minimizer")
	assert.True(t, mins[last], "last k-mer must always be a minimizer")
}

func TestMinimizersShorterThanKIsEmpty(t *testing.T) {
	mins := Minimizers([]byte("ACG"), 16, 7)
	assert.Empty(t, mins)
}

func TestMinimizersDeterministic(t *testing.T) {
	seq := []byte("GATTACAGATTACAGATTACAGATTACA")
	a := Minimizers(seq, 8, 4)
	b := Minimizers(seq, 8, 4)
	assert.Equal(t, a, b)
}

func TestMinimizersIdenticalSequencesShareAllMinimizers(t *testing.T) {
	seq1 := []byte("ACGTTGCATGCATGCATGCATGCATGCA")
	seq2 := append([]byte(nil), seq1...)
	assert.Equal(t, Minimizers(seq1, 16, 7), Minimizers(seq2, 16, 7))
}
