package svgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateEdgesAddsConsecutiveEdgesPerRead(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})
	c := g.AddNode(Node{})

	te := NewTemplateEdges()
	// Three supplementary/primary alignments of read1, out of query order.
	te.Add("q1", 50, b, flagRead1)
	te.Add("q1", 0, a, flagRead1|flagSecondarySuppl)
	te.Add("q1", 100, c, flagRead1)

	te.Flush(g)

	assert.True(t, g.HasEdge(a, b), "consecutive by query_start: a(0) -> b(50)")
	assert.True(t, g.HasEdge(b, c), "consecutive by query_start: b(50) -> c(100)")
	assert.False(t, g.HasEdge(a, c), "a and c are not adjacent in query order")
}

func TestTemplateEdgesLinksPrimariesAcrossReads(t *testing.T) {
	g := NewGraph()
	r1primary := g.AddNode(Node{})
	r2primary := g.AddNode(Node{})
	r2suppl := g.AddNode(Node{})

	te := NewTemplateEdges()
	te.Add("q1", 0, r1primary, flagRead1)
	te.Add("q1", 0, r2primary, 0)
	te.Add("q1", 30, r2suppl, flagSecondarySuppl)

	te.Flush(g)

	assert.True(t, g.HasEdge(r1primary, r2primary), "the two reads' primaries must be linked")
	assert.True(t, g.HasEdge(r2primary, r2suppl), "read2's own alignments are still linked consecutively")
}

func TestTemplateEdgesSkipsPrimaryLinkWhenOneReadMissing(t *testing.T) {
	g := NewGraph()
	only := g.AddNode(Node{})

	te := NewTemplateEdges()
	te.Add("q1", 0, only, flagRead1)
	te.Flush(g)

	assert.Empty(t, g.Neighbors(only), "a single alignment has no template partner to link to")
}

func TestTemplateEdgesNoPrimaryLinkWhenBothSupplementary(t *testing.T) {
	g := NewGraph()
	r1 := g.AddNode(Node{})
	r2 := g.AddNode(Node{})

	te := NewTemplateEdges()
	te.Add("q1", 0, r1, flagRead1|flagSecondarySuppl)
	te.Add("q1", 0, r2, flagSecondarySuppl)
	te.Flush(g)

	assert.False(t, g.HasEdge(r1, r2), "neither read has a primary, so no cross-read edge is added")
}

func TestTemplateEdgesFlushClearsBuffer(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})

	te := NewTemplateEdges()
	te.Add("q1", 0, a, flagRead1)
	te.Add("q1", 10, b, flagRead1)
	te.Flush(g)
	assert.Len(t, te.byTemplate, 0)

	// A second flush with nothing added must be a no-op, not a re-add of q1.
	te.Flush(g)
	assert.True(t, g.HasEdge(a, b))
}

func TestTemplateEdgesIsolatesDifferentTemplates(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})

	te := NewTemplateEdges()
	te.Add("q1", 0, a, flagRead1)
	te.Add("q2", 0, b, flagRead1)
	te.Flush(g)

	assert.False(t, g.HasEdge(a, b), "alignments from different templates never share an edge")
}
