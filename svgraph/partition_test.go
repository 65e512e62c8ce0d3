package svgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGetPartitionsScenario6 pins spec §8 scenario 6: a component
// {a,b,c,d} with edges {(a,b,2),(c,d,2),(b,c,1)} partitions into {a,b}
// and {c,d}; the weight-1 edge between b and c never merges them.
func TestGetPartitionsScenario6(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})
	c := g.AddNode(Node{})
	d := g.AddNode(Node{})

	g.AddEdge(a, b, WeightBreakpoint)
	g.AddEdge(c, d, WeightBreakpoint)
	g.AddEdge(b, c, WeightTemplate)

	parts := g.GetPartitions([]int{a, b, c, d})
	assert.Len(t, parts, 2)
	assert.ElementsMatch(t, []int{a, b}, parts[0])
	assert.ElementsMatch(t, []int{c, d}, parts[1])
}

func TestSupportBetweenScenario6(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})
	c := g.AddNode(Node{})
	d := g.AddNode(Node{})

	g.AddEdge(a, b, WeightBreakpoint)
	g.AddEdge(c, d, WeightBreakpoint)
	g.AddEdge(b, c, WeightTemplate)

	parts := g.GetPartitions([]int{a, b, c, d})
	support := g.SupportBetween(parts)

	assert.Len(t, support.Between, 1)
	for _, sides := range support.Between {
		assert.Equal(t, []int{b}, sides[0])
		assert.Equal(t, []int{c}, sides[1])
	}
}

func TestGetPartitionsNeverTraversesWeakEdges(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})
	g.AddEdge(a, b, WeightSite)

	parts := g.GetPartitions([]int{a, b})
	assert.Len(t, parts, 2)
}

func TestBreakLargeComponentMergesWhenLinksMeetThreshold(t *testing.T) {
	g := NewGraph()
	// Two strong-edge partitions {a,b} and {c,d} (b-c and a-d stay weak
	// so GetPartitions keeps them separate), joined by two independent
	// weak links (b-c and a-d), which should merge under minSupport=2.
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})
	c := g.AddNode(Node{})
	d := g.AddNode(Node{})
	g.AddEdge(a, b, WeightBreakpoint)
	g.AddEdge(c, d, WeightBreakpoint)
	g.AddEdge(b, c, WeightTemplate)
	g.AddEdge(a, d, WeightTemplate)

	jobs := g.BreakLargeComponent([]int{a, b, c, d}, 2)
	assert.Len(t, jobs, 1)
	assert.ElementsMatch(t, []int{a, b, c, d}, jobs[0])
}

func TestBreakLargeComponentKeepsPartitionsSeparateBelowThreshold(t *testing.T) {
	g := NewGraph()
	// partition0 = {a,b,e}, partition1 = {c,d,f}, strung together by
	// strong edges so GetPartitions keeps each as one group. The only
	// cross-partition edge is the weak b-c link, which leaves a and e
	// (resp. d and f) with purely intra-partition neighbours, so each
	// partition's self-support (2) still clears minSupport, even though
	// the single weak link between them never clears the merge threshold.
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})
	e := g.AddNode(Node{})
	c := g.AddNode(Node{})
	d := g.AddNode(Node{})
	f := g.AddNode(Node{})
	g.AddEdge(a, b, WeightBreakpoint)
	g.AddEdge(b, e, WeightBreakpoint)
	g.AddEdge(c, d, WeightBreakpoint)
	g.AddEdge(d, f, WeightBreakpoint)
	g.AddEdge(b, c, WeightTemplate) // only one (weak) link between the partitions

	jobs := g.BreakLargeComponent([]int{a, b, e, c, d, f}, 2)
	assert.Len(t, jobs, 2, "a single weak link must not merge the two partitions")
	assert.ElementsMatch(t, []int{a, b, c, d, e, f}, append(append([]int{}, jobs[0]...), jobs[1]...))
	for _, job := range jobs {
		assert.Len(t, job, 3, "each job is exactly one untouched partition")
	}
}

func TestBreakLargeComponentSingleParition(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})
	g.AddEdge(a, b, WeightBreakpoint)

	jobs := g.BreakLargeComponent([]int{a, b}, 2)
	assert.Len(t, jobs, 1)
	assert.ElementsMatch(t, []int{a, b}, jobs[0])
}
