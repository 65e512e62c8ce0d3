package svgraph

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph is the undirected weighted multigraph described in spec §4.7: dense
// integer node ids, dedup-on-insert edges. It is built directly on
// gonum's WeightedUndirectedGraph, the way kortschak-loopy's press and
// press-global commands build their event-similarity graphs.
type Graph struct {
	g     *simple.WeightedUndirectedGraph
	nodes []Node
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{g: simple.NewWeightedUndirectedGraph(0, 0)}
}

// AddNode appends a fresh node and returns its id.
func (gr *Graph) AddNode(n Node) int {
	n.ID = len(gr.nodes)
	gr.nodes = append(gr.nodes, n)
	gr.g.AddNode(simple.Node(int64(n.ID)))
	return n.ID
}

// Node returns the node record for id.
func (gr *Graph) Node(id int) *Node { return &gr.nodes[id] }

// NumNodes returns the number of nodes added so far.
func (gr *Graph) NumNodes() int { return len(gr.nodes) }

// AddEdge adds a weighted edge between u and v. Duplicate pairs are ignored
// regardless of weight, per spec §4.7 ("add_edge(u,v,w) ignores duplicate
// pairs"), so insertion is idempotent.
func (gr *Graph) AddEdge(u, v int, weight int) {
	if u == v {
		return
	}
	uid, vid := int64(u), int64(v)
	if gr.g.HasEdgeBetween(uid, vid) {
		return
	}
	gr.g.SetWeightedEdge(simple.WeightedEdge{
		F: simple.Node(uid),
		T: simple.Node(vid),
		W: float64(weight),
	})
}

// HasEdge reports whether u and v are directly connected.
func (gr *Graph) HasEdge(u, v int) bool {
	return gr.g.HasEdgeBetween(int64(u), int64(v))
}

// Weight returns the weight of the edge between u and v, if any.
func (gr *Graph) Weight(u, v int) (int, bool) {
	w, ok := gr.g.Weight(int64(u), int64(v))
	return int(w), ok
}

// Neighbors returns the ids of nodes directly connected to u.
func (gr *Graph) Neighbors(u int) []int {
	it := gr.g.From(int64(u))
	var out []int
	for it.Next() {
		out = append(out, int(it.Node().ID()))
	}
	return out
}

// ConnectedComponents returns the full connected components of the graph,
// traversing edges of any weight.
func (gr *Graph) ConnectedComponents() [][]int {
	return nodeIDsOf(topo.ConnectedComponents(gr.g))
}

func nodeIDsOf(comps [][]graph.Node) [][]int {
	out := make([][]int, len(comps))
	for i, c := range comps {
		ids := make([]int, len(c))
		for j, n := range c {
			ids[j] = int(n.ID())
		}
		out[i] = ids
	}
	return out
}
