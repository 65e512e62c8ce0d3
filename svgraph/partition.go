package svgraph

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// strongGraph restricts traversal to edges with weight strictly greater
// than WeightTemplate (i.e. weight >= WeightBreakpoint): site edges (0) and
// template edges (1) never connect a partition. Shaped after
// kortschak-loopy's cmd/press thresholdGraph (press.go:169-170), which
// embeds *simple.WeightedUndirectedGraph directly so Node/Nodes are
// promoted, satisfying graph.Undirected, and narrows From/HasEdgeBetween/
// Edge to a weight cutoff before feeding the result to
// topo.ConnectedComponents.
type strongGraph struct {
	*simple.WeightedUndirectedGraph
}

func (g strongGraph) strong(x, y int64) bool {
	w, ok := g.WeightedUndirectedGraph.Weight(x, y)
	return ok && w > WeightTemplate
}

func (g strongGraph) From(id int64) graph.Nodes {
	if g.WeightedUndirectedGraph.Node(id) == nil {
		return nil
	}
	var nodes []graph.Node
	it := g.WeightedUndirectedGraph.From(id)
	for it.Next() {
		to := it.Node()
		if g.strong(id, to.ID()) {
			nodes = append(nodes, to)
		}
	}
	return iterator.NewOrderedNodes(nodes)
}

func (g strongGraph) HasEdgeBetween(x, y int64) bool {
	return g.WeightedUndirectedGraph.HasEdgeBetween(x, y) && g.strong(x, y)
}

func (g strongGraph) Edge(u, v int64) graph.Edge {
	return g.EdgeBetween(u, v)
}

func (g strongGraph) EdgeBetween(x, y int64) graph.Edge {
	if !g.strong(x, y) {
		return nil
	}
	return g.WeightedUndirectedGraph.EdgeBetween(x, y)
}

// GetPartitions runs BFS restricted to weight >= WeightBreakpoint edges over
// the given component (a set of node ids, typically one returned by
// Graph.ConnectedComponents) and returns the maximal sub-groups connected
// by those "strong" edges alone. Weight-0 and weight-1 edges never cause
// two nodes to land in the same partition.
func (gr *Graph) GetPartitions(component []int) [][]int {
	sg := strongGraph{gr.g}
	restricted := subgraphComponents(sg, component)
	sort.Slice(restricted, func(i, j int) bool { return restricted[i][0] < restricted[j][0] })
	return restricted
}

// subgraphComponents computes connected components of sg restricted to the
// node id set in component, via topo.ConnectedComponents plus a filter for
// nodes outside the set (strongGraph still exposes the full underlying
// graph's id space, so isolated/irrelevant nodes are dropped afterward).
func subgraphComponents(sg strongGraph, component []int) [][]int {
	in := make(map[int64]bool, len(component))
	for _, id := range component {
		in[int64(id)] = true
	}
	all := topo.ConnectedComponents(sg)
	var out [][]int
	for _, c := range all {
		var ids []int
		for _, n := range c {
			if in[n.ID()] {
				ids = append(ids, int(n.ID()))
			}
		}
		if len(ids) > 0 {
			sort.Ints(ids)
			out = append(out, ids)
		}
	}
	return out
}

// SupportBetween reports, for every pair of adjacent partitions (i, j with
// i<j) in parts, the node sets touching each other across the pair, and for
// every partition the nodes whose only neighbours are intra-partition
// (self-support). This realizes count_support_between / self_counts from
// spec §4.7.
type PartitionSupport struct {
	Between map[[2]int][2][]int // (i,j) -> [nodes in i touching j, nodes in j touching i]
	Self    map[int][]int       // i -> nodes in i with only intra-partition neighbours
}

func (gr *Graph) SupportBetween(parts [][]int) PartitionSupport {
	owner := make(map[int]int, gr.NumNodes())
	for pi, part := range parts {
		for _, id := range part {
			owner[id] = pi
		}
	}

	between := map[[2]int]*struct{ a, b map[int]bool }{}
	selfNodes := make(map[int][]int, len(parts))

	for pi, part := range parts {
		for _, u := range part {
			crossed := false
			for _, v := range gr.Neighbors(u) {
				pj, ok := owner[v]
				if !ok || pj == pi {
					continue
				}
				crossed = true
				i, j, uIsA := pi, pj, true
				if i > j {
					i, j = j, i
					uIsA = false
				}
				key := [2]int{i, j}
				pair, ok := between[key]
				if !ok {
					pair = &struct{ a, b map[int]bool }{map[int]bool{}, map[int]bool{}}
					between[key] = pair
				}
				if uIsA {
					pair.a[u] = true
				} else {
					pair.b[u] = true
				}
			}
			// A node counts toward its own partition's self-support the
			// moment none of *its* neighbours cross; one crossing
			// neighbour in the partition doesn't disqualify the rest.
			if !crossed {
				selfNodes[pi] = append(selfNodes[pi], u)
			}
		}
	}

	out := PartitionSupport{Between: map[[2]int][2][]int{}, Self: map[int][]int{}}
	for key, pair := range between {
		out.Between[key] = [2][]int{sortedKeys(pair.a), sortedKeys(pair.b)}
	}
	for pi, nodes := range selfNodes {
		out.Self[pi] = nodes
	}
	return out
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// BreakLargeComponent implements break_large_component (spec §4.7): compute
// partitions, count links (not node-supports) between pairs, and whenever a
// pair's link count is >= minSupport, merge the two partitions into one
// SV-candidate job. A partition is included standalone if its own
// self-support (nodes with only intra-partition neighbours) is >= minSupport.
// A component that forms a single partition (or none) is returned as its
// partitions, with no self-support check.
func (gr *Graph) BreakLargeComponent(component []int, minSupport int) [][]int {
	parts := gr.GetPartitions(component)
	if len(parts) <= 1 {
		return parts
	}

	pairLinks := map[[2]int]int{}
	owner := make(map[int]int, len(component))
	for pi, part := range parts {
		for _, id := range part {
			owner[id] = pi
		}
	}
	for _, u := range component {
		pi, ok := owner[u]
		if !ok {
			continue
		}
		for _, v := range gr.Neighbors(u) {
			pj, ok := owner[v]
			// Every undirected edge is seen twice (once from each
			// endpoint); only count it from the lower-partition side so
			// each cross-partition edge contributes exactly one link.
			if !ok || pj <= pi {
				continue
			}
			pairLinks[[2]int{pi, pj}]++
		}
	}

	parent := make([]int, len(parts))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for key, links := range pairLinks {
		if links >= minSupport {
			union(key[0], key[1])
		}
	}

	support := gr.SupportBetween(parts)
	groups := map[int][]int{}
	for i := range parts {
		groups[find(i)] = append(groups[find(i)], i)
	}
	var jobs [][]int
	for _, members := range groups {
		if len(members) == 1 {
			pi := members[0]
			if nodes, ok := support.Self[pi]; ok && len(nodes) >= minSupport {
				jobs = append(jobs, append([]int{}, parts[pi]...))
			}
			continue
		}
		var job []int
		for _, pi := range members {
			job = append(job, parts[pi]...)
		}
		jobs = append(jobs, job)
	}
	return jobs
}
