package svgraph

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Site is one user-supplied prior SV locus (spec §4.8 / §6 "Sites file").
type Site struct {
	Chrom, Start int
	Chrom2, End  int
	SVType       string
	SVLen        int
}

func (s Site) kind() ReadEnum {
	switch s.SVType {
	case "DEL":
		return Deletion
	case "INS":
		return Insertion
	default:
		return Breakend
	}
}

func (s Site) length() int {
	if s.SVType == "DEL" || s.SVType == "INS" {
		return s.SVLen
	}
	return 0
}

type siteScopeEntry struct {
	pos  int
	node int
}

// SiteAdder injects synthetic nodes and edges at user-supplied loci as the
// scan passes nearby (spec §4.8). Priors for one chromosome must be
// supplied already sorted by position, as a queue.
type SiteAdder struct {
	clusterDist int
	queues      map[int][]Site
	scope       map[int][]siteScopeEntry
	origin      map[int]Site
}

// NewSiteAdder returns a SiteAdder with no priors loaded.
func NewSiteAdder(clusterDist int) *SiteAdder {
	return &SiteAdder{
		clusterDist: clusterDist,
		queues:      make(map[int][]Site),
		scope:       make(map[int][]siteScopeEntry),
		origin:      make(map[int]Site),
	}
}

// Origin returns the Site a materialized node came from, and whether node
// was produced by SiteAdder at all. This backs the output "info" map in
// spec §6.
func (sa *SiteAdder) Origin(node int) (Site, bool) {
	s, ok := sa.origin[node]
	return s, ok
}

// Load installs the position-sorted prior queue for chrom, replacing any
// existing queue for that chromosome.
func (sa *SiteAdder) Load(chrom int, sites []Site) {
	sa.queues[chrom] = sites
}

// Advance drains priors that have fallen behind the current read position
// and materializes any prior now within clusterDist of it: a graph node,
// a PairedEndScoper registration using the site's own type/length, and an
// entry in the chromosome's in-scope window. It returns the ids of any
// nodes created.
func (sa *SiteAdder) Advance(chrom, readPos int, g *Graph, ps *PairedEndScoper) []int {
	q := sa.queues[chrom]
	cut := readPos - sa.clusterDist
	for len(q) > 0 && q[0].Start < cut {
		q = q[1:]
	}

	var created []int
	for len(q) > 0 && abs(q[0].Start-readPos) < sa.clusterDist {
		s := q[0]
		q = q[1:]

		node := g.AddNode(Node{
			RefID:      chrom,
			Pos:        s.Start,
			CigarIndex: -1,
			EventPos:   s.Start,
			Kind:       s.kind(),
		})
		ps.AddItem(node, chrom, s.Start, s.Chrom2, s.End, s.kind(), s.length())
		sa.scope[chrom] = append(sa.scope[chrom], siteScopeEntry{pos: s.Start, node: node})
		sa.origin[node] = s
		created = append(created, node)
	}
	sa.queues[chrom] = q
	return created
}

// FindNearestSite returns the node id of the materialized site within
// 50bp of pos on chrom, searching only sites within the 500bp scope
// window, or -1 if none qualifies (spec §4.8).
func (sa *SiteAdder) FindNearestSite(chrom, pos int) int {
	const scopeWindow = 500
	const nearThresh = 50
	best, bestDist := -1, scopeWindow+1
	for _, e := range sa.scope[chrom] {
		d := abs(e.pos - pos)
		if d > scopeWindow {
			continue
		}
		if d < nearThresh && d < bestDist {
			best, bestDist = e.node, d
		}
	}
	return best
}

// ParseSitesFile reads a simple structured sites file: one
// "chrom\tstart\tchrom2\tend\tsvtype\tsvlen" record per line, leading
// '#' lines ignored, and returns the sites grouped into position-sorted
// per-chromosome queues ready for Load. This mirrors ParseRegionFile's
// lightweight bufio.Scanner TSV parsing (spec §6 "Sites file").
func ParseSitesFile(r io.Reader, chromID func(string) (int, bool)) (map[int][]Site, error) {
	sc := bufio.NewScanner(r)
	out := make(map[int][]Site)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 6 {
			continue
		}
		chrom, ok := chromID(fields[0])
		if !ok {
			continue
		}
		start, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		chrom2, ok := chromID(fields[2])
		if !ok {
			chrom2 = chrom
		}
		end, err := strconv.Atoi(fields[3])
		if err != nil {
			continue
		}
		svlen, _ := strconv.Atoi(fields[5])
		out[chrom] = append(out[chrom], Site{
			Chrom: chrom, Start: start, Chrom2: chrom2, End: end,
			SVType: fields[4], SVLen: svlen,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	for c := range out {
		sites := out[c]
		for i := 1; i < len(sites); i++ {
			for j := i; j > 0 && sites[j-1].Start > sites[j].Start; j-- {
				sites[j-1], sites[j] = sites[j], sites[j-1]
			}
		}
	}
	return out, nil
}
