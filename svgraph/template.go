package svgraph

import "sort"

const (
	flagRead1           = 0x40
	flagSecondarySuppl  = 0x900 // secondary | supplementary
	flagProperAndOthers = 0
)

type templateEntry struct {
	queryStart int
	node       int
	flag       uint16
}

// TemplateEdges buffers alignments sharing a template name and, once
// flushed, adds edges between nodes originating from the same sequencing
// template (spec §4.6). It must only be flushed after the final
// alignment has been processed.
type TemplateEdges struct {
	byTemplate map[string][]templateEntry
}

// NewTemplateEdges returns an empty buffer.
func NewTemplateEdges() *TemplateEdges {
	return &TemplateEdges{byTemplate: make(map[string][]templateEntry)}
}

// Add records one alignment's node under its template name. Only
// between-read signals (ReadEnum < Deletion) are ever buffered here; the
// caller is expected to gate on kind.IsBetweenRead() before calling Add,
// per spec §3 ("Template edges are only added for <2").
func (te *TemplateEdges) Add(templateName string, queryStart, node int, flag uint16) {
	te.byTemplate[templateName] = append(te.byTemplate[templateName], templateEntry{
		queryStart: queryStart,
		node:       node,
		flag:       flag,
	})
}

// Flush adds the edges described in spec §4.6 to g for every buffered
// template, then discards the buffer.
func (te *TemplateEdges) Flush(g *Graph) {
	for _, entries := range te.byTemplate {
		var read1, read2 []templateEntry
		for _, e := range entries {
			if e.flag&flagRead1 != 0 {
				read1 = append(read1, e)
			} else {
				read2 = append(read2, e)
			}
		}
		sort.Slice(read1, func(i, j int) bool { return read1[i].queryStart < read1[j].queryStart })
		sort.Slice(read2, func(i, j int) bool { return read2[i].queryStart < read2[j].queryStart })

		addConsecutiveEdges(g, read1)
		addConsecutiveEdges(g, read2)

		p1, ok1 := primaryOf(read1)
		p2, ok2 := primaryOf(read2)
		if ok1 && ok2 && !g.HasEdge(p1, p2) {
			g.AddEdge(p1, p2, WeightTemplate)
		}
	}
	te.byTemplate = make(map[string][]templateEntry)
}

func addConsecutiveEdges(g *Graph, entries []templateEntry) {
	for i := 1; i < len(entries); i++ {
		g.AddEdge(entries[i-1].node, entries[i].node, WeightTemplate)
	}
}

func primaryOf(entries []templateEntry) (int, bool) {
	for _, e := range entries {
		if e.flag&flagSecondarySuppl == 0 {
			return e.node, true
		}
	}
	return 0, false
}
