package svgraph

import (
	"io"

	"github.com/biogo/hts/sam"
	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/log"
	"github.com/grailbio/svdisco/svgraph/htsio"
)

// Engine is the top-level orchestrator: it drives a GenomeScanner, routes
// every admitted record through classification and the three scopers,
// flushes template edges once the scan is done, and partitions the
// resulting graph into SV-candidate jobs (spec §4 end to end).
type Engine struct {
	cfg Config

	graph *Graph
	ps    *PairedEndScoper
	cs    *ClipScoper
	te    *TemplateEdges
	sites *SiteAdder

	reads        map[int]*sam.Record
	readsDropped int
	badClips     int
	insertStats  InsertSizeStats
}

// NewEngine returns a freshly initialized Engine. sites may be nil.
func NewEngine(cfg Config, sites *SiteAdder) *Engine {
	if sites == nil {
		sites = NewSiteAdder(cfg.ClusterDist)
	}
	return &Engine{
		cfg:   cfg,
		graph: NewGraph(),
		ps:    NewPairedEndScoper(cfg),
		cs:    NewClipScoper(cfg),
		te:    NewTemplateEdges(),
		sites: sites,
		reads: make(map[int]*sam.Record),
	}
}

// Result is the per-SV-candidate-component output described in spec §6.
type Result struct {
	Parts   [][]int
	Between map[[2]int][2][]int
	Within  map[int][]int
	Reads   map[int]*sam.Record
	N2N     map[int]*Node
	Info    map[int]Site

	ReadsDropped int
	BadClips     int
	InsertStats  InsertSizeStats
}

// RunWholeGenome estimates insert size from a prelude, then streams src
// end to end, building the association graph and finally partitioning
// every connected component into SV-candidate jobs.
//
// When src also implements htsio.RandomAccessSource, the prelude rewinds
// the stream afterward. Otherwise the prelude's records are buffered (up
// to Config.BufferSize) and replayed before the scanner continues reading
// fresh records from src, exactly the "buffer alignments by node id"
// fallback spec §9 describes for non-seekable input; exceeding the
// buffer is ErrBufferOverflow.
func (e *Engine) RunWholeGenome(src htsio.Source, resolveRef func(string) (int, bool), minSupport int) ([]Result, error) {
	stats, replay, err := e.runPrelude(src)
	if err != nil {
		return nil, err
	}
	if e.cfg.ReadLength <= 0 {
		if stats.ReadLength <= 0 {
			return nil, ErrCannotInferReadLength
		}
		e.cfg.ReadLength = stats.ReadLength
	}
	e.insertStats = stats
	e.ps.cfg = e.cfg
	e.cs.cfg = e.cfg

	scanner := NewGenomeScanner(e.cfg, nil)
	var recordCount int

	for _, r := range replay {
		chrom, ok := resolveRef(r.Ref.Name())
		if !ok {
			continue
		}
		if scanner.addToBinBuffer(r, chrom) {
			e.addToGraph(r, chrom, 0, resolveRef)
			recordCount++
		}
	}

	err = scanner.ScanWholeGenome(src, resolveRef, func(r *sam.Record, chrom int) {
		e.addToGraph(r, chrom, 0, resolveRef)
		recordCount++
	})
	e.readsDropped += scanner.ReadsDropped()
	if err != nil {
		return nil, wrapf(err, "RunWholeGenome: scan")
	}
	if recordCount == 0 {
		return nil, ErrNoReads
	}

	return e.finish(minSupport), nil
}

// runPrelude feeds up to 200,000 records to an InsertSizeEstimator. If src
// is a RandomAccessSource it rewinds afterward and returns no buffered
// records; otherwise it returns every record it consumed so the caller can
// replay them into the main pass.
func (e *Engine) runPrelude(src htsio.Source) (InsertSizeStats, []*sam.Record, error) {
	est := NewInsertSizeEstimator()
	ra, seekable := src.(htsio.RandomAccessSource)

	var buffered []*sam.Record
	for !est.Done() {
		r, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return InsertSizeStats{}, nil, wrapf(err, "runPrelude")
		}
		est.Observe(r)
		if !seekable {
			buffered = append(buffered, r)
			if len(buffered) > e.cfg.BufferSize {
				return InsertSizeStats{}, nil, ErrBufferOverflow
			}
		}
	}

	if len(buffered) == 0 && est.seen == 0 {
		return InsertSizeStats{}, nil, ErrNoReads
	}

	stats := est.Finish()

	if seekable {
		if err := ra.Rewind(); err != nil {
			return stats, nil, wrapf(err, "runPrelude: rewind")
		}
		return stats, nil, nil
	}
	return stats, buffered, nil
}

// RunRegions restricts the scan to userRegions, expanded once with a
// ±1kb window around every discordant/split partner coordinate seen in a
// first pass over those regions, per spec §4.2's region-restricted mode.
func (e *Engine) RunRegions(src htsio.RandomAccessSource, resolveRef func(string) (int, bool), chromName func(int) string, qnameHash func(string) uint64, userRegions []Region, minSupport int) ([]Result, error) {
	merged := MergeIntervals(userRegions)

	expand := make([]Region, 0)
	scoutScanner := NewRegionScanner(e.cfg, merged)
	err := scoutScanner.ScanRegions(src, chromName, qnameHash, func(r *sam.Record, chrom int) {
		if saVal, ok := GetSATag(r); ok {
			for _, entry := range ParseSATag(saVal) {
				if c, ok := resolveRef(entry.Chrom); ok {
					expand = append(expand, Region{Chrom: c, Start: entry.Pos - 1000, End: entry.Pos + 1000})
				}
			}
		}
		if r.Flags&sam.Paired != 0 && r.Flags&sam.ProperPair == 0 && r.Flags&sam.MateUnmapped == 0 && r.MateRef != nil {
			if c, ok := resolveRef(r.MateRef.Name()); ok {
				expand = append(expand, Region{Chrom: c, Start: r.MatePos - 1000, End: r.MatePos + 1000})
			}
		}
	})
	if err != nil {
		return nil, wrapf(err, "RunRegions: scout pass")
	}

	full := MergeIntervals(append(append([]Region(nil), merged...), expand...))
	scanner := NewRegionScanner(e.cfg, full)
	var recordCount int
	err = scanner.ScanRegions(src, chromName, qnameHash, func(r *sam.Record, chrom int) {
		e.addToGraph(r, chrom, 0, resolveRef)
		recordCount++
	})
	e.readsDropped += scanner.ReadsDropped()
	if err != nil {
		return nil, wrapf(err, "RunRegions: main pass")
	}
	if recordCount == 0 {
		return nil, ErrNoReads
	}
	return e.finish(minSupport), nil
}

// addToGraph implements spec §4's add_to_graph: classify r, materialize a
// node per event, register breakpoint events with the scopers, wire
// SiteAdder priors in range, and register between-read events with
// TemplateEdges for the eventual Flush.
func (e *Engine) addToGraph(r *sam.Record, chrom int, tell int64, resolveRef func(string) (int, bool)) {
	if siteNodes := e.sites.Advance(chrom, r.Pos, e.graph, e.ps); len(siteNodes) > 0 {
		log.Debug.Printf("svgraph: materialized %d site priors at chrom=%d pos=%d", len(siteNodes), chrom, r.Pos)
	}

	events := ClassifyAlignment(r, chrom, e.cfg, resolveRef)
	readLength := InferReadLength(r)

	for _, ev := range events {
		node := e.graph.AddNode(Node{
			QNameHash:  QNameHash64(r.Name),
			Flag:       uint16(r.Flags),
			Pos:        r.Pos,
			RefID:      chrom,
			Tell:       tell,
			CigarIndex: ev.CigarIndex,
			EventPos:   ev.EventPos,
			Kind:       ev.Kind,
		})
		e.reads[node] = r

		partners := e.ps.FindOtherNodes(node, ev.Chrom1, ev.Pos1, ev.Chrom2, ev.Pos2, ev.Kind, ev.LenCig, e.cfg.TrustInsLen)
		for _, p := range partners {
			e.graph.AddEdge(node, p, WeightBreakpoint)
		}
		e.ps.AddItem(node, ev.Chrom1, ev.Pos1, ev.Chrom2, ev.Pos2, ev.Kind, ev.LenCig)

		if site := e.sites.FindNearestSite(chrom, ev.EventPos); site >= 0 {
			e.graph.AddEdge(node, site, WeightSite)
		}

		left, right := leftClipSeq(r), rightClipSeq(r)
		if len(left) >= e.cfg.ClipLength || len(right) >= e.cfg.ClipLength {
			for _, p := range e.cs.Update(node, chrom, r.Pos, left, right, readLength) {
				e.graph.AddEdge(node, p, WeightClip)
			}
		} else if len(left) > 0 || len(right) > 0 {
			e.badClips++
		}

		if ev.Kind.IsBetweenRead() {
			e.te.Add(r.Name, leftClipLen(r), node, uint16(r.Flags))
		}
	}
}

// finish flushes template edges, partitions every connected component,
// and assembles the output Results (spec §6).
func (e *Engine) finish(minSupport int) []Result {
	e.te.Flush(e.graph)

	var out []Result
	for _, component := range e.graph.ConnectedComponents() {
		jobs := e.graph.BreakLargeComponent(component, minSupport)
		for _, job := range jobs {
			out = append(out, e.buildResult(job))
		}
	}
	return out
}

func (e *Engine) buildResult(job []int) Result {
	parts := e.graph.GetPartitions(job)
	support := e.graph.SupportBetween(parts)
	res := Result{
		Parts:        parts,
		Between:      support.Between,
		Within:       support.Self,
		Reads:        make(map[int]*sam.Record, len(job)),
		N2N:          make(map[int]*Node, len(job)),
		Info:         make(map[int]Site),
		ReadsDropped: e.readsDropped,
		BadClips:     e.badClips,
		InsertStats:  e.insertStats,
	}
	for _, id := range job {
		res.Reads[id] = e.reads[id]
		res.N2N[id] = e.graph.Node(id)
		if site, ok := e.sites.Origin(id); ok {
			res.Info[id] = site
		}
	}
	return res
}

// QNameHash64 hashes a read's query name into the 64-bit key stored as
// Node.QNameHash and used by GenomeScanner's region-mode de-duplication
// (TemplateEdges groups by the name string itself). Uses the
// same go-farm fingerprint minimizer.go already uses for k-mer hashing,
// rather than a second, bespoke hash.
func QNameHash64(name string) uint64 {
	return farm.Hash64([]byte(name))
}
