// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.
package main

/*
sv-discover streams a coordinate-sorted BAM and prints, per SV-candidate
component, the node count and partition breakdown the svgraph engine
produced. It is a thin wiring layer over svgraph.Engine; the downstream SV
classifier that would consume these candidates is out of scope.
*/

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/svdisco/svgraph"
	"github.com/grailbio/svdisco/svgraph/htsio"
)

var (
	bamPath     = flag.String("bam", "", "Input BAM path (required)")
	baiPath     = flag.String("index", "", "BAM index path; required by -region-file. Defaults to bampath + .bai")
	regionPath  = flag.String("region-file", "", "Optional TSV region file (chrom\\tstart\\tend) restricting the scan")
	sitesPath   = flag.String("sites-file", "", "Optional sites TSV (chrom\\tstart\\tchrom2\\tend\\tsvtype\\tsvlen) of prior loci")
	maxCov      = flag.Int("max-cov", 200, "Per-100bp bin read count above which reads are suppressed outside regions of interest")
	minSVSize   = flag.Int("min-sv-size", 30, "Minimum CIGAR indel length treated as an SV signal")
	clipLength  = flag.Int("clip-length", 30, "Minimum soft-clip length considered by ClipScoper")
	mapqThresh  = flag.Int("mapq-thresh", 1, "Alignments below this MAPQ are never classified")
	minSupport  = flag.Int("min-support", 2, "Minimum inter-partition link count for Partitioner to merge two partitions")
	trustInsLen = flag.Bool("trust-ins-len", false, "Compare insertion lengths strictly in PairedEndScoper's span/position distance")
	mmOnly      = flag.Bool("mm-only", false, "Restrict to mismatch-derived signals only (reserved for the downstream classifier)")
)

func svDiscoverUsage() {
	fmt.Printf("Usage: %s -bam <path> [OPTIONS]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = svDiscoverUsage
	shutdown := grail.Init()
	defer shutdown()

	if *bamPath == "" {
		log.Fatalf("-bam is required")
	}

	cfg := svgraph.DefaultConfig()
	cfg.MaxCov = *maxCov
	cfg.MinSVSize = *minSVSize
	cfg.ClipLength = *clipLength
	cfg.MapQThresh = *mapqThresh
	cfg.TrustInsLen = *trustInsLen
	cfg.MMOnly = *mmOnly

	in, err := os.Open(*bamPath)
	if err != nil {
		log.Fatalf("opening %s: %v", *bamPath, err)
	}
	defer in.Close()

	results, err := runDiscovery(in, cfg, *minSupport)
	if err != nil {
		log.Panicf("%v", err)
	}

	for i, res := range results {
		fmt.Printf("component %d: %d parts, %d reads, %d dropped, %d bad clips\n",
			i, len(res.Parts), len(res.Reads), res.ReadsDropped, res.BadClips)
	}
	log.Debug.Printf("exiting: %d candidate components", len(results))
}

// runDiscovery picks the narrowest mode the flags ask for. -region-file
// needs random access, so it opens the BAM's index (explicit -index, or
// bampath+".bai" by default) against the same *os.File handle: os.File
// already satisfies io.ReadSeekCloser, so there is no need to reopen the
// input. With no region file it falls back to a single forward streaming
// pass via Engine.RunWholeGenome. -sites-file layers prior loci into the
// engine in either mode.
func runDiscovery(in *os.File, cfg svgraph.Config, minSupport int) ([]svgraph.Result, error) {
	indexPath := *baiPath
	indexExplicit := indexPath != ""
	if indexPath == "" {
		indexPath = *bamPath + ".bai"
	}

	var (
		src   htsio.Source
		raSrc htsio.RandomAccessSource
	)
	if indexFile, err := os.Open(indexPath); err == nil {
		defer indexFile.Close()
		ra, err := htsio.NewIndexedBAMSource(in, indexFile)
		if err != nil {
			return nil, fmt.Errorf("opening index %s: %w", indexPath, err)
		}
		raSrc, src = ra, ra
	} else if indexExplicit {
		return nil, fmt.Errorf("opening index %s: %w", indexPath, err)
	} else {
		s, err := htsio.NewBAMSource(in)
		if err != nil {
			return nil, err
		}
		src = s
	}
	defer src.Close()

	refs := src.Header().Refs()
	byName := make(map[string]int, len(refs))
	byID := make(map[int]string, len(refs))
	for i, r := range refs {
		byName[r.Name()] = i
		byID[i] = r.Name()
	}
	resolveRef := func(name string) (int, bool) {
		id, ok := byName[name]
		return id, ok
	}
	chromName := func(id int) string { return byID[id] }

	var sites *svgraph.SiteAdder
	if *sitesPath != "" {
		f, err := os.Open(*sitesPath)
		if err != nil {
			return nil, fmt.Errorf("opening sites file %s: %w", *sitesPath, err)
		}
		defer f.Close()
		byChrom, err := svgraph.ParseSitesFile(f, resolveRef)
		if err != nil {
			return nil, fmt.Errorf("parsing sites file %s: %w", *sitesPath, err)
		}
		sites = svgraph.NewSiteAdder(cfg.ClusterDist)
		for chrom, chromSites := range byChrom {
			sites.Load(chrom, chromSites)
		}
	}
	eng := svgraph.NewEngine(cfg, sites)

	if *regionPath == "" {
		return eng.RunWholeGenome(src, resolveRef, minSupport)
	}
	if raSrc == nil {
		return nil, fmt.Errorf("-region-file requires a BAM index; pass -index or place one at %s", indexPath)
	}
	f, err := os.Open(*regionPath)
	if err != nil {
		return nil, fmt.Errorf("opening region file %s: %w", *regionPath, err)
	}
	defer f.Close()
	regions, err := svgraph.ParseRegionFile(f, resolveRef)
	if err != nil {
		return nil, fmt.Errorf("parsing region file %s: %w", *regionPath, err)
	}
	return eng.RunRegions(raSrc, resolveRef, chromName, svgraph.QNameHash64, regions, minSupport)
}
