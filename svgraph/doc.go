// Copyright 2026 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package svgraph implements the streaming signal-extraction and
// clustering core of a structural-variant discovery pipeline.
//
// A GenomeScanner pulls alignment records in coordinate order and
// classifies each one into a read-signal kind (split, discordant pair,
// in-read indel, breakend). Engine turns that stream into an
// association graph: every alignment occurrence becomes a node, and
// PairedEndScoper, ClipScoper and TemplateEdges add weighted edges
// between nodes that plausibly witness the same SV. Partitioner then
// breaks large connected components into SV-candidate sub-groups for a
// downstream classifier.
//
// Alignment parsing itself is out of scope: callers supply an
// htsio.Source (see the htsio subpackage for a biogo/hts-backed
// implementation) and the package works exclusively with
// *sam.Record.
package svgraph
