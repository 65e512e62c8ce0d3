package svgraph

import "github.com/biogo/hts/sam"

// testRefs mirrors markduplicates/testutils.go's module-level chr1/chr2
// fixtures: a couple of small references shared across this package's
// tests, with a resolver matching the resolveRef/chromName shape Engine
// and ClassifyAlignment expect.
var (
	testChr1, _ = sam.NewReference("chr1", "", "", 250000000, nil, nil)
	testChr2, _ = sam.NewReference("chr2", "", "", 250000000, nil, nil)
	testChr5, _ = sam.NewReference("chr5", "", "", 250000000, nil, nil)

	testRefByName = map[string]int{"chr1": 0, "chr2": 1, "chr5": 2}
	testRefByID   = []string{"chr1", "chr2", "chr5"}
)

func testResolveRef(name string) (int, bool) {
	id, ok := testRefByName[name]
	return id, ok
}

func testChromName(id int) string {
	return testRefByID[id]
}

// newTestRecord builds a minimal *sam.Record the way
// markduplicates/testutils.go's NewRecord does, without the free-pool
// allocator (a grailbio/hts-only addition not present upstream).
func newTestRecord(name string, ref *sam.Reference, pos int, flags sam.Flags, matePos int, mateRef *sam.Reference, cigar sam.Cigar) *sam.Record {
	return &sam.Record{
		Name:    name,
		Ref:     ref,
		Pos:     pos,
		MapQ:    60,
		Cigar:   cigar,
		Flags:   flags,
		MateRef: mateRef,
		MatePos: matePos,
		Seq:     sam.NewSeq([]byte("ACGT")),
	}
}

func mustAux(tag string, val interface{}) sam.Aux {
	aux, err := sam.NewAux(sam.Tag{tag[0], tag[1]}, val)
	if err != nil {
		panic(err)
	}
	return aux
}
