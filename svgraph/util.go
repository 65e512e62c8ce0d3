package svgraph

// abs, minInt and maxInt mirror the tiny free functions every package in the
// pack hand-rolls for ints (e.g. grailbio/bio/markduplicates/helpers.go,
// grailbio/bio/fusion/util.go) rather than reaching for a generics
// library for three-line functions.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func minInt(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func maxInt(x, y int) int {
	if x > y {
		return x
	}
	return y
}
