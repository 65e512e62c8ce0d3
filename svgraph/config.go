package svgraph

// Config holds the tunables in spec §6. All fields that have a documented
// default are set by DefaultConfig; callers then override what they need,
// the way markduplicates.Opts is populated by the teacher's command line
// layer before being handed to the engine.
type Config struct {
	// MaxCov caps the per-100bp read count before a bin is treated as
	// over-covered and its reads are suppressed (outside regions of
	// interest).
	MaxCov int
	// BufferSize caps the read-pointer buffer used when the input has no
	// random access. Overflow is ErrBufferOverflow.
	BufferSize int

	ClipLength             int
	MinSVSize              int
	MinimizerSupportThresh int
	MinimizerBreadth       int
	MinimizerDist          int
	MapQThresh             int

	PairedEnd  bool
	ReadLength int

	NormThresh  float64
	SPDThresh   float64
	MMOnly      bool
	TrustInsLen bool

	K     int // minimizer k-mer length
	M     int // minimizer window width
	ClipL int // carried as a tunable; not read by this package (ClipScoper gates on ClipLength)

	// MaxDist is the PairedEndScoper/ClipScoper scope window (the "± max
	// dist" referenced throughout spec §4.4/4.5).
	MaxDist int
	// ClusterDist is PairedEndScoper's loci eviction distance and
	// SiteAdder's drain/scope distance.
	ClusterDist int
}

// DefaultConfig returns the configuration spec §6 documents as defaults.
func DefaultConfig() Config {
	return Config{
		MaxCov:                 0, // 0 means "no cap"; callers set this explicitly.
		BufferSize:             1 << 20,
		ClipLength:             30,
		MinSVSize:              30,
		MinimizerSupportThresh: 2,
		MinimizerBreadth:       3,
		MinimizerDist:          10,
		MapQThresh:             1,
		PairedEnd:              true,
		ReadLength:             150,
		NormThresh:             100,
		SPDThresh:              0.3,
		MMOnly:                 false,
		TrustInsLen:            false,
		K:                      16,
		M:                      7,
		ClipL:                  21,
		MaxDist:                1000,
		ClusterDist:            500,
	}
}
