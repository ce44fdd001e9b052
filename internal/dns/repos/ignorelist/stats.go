package ignorelist

// StoreStats reports lightweight store metrics and metadata.
type StoreStats struct {
	ExactCount  uint64
	SuffixCount uint64
	Version     uint64 // snapshot version (0 if unknown)
	UpdatedUnix int64  // last updated unix time (0 if unknown)
}

// RepoStats exposes repository-level counters and underlying store stats.
type RepoStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	CacheSize int
	Store     StoreStats
}
