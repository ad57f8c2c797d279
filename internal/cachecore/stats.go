package cachecore

// Stats is a point-in-time snapshot of one cache's counters.
type Stats struct {
	Name        string
	Size        int
	MaxEntries  int
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
}

// HitRatio returns Hits / (Hits + Misses), or 0 when nothing has been
// requested yet.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// counters holds the mutable state Stats is snapshotted from. Kept
// separate from Stats so resetting counters doesn't require touching the
// exported snapshot type.
type counters struct {
	hits        int64
	misses      int64
	evictions   int64
	expirations int64
}
