package uirender

// CacheStats are cumulative counters of one texture cache.
type CacheStats struct {
	Hits      uint64 // resolves served by a resident, fresh entry
	Uploads   uint64 // first uploads of a key
	Reuploads uint64 // uploads of stale or modified entries
	Fallbacks uint64 // resolves answered with the white fallback
	Failures  uint64 // uploads that failed and fell back
	Entries   int    // resident entries
}

// FrameStats describes the most recent rendered frame.
type FrameStats struct {
	Commands     int
	DrawCalls    int
	SkippedDraws int // commands with an empty clip rectangle or index range
	Uploads      int // texture writes staged in the frame's copy pass
	VertexBytes  uint64
	UniformBytes uint64
}

// Stats are renderer counters.
type Stats struct {
	Frames        uint64 // frames that opened a render pass
	SkippedFrames uint64 // frames with no vertices or a zero-sized target
	DrawCalls     uint64
	SkippedDraws  uint64
	Uploads       uint64

	LastFrame FrameStats

	Atlas    CacheStats
	Textures CacheStats
}
