package retro

// frameStats holds draw metrics, reported when debug is enabled. A frame's
// stats run from the end of the previous Render, so rejections during Update
// count toward the frame that follows.
type frameStats struct {
	quads          int
	targetSwitches int
	effectApplies  int
	rejected       int
}

// logStats reports the frame's stats at debug level for the first frame and
// then once every FPS frames, and starts counting the next frame.
func (s *Session) logStats() {
	s.frames++
	s.last, s.stats = s.stats, frameStats{}
	if !s.debug || s.frames%uint64(s.hw.FPS) != 1 {
		return
	}
	s.logger.Debug("frame",
		"tick", s.ticks,
		"quads", s.last.quads,
		"targets", s.last.targetSwitches,
		"effects", s.last.effectApplies,
		"rejected", s.last.rejected,
		"warned_sites", s.diag.Count(),
	)
}

// FrameQuads returns the number of quads the last frame submitted.
func (s *Session) FrameQuads() int {
	return s.last.quads
}

// Frames returns the number of frames rendered so far.
func (s *Session) Frames() uint64 {
	return s.frames
}
