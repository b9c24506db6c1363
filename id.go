package phasebus

import (
	"sync/atomic"

	"golang.org/x/text/unicode/norm"
)

// ID names a phase or an event.
//
// IDs are normalized to Unicode NFC at the API boundary, so byte-distinct
// but canonically equal spellings address the same phase. Ordering
// tie-breaks compare the normalized form.
type ID string

// DefaultPhase is the phase listeners land in when registered without an
// explicit phase.
const DefaultPhase ID = "default"

// normalizeID returns id in NFC form.
func normalizeID(id ID) ID {
	return ID(norm.NFC.String(string(id)))
}

// cycleWarningsOff gates the diagnostic emitted when a sort collapses a
// cycle. Zero value means diagnostics are on; tests that construct cycles
// on purpose turn them off. The toggle affects logging only, collapse
// behavior is identical either way.
var cycleWarningsOff atomic.Bool

// SetCycleWarnings toggles cycle diagnostics process-wide. Diagnostics are
// on by default.
func SetCycleWarnings(enabled bool) {
	cycleWarningsOff.Store(!enabled)
}

// CycleWarningsEnabled reports whether cycle diagnostics are logged.
func CycleWarningsEnabled() bool {
	return !cycleWarningsOff.Load()
}
