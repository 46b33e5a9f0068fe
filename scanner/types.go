package scanner

import (
	"encoding/json"
	"fmt"

	"github.com/camden-git/photodesk/database"
)

// ScanPhase represents the current scan phase.
type ScanPhase string

const (
	PhaseWalking    ScanPhase = "walking"
	PhaseMatching   ScanPhase = "matching"
	PhaseThumbnails ScanPhase = "thumbnails"
	PhaseSaving     ScanPhase = "saving"
	PhaseDone       ScanPhase = "done"
)

// ScanError is a per-file failure. The scan records it and moves on.
type ScanError struct {
	Path string
	Op   string
	Err  error
}

func (e ScanError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e ScanError) Unwrap() error { return e.Err }

func (e ScanError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		Path  string `json:"path"`
		Op    string `json:"op"`
		Error string `json:"error"`
	}{e.Path, e.Op, msg})
}

// Progress is reported while scanning. Percent never decreases and the last
// report of a successful scan is always 100.
type Progress struct {
	Phase   ScanPhase `json:"phase"`
	Percent int       `json:"percent"`
	Current int       `json:"current"`
	Total   int       `json:"total"`
}

// Result is the outcome of reconciling a folder with its store.
type Result struct {
	// Photos holds every stored or newly inserted photo whose file exists, in natural name order.
	Photos []database.PhotoRecord
	// Deleted lists stored names whose files are gone, sorted.
	Deleted []string
	Errors  []ScanError
	Added   int
	Matched int
}
