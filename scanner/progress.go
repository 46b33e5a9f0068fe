package scanner

import "sync"

// each phase owns a slice of the percentage range
var phaseRange = map[ScanPhase][2]int{
	PhaseWalking:    {0, 5},
	PhaseMatching:   {5, 60},
	PhaseThumbnails: {60, 90},
	PhaseSaving:     {90, 99},
	PhaseDone:       {100, 100},
}

// ProgressTracker tracks and reports scan progress.
type ProgressTracker struct {
	callback func(Progress)
	progress Progress
	mu       sync.Mutex
}

// NewProgressTracker creates a new progress tracker.
func NewProgressTracker(callback func(Progress)) *ProgressTracker {
	return &ProgressTracker{
		callback: callback,
		progress: Progress{Phase: PhaseWalking},
	}
}

// SetPhase starts a new phase with the given number of items.
func (p *ProgressTracker) SetPhase(phase ScanPhase, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.progress.Phase = phase
	p.progress.Current = 0
	p.progress.Total = total
	p.update()
}

// Increment advances the current phase by one item.
func (p *ProgressTracker) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.progress.Current++
	p.update()
}

// Get returns current progress.
func (p *ProgressTracker) Get() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.progress
}

// update recomputes the percentage and notifies only when it grew, so
// callers observe a non-decreasing sequence. Called with mu held.
func (p *ProgressTracker) update() {
	r := phaseRange[p.progress.Phase]
	pct := r[1]
	if p.progress.Total > 0 {
		done := p.progress.Current
		if done > p.progress.Total {
			done = p.progress.Total
		}
		pct = r[0] + (r[1]-r[0])*done/p.progress.Total
	} else if p.progress.Phase != PhaseDone {
		pct = r[0]
	}

	if pct <= p.progress.Percent && !(pct == 100 && p.progress.Phase == PhaseDone) {
		return
	}
	if pct > p.progress.Percent {
		p.progress.Percent = pct
	}
	if p.callback != nil {
		p.callback(p.progress)
	}
}
