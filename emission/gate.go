package emission

// A TrialGate splits time into trials of TrialSteps steps. The first
// WaitSteps+1 steps of each trial are closed; emission is allowed in the
// rest. A wait at least as long as the trial keeps the gate closed.
type TrialGate struct {
	TrialSteps int64
	WaitSteps  int64
}

// Phase returns the position of a tick inside its trial.
func (g TrialGate) Phase(tick int64) int64 {
	if g.TrialSteps <= 0 {
		return 0
	}

	p := tick % g.TrialSteps
	if p < 0 {
		p += g.TrialSteps
	}

	return p
}

// Open tells whether a spike may be emitted at the tick.
func (g TrialGate) Open(tick int64) bool {
	if g.TrialSteps <= 0 {
		return false
	}

	return g.Phase(tick) > g.WaitSteps
}

// Fire decides whether a step with the drawn count emits a spike. At most
// one spike is emitted per step.
func (g TrialGate) Fire(tick, count int64) bool {
	return count > 0 && g.Open(tick)
}
