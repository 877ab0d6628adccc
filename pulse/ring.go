package pulse

// A Ring accumulates values per slot for the next `horizon` steps. A step
// maps to row step mod horizon; reading a row clears it so the row can be
// reused horizon steps later.
type Ring struct {
	horizon int64
	slots   int
	values  []float64
}

// NewRing creates a ring holding the given number of slots for horizon
// steps.
func NewRing(slots, horizon int) *Ring {
	if horizon <= 0 {
		panic("ring horizon must be positive")
	}

	if slots < 0 {
		panic("ring slot count must not be negative")
	}

	return &Ring{
		horizon: int64(horizon),
		slots:   slots,
		values:  make([]float64, slots*horizon),
	}
}

// Horizon returns the number of steps the ring can hold.
func (r *Ring) Horizon() int64 {
	return r.horizon
}

// Slots returns the number of slots per step.
func (r *Ring) Slots() int {
	return r.slots
}

// Add accumulates v into the slot at the given step.
func (r *Ring) Add(step int64, slot Slot, v float64) {
	r.values[r.index(step, slot)] += v
}

// Peek returns the value of the slot at the given step without clearing it.
func (r *Ring) Peek(step int64, slot Slot) float64 {
	return r.values[r.index(step, slot)]
}

// TakeRow copies the row of the given step into dst and clears the row. dst
// must hold Slots() values.
func (r *Ring) TakeRow(step int64, dst []float64) {
	start := r.row(step) * int64(r.slots)
	row := r.values[start : start+int64(r.slots)]

	copy(dst, row)
	for i := range row {
		row[i] = 0
	}
}

// Clear zeroes every row.
func (r *Ring) Clear() {
	for i := range r.values {
		r.values[i] = 0
	}
}

func (r *Ring) row(step int64) int64 {
	m := step % r.horizon
	if m < 0 {
		m += r.horizon
	}

	return m
}

func (r *Ring) index(step int64, slot Slot) int64 {
	if slot < 0 || int(slot) >= r.slots {
		panic("ring slot out of range")
	}

	return r.row(step)*int64(r.slots) + int64(slot)
}
