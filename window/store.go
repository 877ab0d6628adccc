package window

import "fmt"

// A Store holds one grid per population and the write cursor they share.
// Writing a row overwrites the oldest samples, so the grids always hold the
// most recent Steps() samples of every channel.
type Store struct {
	grids    []*Grid
	steps    int
	position int
}

// NewStore creates a store retaining steps rows for populations of the
// given channel counts.
func NewStore(steps int, channels ...int) *Store {
	s := &Store{steps: steps}
	for _, n := range channels {
		s.grids = append(s.grids, NewGrid(n, steps))
	}

	return s
}

// Steps returns the window depth in steps.
func (s *Store) Steps() int {
	return s.steps
}

// Grid returns the grid of a population.
func (s *Store) Grid(population int) *Grid {
	return s.grids[population]
}

// NumPopulations returns the number of grids.
func (s *Store) NumPopulations() int {
	return len(s.grids)
}

// Position returns the row the next Record writes.
func (s *Store) Position() int {
	return s.position
}

// SetPosition moves the write cursor.
func (s *Store) SetPosition(position int) error {
	if position < 0 || position >= s.steps {
		return fmt.Errorf("window: position %d outside [0, %d)", position, s.steps)
	}

	s.position = position

	return nil
}

// Record writes one row of samples per population at the cursor and then
// advances the cursor, wrapping to 0 after the last row.
func (s *Store) Record(samples ...[]float64) {
	if len(samples) != len(s.grids) {
		panic(fmt.Sprintf("recording %d populations into a store of %d",
			len(samples), len(s.grids)))
	}

	for i, g := range s.grids {
		g.Write(s.position, samples[i])
	}

	s.position++
	if s.position >= s.steps {
		s.position = 0
	}
}
