package window

import "gonum.org/v1/gonum/stat"

// Sentinel coefficients of variation.
const (
	// CVNoChannels is used for a population without channels.
	CVNoChannels = 1e6

	// CVNoActivity is used for a population whose channels were all silent
	// over the window.
	CVNoActivity = 3.0
)

// Stats summarizes the occupancy counts of one population.
type Stats struct {
	Mean     float64
	Variance float64
	CV       float64
}

// Rescan recounts, for every channel, the non-zero samples held by the grid,
// writes the counts into counts and summarizes them. counts must hold
// g.Channels() values.
func Rescan(g *Grid, counts []float64) Stats {
	for i := 0; i < g.Channels(); i++ {
		counts[i] = float64(g.CountNonZero(i))
	}

	return Summarize(counts[:g.Channels()])
}

// Summarize derives the population mean, the population variance and the
// coefficient of variation (variance over mean) of the counts.
func Summarize(counts []float64) Stats {
	if len(counts) == 0 {
		return Stats{CV: CVNoChannels}
	}

	mean, variance := stat.PopMeanVariance(counts, nil)
	if mean == 0 {
		return Stats{CV: CVNoActivity}
	}

	return Stats{
		Mean:     mean,
		Variance: variance,
		CV:       variance / mean,
	}
}
