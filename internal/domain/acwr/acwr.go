// Package acwr computes the acute:chronic workload ratio from a load history.
//
// The ratio is a clinical proxy for injury risk: a short-window load average
// divided by a long-window load average. The computation is deterministic;
// identical inputs always yield identical outputs.
package acwr

import "math"

const (
	acuteWindow   = 7
	chronicWindow = 28

	// bootstrapHigh is returned while there is acute load but no chronic
	// baseline yet; treated as elevated until history accumulates.
	bootstrapHigh = 2.0
	neutral       = 1.0
	maxRatio      = 3.0
)

// Ratio computes the acute:chronic workload ratio for an ordered sequence of
// daily loads (oldest first). Empty input returns the neutral ratio 1.0.
// While the history does not extend past the acute window there is no chronic
// baseline to compare against: any positive load reads as elevated (2.0).
// The result is capped at 3.0 and rounded to 2 decimal places.
func Ratio(loads []float64) float64 {
	if len(loads) == 0 {
		return neutral
	}

	acute := tailMean(loads, acuteWindow)
	chronic := tailMean(loads, chronicWindow)

	if len(loads) <= acuteWindow || chronic == 0 {
		if acute > 0 {
			return bootstrapHigh
		}
		return neutral
	}

	return round2(math.Min(maxRatio, acute/chronic))
}

// tailMean averages the last n entries, or all of them if fewer.
func tailMean(loads []float64, n int) float64 {
	if len(loads) < n {
		n = len(loads)
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range loads[len(loads)-n:] {
		sum += v
	}
	return sum / float64(n)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
