package render

import (
	"math"
	"time"
)

// PulsePeriod is one full cycle of the drag indicator.
const PulsePeriod = time.Second

// PulsePhase maps elapsed time to a brightness in [0, 1]. It starts at 1
// and is a pure function of its input, so redraws never drive state.
func PulsePhase(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 1
	}
	turns := float64(elapsed%PulsePeriod) / float64(PulsePeriod)
	return 0.5 + 0.5*math.Cos(2*math.Pi*turns)
}
