package simulation

import "math"

// DefaultHistogramBins is the number of equal-width p-value bins on [0, 1].
const DefaultHistogramBins = 100

// Histogram counts p-values in equal-width bins over [0, 1]. Every bin is
// half-open except the last, which also holds p = 1.
type Histogram struct {
	Width  float64 `json:"width"`
	Counts []int   `json:"counts"`
	// Expected is the per-bin count of uniformly distributed p-values.
	Expected float64 `json:"expected"`
}

// NewHistogram bins pValues. Values outside [0, 1] and NaN are ignored.
func NewHistogram(pValues []float64, bins int) *Histogram {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	h := &Histogram{
		Width:    1 / float64(bins),
		Counts:   make([]int, bins),
		Expected: float64(len(pValues)) / float64(bins),
	}
	for _, p := range pValues {
		if math.IsNaN(p) || p < 0 || p > 1 {
			continue
		}
		idx := int(p * float64(bins))
		if idx == bins {
			idx--
		}
		h.Counts[idx]++
	}
	return h
}

// Bins returns the number of bins.
func (h *Histogram) Bins() int { return len(h.Counts) }

// Edges returns the lower and upper bound of bin i.
func (h *Histogram) Edges(i int) (lower, upper float64) {
	lower = float64(i) * h.Width
	upper = lower + h.Width
	if i == len(h.Counts)-1 {
		upper = 1
	}
	return lower, upper
}

// BinBelow reports whether bin i lies entirely below alpha.
func (h *Histogram) BinBelow(i int, alpha float64) bool {
	_, upper := h.Edges(i)
	return upper <= alpha+1e-12
}

// Below counts the values whose bin lies entirely below alpha.
func (h *Histogram) Below(alpha float64) int {
	n := 0
	for i, c := range h.Counts {
		if h.BinBelow(i, alpha) {
			n += c
		}
	}
	return n
}
