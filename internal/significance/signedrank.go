package significance

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// signedRankExactLimit is the largest number of non-zero differences for which
// the exact null distribution of R+ is used.
const signedRankExactLimit = 50

// signedRankTest is the Wilcoxon signed-rank test on the paired differences x-y.
// Zero differences are discarded. The statistic is min(R+, R-) for the two-sided
// alternative and R+ otherwise.
func signedRankTest(x, y []float64, alt Alternative) (Result, error) {
	if len(x) != len(y) {
		return Result{}, stats.ErrMismatchedSamples
	}

	diffs := make([]float64, 0, len(x))
	for i := range x {
		if d := x[i] - y[i]; d != 0 {
			diffs = append(diffs, d)
		}
	}
	n := len(diffs)
	if n == 0 {
		return Result{}, stats.ErrSamplesEqual
	}

	abs := make([]float64, n)
	for i, d := range diffs {
		abs[i] = math.Abs(d)
	}
	ranks, ties := rankAverage(abs)

	var rPlus, rMinus float64
	for i, d := range diffs {
		if d > 0 {
			rPlus += ranks[i]
		} else {
			rMinus += ranks[i]
		}
	}

	stat := rPlus
	if alt == TwoSided {
		stat = math.Min(rPlus, rMinus)
	}

	var p float64
	if n <= signedRankExactLimit && len(ties) == 0 {
		p = signedRankExactP(n, rPlus, rMinus, alt)
	} else {
		mean := float64(n*(n+1)) / 4
		variance := float64(n*(n+1)*(2*n+1)) / 24
		for _, t := range ties {
			tf := float64(t)
			variance -= (tf*tf*tf - tf) / 48
		}
		if variance <= 0 {
			return Result{}, stats.ErrZeroVariance
		}
		z := (rPlus - mean) / math.Sqrt(variance)
		switch alt {
		case Greater:
			p = distuv.UnitNormal.Survival(z)
		case Less:
			p = distuv.UnitNormal.CDF(z)
		default:
			p = 2 * distuv.UnitNormal.Survival(math.Abs(z))
		}
	}

	return Result{PValue: math.Min(p, 1), Statistic: stat}, nil
}

// signedRankExactP computes the p-value from the exact distribution of R+,
// which for untied data takes integer values 0..n(n+1)/2.
func signedRankExactP(n int, rPlus, rMinus float64, alt Alternative) float64 {
	pmf := signedRankPMF(n)
	cdf := func(k int) float64 {
		if k < 0 {
			return 0
		}
		if k >= len(pmf) {
			return 1
		}
		s := 0.0
		for i := 0; i <= k; i++ {
			s += pmf[i]
		}
		return s
	}

	r := int(math.Round(rPlus))
	switch alt {
	case Greater:
		return 1 - cdf(r-1)
	case Less:
		return cdf(r)
	default:
		t := int(math.Round(math.Min(rPlus, rMinus)))
		return math.Min(1, 2*cdf(t))
	}
}

// signedRankPMF returns P(R+ = k) for k = 0..n(n+1)/2 under the null hypothesis,
// built by adding one rank at a time with probability one half each.
func signedRankPMF(n int) []float64 {
	maxSum := n * (n + 1) / 2
	pmf := make([]float64, maxSum+1)
	pmf[0] = 1
	top := 0
	for r := 1; r <= n; r++ {
		top += r
		for k := top; k >= 0; k-- {
			v := pmf[k] * 0.5
			if k >= r {
				v += pmf[k-r] * 0.5
			}
			pmf[k] = v
		}
	}
	return pmf
}
