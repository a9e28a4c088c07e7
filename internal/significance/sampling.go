package significance

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution is the sampling distribution of a test statistic.
type Distribution interface {
	Prob(x float64) float64
	CDF(x float64) float64
	Survival(x float64) float64
	Quantile(p float64) float64
	InverseSurvival(p float64) float64
}

// CentralT is Student's t-distribution with Nu degrees of freedom.
type CentralT struct {
	Nu float64
}

func (d CentralT) dist() distuv.StudentsT {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: d.Nu}
}

func (d CentralT) Prob(x float64) float64     { return d.dist().Prob(x) }
func (d CentralT) CDF(x float64) float64      { return d.dist().CDF(x) }
func (d CentralT) Survival(x float64) float64 { return d.dist().Survival(x) }
func (d CentralT) Quantile(p float64) float64 { return d.dist().Quantile(p) }

// InverseSurvival uses the symmetry of the distribution for accuracy in the upper tail.
func (d CentralT) InverseSurvival(p float64) float64 { return -d.dist().Quantile(p) }

// NoncentralT is the non-central t-distribution with Nu degrees of freedom and
// non-centrality Delta.
type NoncentralT struct {
	Nu    float64
	Delta float64
}

const (
	nctErrMax   = 1e-12
	nctIterMax  = 1000
	nctMaxDelta = 37.62
)

// CDF implements algorithm AS 243 (Lenth, 1989) with the usual refinements for
// small non-centrality and a normal approximation for very large Delta or Nu.
func (d NoncentralT) CDF(t float64) float64 {
	if d.Delta == 0 {
		return CentralT{Nu: d.Nu}.CDF(t)
	}
	if math.IsInf(t, 1) {
		return 1
	}
	if math.IsInf(t, -1) {
		return 0
	}

	tt, del, negdel := t, d.Delta, false
	if t < 0 {
		tt, del, negdel = -t, -d.Delta, true
	}

	if d.Nu > 4e5 || math.Abs(del) > nctMaxDelta {
		s := 1 / (4 * d.Nu)
		z := (tt*(1-s) - del) / math.Sqrt(1+tt*tt*2*s)
		p := distuv.UnitNormal.CDF(z)
		if negdel {
			return 1 - p
		}
		return p
	}

	tnc := 0.0
	x := tt * tt / (tt*tt + d.Nu)
	if x > 0 {
		lambda := del * del
		p := 0.5 * math.Exp(-0.5*lambda)
		q := math.Sqrt(2/math.Pi) * p * del
		s := 0.5 - p
		if s < 1e-7 {
			s = -0.5 * math.Expm1(-0.5*lambda)
		}
		a := 0.5
		b := 0.5 * d.Nu
		rxb := math.Pow(1-x, b)
		lgb, _ := math.Lgamma(b)
		lgab, _ := math.Lgamma(0.5 + b)
		albeta := 0.5*math.Log(math.Pi) + lgb - lgab
		xodd := mathext.RegIncBeta(a, b, x)
		godd := 2 * rxb * math.Exp(a*math.Log(x)-albeta)
		tnc = b * x
		xeven := 1 - rxb
		if tnc < 2.220446049250313e-16 {
			xeven = tnc
		}
		geven := tnc * rxb
		tnc = p*xodd + q*xeven

		for it := 1; it <= nctIterMax; it++ {
			a++
			xodd -= godd
			xeven -= geven
			godd *= x * (a + b - 1) / a
			geven *= x * (a + b - 0.5) / (a + 0.5)
			p *= lambda / float64(2*it)
			q *= lambda / float64(2*it+1)
			tnc += p*xodd + q*xeven
			s -= p
			if s < -1e-10 || (s <= 0 && it > 1) {
				break
			}
			if math.Abs(2*s*(xodd-godd)) < nctErrMax {
				break
			}
		}
	}

	tnc += distuv.UnitNormal.CDF(-del)
	tnc = math.Max(0, math.Min(tnc, 1))
	if negdel {
		return 1 - tnc
	}
	return tnc
}

// Survival is 1 - CDF.
func (d NoncentralT) Survival(t float64) float64 {
	return 1 - d.CDF(t)
}

// Prob uses the identity f(x) = nu/x * (F[nu+2](x*sqrt(1+2/nu)) - F[nu](x)) away
// from zero and the closed form at zero.
func (d NoncentralT) Prob(x float64) float64 {
	if d.Delta == 0 {
		return CentralT{Nu: d.Nu}.Prob(x)
	}
	if math.Abs(x) < 1e-8 {
		lg1, _ := math.Lgamma((d.Nu + 1) / 2)
		lg2, _ := math.Lgamma(d.Nu / 2)
		return math.Exp(lg1-lg2-0.5*d.Delta*d.Delta) / math.Sqrt(math.Pi*d.Nu)
	}
	shifted := NoncentralT{Nu: d.Nu + 2, Delta: d.Delta}
	f := d.Nu / x * (shifted.CDF(x*math.Sqrt(1+2/d.Nu)) - d.CDF(x))
	return math.Max(f, 0)
}

// Quantile inverts the CDF by bracketing and bisection.
func (d NoncentralT) Quantile(p float64) float64 {
	switch {
	case math.IsNaN(p) || p < 0 || p > 1:
		return math.NaN()
	case p == 0:
		return math.Inf(-1)
	case p == 1:
		return math.Inf(1)
	}

	spread := math.Max(1, math.Abs(d.Delta))
	lo, hi := d.Delta-spread, d.Delta+spread
	for i := 0; d.CDF(lo) > p && i < 200; i++ {
		lo -= spread
		spread *= 2
	}
	spread = math.Max(1, math.Abs(d.Delta))
	for i := 0; d.CDF(hi) < p && i < 200; i++ {
		hi += spread
		spread *= 2
	}

	for i := 0; i < 200; i++ {
		mid := lo + (hi-lo)/2
		if d.CDF(mid) < p {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo <= 1e-12*(1+math.Abs(mid)) {
			break
		}
	}
	return lo + (hi-lo)/2
}

// InverseSurvival returns x such that Survival(x) = p.
func (d NoncentralT) InverseSurvival(p float64) float64 {
	return d.Quantile(1 - p)
}

// Region is a rejection region: a statistic s is rejected when s < Lower or
// s > Upper. Open sides are infinite.
type Region struct {
	Lower float64
	Upper float64
}

// RejectionRegion computes the thresholds of a level-alpha test under null.
func RejectionRegion(null Distribution, alpha float64, alt Alternative) Region {
	switch alt {
	case Greater:
		return Region{Lower: math.Inf(-1), Upper: null.InverseSurvival(alpha)}
	case Less:
		return Region{Lower: null.Quantile(alpha), Upper: math.Inf(1)}
	default:
		return Region{Lower: null.Quantile(alpha / 2), Upper: null.InverseSurvival(alpha / 2)}
	}
}

// MarshalJSON encodes open sides as null.
func (r Region) MarshalJSON() ([]byte, error) {
	bound := func(v float64) any {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil
		}
		return v
	}
	return json.Marshal(map[string]any{"lower": bound(r.Lower), "upper": bound(r.Upper)})
}

// Mass integrates d over the region.
func (r Region) Mass(d Distribution) float64 {
	m := 0.0
	if !math.IsInf(r.Lower, -1) {
		m += d.CDF(r.Lower)
	}
	if !math.IsInf(r.Upper, 1) {
		m += d.Survival(r.Upper)
	}
	return m
}
