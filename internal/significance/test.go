// Package significance runs the supported statistical significance tests and
// exposes the sampling distributions used for power analysis.
package significance

import (
	"errors"
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"

	"sigsim/internal/simerr"
)

// DefaultAlpha is the significance level used when none is given.
const DefaultAlpha = 0.05

// ErrUndefinedPValue is returned when a test yields a NaN p-value.
var ErrUndefinedPValue = errors.New("p-value is undefined")

// Spec describes a test as selected by a user.
type Spec struct {
	Family      string
	Method      string
	Alternative Alternative
	Alpha       float64
	// PopMean is the baseline value of the one-sample t-test.
	PopMean float64
}

// Result is the outcome of a single test run.
type Result struct {
	PValue    float64 `json:"p_value"`
	Statistic float64 `json:"statistic"`
	// DoF is the degrees of freedom of t-distributed statistics, 0 otherwise.
	DoF float64 `json:"dof"`
}

// Test is an immutable, configured significance test.
type Test struct {
	kind    Kind
	alt     Alternative
	alpha   float64
	popMean float64
}

// New validates spec and builds the test.
func New(spec Spec) (*Test, error) {
	kind, err := Resolve(spec.Family, spec.Method)
	if err != nil {
		return nil, err
	}
	return NewKind(kind, spec.Alternative, spec.Alpha, spec.PopMean)
}

// NewKind builds a test of a known kind.
func NewKind(kind Kind, alt Alternative, alpha, popMean float64) (*Test, error) {
	if kind.Family() == 0 {
		return nil, simerr.Config("method", "unknown test kind %d", int(kind))
	}
	if alt < TwoSided || alt > Less {
		return nil, simerr.Config("alternative", "unknown alternative %d", int(alt))
	}
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return nil, simerr.Config("alpha", "must be in (0, 1), got %g", alpha)
	}
	if math.IsNaN(popMean) || math.IsInf(popMean, 0) {
		return nil, simerr.Config("mu", "must be finite, got %g", popMean)
	}
	return &Test{kind: kind, alt: alt, alpha: alpha, popMean: popMean}, nil
}

func (t *Test) Kind() Kind                 { return t.kind }
func (t *Test) Family() Family             { return t.kind.Family() }
func (t *Test) Alternative() Alternative   { return t.alt }
func (t *Test) Alpha() float64             { return t.alpha }
func (t *Test) PopMean() float64           { return t.popMean }
func (t *Test) Significant(p float64) bool { return p < t.alpha }

// TwoSample reports whether the test consumes a Y sample.
func (t *Test) TwoSample() bool { return t.kind != OneSampleT }

// Paired reports whether X and Y observations are matched pairwise.
func (t *Test) Paired() bool { return t.kind == PairedT || t.kind == SignedRank }

// HasSamplingDistribution reports whether the test statistic follows a
// t-distribution usable for theoretical power.
func (t *Test) HasSamplingDistribution() bool { return t.kind.Family() == TTest }

// Describe returns a one-line description such as "Welch's t-test, two-sided, alpha=5.00%".
func (t *Test) Describe() string {
	name := t.kind.String()
	if t.kind == OneSampleT {
		name = fmt.Sprintf("%s (baseline %g)", name, t.popMean)
	}
	return fmt.Sprintf("%s, %s, alpha=%.2f%%", name, t.alt, t.alpha*100)
}

// Run performs the test on x and, for two-sample tests, y. Errors raised by the
// statistics library are returned unchanged.
func (t *Test) Run(x, y []float64) (Result, error) {
	loc := t.alt.location()

	var res Result
	switch t.kind {
	case Welch:
		r, err := stats.TwoSampleWelchTTest(&stats.Sample{Xs: x}, &stats.Sample{Xs: y}, loc)
		if err != nil {
			return Result{}, err
		}
		res = Result{PValue: r.P, Statistic: r.T, DoF: r.DoF}
	case Student:
		r, err := stats.TwoSampleTTest(&stats.Sample{Xs: x}, &stats.Sample{Xs: y}, loc)
		if err != nil {
			return Result{}, err
		}
		res = Result{PValue: r.P, Statistic: r.T, DoF: r.DoF}
	case PairedT:
		r, err := stats.PairedTTest(x, y, 0, loc)
		if err != nil {
			return Result{}, err
		}
		res = Result{PValue: r.P, Statistic: r.T, DoF: r.DoF}
	case OneSampleT:
		r, err := stats.OneSampleTTest(&stats.Sample{Xs: x}, t.popMean, loc)
		if err != nil {
			return Result{}, err
		}
		res = Result{PValue: r.P, Statistic: r.T, DoF: r.DoF}
	case RankSum:
		r, err := stats.MannWhitneyUTest(x, y, loc)
		if err != nil {
			return Result{}, err
		}
		res = Result{PValue: r.P, Statistic: r.U}
	case SignedRank:
		r, err := signedRankTest(x, y, t.alt)
		if err != nil {
			return Result{}, err
		}
		res = r
	case BrunnerMunzelT:
		r, err := brunnerMunzelTest(x, y, t.alt)
		if err != nil {
			return Result{}, err
		}
		res = r
	default:
		return Result{}, fmt.Errorf("unsupported test kind %d", int(t.kind))
	}

	if math.IsNaN(res.PValue) {
		return Result{}, ErrUndefinedPValue
	}
	return res, nil
}
