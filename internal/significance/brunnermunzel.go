package significance

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// brunnerMunzelTest compares x and y without assuming equal variances or
// shapes. The statistic is positive when y tends to rank above x and follows a
// t-distribution with Satterthwaite-type degrees of freedom.
func brunnerMunzelTest(x, y []float64, alt Alternative) (Result, error) {
	nx, ny := len(x), len(y)
	if nx < 2 || ny < 2 {
		return Result{}, stats.ErrSampleSize
	}

	combined := make([]float64, 0, nx+ny)
	combined = append(combined, x...)
	combined = append(combined, y...)
	rc, _ := rankAverage(combined)
	rcx, rcy := rc[:nx], rc[nx:]
	meanX, meanY := stat.Mean(rcx, nil), stat.Mean(rcy, nil)

	rx, _ := rankAverage(x)
	ry, _ := rankAverage(y)

	fx, fy := float64(nx), float64(ny)
	sx := placementVariance(rcx, rx, meanX, fx)
	sy := placementVariance(rcy, ry, meanY, fy)

	pooled := fx*sx + fy*sy
	if pooled == 0 {
		// Complete separation: the statistic and its degrees of freedom are 0/0.
		return Result{}, stats.ErrZeroVariance
	}

	w := fx * fy * (meanY - meanX) / ((fx + fy) * math.Sqrt(pooled))
	df := pooled * pooled / ((fx*sx)*(fx*sx)/(fx-1) + (fy*sy)*(fy*sy)/(fy-1))

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	var p float64
	switch alt {
	case Greater:
		p = t.Survival(-w)
	case Less:
		p = t.CDF(-w)
	default:
		p = 2 * math.Min(t.CDF(-w), t.Survival(-w))
	}

	return Result{PValue: math.Min(p, 1), Statistic: w, DoF: df}, nil
}

// placementVariance is the Brunner-Munzel variance estimate of one group's
// placements (combined rank minus within-group rank).
func placementVariance(combined, within []float64, meanCombined, n float64) float64 {
	centre := meanCombined - (n+1)/2
	sum := 0.0
	for i := range combined {
		d := combined[i] - within[i] - centre
		sum += d * d
	}
	return sum / (n - 1)
}
