package visuals

import (
	"fmt"
	"math"
	"strings"

	"sigsim/internal/distribution"
	"sigsim/internal/simulation"
)

// maxChartPoints caps the series length; Mermaid's xychart layout starts
// overlapping labels beyond roughly 60 points.
const maxChartPoints = 40

// displayBins is the number of bars in the p-value histogram chart.
const displayBins = 20

// GeneratePValueHistogram creates a Mermaid bar chart of the p-value histogram,
// merged into 20 bars, with the count expected under a uniform distribution
// drawn as a line.
func GeneratePValueHistogram(h *simulation.Histogram, alpha float64) string {
	if h == nil || h.Bins() == 0 {
		return ""
	}

	group := int(math.Ceil(float64(h.Bins()) / displayBins))
	var labels, bars, expected []string
	maxVal := 0.0
	for start := 0; start < h.Bins(); start += group {
		end := min(start+group, h.Bins())
		count := 0
		for i := start; i < end; i++ {
			count += h.Counts[i]
		}
		lower, _ := h.Edges(start)
		_, upper := h.Edges(end - 1)

		marker := ""
		if h.BinBelow(end-1, alpha) {
			marker = "*"
		}
		labels = append(labels, fmt.Sprintf("\"%.2f%s\"", (lower+upper)/2, marker))
		bars = append(bars, fmt.Sprintf("%d", count))
		exp := h.Expected * float64(end-start)
		expected = append(expected, fmt.Sprintf("%.1f", exp))
		maxVal = math.Max(maxVal, math.Max(float64(count), exp))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"P value histogram (alpha = %g, * = rejected, %d in starred bins)\"\n", alpha, h.Below(alpha)))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Count\" 0 --> %d\n", int(math.Ceil(math.Max(1, maxVal*1.1)))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(bars, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(expected, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateDensityChart creates a Mermaid line chart of the generator densities
// on a shared x-axis. The one-sample baseline is listed in the title.
func GenerateDensityChart(plot simulation.DensityPlot) string {
	if len(plot.Curves) == 0 {
		return ""
	}

	points := make([]distribution.Points, len(plot.Curves))
	names := make([]string, len(plot.Curves))
	for i, c := range plot.Curves {
		points[i] = c.Points
		names[i] = c.Label
	}

	title := "Generator probability distribution: " + strings.Join(names, " | ")
	if label := plot.BaselineLabel(); label != "" {
		title += " | " + label
	}
	return lineChart(title, "Density", points)
}

// GeneratePowerChart creates a Mermaid line chart of the null and alternative
// sampling densities with the rejection bounds in the title.
func GeneratePowerChart(c simulation.PowerCurves, power float64) string {
	if len(c.Null.X) == 0 {
		return ""
	}
	title := fmt.Sprintf("Sampling distributions: null | alternative (power %.1f%%, reject %s)",
		power*100, describeRegion(c.Region.Lower, c.Region.Upper))
	return lineChart(title, "Density", []distribution.Points{c.Null, c.Alternative})
}

func describeRegion(lower, upper float64) string {
	var parts []string
	if !math.IsInf(lower, -1) {
		parts = append(parts, fmt.Sprintf("t < %.3f", lower))
	}
	if !math.IsInf(upper, 1) {
		parts = append(parts, fmt.Sprintf("t > %.3f", upper))
	}
	return strings.Join(parts, " or ")
}

// lineChart resamples every series onto a common grid spanning all of them.
func lineChart(title, yLabel string, series []distribution.Points) string {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		if len(s.X) == 0 {
			continue
		}
		lo = math.Min(lo, s.X[0])
		hi = math.Max(hi, s.X[len(s.X)-1])
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return ""
	}

	grid := distribution.Linspace(lo, hi, maxChartPoints)
	labels := make([]string, len(grid))
	for i, x := range grid {
		labels[i] = fmt.Sprintf("\"%.2f\"", x)
	}

	maxY := 0.0
	lines := make([][]string, len(series))
	for si, s := range series {
		for _, x := range grid {
			y := interpolate(s, x)
			maxY = math.Max(maxY, y)
			lines[si] = append(lines[si], fmt.Sprintf("%.4f", y))
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"%s\"\n", strings.ReplaceAll(title, "\"", "'")))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"%s\" 0 --> %.3f\n", yLabel, math.Max(maxY*1.1, 1e-3)))
	for _, l := range lines {
		sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(l, ", ")))
	}
	sb.WriteString("```")
	return sb.String()
}

// interpolate evaluates s at x linearly; outside the sampled range it is 0.
func interpolate(s distribution.Points, x float64) float64 {
	n := len(s.X)
	if n == 0 || x < s.X[0] || x > s.X[n-1] {
		return 0
	}
	if n == 1 {
		return s.Y[0]
	}
	// s.X is evenly spaced.
	step := (s.X[n-1] - s.X[0]) / float64(n-1)
	pos := (x - s.X[0]) / step
	i := int(pos)
	if i >= n-1 {
		return s.Y[n-1]
	}
	frac := pos - float64(i)
	return s.Y[i]*(1-frac) + s.Y[i+1]*frac
}
