package mcp

import (
	"encoding/json"
	"fmt"
	"math"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"sigsim/internal/simulation"
)

// textResult renders v as indented JSON followed by any non-empty charts.
func textResult(v any, charts ...string) (*sdk.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	res := &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: string(data)}},
	}
	for _, c := range charts {
		if c != "" {
			res.Content = append(res.Content, &sdk.TextContent{Text: c})
		}
	}
	return res, nil
}

// warnings flags results a reader could easily misinterpret.
func warnings(e *simulation.Engine, s *simulation.Summary) []string {
	var out []string
	if s.Iterations < 1000 {
		out = append(out, fmt.Sprintf("Only %d trials: the rejection rate has a standard error of about %.3f.",
			s.Iterations, stdErr(s.RejectionRate, s.Iterations)))
	}
	if e.Strategy() != simulation.Basic && s.RetriedTrials > 0 {
		out = append(out, fmt.Sprintf("Strategy %s re-tested %d non-significant trials; the rejection rate is inflated relative to alpha=%g.",
			s.Strategy, s.RetriedTrials, s.Alpha))
	}
	if e.Test().Paired() {
		out = append(out, "Paired samples are drawn independently, so the pairing carries no correlation.")
	}
	return out
}

func stdErr(rate float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	v := rate * (1 - rate) / float64(n)
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}
