package commands

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"

	"sigsim/internal/simerr"
)

// parseParams converts a --params style map such as mu=0,sigma=2.
func parseParams(flag string, raw map[string]string) (map[string]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(raw))
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw[k]), 64)
		if err != nil {
			return nil, simerr.Config(flag, "parameter %s: %q is not a number", k, raw[k])
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
