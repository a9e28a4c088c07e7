package distribution

import (
	"sort"
	"strings"

	"sigsim/internal/simerr"
)

// Kind enumerates the supported distributions.
type Kind int

const (
	Normal Kind = iota + 1
	LogNormal
	Gamma
	Uniform
)

var kindNames = map[Kind]string{
	Normal:    "norm",
	LogNormal: "lognorm",
	Gamma:     "gamma",
	Uniform:   "uniform",
}

// Kinds lists every supported kind in declaration order.
func Kinds() []Kind {
	return []Kind{Normal, LogNormal, Gamma, Uniform}
}

// KindNames lists the names accepted by ParseKind.
func KindNames() []string {
	names := make([]string, 0, len(kindNames))
	for _, k := range Kinds() {
		names = append(names, k.String())
	}
	return names
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind resolves a distribution name such as "norm".
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return k, nil
		}
	}
	return 0, simerr.Config("distribution", "unknown distribution %q (valid: %s)", name, strings.Join(KindNames(), ", "))
}

func (k Kind) label() string {
	switch k {
	case Normal:
		return "Norm"
	case LogNormal:
		return "LogNorm"
	case Gamma:
		return "Gamma"
	case Uniform:
		return "Uni"
	}
	return "Unknown"
}

// paramNames returns the two parameter names of k in constructor order.
func (k Kind) paramNames() [2]string {
	switch k {
	case Normal, LogNormal:
		return [2]string{"mu", "sigma"}
	case Gamma:
		return [2]string{"alpha", "beta"}
	case Uniform:
		return [2]string{"a", "b"}
	}
	return [2]string{}
}

func (k Kind) defaults() [2]float64 {
	switch k {
	case Normal, LogNormal:
		return [2]float64{0, 1}
	case Gamma:
		return [2]float64{1, 1}
	case Uniform:
		return [2]float64{0, 1}
	}
	return [2]float64{}
}

// ParamNames returns the parameter names accepted by Build for k.
func (k Kind) ParamNames() []string {
	names := k.paramNames()
	return names[:]
}

// Defaults returns the default parameter values for k.
func (k Kind) Defaults() map[string]float64 {
	names, vals := k.paramNames(), k.defaults()
	return map[string]float64{names[0]: vals[0], names[1]: vals[1]}
}

// Build constructs a generator from a distribution name and named parameters.
// Missing parameters take their defaults; unknown names are rejected.
func Build(name string, sampleSize int, params map[string]float64) (*Generator, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	if sampleSize == 0 {
		sampleSize = DefaultSampleSize
	}

	names, vals := kind.paramNames(), kind.defaults()
	var unknown []string
	for key, v := range params {
		switch key {
		case names[0]:
			vals[0] = v
		case names[1]:
			vals[1] = v
		default:
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, simerr.Config("params", "unknown parameter(s) %s for %s (valid: %s)",
			strings.Join(unknown, ", "), kind, strings.Join(names[:], ", "))
	}

	switch kind {
	case Normal:
		return NewNormal(sampleSize, vals[0], vals[1])
	case LogNormal:
		return NewLogNormal(sampleSize, vals[0], vals[1])
	case Gamma:
		return NewGamma(sampleSize, vals[0], vals[1])
	case Uniform:
		return NewUniform(sampleSize, vals[0], vals[1])
	}
	return nil, simerr.Config("distribution", "unsupported distribution %s", kind)
}
