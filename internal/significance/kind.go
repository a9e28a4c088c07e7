package significance

import (
	"strings"

	"github.com/aclements/go-moremath/stats"

	"sigsim/internal/simerr"
)

// Family groups related tests under the names exposed to users.
type Family int

const (
	TTest Family = iota + 1
	Wilcoxon
	BrunnerMunzel
)

// Kind is the concrete test a Test runs.
type Kind int

const (
	Welch Kind = iota + 1
	Student
	PairedT
	OneSampleT
	RankSum
	SignedRank
	BrunnerMunzelT
)

type methodEntry struct {
	name string
	kind Kind
}

var families = []struct {
	family  Family
	name    string
	methods []methodEntry
}{
	{TTest, "t_test", []methodEntry{
		{"welch", Welch}, {"student", Student}, {"paired", PairedT}, {"one-sample", OneSampleT},
	}},
	{Wilcoxon, "wilcoxon_test", []methodEntry{
		{"normal", RankSum}, {"paired", SignedRank},
	}},
	{BrunnerMunzel, "brunner_munzel_test", []methodEntry{
		{"normal", BrunnerMunzelT},
	}},
}

func (f Family) String() string {
	for _, e := range families {
		if e.family == f {
			return e.name
		}
	}
	return "unknown"
}

// FamilyNames lists the accepted family names.
func FamilyNames() []string {
	names := make([]string, len(families))
	for i, e := range families {
		names[i] = e.name
	}
	return names
}

// Methods lists the accepted method names of a family.
func (f Family) Methods() []string {
	for _, e := range families {
		if e.family == f {
			names := make([]string, len(e.methods))
			for i, m := range e.methods {
				names[i] = m.name
			}
			return names
		}
	}
	return nil
}

// ParseFamily resolves a family name such as "t_test".
func ParseFamily(name string) (Family, error) {
	for _, e := range families {
		if e.name == strings.TrimSpace(name) {
			return e.family, nil
		}
	}
	return 0, simerr.Config("family", "unknown test %q (valid: %s)", name, strings.Join(FamilyNames(), ", "))
}

// Resolve maps a family and method name to the test kind. Brunner-Munzel has a
// single method, so an empty method selects it.
func Resolve(family, method string) (Kind, error) {
	f, err := ParseFamily(family)
	if err != nil {
		return 0, err
	}
	method = strings.TrimSpace(method)
	for _, e := range families {
		if e.family != f {
			continue
		}
		if method == "" && len(e.methods) == 1 {
			return e.methods[0].kind, nil
		}
		for _, m := range e.methods {
			if m.name == method {
				return m.kind, nil
			}
		}
	}
	return 0, simerr.Config("method", "%s method must be one of [%s], got %q",
		f, strings.Join(f.Methods(), ", "), method)
}

// Family returns the family k belongs to.
func (k Kind) Family() Family {
	switch k {
	case Welch, Student, PairedT, OneSampleT:
		return TTest
	case RankSum, SignedRank:
		return Wilcoxon
	case BrunnerMunzelT:
		return BrunnerMunzel
	}
	return 0
}

// Method returns the method name of k within its family.
func (k Kind) Method() string {
	for _, e := range families {
		for _, m := range e.methods {
			if m.kind == k {
				return m.name
			}
		}
	}
	return ""
}

func (k Kind) String() string {
	switch k {
	case Welch:
		return "Welch's t-test"
	case Student:
		return "Student's t-test"
	case PairedT:
		return "paired t-test"
	case OneSampleT:
		return "one-sample t-test"
	case RankSum:
		return "Mann-Whitney U test"
	case SignedRank:
		return "Wilcoxon signed-rank test"
	case BrunnerMunzelT:
		return "Brunner-Munzel test"
	}
	return "unknown test"
}

// Alternative is the direction of the alternative hypothesis.
type Alternative int

const (
	TwoSided Alternative = iota
	Greater
	Less
)

func (a Alternative) String() string {
	switch a {
	case Greater:
		return "greater"
	case Less:
		return "less"
	default:
		return "two-sided"
	}
}

// ParseAlternative resolves "two-sided", "greater" or "less". Empty means two-sided.
func ParseAlternative(name string) (Alternative, error) {
	switch strings.TrimSpace(name) {
	case "", "two-sided":
		return TwoSided, nil
	case "greater":
		return Greater, nil
	case "less":
		return Less, nil
	}
	return 0, simerr.Config("alternative", "must be one of [two-sided, greater, less], got %q", name)
}

func (a Alternative) location() stats.LocationHypothesis {
	switch a {
	case Greater:
		return stats.LocationGreater
	case Less:
		return stats.LocationLess
	default:
		return stats.LocationDiffers
	}
}
