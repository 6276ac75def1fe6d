package trimerge

import (
	"context"
	"fmt"
	"strings"
)

// Algorithm selects the diff algorithm used to align each descendant with
// the common ancestor.
type Algorithm int

const (
	Unspecified Algorithm = iota
	Histogram
	ONP
	Myers
	Patience
)

var (
	algorithmNames = map[Algorithm]string{
		Unspecified: "unspecified",
		Histogram:   "histogram",
		ONP:         "onp",
		Myers:       "myers",
		Patience:    "patience",
	}
	algorithmValues = map[string]Algorithm{
		"histogram": Histogram,
		"onp":       ONP,
		"myers":     Myers,
		"patience":  Patience,
	}
)

func (a Algorithm) String() string {
	if n, ok := algorithmNames[a]; ok {
		return n
	}
	return "unknown"
}

// AlgorithmFromName resolves a diff algorithm by name, eg. from a config
// value or a --diff-algorithm flag.
func AlgorithmFromName(name string) (Algorithm, error) {
	if a, ok := algorithmValues[strings.ToLower(name)]; ok {
		return a, nil
	}
	return Unspecified, fmt.Errorf("unsupported diff algorithm: %s", name)
}

func diffInternal[E comparable](ctx context.Context, L1, L2 []E, a Algorithm) ([]Change, error) {
	switch a {
	case Unspecified, Histogram:
		return HistogramDiff(ctx, L1, L2)
	case ONP:
		return OnpDiff(ctx, L1, L2)
	case Myers:
		return MyersDiff(ctx, L1, L2)
	case Patience:
		return PatienceDiff(ctx, L1, L2)
	}
	return nil, fmt.Errorf("unsupported diff algorithm: %d", a)
}
