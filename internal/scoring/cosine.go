// Package scoring implements the feature extractors, the weighted
// aggregation, and the rationale builder of the fit engine.
package scoring

import (
	"fmt"
	"math"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// Cosine returns the cosine similarity of two equal-length vectors.
// Shape mismatches and non-finite values indicate an upstream bug and
// surface as validation errors; zero-magnitude inputs return 0.0.
// The result is clamped to [-1, 1].
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: cosine requires matching shapes, got %d and %d elements", domain.ErrVectorInvalid, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		if !isFinite(a[i]) || !isFinite(b[i]) {
			return 0, fmt.Errorf("%w: cosine received non-finite values", domain.ErrVectorInvalid)
		}
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	v := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if v > 1 {
		return 1, nil
	}
	if v < -1 {
		return -1, nil
	}
	return v, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
