// Package similarity provides vector similarity scoring for keyword
// embeddings.
package similarity

import "math"

// Cosine returns the cosine similarity of a and b clamped to [0,1].  It
// returns exactly 0.0 when either vector is nil, empty, of mismatched
// dimension, or has zero magnitude, so a degraded zero-vector embedding can
// never produce a false-positive match.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0.0
	}

	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	if sim < 0 {
		return 0.0
	}
	if sim > 1 {
		return 1.0
	}
	return sim
}
