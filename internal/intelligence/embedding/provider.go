// Package embedding turns keyword text into fixed-length vectors.  Failures
// degrade to zero-vectors instead of errors so a flaky provider can never
// abort a research run; the Degraded flag tells callers and metrics that it
// happened.
package embedding

import "context"

// MaxTextLen is the character cap applied before sending text to a provider.
const MaxTextLen = 8000

// Result is one embedding outcome.  A degraded result carries a zero-vector
// of the configured dimensionality plus the reason the provider fell back.
type Result struct {
	Vector   []float64
	Degraded bool
	Reason   string
}

// Provider produces one Result per input text, order preserved.  The returned
// slice always has len(texts) entries; implementations never return an error,
// they degrade.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) []Result
	// Dimension is the vector length of both real and degraded results.
	Dimension() int
}

// Truncate caps text at MaxTextLen characters.
func Truncate(text string) string {
	if len(text) > MaxTextLen {
		return text[:MaxTextLen]
	}
	return text
}

// DegradedBatch builds a full batch of zero-vector results with one shared
// reason.
func DegradedBatch(n, dim int, reason string) []Result {
	out := make([]Result, n)
	for i := range out {
		out[i] = Result{Vector: make([]float64, dim), Degraded: true, Reason: reason}
	}
	return out
}
