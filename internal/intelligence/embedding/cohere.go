package embedding

import (
	"context"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
)

// CohereProvider embeds keyword text through the Cohere Embed v2 API.
type CohereProvider struct {
	client     *cohereclient.Client
	model      string
	dim        int
	batchLimit int
	logger     logging.Logger
}

// CohereOptions configures a CohereProvider.
type CohereOptions struct {
	APIKey     string
	Model      string
	Dimension  int
	BatchLimit int
	Timeout    time.Duration
	Logger     logging.Logger
}

// NewCohereProvider builds a CohereProvider.
func NewCohereProvider(opts CohereOptions) *CohereProvider {
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = 2000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	client := cohereclient.NewClient(
		cohereclient.WithToken(opts.APIKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &CohereProvider{
		client:     client,
		model:      opts.Model,
		dim:        opts.Dimension,
		batchLimit: opts.BatchLimit,
		logger:     opts.Logger,
	}
}

// Dimension returns the configured vector length.
func (p *CohereProvider) Dimension() int { return p.dim }

// EmbedBatch embeds texts in provider-limit sized sub-batches and
// concatenates the results. Any sub-batch failure degrades that sub-batch to
// zero-vectors; the rest of the batch is unaffected.
func (p *CohereProvider) EmbedBatch(ctx context.Context, texts []string) []Result {
	results := make([]Result, 0, len(texts))
	for start := 0; start < len(texts); start += p.batchLimit {
		end := start + p.batchLimit
		if end > len(texts) {
			end = len(texts)
		}
		results = append(results, p.embedChunk(ctx, texts[start:end])...)
	}
	return results
}

func (p *CohereProvider) embedChunk(ctx context.Context, texts []string) []Result {
	if len(texts) == 0 {
		return nil
	}

	truncated := make([]string, len(texts))
	for i, t := range texts {
		truncated[i] = Truncate(t)
	}

	resp, err := p.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Texts:          truncated,
		Model:          p.model,
		InputType:      cohere.EmbedInputTypeSearchDocument,
		EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
	})
	if err != nil {
		p.logger.Warn("embedding request failed, degrading to zero-vectors",
			logging.Int("batch_size", len(texts)),
			logging.Err(err))
		return DegradedBatch(len(texts), p.dim, err.Error())
	}
	if resp == nil || resp.Embeddings == nil || resp.Embeddings.Float == nil {
		p.logger.Warn("embedding response carried no float vectors",
			logging.Int("batch_size", len(texts)))
		return DegradedBatch(len(texts), p.dim, "empty embedding response")
	}

	floats := resp.Embeddings.Float
	if len(floats) != len(texts) {
		p.logger.Warn("embedding count mismatch, degrading to zero-vectors",
			logging.Int("want", len(texts)),
			logging.Int("got", len(floats)))
		return DegradedBatch(len(texts), p.dim, "embedding count mismatch")
	}

	results := make([]Result, len(floats))
	for i, vec := range floats {
		v := make([]float64, len(vec))
		copy(v, vec)
		results[i] = Result{Vector: v}
	}
	return results
}
