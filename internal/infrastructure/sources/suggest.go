package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
)

// SourceSERP names the search-suggest source in candidate provenance.
const SourceSERP = "serp"

// SuggestSource pulls search-adjacent phrases from a DuckDuckGo-style
// autocomplete endpoint, which returns [{"phrase": "..."}] payloads.
type SuggestSource struct {
	endpoint  string
	userAgent string
	client    *http.Client
	logger    logging.Logger
}

// NewSuggestSource builds a SuggestSource.
func NewSuggestSource(endpoint, userAgent string, timeout time.Duration, logger logging.Logger) *SuggestSource {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SuggestSource{
		endpoint:  endpoint,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// Name returns the provenance label for this source.
func (s *SuggestSource) Name() string { return SourceSERP }

// Fetch returns phrases for a seed, or an empty slice on any failure.
func (s *SuggestSource) Fetch(ctx context.Context, seed string) []string {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		s.logger.Warn("suggest endpoint invalid", logging.Err(err))
		return nil
	}
	q := u.Query()
	q.Set("q", seed)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("suggest fetch failed",
			logging.String("seed", seed), logging.Err(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("suggest returned non-200",
			logging.String("seed", seed), logging.Int("status", resp.StatusCode))
		return nil
	}

	var payload []struct {
		Phrase string `json:"phrase"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		s.logger.Warn("suggest response unparsable",
			logging.String("seed", seed), logging.Err(err))
		return nil
	}

	phrases := make([]string, 0, len(payload))
	for _, item := range payload {
		if item.Phrase != "" {
			phrases = append(phrases, item.Phrase)
		}
	}
	return phrases
}
