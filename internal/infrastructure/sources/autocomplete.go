// Package sources implements the external keyword discovery collaborators:
// autocomplete suggestions, search-adjacent phrases, and competitor page
// mining.  Every source fails soft: on any transport or parse error it
// contributes zero candidates and the pipeline continues.
package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
)

// SourceAutocomplete names the autocomplete source in candidate provenance.
const SourceAutocomplete = "autocomplete"

// AutocompleteSource pulls query suggestions from a Google-style suggest
// endpoint.
type AutocompleteSource struct {
	endpoint  string
	userAgent string
	client    *http.Client
	logger    logging.Logger
}

// NewAutocompleteSource builds an AutocompleteSource.
func NewAutocompleteSource(endpoint, userAgent string, timeout time.Duration, logger logging.Logger) *AutocompleteSource {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AutocompleteSource{
		endpoint:  endpoint,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// Name returns the provenance label for this source.
func (s *AutocompleteSource) Name() string { return SourceAutocomplete }

// Fetch returns suggestions for a seed, or an empty slice on any failure.
func (s *AutocompleteSource) Fetch(ctx context.Context, seed string) []string {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		s.logger.Warn("autocomplete endpoint invalid", logging.Err(err))
		return nil
	}
	q := u.Query()
	q.Set("client", "firefox")
	q.Set("q", seed)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("autocomplete fetch failed",
			logging.String("seed", seed), logging.Err(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("autocomplete returned non-200",
			logging.String("seed", seed), logging.Int("status", resp.StatusCode))
		return nil
	}

	// Suggest responses look like ["query", ["suggestion", ...], ...].
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || len(payload) < 2 {
		s.logger.Warn("autocomplete response unparsable",
			logging.String("seed", seed), logging.Err(err))
		return nil
	}

	var suggestions []string
	if err := json.Unmarshal(payload[1], &suggestions); err != nil {
		s.logger.Warn("autocomplete suggestions unparsable",
			logging.String("seed", seed), logging.Err(err))
		return nil
	}
	return suggestions
}
