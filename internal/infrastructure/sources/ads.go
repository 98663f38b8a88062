package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rankforge/rankforge/internal/domain/keyword"
	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/rankforge/rankforge/pkg/errors"
)

// AdsClient queries an external ads-metrics endpoint for real keyword data.
// Unlike the suggestion sources it returns errors: the estimator decides
// whether to fall back to heuristics.
type AdsClient struct {
	endpoint  string
	userAgent string
	client    *http.Client
	logger    logging.Logger
}

// NewAdsClient builds an AdsClient for a provider exposing
// GET <endpoint>?keyword=<text>.
func NewAdsClient(endpoint, userAgent string, timeout time.Duration, logger logging.Logger) *AdsClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdsClient{
		endpoint:  endpoint,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type adsResponse struct {
	Volume     *int     `json:"volume"`
	Difficulty *int     `json:"difficulty"`
	CPC        *float64 `json:"cpc"`
}

// Lookup fetches metrics for one keyword. A 404 or a body without volume
// data means the provider has nothing for this keyword and yields (nil, nil).
func (c *AdsClient) Lookup(ctx context.Context, text string) (*keyword.AdsMetrics, error) {
	reqURL := fmt.Sprintf("%s?keyword=%s", c.endpoint, url.QueryEscape(text))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDataSourceUnavailable, "building ads request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDataSourceUnavailable, "ads provider unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.ErrCodeDataSourceUnavailable,
			fmt.Sprintf("ads provider returned status %d", resp.StatusCode))
	}

	var body adsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDataSourceParseError, "decoding ads response")
	}
	if body.Volume == nil || body.Difficulty == nil || body.CPC == nil {
		return nil, nil
	}
	return &keyword.AdsMetrics{
		Volume:     *body.Volume,
		Difficulty: *body.Difficulty,
		CPC:        *body.CPC,
	}, nil
}
