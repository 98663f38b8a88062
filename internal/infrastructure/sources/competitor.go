package sources

import (
	"context"
	"regexp"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
)

// CompetitorSourcePrefix labels competitor-mined candidates; the full source
// tag is "competitor:<domain>".
const CompetitorSourcePrefix = "competitor:"

// headingRegex pulls h1-h3 text out of extracted article HTML.
var headingRegex = regexp.MustCompile(`(?is)<h[1-3][^>]*>(.*?)</h[1-3]>`)

var tagStripRegex = regexp.MustCompile(`<[^>]+>`)

// CompetitorMiner extracts candidate phrases from competitor home pages using
// readability extraction: page title plus section headings.
type CompetitorMiner struct {
	timeout time.Duration
	logger  logging.Logger

	// extract is swapped in tests; defaults to readability.FromURL.
	extract func(pageURL string, timeout time.Duration) (readability.Article, error)
}

// NewCompetitorMiner builds a CompetitorMiner.
func NewCompetitorMiner(timeout time.Duration, logger logging.Logger) *CompetitorMiner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CompetitorMiner{
		timeout: timeout,
		logger:  logger,
		extract: func(pageURL string, timeout time.Duration) (readability.Article, error) {
			return readability.FromURL(pageURL, timeout)
		},
	}
}

// SourceTag returns the provenance label for a competitor domain.
func SourceTag(domain string) string {
	return CompetitorSourcePrefix + domain
}

// Mine fetches one competitor domain's landing page and returns candidate
// phrases, or an empty slice on any failure.
func (m *CompetitorMiner) Mine(ctx context.Context, domain string) []string {
	_ = ctx // readability.FromURL manages its own request lifecycle

	pageURL := domain
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		pageURL = "https://" + pageURL
	}

	article, err := m.extract(pageURL, m.timeout)
	if err != nil {
		m.logger.Warn("competitor page extraction failed",
			logging.String("domain", domain), logging.Err(err))
		return nil
	}

	var phrases []string
	if title := cleanPhrase(article.Title); title != "" {
		phrases = append(phrases, splitTitle(title)...)
	}
	for _, match := range headingRegex.FindAllStringSubmatch(article.Content, -1) {
		if h := cleanPhrase(match[1]); h != "" {
			phrases = append(phrases, h)
		}
	}
	return phrases
}

// cleanPhrase strips markup and collapses whitespace.
func cleanPhrase(s string) string {
	s = tagStripRegex.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// splitTitle breaks "Product — Tagline | Brand" style titles into separate
// phrases.
func splitTitle(title string) []string {
	parts := strings.FieldsFunc(title, func(r rune) bool {
		return r == '|' || r == '—' || r == '–' || r == '-' || r == ':'
	})
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
