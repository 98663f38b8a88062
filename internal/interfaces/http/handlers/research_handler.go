package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rankforge/rankforge/internal/domain/keyword"
	"github.com/rankforge/rankforge/internal/domain/research"
	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
	"github.com/rankforge/rankforge/internal/infrastructure/search/milvus"
	"github.com/rankforge/rankforge/internal/intelligence/embedding"
	apperrors "github.com/rankforge/rankforge/pkg/errors"
	"github.com/rankforge/rankforge/pkg/types/common"
)

// RelatedSearcher looks up semantically related keywords in the vector
// store.
type RelatedSearcher interface {
	SearchRelated(ctx context.Context, vector []float64, topK int) ([]milvus.RelatedKeyword, error)
}

// ResearchHandler serves research run submission and keyword retrieval. A
// created run is picked up asynchronously by the worker, so submission
// returns 202 with the pending run.
type ResearchHandler struct {
	runs        research.Repository
	keywords    keyword.Repository
	embedder    embedding.Provider
	searcher    RelatedSearcher
	defaultTopK int
	logger      logging.Logger
}

// NewResearchHandler wires a ResearchHandler. searcher may be nil when no
// vector store is configured; the related endpoint then answers 503.
func NewResearchHandler(runs research.Repository, keywords keyword.Repository, embedder embedding.Provider, searcher RelatedSearcher, defaultTopK int, logger logging.Logger) *ResearchHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResearchHandler{
		runs:        runs,
		keywords:    keywords,
		embedder:    embedder,
		searcher:    searcher,
		defaultTopK: defaultTopK,
		logger:      logger,
	}
}

// ---
// DTOs
// ---

type createRunRequest struct {
	ProjectID    string   `json:"project_id"`
	Domain       string   `json:"domain"`
	Niche        string   `json:"niche"`
	Competitors  []string `json:"competitors"`
	SeedKeywords []string `json:"seed_keywords"`
}

type progressEntryResponse struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
	Indent  int       `json:"indent"`
}

type runResponse struct {
	ID           string                  `json:"id"`
	ProjectID    string                  `json:"project_id"`
	Status       string                  `json:"status"`
	Domain       string                  `json:"domain"`
	Niche        string                  `json:"niche"`
	Competitors  []string                `json:"competitors"`
	SeedKeywords []string                `json:"seed_keywords"`
	ProgressLog  []progressEntryResponse `json:"progress_log"`
	TotalFound   int                     `json:"total_found"`
	ErrorMessage *string                 `json:"error_message"`
	CreatedAt    time.Time               `json:"created_at"`
	StartedAt    *time.Time              `json:"started_at"`
	FinishedAt   *time.Time              `json:"finished_at"`
}

type keywordResponse struct {
	ID               string   `json:"id"`
	Text             string   `json:"text"`
	Volume           *int     `json:"volume"`
	Difficulty       *int     `json:"difficulty"`
	CPC              *float64 `json:"cpc"`
	Opportunity      *int     `json:"opportunity"`
	Intent           string   `json:"intent"`
	Sources          []string `json:"sources"`
	ClusterID        *int     `json:"cluster_id"`
	IsRepresentative bool     `json:"is_representative"`
	ClusterSize      int      `json:"cluster_size,omitempty"`
	ClusterSiblings  []string `json:"cluster_siblings,omitempty"`
}

type relatedKeywordResponse struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

func runToResponse(run *research.Run) runResponse {
	log := make([]progressEntryResponse, len(run.ProgressLog))
	for i, e := range run.ProgressLog {
		log[i] = progressEntryResponse{Time: e.Time, Message: e.Message, Indent: e.Indent}
	}
	return runResponse{
		ID:           run.ID.String(),
		ProjectID:    run.ProjectID.String(),
		Status:       string(run.Status),
		Domain:       run.Domain,
		Niche:        run.Niche,
		Competitors:  run.Competitors,
		SeedKeywords: run.SeedKeywords,
		ProgressLog:  log,
		TotalFound:   run.TotalFound,
		ErrorMessage: run.ErrorMessage,
		CreatedAt:    run.CreatedAt,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
	}
}

func keywordToResponse(kw *keyword.PersistedKeyword) keywordResponse {
	return keywordResponse{
		ID:               kw.ID.String(),
		Text:             kw.Text,
		Volume:           kw.Volume,
		Difficulty:       kw.Difficulty,
		CPC:              kw.CPC,
		Opportunity:      kw.Opportunity,
		Intent:           string(kw.Intent),
		Sources:          kw.Sources,
		ClusterID:        kw.ClusterID,
		IsRepresentative: kw.IsRepresentative,
		ClusterSize:      kw.ClusterSize,
		ClusterSiblings:  kw.ClusterSiblings,
	}
}

// ---
// Endpoints
// ---

// CreateRun accepts a research request and enqueues a pending run.
func (h *ResearchHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Domain = strings.TrimSpace(req.Domain)
	if req.Domain == "" {
		writeError(w, apperrors.New(apperrors.ErrCodeBadRequest, "domain is required"))
		return
	}

	projectID := common.ID(req.ProjectID)
	if projectID.IsZero() {
		projectID = common.NewID()
	}

	run := research.NewRun(projectID, req.Domain, req.Niche, req.Competitors, req.SeedKeywords)
	if err := h.runs.Create(r.Context(), run); err != nil {
		h.logger.Error("creating research run", logging.Err(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, runToResponse(run))
}

// GetRun returns one run with its full progress log.
func (h *ResearchHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "runID"))
	run, err := h.runs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runToResponse(run))
}

// ListKeywords returns a run's persisted keywords ranked by opportunity.
// view=representatives collapses clusters to their representative (plus
// singletons); view=all, the default, returns every variation.
func (h *ResearchHandler) ListKeywords(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "runID"))
	if _, err := h.runs.GetByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	view := r.URL.Query().Get("view")
	if view == "" {
		view = "all"
	}
	if view != "all" && view != "representatives" {
		writeError(w, apperrors.New(apperrors.ErrCodeBadRequest, "view must be \"all\" or \"representatives\""))
		return
	}

	kws, err := h.keywords.ListByRun(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]keywordResponse, 0, len(kws))
	for _, kw := range kws {
		if view == "representatives" && kw.ClusterID != nil && !kw.IsRepresentative {
			continue
		}
		out = append(out, keywordToResponse(kw))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":   id.String(),
		"view":     view,
		"keywords": out,
	})
}

// RelatedKeywords embeds the query string and searches the vector store for
// the nearest indexed keywords.
func (h *ResearchHandler) RelatedKeywords(w http.ResponseWriter, r *http.Request) {
	if h.searcher == nil {
		writeError(w, apperrors.New(apperrors.ErrCodeServiceUnavailable, "vector search is not configured"))
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, apperrors.New(apperrors.ErrCodeBadRequest, "query parameter q is required"))
		return
	}
	topK := h.defaultTopK
	if v := r.URL.Query().Get("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, apperrors.New(apperrors.ErrCodeBadRequest, "top_k must be an integer between 1 and 100"))
			return
		}
		topK = n
	}

	results := h.embedder.EmbedBatch(r.Context(), []string{query})
	if results[0].Degraded {
		writeError(w, apperrors.New(apperrors.ErrCodeEmbeddingFailed, "could not embed query"))
		return
	}

	related, err := h.searcher.SearchRelated(r.Context(), results[0].Vector, topK)
	if err != nil {
		h.logger.Error("related keyword search", logging.Err(err))
		writeError(w, err)
		return
	}

	out := make([]relatedKeywordResponse, len(related))
	for i, rk := range related {
		out[i] = relatedKeywordResponse{Text: rk.Text, Score: float64(rk.Score)}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":    query,
		"keywords": out,
	})
}
