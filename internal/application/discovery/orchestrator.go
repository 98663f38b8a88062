// Package discovery orchestrates keyword research runs: seed generation,
// multi-source expansion, relevance filtering, competitor mining, metric
// scoring, ranked persistence and cluster enrichment.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rankforge/rankforge/internal/config"
	"github.com/rankforge/rankforge/internal/domain/cluster"
	"github.com/rankforge/rankforge/internal/domain/keyword"
	"github.com/rankforge/rankforge/internal/domain/project"
	"github.com/rankforge/rankforge/internal/domain/research"
	"github.com/rankforge/rankforge/internal/infrastructure/messaging/kafka"
	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/prometheus"
	"github.com/rankforge/rankforge/internal/intelligence/embedding"
	"github.com/rankforge/rankforge/internal/intelligence/relevance"
	"github.com/rankforge/rankforge/internal/intelligence/similarity"
	apperrors "github.com/rankforge/rankforge/pkg/errors"
	"github.com/rankforge/rankforge/pkg/types/common"
)

// sourceSeed tags candidates that entered the pool as seed keywords.
const sourceSeed = "seed"

// failUpdateTimeout bounds the terminal-state write on the fail path, which
// runs on a fresh context because the run context may already be expired.
const failUpdateTimeout = 10 * time.Second

// ---
// Collaborator ports
// ---

// SeedGenerator produces seed keywords for a domain context when the caller
// supplied none. A failure here is fatal: the pipeline has nothing to expand.
type SeedGenerator interface {
	Generate(ctx context.Context, domainCtx project.DomainContext) ([]string, error)
}

// ExpansionSource pulls suggestion phrases for one seed. Implementations
// soft-fail: transport or parse errors surface as an empty slice, never as
// an error.
type ExpansionSource interface {
	Name() string
	Fetch(ctx context.Context, seed string) []string
}

// CompetitorSource mines candidate phrases from a competitor domain. Page
// fetch failures are soft (empty slice, nil error); a non-nil error means
// something unexpected happened and aborts the run.
type CompetitorSource interface {
	Mine(ctx context.Context, domain string) ([]string, error)
}

// CompetitorFunc adapts a plain function to the CompetitorSource port.
type CompetitorFunc func(ctx context.Context, domain string) ([]string, error)

func (f CompetitorFunc) Mine(ctx context.Context, domain string) ([]string, error) {
	return f(ctx, domain)
}

// RelevanceClassifier tiers every candidate against the domain profile. It
// never drops entries: failed chunks come back as degraded medium.
type RelevanceClassifier interface {
	ClassifyBatch(ctx context.Context, profileText string, candidates []string) map[string]relevance.Classification
}

// RelatedIndexer pushes persisted keyword vectors into the vector store for
// the related-keywords lookup. Optional; indexing failures are soft.
type RelatedIndexer interface {
	IndexKeywords(ctx context.Context, runID common.ID, texts []string, vectors [][]float64) error
}

// ---
// Orchestrator
// ---

// Options carries every collaborator the Orchestrator needs. Events, Indexer
// and Logger are optional.
type Options struct {
	Config     config.ResearchConfig
	Runs       research.Repository
	Keywords   keyword.Repository
	Seeds      SeedGenerator
	Sources    []ExpansionSource
	Competitor CompetitorSource
	Filter     RelevanceClassifier
	Embedder   embedding.Provider
	Estimator  *keyword.Estimator
	Indexer    RelatedIndexer
	Events     kafka.Publisher
	Metrics    *prometheus.Metrics
	Logger     logging.Logger
}

// Orchestrator drives one research run through its staged pipeline. Stages
// are strictly sequential; distinct runs may execute concurrently because
// they share no mutable state beyond the durable store.
type Orchestrator struct {
	cfg        config.ResearchConfig
	runs       research.Repository
	keywords   keyword.Repository
	seeds      SeedGenerator
	sources    []ExpansionSource
	competitor CompetitorSource
	filter     RelevanceClassifier
	scorer     *similarity.Engine
	estimator  *keyword.Estimator
	indexer    RelatedIndexer
	events     kafka.Publisher
	metrics    *prometheus.Metrics
	logger     logging.Logger
}

// NewOrchestrator wires an Orchestrator from Options.
func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Events == nil {
		opts.Events = kafka.NopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &Orchestrator{
		cfg:        opts.Config,
		runs:       opts.Runs,
		keywords:   opts.Keywords,
		seeds:      opts.Seeds,
		sources:    opts.Sources,
		competitor: opts.Competitor,
		filter:     opts.Filter,
		scorer:     similarity.NewEngine(opts.Embedder),
		estimator:  opts.Estimator,
		indexer:    opts.Indexer,
		events:     opts.Events,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
}

// Execute drives a claimed run to a terminal state. The run always ends
// completed or failed: pipeline errors, panics and timeouts all mark it
// failed with the message persisted, never leaving it in processing.
func (o *Orchestrator) Execute(ctx context.Context, run *research.Run, domainCtx project.DomainContext) {
	runCtx, cancel := context.WithTimeout(ctx, o.cfg.RunTimeout)
	defer cancel()

	o.metrics.RunsStarted.Inc()
	o.publishEvent(runCtx, kafka.EventRunStarted, run)
	started := time.Now()
	logger := o.logger.With(logging.String("run_id", run.ID.String()))

	err := o.executeStages(runCtx, run, domainCtx)
	o.metrics.RunDuration.Observe(time.Since(started).Seconds())

	if err == nil {
		o.metrics.RunsCompleted.Inc()
		o.publishEvent(context.Background(), kafka.EventRunCompleted, run)
		logger.Info("research run completed",
			logging.Int("total_found", run.TotalFound),
			logging.Duration("elapsed", time.Since(started)))
		return
	}

	message := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		message = fmt.Sprintf("run timed out after %s", o.cfg.RunTimeout)
	}
	o.failRun(run, message)
	o.metrics.RunsFailed.Inc()
	o.publishEvent(context.Background(), kafka.EventRunFailed, run)
	logger.Error("research run failed", logging.Err(err))
}

// executeStages runs the pipeline. Panics are converted into errors so the
// caller's terminal-state handling always fires.
func (o *Orchestrator) executeStages(ctx context.Context, run *research.Run, domainCtx project.DomainContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.New(apperrors.ErrCodeRunPipelineFailed, fmt.Sprintf("pipeline panic: %v", r))
		}
	}()

	if run.Status == research.StatusPending {
		if err := run.Start(); err != nil {
			return err
		}
	}
	if run.Status != research.StatusProcessing {
		return apperrors.New(apperrors.ErrCodeRunInvalidTransition,
			fmt.Sprintf("cannot execute run in state %q", run.Status))
	}
	o.checkpoint(ctx, run)

	pool := keyword.NewPool()

	seeds, err := o.seedStage(ctx, run, domainCtx, pool)
	if err != nil {
		return err
	}
	if err := o.expansionStage(ctx, run, seeds, pool); err != nil {
		return err
	}
	o.relevanceStage(ctx, run, domainCtx, pool)
	if err := o.competitorStage(ctx, run, domainCtx, pool); err != nil {
		return err
	}
	vectors := o.scoringStage(ctx, run, domainCtx, pool)

	totalFound, rows, err := o.persistStage(ctx, run, pool)
	if err != nil {
		return err
	}
	if err := o.clusterStage(ctx, run, rows, vectors); err != nil {
		return err
	}

	if err := run.Complete(totalFound); err != nil {
		return err
	}
	return o.runs.Update(ctx, run)
}

// ---
// Stages
// ---

func (o *Orchestrator) seedStage(ctx context.Context, run *research.Run, domainCtx project.DomainContext, pool *keyword.Pool) ([]string, error) {
	defer o.observeStage("seed_generation", time.Now())

	seeds := run.SeedKeywords
	if len(seeds) == 0 {
		run.Log(0, "Generating seed keywords for %s", domainCtx.Domain())
		generated, err := o.seeds.Generate(ctx, domainCtx)
		if err != nil {
			return nil, err
		}
		seeds = generated
		run.SeedKeywords = generated
		run.Log(1, "Generated %d seeds", len(generated))
	} else {
		run.Log(0, "Using %d supplied seed keywords", len(seeds))
	}

	for _, s := range seeds {
		pool.Add(s, sourceSeed)
	}
	o.checkpoint(ctx, run)
	return seeds, nil
}

func (o *Orchestrator) expansionStage(ctx context.Context, run *research.Run, seeds []string, pool *keyword.Pool) error {
	defer o.observeStage("expansion", time.Now())

	run.Log(0, "Expanding %d seeds across %d sources", len(seeds), len(o.sources))
	for i, seed := range seeds {
		for _, src := range o.sources {
			phrases := src.Fetch(ctx, seed)
			outcome := "ok"
			if len(phrases) == 0 {
				outcome = "empty"
			}
			o.metrics.SourceCalls.WithLabelValues(src.Name(), outcome).Inc()

			before := pool.Len()
			for _, p := range phrases {
				pool.Add(p, src.Name())
			}
			run.Log(1, "%q via %s: %d suggestions, %d new", seed, src.Name(), len(phrases), pool.Len()-before)
		}
		if i < len(seeds)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.cfg.ExpansionDelay):
			}
		}
	}
	run.Log(1, "Candidate pool holds %d keywords (%s)", pool.Len(), sourceBreakdown(pool))
	o.checkpoint(ctx, run)
	return nil
}

// sourceBreakdown renders per-source contribution counts in a stable order.
func sourceBreakdown(pool *keyword.Pool) string {
	counts := pool.SourceCounts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, counts[name]))
	}
	return strings.Join(parts, ", ")
}

// relevanceStage drops low-tier candidates. It cannot fail: classifier
// errors degrade affected chunks to medium and nothing is lost.
func (o *Orchestrator) relevanceStage(ctx context.Context, run *research.Run, domainCtx project.DomainContext, pool *keyword.Pool) {
	defer o.observeStage("relevance_filter", time.Now())

	texts := make([]string, 0, pool.Len())
	for _, c := range pool.All() {
		texts = append(texts, c.Text)
	}
	run.Log(0, "Filtering %d candidates for relevance", len(texts))

	classes := o.filter.ClassifyBatch(ctx, domainCtx.ProfileText(), texts)
	dropped, degraded := 0, 0
	for _, t := range texts {
		cls, ok := classes[t]
		if !ok {
			continue
		}
		if cls.Degraded {
			degraded++
			o.metrics.DegradedResults.WithLabelValues("relevance").Inc()
		}
		if cls.Tier == relevance.TierLow {
			pool.Remove(t)
			dropped++
		}
	}
	run.Log(1, "Dropped %d low-relevance candidates, kept %d (%d degraded to medium)", dropped, pool.Len(), degraded)
	o.checkpoint(ctx, run)
}

func (o *Orchestrator) competitorStage(ctx context.Context, run *research.Run, domainCtx project.DomainContext, pool *keyword.Pool) error {
	defer o.observeStage("competitor_mining", time.Now())

	competitors := domainCtx.Competitors()
	if len(competitors) == 0 {
		return nil
	}
	run.Log(0, "Mining %d competitor sites", len(competitors))
	for _, domain := range competitors {
		phrases, err := o.competitor.Mine(ctx, domain)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeRunPipelineFailed,
				fmt.Sprintf("competitor mining for %s", domain))
		}
		outcome := "ok"
		if len(phrases) == 0 {
			outcome = "empty"
		}
		o.metrics.SourceCalls.WithLabelValues("competitor", outcome).Inc()

		before := pool.Len()
		for _, p := range phrases {
			pool.Add(p, "competitor:"+domain)
		}
		run.Log(1, "%s: %d phrases, %d new", domain, len(phrases), pool.Len()-before)
	}
	o.checkpoint(ctx, run)
	return nil
}

// scoringStage embeds the profile and every candidate in one batch, derives
// per-candidate similarity to the profile, then estimates metrics and the
// opportunity score. It returns the candidate vectors for reuse by the
// clustering pass so nothing is embedded twice. Degraded embeddings leave
// the candidate without a similarity signal, which scores as zero.
func (o *Orchestrator) scoringStage(ctx context.Context, run *research.Run, domainCtx project.DomainContext, pool *keyword.Pool) map[string][]float64 {
	defer o.observeStage("scoring", time.Now())

	candidates := pool.All()
	run.Log(0, "Scoring %d candidates", len(candidates))

	texts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		texts = append(texts, c.Text)
	}
	scored := o.scorer.BatchSimilarity(ctx, domainCtx.ProfileText(), texts)

	vectors := make(map[string][]float64, len(candidates))
	degradedVecs := 0
	for i, c := range candidates {
		s := scored[i]
		vectors[c.Text] = s.Vector
		if s.Degraded {
			degradedVecs++
			o.metrics.DegradedResults.WithLabelValues("embedding").Inc()
			continue
		}
		c.Similarity = s.Similarity
		c.HasSimilarity = true
	}
	if degradedVecs > 0 {
		run.Log(1, "%d embeddings degraded; affected similarities default to 0", degradedVecs)
	}

	for _, c := range candidates {
		c.Metrics = o.estimator.Estimate(ctx, c.Text)
		keyword.ApplyOpportunity(c)
	}
	o.metrics.KeywordsDiscovered.Add(float64(len(candidates)))
	o.checkpoint(ctx, run)
	return vectors
}

// persistStage ranks by opportunity descending with nil scored as zero and
// text as the tiebreak, then saves only the top slice. The returned total is
// the pre-truncation candidate count.
func (o *Orchestrator) persistStage(ctx context.Context, run *research.Run, pool *keyword.Pool) (int, []*keyword.PersistedKeyword, error) {
	defer o.observeStage("persistence", time.Now())

	candidates := pool.All()
	sort.SliceStable(candidates, func(i, j int) bool {
		oi, oj := opportunityOf(candidates[i]), opportunityOf(candidates[j])
		if oi != oj {
			return oi > oj
		}
		return candidates[i].Text < candidates[j].Text
	})

	totalFound := len(candidates)
	top := candidates
	if len(top) > o.cfg.TopKeywords {
		top = top[:o.cfg.TopKeywords]
	}

	rows := make([]*keyword.PersistedKeyword, 0, len(top))
	for _, c := range top {
		rows = append(rows, persistedFrom(run.ID, c))
	}
	if err := o.keywords.SaveBatch(ctx, rows); err != nil {
		return 0, nil, err
	}
	o.metrics.KeywordsPersisted.Add(float64(len(rows)))
	run.Log(0, "Persisted top %d of %d candidates", len(rows), totalFound)
	o.checkpoint(ctx, run)
	return totalFound, rows, nil
}

// clusterStage annotates already-persisted rows with cluster metadata. It
// never removes a row; singletons keep a null cluster id.
func (o *Orchestrator) clusterStage(ctx context.Context, run *research.Run, rows []*keyword.PersistedKeyword, vectors map[string][]float64) error {
	defer o.observeStage("clustering", time.Now())

	members := make([]cluster.Member, len(rows))
	byText := make(map[string]*keyword.PersistedKeyword, len(rows))
	for i, kw := range rows {
		members[i] = cluster.Member{
			Text:        kw.Text,
			Volume:      intOrZero(kw.Volume),
			Opportunity: intOrZero(kw.Opportunity),
			Embedding:   vectors[kw.Text],
		}
		byText[kw.Text] = kw
	}

	builder := cluster.NewBuilder(cluster.Params{
		Threshold:      o.cfg.SimilarityThreshold,
		MaxClusterSize: o.cfg.MaxClusterSize,
		MaxPasses:      o.cfg.MaxClusterPasses,
	}, similarity.Cosine)
	result := builder.Build(members)

	for _, g := range result.Groups {
		for _, m := range g.Members {
			kw, ok := byText[m.Text]
			if !ok {
				continue
			}
			id := g.ID
			kw.ClusterID = &id
			kw.ClusterSize = len(g.Members)
			if m.Text == g.Representative.Text {
				kw.IsRepresentative = true
				kw.ClusterSiblings = g.Siblings
			}
			if err := o.keywords.UpdateClusterMetadata(ctx, kw); err != nil {
				return err
			}
		}
	}
	run.Log(0, "Clustered %d keywords into %d groups (+%d singletons) in %d passes",
		len(rows), len(result.Groups), len(result.Singletons), result.Passes)

	if o.indexer != nil {
		o.indexRows(ctx, run, rows, vectors)
	}
	o.checkpoint(ctx, run)
	return nil
}

// indexRows pushes persisted keyword vectors to the vector store. Soft.
func (o *Orchestrator) indexRows(ctx context.Context, run *research.Run, rows []*keyword.PersistedKeyword, vectors map[string][]float64) {
	texts := make([]string, 0, len(rows))
	vecs := make([][]float64, 0, len(rows))
	for _, kw := range rows {
		if v := vectors[kw.Text]; len(v) > 0 {
			texts = append(texts, kw.Text)
			vecs = append(vecs, v)
		}
	}
	if len(texts) == 0 {
		return
	}
	if err := o.indexer.IndexKeywords(ctx, run.ID, texts, vecs); err != nil {
		o.logger.Warn("vector indexing failed",
			logging.String("run_id", run.ID.String()), logging.Err(err))
	}
}

// ---
// Terminal-state and bookkeeping helpers
// ---

// failRun records the failure on a fresh context so an expired run context
// cannot leave the row stuck in processing.
func (o *Orchestrator) failRun(run *research.Run, message string) {
	if err := run.Fail(message); err != nil {
		o.logger.Warn("run already terminal on fail path",
			logging.String("run_id", run.ID.String()), logging.Err(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), failUpdateTimeout)
	defer cancel()
	if err := o.runs.Update(ctx, run); err != nil {
		o.logger.Error("persisting failed run state",
			logging.String("run_id", run.ID.String()), logging.Err(err))
	}
}

// checkpoint flushes the progress log mid-run. Checkpoint failures are soft;
// the terminal update is the one that matters.
func (o *Orchestrator) checkpoint(ctx context.Context, run *research.Run) {
	if err := o.runs.Update(ctx, run); err != nil {
		o.logger.Warn("progress checkpoint failed",
			logging.String("run_id", run.ID.String()), logging.Err(err))
	}
}

func (o *Orchestrator) publishEvent(ctx context.Context, eventType string, run *research.Run) {
	payload := kafka.RunEventPayload{
		RunID:      run.ID,
		ProjectID:  run.ProjectID,
		Status:     string(run.Status),
		TotalFound: run.TotalFound,
	}
	if run.ErrorMessage != nil {
		payload.ErrorMessage = *run.ErrorMessage
	}
	if err := o.events.PublishRunEvent(ctx, eventType, payload); err != nil {
		o.logger.Warn("publishing run event",
			logging.String("event_type", eventType), logging.Err(err))
	}
}

func (o *Orchestrator) observeStage(stage string, start time.Time) {
	o.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func persistedFrom(runID common.ID, c *keyword.Candidate) *keyword.PersistedKeyword {
	kw := &keyword.PersistedKeyword{
		ID:        common.NewID(),
		RunID:     runID,
		Text:      c.Text,
		Intent:    keyword.IntentMixed,
		Sources:   append([]string(nil), c.Sources...),
		CreatedAt: time.Now().UTC(),
	}
	if m := c.Metrics; m != nil {
		kw.Volume = m.Volume
		kw.Difficulty = m.Difficulty
		kw.CPC = m.CPC
		kw.Opportunity = m.Opportunity
		kw.Intent = m.Intent
	}
	return kw
}

func opportunityOf(c *keyword.Candidate) int {
	if c.Metrics == nil || c.Metrics.Opportunity == nil {
		return 0
	}
	return *c.Metrics.Opportunity
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
