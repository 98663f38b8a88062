// Package milvus maintains the keyword embedding index used by the
// related-keywords lookup.
package milvus

import (
	"context"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/rankforge/rankforge/internal/config"
	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
	apperrors "github.com/rankforge/rankforge/pkg/errors"
	"github.com/rankforge/rankforge/pkg/types/common"
)

const (
	fieldID        = "id"
	fieldRunID     = "run_id"
	fieldText      = "text"
	fieldEmbedding = "embedding"
)

// RelatedKeyword is one hit of a similarity lookup.
type RelatedKeyword struct {
	Text  string
	Score float32
}

// Index wraps the Milvus collection holding keyword embeddings.
type Index struct {
	mc     client.Client
	cfg    config.MilvusConfig
	logger logging.Logger
}

// NewIndex connects to Milvus and ensures the keyword collection exists and
// is loaded.
func NewIndex(ctx context.Context, cfg config.MilvusConfig, logger logging.Logger) (*Index, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	mc, err := client.NewClient(ctx, client.Config{
		Address: cfg.Addr,
		DBName:  cfg.DBName,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeExternalService, "connect to milvus")
	}

	idx := &Index{mc: mc, cfg: cfg, logger: logger}
	if err := idx.ensureCollection(ctx); err != nil {
		mc.Close()
		return nil, err
	}
	return idx, nil
}

func (i *Index) ensureCollection(ctx context.Context) error {
	has, err := i.mc.HasCollection(ctx, i.cfg.Collection)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "check collection")
	}

	if !has {
		schema := &entity.Schema{
			CollectionName: i.cfg.Collection,
			Description:    "keyword embeddings per research run",
			Fields: []*entity.Field{
				{Name: fieldID, DataType: entity.FieldTypeInt64, PrimaryKey: true, AutoID: true},
				{Name: fieldRunID, DataType: entity.FieldTypeVarChar, TypeParams: map[string]string{"max_length": "64"}},
				{Name: fieldText, DataType: entity.FieldTypeVarChar, TypeParams: map[string]string{"max_length": "128"}},
				{Name: fieldEmbedding, DataType: entity.FieldTypeFloatVector, TypeParams: map[string]string{"dim": strconv.Itoa(i.cfg.EmbeddingDim)}},
			},
		}
		if err := i.mc.CreateCollection(ctx, schema, 1); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "create collection")
		}

		index, err := entity.NewIndexHNSW(entity.COSINE, 8, 64)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "build index definition")
		}
		if err := i.mc.CreateIndex(ctx, i.cfg.Collection, fieldEmbedding, index, false); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "create embedding index")
		}
		i.logger.Info("created keyword embedding collection",
			logging.String("collection", i.cfg.Collection))
	}

	if err := i.mc.LoadCollection(ctx, i.cfg.Collection, false); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "load collection")
	}
	return nil
}

// IndexKeywords stores the non-degraded embeddings of a run's keywords.
// Zero-vectors are skipped so degraded runs never pollute the index.
func (i *Index) IndexKeywords(ctx context.Context, runID common.ID, texts []string, vectors [][]float64) error {
	var (
		runIDs []string
		kws    []string
		embeds [][]float32
	)
	for n, vec := range vectors {
		if n >= len(texts) || isZeroVector(vec) {
			continue
		}
		runIDs = append(runIDs, runID.String())
		kws = append(kws, texts[n])
		embeds = append(embeds, toFloat32(vec))
	}
	if len(kws) == 0 {
		return nil
	}

	_, err := i.mc.Insert(ctx, i.cfg.Collection, "",
		entity.NewColumnVarChar(fieldRunID, runIDs),
		entity.NewColumnVarChar(fieldText, kws),
		entity.NewColumnFloatVector(fieldEmbedding, i.cfg.EmbeddingDim, embeds),
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "insert keyword embeddings")
	}
	i.logger.Debug("indexed keyword embeddings",
		logging.String("run_id", runID.String()),
		logging.Int("count", len(kws)))
	return nil
}

// SearchRelated returns the topK keywords closest to the given embedding.
func (i *Index) SearchRelated(ctx context.Context, vector []float64, topK int) ([]RelatedKeyword, error) {
	if topK <= 0 {
		topK = i.cfg.DefaultTopK
	}
	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeExternalService, "build search params")
	}

	results, err := i.mc.Search(ctx, i.cfg.Collection, nil, "",
		[]string{fieldText},
		[]entity.Vector{entity.FloatVector(toFloat32(vector))},
		fieldEmbedding, entity.COSINE, topK, sp)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeExternalService, "search keyword embeddings")
	}

	var hits []RelatedKeyword
	for _, result := range results {
		col := result.Fields.GetColumn(fieldText)
		textCol, ok := col.(*entity.ColumnVarChar)
		if !ok {
			continue
		}
		for n, text := range textCol.Data() {
			hit := RelatedKeyword{Text: text}
			if n < len(result.Scores) {
				hit.Score = result.Scores[n]
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// Close releases the Milvus connection.
func (i *Index) Close() error {
	return i.mc.Close()
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

func isZeroVector(v []float64) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}
