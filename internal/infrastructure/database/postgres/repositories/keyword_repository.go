package repositories

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rankforge/rankforge/internal/domain/keyword"
	apperrors "github.com/rankforge/rankforge/pkg/errors"
	"github.com/rankforge/rankforge/pkg/types/common"
)

// KeywordRepository persists the ranked keywords of a research run.
type KeywordRepository struct {
	pool *pgxpool.Pool
}

// NewKeywordRepository builds a KeywordRepository.
func NewKeywordRepository(pool *pgxpool.Pool) *KeywordRepository {
	return &KeywordRepository{pool: pool}
}

// SaveBatch inserts all keywords in one transaction so a run either persists
// its full top-N or nothing.
func (r *KeywordRepository) SaveBatch(ctx context.Context, keywords []*keyword.PersistedKeyword) error {
	if len(keywords) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "begin keyword batch")
	}
	defer tx.Rollback(ctx)

	for _, kw := range keywords {
		sources, err := json.Marshal(kw.Sources)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "marshal keyword sources")
		}
		siblings, err := json.Marshal(kw.ClusterSiblings)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "marshal cluster siblings")
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO keywords (
				id, run_id, text, volume, difficulty, cpc, opportunity, intent,
				sources, cluster_id, is_representative, cluster_size,
				cluster_siblings, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			kw.ID.String(), kw.RunID.String(), kw.Text,
			kw.Volume, kw.Difficulty, kw.CPC, kw.Opportunity, string(kw.Intent),
			sources, kw.ClusterID, kw.IsRepresentative, kw.ClusterSize,
			siblings, kw.CreatedAt)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "insert keyword")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "commit keyword batch")
	}
	return nil
}

// ListByRun returns a run's keywords ordered by opportunity descending with
// nulls last, matching the ranking that selected them.
func (r *KeywordRepository) ListByRun(ctx context.Context, runID common.ID) ([]*keyword.PersistedKeyword, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, run_id, text, volume, difficulty, cpc, opportunity, intent,
		       sources, cluster_id, is_representative, cluster_size,
		       cluster_siblings, created_at
		FROM keywords
		WHERE run_id = $1
		ORDER BY opportunity DESC NULLS LAST, text`, runID.String())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "query keywords")
	}
	defer rows.Close()

	var out []*keyword.PersistedKeyword
	for rows.Next() {
		kw, err := scanKeyword(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, kw)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "iterate keywords")
	}
	return out, nil
}

// UpdateClusterMetadata annotates one persisted keyword with its cluster
// assignment. It never touches the metric columns.
func (r *KeywordRepository) UpdateClusterMetadata(ctx context.Context, kw *keyword.PersistedKeyword) error {
	siblings, err := json.Marshal(kw.ClusterSiblings)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "marshal cluster siblings")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE keywords
		SET cluster_id = $2, is_representative = $3, cluster_size = $4,
		    cluster_siblings = $5
		WHERE id = $1`,
		kw.ID.String(), kw.ClusterID, kw.IsRepresentative, kw.ClusterSize, siblings)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "update cluster metadata")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.ErrCodeKeywordNotFound, "keyword not found")
	}
	return nil
}

func scanKeyword(row pgx.Row) (*keyword.PersistedKeyword, error) {
	var (
		kw       keyword.PersistedKeyword
		id       string
		runID    string
		intent   string
		sources  []byte
		siblings []byte
	)
	err := row.Scan(&id, &runID, &kw.Text, &kw.Volume, &kw.Difficulty, &kw.CPC,
		&kw.Opportunity, &intent, &sources, &kw.ClusterID, &kw.IsRepresentative,
		&kw.ClusterSize, &siblings, &kw.CreatedAt)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "scan keyword")
	}

	kw.ID = common.ID(id)
	kw.RunID = common.ID(runID)
	kw.Intent = keyword.Intent(intent)
	if err := json.Unmarshal(sources, &kw.Sources); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "unmarshal keyword sources")
	}
	if err := json.Unmarshal(siblings, &kw.ClusterSiblings); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "unmarshal cluster siblings")
	}
	return &kw, nil
}
