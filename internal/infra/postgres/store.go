package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/tanuja-67/vle-management/internal/domain"
)

// Stores persist each entity as a jsonb document keyed by id, with a serial
// column preserving insertion order.

// VillagerStore is the Postgres-backed app.VillagerRepository.
type VillagerStore struct {
	pool *pgxpool.Pool
}

func NewVillagerStore(pool *pgxpool.Pool) *VillagerStore {
	return &VillagerStore{pool: pool}
}

func (s *VillagerStore) List(ctx context.Context) ([]domain.Villager, error) {
	return queryDocs[domain.Villager](ctx, s.pool, `SELECT data FROM villagers ORDER BY seq`)
}

func (s *VillagerStore) Get(ctx context.Context, id string) (domain.Villager, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM villagers WHERE id=$1`, id).Scan(&raw)
	if err == pgx.ErrNoRows {
		return domain.Villager{}, domain.ErrVillagerNotFound
	}
	if err != nil {
		return domain.Villager{}, fmt.Errorf("load villager: %w", err)
	}
	var v domain.Villager
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.Villager{}, fmt.Errorf("unmarshal villager: %w", err)
	}
	return v, nil
}

func (s *VillagerStore) Add(ctx context.Context, v domain.Villager) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal villager: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `INSERT INTO villagers (id, data) VALUES ($1, $2::jsonb)`, v.ID, data); err != nil {
		return fmt.Errorf("insert villager: %w", err)
	}
	return nil
}

func (s *VillagerStore) SetQuizOutcome(ctx context.Context, id string, score int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE villagers
		 SET data = jsonb_set(jsonb_set(data, '{quizCompleted}', 'true'), '{quizScore}', to_jsonb($2::int))
		 WHERE id=$1`, id, score)
	if err != nil {
		return fmt.Errorf("update villager summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVillagerNotFound
	}
	return nil
}

// ResultStore is the Postgres-backed quiz result log.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) List(ctx context.Context) ([]domain.QuizResult, error) {
	return queryDocs[domain.QuizResult](ctx, s.pool, `SELECT data FROM quiz_results ORDER BY seq`)
}

func (s *ResultStore) Append(ctx context.Context, r domain.QuizResult) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal quiz result: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `INSERT INTO quiz_results (villager_id, data) VALUES ($1, $2::jsonb)`, r.VillagerID, data); err != nil {
		return fmt.Errorf("insert quiz result: %w", err)
	}
	return nil
}

// SelectionStore is the Postgres-backed persisted VLE selection set.
type SelectionStore struct {
	pool *pgxpool.Pool
}

func NewSelectionStore(pool *pgxpool.Pool) *SelectionStore {
	return &SelectionStore{pool: pool}
}

func (s *SelectionStore) List(ctx context.Context) ([]domain.VLESelection, error) {
	return queryDocs[domain.VLESelection](ctx, s.pool, `SELECT data FROM selected_vles ORDER BY seq`)
}

// Merge relies on the unique villager_id: conflicting inserts are dropped, so
// the earliest confirmation wins.
func (s *SelectionStore) Merge(ctx context.Context, entries []domain.VLESelection) error {
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal selection: %w", err)
		}
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO selected_vles (villager_id, data) VALUES ($1, $2::jsonb)
			 ON CONFLICT (villager_id) DO NOTHING`, entry.ID(), data); err != nil {
			return fmt.Errorf("insert selection: %w", err)
		}
	}
	return nil
}

func (s *SelectionStore) Remove(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM selected_vles WHERE villager_id=$1`, id); err != nil {
		return fmt.Errorf("delete selection: %w", err)
	}
	return nil
}

func (s *SelectionStore) UpdateStatus(ctx context.Context, id string, status domain.SelectionStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE selected_vles SET data = jsonb_set(data, '{status}', to_jsonb($2::text)) WHERE villager_id=$1`,
		id, string(status))
	if err != nil {
		return fmt.Errorf("update selection status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSelectionNotFound
	}
	return nil
}

// RecommendationStore is the Postgres-backed recommendation log.
type RecommendationStore struct {
	pool *pgxpool.Pool
}

func NewRecommendationStore(pool *pgxpool.Pool) *RecommendationStore {
	return &RecommendationStore{pool: pool}
}

func (s *RecommendationStore) List(ctx context.Context) ([]domain.Recommendation, error) {
	return queryDocs[domain.Recommendation](ctx, s.pool, `SELECT data FROM agri_recommendations ORDER BY seq`)
}

func (s *RecommendationStore) Append(ctx context.Context, r domain.Recommendation) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal recommendation: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `INSERT INTO agri_recommendations (vle_id, data) VALUES ($1, $2::jsonb)`, r.VLEID, data); err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

func queryDocs[T any](ctx context.Context, pool *pgxpool.Pool, sql string) ([]T, error) {
	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
