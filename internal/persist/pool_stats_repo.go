package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/roller/trackgen/internal/objects"
)

type PoolStatsRepo struct {
	db *DB
}

func NewPoolStatsRepo(db *DB) *PoolStatsRepo {
	return &PoolStatsRepo{db: db}
}

// Save writes one snapshot row per pool in a single transaction.
func (r *PoolStatsRepo) Save(ctx context.Context, buildID uuid.UUID, stats []objects.PoolStats) error {
	if len(stats) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, s := range stats {
		batch.Queue(
			`INSERT INTO pool_snapshots (build_id, pool_key, initial_count, current_count, high_water,
			                             total_allocated, total_delivered, total_recycled, peak_outstanding)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			buildID, s.Key, s.InitialCount, s.CurrentCount, s.HighWaterMark,
			s.TotalAllocated, s.TotalDelivered, s.TotalRecycled, s.PeakOutstanding,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("snapshot insert: %w", err)
	}
	return tx.Commit(ctx)
}

// LatestPeakDemand returns each pool's peak outstanding count from its most
// recent snapshot. Counters restart with every process, so the value reflects
// the demand of the last recorded run and can be lower than earlier runs.
func (r *PoolStatsRepo) LatestPeakDemand(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT DISTINCT ON (pool_key) pool_key, peak_outstanding
		 FROM pool_snapshots
		 ORDER BY pool_key, taken_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query peak demand: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var peak int32
		if err := rows.Scan(&key, &peak); err != nil {
			return nil, fmt.Errorf("scan peak demand: %w", err)
		}
		out[key] = int(peak)
	}
	return out, rows.Err()
}
