package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bankofai/skills-tron/internal/model"
)

// Schema creates the tables the store writes to.
const Schema = `
CREATE TABLE IF NOT EXISTS pool_snapshots (
	network        TEXT        NOT NULL,
	pool_address   TEXT        NOT NULL,
	token0         TEXT        NOT NULL,
	token1         TEXT        NOT NULL,
	symbol0        TEXT        NOT NULL,
	symbol1        TEXT        NOT NULL,
	fee            INTEGER     NOT NULL,
	tick_spacing   INTEGER     NOT NULL,
	sqrt_price_x96 NUMERIC     NOT NULL,
	tick           INTEGER     NOT NULL,
	liquidity      NUMERIC     NOT NULL,
	block_number   BIGINT      NOT NULL DEFAULT 0,
	observed_at    TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (network, pool_address)
);
CREATE TABLE IF NOT EXISTS liquidity_plans (
	id               BIGSERIAL   PRIMARY KEY,
	network          TEXT        NOT NULL,
	action           TEXT        NOT NULL,
	pool_address     TEXT        NOT NULL DEFAULT '',
	owner            TEXT        NOT NULL DEFAULT '',
	ready_to_execute BOOLEAN     NOT NULL,
	needs_approval   TEXT[]      NOT NULL,
	detail           JSONB       NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL
);
`

// Store provides Postgres persistence for pool snapshots and plans.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

// UpsertPools inserts or refreshes the latest snapshot of each pool.
func (s *Store) UpsertPools(ctx context.Context, pools []model.PoolSnapshot) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		observed, err := parseTime(pool.ObservedAt)
		if err != nil {
			return fmt.Errorf("pool %s: %w", pool.Address, err)
		}
		batch.Queue(`
			INSERT INTO pool_snapshots (
				network, pool_address, token0, token1, symbol0, symbol1, fee, tick_spacing,
				sqrt_price_x96, tick, liquidity, block_number, observed_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10, $11::numeric, $12, $13, now())
			ON CONFLICT (network, pool_address)
			DO UPDATE SET
				sqrt_price_x96 = EXCLUDED.sqrt_price_x96,
				tick = EXCLUDED.tick,
				liquidity = EXCLUDED.liquidity,
				block_number = EXCLUDED.block_number,
				observed_at = EXCLUDED.observed_at,
				updated_at = now()
		`,
			pool.Network,
			pool.Address,
			pool.Token0,
			pool.Token1,
			pool.Symbol0,
			pool.Symbol1,
			int64(pool.Fee),
			pool.TickSpacing,
			pool.SqrtPriceX96,
			pool.Tick,
			pool.Liquidity,
			int64(pool.BlockNumber),
			observed,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// InsertPlans appends plans; the detail is stored as JSONB.
func (s *Store) InsertPlans(ctx context.Context, plans []model.Plan) error {
	if len(plans) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, plan := range plans {
		detail, err := json.Marshal(plan.Detail)
		if err != nil {
			return fmt.Errorf("marshal plan detail: %w", err)
		}
		created, err := parseTime(plan.CreatedAt)
		if err != nil {
			return fmt.Errorf("plan %s: %w", plan.Action, err)
		}
		approvals := plan.NeedsApproval
		if approvals == nil {
			approvals = []string{}
		}
		batch.Queue(`
			INSERT INTO liquidity_plans (
				network, action, pool_address, owner, ready_to_execute, needs_approval, detail, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
		`,
			plan.Network,
			plan.Action,
			plan.Pool,
			plan.Owner,
			plan.Ready,
			approvals,
			string(detail),
			created,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range plans {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutPlans implements storage.Storage.
func (s *Store) PutPlans(ctx context.Context, plans []model.Plan) error {
	return s.InsertPlans(ctx, plans)
}

// PutPools implements storage.Storage.
func (s *Store) PutPools(ctx context.Context, pools []model.PoolSnapshot) error {
	return s.UpsertPools(ctx, pools)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return ts, nil
}
