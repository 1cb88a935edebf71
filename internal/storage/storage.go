package storage

import (
	"context"

	"github.com/bankofai/skills-tron/internal/model"
)

// Storage defines a sink for plans and pool snapshots.
type Storage interface {
	PutPlans(ctx context.Context, plans []model.Plan) error
	PutPools(ctx context.Context, pools []model.PoolSnapshot) error
}

// Fanout writes to every sink in order and stops at the first error.
type Fanout []Storage

func (f Fanout) PutPlans(ctx context.Context, plans []model.Plan) error {
	for _, s := range f {
		if err := s.PutPlans(ctx, plans); err != nil {
			return err
		}
	}
	return nil
}

func (f Fanout) PutPools(ctx context.Context, pools []model.PoolSnapshot) error {
	for _, s := range f {
		if err := s.PutPools(ctx, pools); err != nil {
			return err
		}
	}
	return nil
}
