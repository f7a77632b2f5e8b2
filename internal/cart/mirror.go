package cart

import (
	"context"
	"errors"

	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/freshbowl/storefront/pkg/logger"
)

// Mirror keeps a durable copy of each ledger in a Store. A missing snapshot
// yields an empty ledger and an undecodable one is discarded. Store errors are
// returned so the durable copy is never replaced by an empty ledger. Saving is
// best effort and never rolls back the in-memory mutation.
type Mirror struct {
	store Store
	logg  *logger.Logger
}

func NewMirror(store Store, logg *logger.Logger) *Mirror {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Mirror{store: store, logg: logg}
}

// Load rehydrates the ledger for cartID.
func (m *Mirror) Load(ctx context.Context, cartID string) (*Ledger, error) {
	raw, err := m.store.Load(ctx, cartID)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return &Ledger{}, nil
		}
		m.logg.Error(ctx, "cart.mirror.load_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(raw) == 0 {
		return &Ledger{}, nil
	}
	ledger, err := DecodeSnapshot(raw)
	if err != nil {
		warnCtx := m.logg.WithField(ctx, "error", err.Error())
		m.logg.Warn(warnCtx, "cart.mirror.snapshot_discarded")
		if delErr := m.store.Delete(ctx, cartID); delErr != nil {
			m.logg.Error(ctx, "cart.mirror.discard_failed", delErr)
		}
		return &Ledger{}, nil
	}
	return ledger, nil
}

func (m *Mirror) Save(ctx context.Context, cartID string, snap Snapshot) error {
	raw, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	return m.store.Save(ctx, cartID, raw)
}
