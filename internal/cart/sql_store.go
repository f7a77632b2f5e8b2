package cart

import (
	"context"
	"time"

	"github.com/freshbowl/storefront/pkg/db"
	"github.com/freshbowl/storefront/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore persists snapshots in the cart_snapshots table.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(conn *gorm.DB) *SQLStore {
	return &SQLStore{db: conn}
}

func (s *SQLStore) Load(ctx context.Context, cartID string) ([]byte, error) {
	var row models.CartSnapshot
	err := s.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		First(&row).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return []byte(row.Payload), nil
}

// Save upserts the snapshot. item_count is informational only and is
// derived by counting encoded records.
func (s *SQLStore) Save(ctx context.Context, cartID string, snapshot []byte) error {
	row := models.CartSnapshot{
		CartID:    cartID,
		Payload:   string(snapshot),
		ItemCount: countRecords(snapshot),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "item_count", "updated_at"}),
		}).
		Create(&row).Error
}

func (s *SQLStore) Delete(ctx context.Context, cartID string) error {
	return s.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartSnapshot{}).Error
}

func countRecords(snapshot []byte) int {
	ledger, err := DecodeSnapshot(snapshot)
	if err != nil {
		return 0
	}
	return ledger.Len()
}

// Prune deletes snapshots not written since before. Redis expires idle carts
// on its own; SQL needs this run periodically.
func (s *SQLStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("updated_at < ?", before).
		Delete(&models.CartSnapshot{})
	return res.RowsAffected, res.Error
}
