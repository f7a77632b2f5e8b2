package customization

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator mints ids for composed line items. Ids must never repeat for
// the same base product.
type IDGenerator interface {
	NewID(baseProductID string) string
}

// UUIDGenerator suffixes the base product id with a random UUID.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(baseProductID string) string {
	return fmt.Sprintf("%s-custom-%s", baseProductID, uuid.NewString())
}

// SequenceGenerator suffixes the base product id with a per-generator
// counter. Ids restart with every process, so it only suits tests.
type SequenceGenerator struct {
	next atomic.Uint64
}

func (g *SequenceGenerator) NewID(baseProductID string) string {
	return fmt.Sprintf("%s-custom-%d", baseProductID, g.next.Add(1))
}
