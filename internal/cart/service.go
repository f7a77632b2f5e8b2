package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/freshbowl/storefront/internal/catalog"
	"github.com/freshbowl/storefront/pkg/enums"
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/freshbowl/storefront/pkg/logger"
	"github.com/freshbowl/storefront/pkg/metrics"
	"github.com/jellydator/ttlcache/v3"
)

// DefaultIdleTTL is how long an untouched ledger stays in memory before it is
// dropped and later rehydrated from the mirror.
const DefaultIdleTTL = 30 * time.Minute

// Composer turns a customizable base product plus chosen add-ons into a
// composed line item candidate.
type Composer interface {
	Compose(base catalog.Product, fruitIDs []string) (*Composed, error)
}

// Notifier surfaces transient messages to the shopper owning scope.
type Notifier interface {
	Notify(ctx context.Context, scope string, severity enums.Severity, message string)
	NotifyError(ctx context.Context, scope string, err error)
}

// ServiceParams wires the cart service.
type ServiceParams struct {
	Catalog  catalog.Catalog
	Composer Composer
	Mirror   *Mirror
	Notifier Notifier
	Metrics  *metrics.CartMetrics
	Logger   *logger.Logger

	// IdleTTL bounds how long an untouched cart stays in memory.
	IdleTTL time.Duration
	// MaxCarts caps the number of in-memory carts. Zero means no cap.
	MaxCarts uint64
}

// Service owns one ledger per active cart id. Every mutation runs under the
// cart's lock, then mirrors the new snapshot to the store. Idle carts are
// evicted and rehydrated from the mirror on next use.
type Service struct {
	catalog  catalog.Catalog
	composer Composer
	mirror   *Mirror
	notifier Notifier
	metrics  *metrics.CartMetrics
	logg     *logger.Logger

	mu      sync.Mutex
	carts   *ttlcache.Cache[string, *cartEntry]
	running atomic.Bool
}

type cartEntry struct {
	mu     sync.Mutex
	ledger *Ledger
}

func NewService(p ServiceParams) (*Service, error) {
	if p.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if p.Composer == nil {
		return nil, fmt.Errorf("composer required")
	}
	if p.Mirror == nil {
		return nil, fmt.Errorf("mirror required")
	}
	if p.Notifier == nil {
		p.Notifier = nopNotifier{}
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.IdleTTL <= 0 {
		p.IdleTTL = DefaultIdleTTL
	}
	opts := []ttlcache.Option[string, *cartEntry]{
		ttlcache.WithTTL[string, *cartEntry](p.IdleTTL),
	}
	if p.MaxCarts > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, *cartEntry](p.MaxCarts))
	}
	return &Service{
		catalog:  p.Catalog,
		composer: p.Composer,
		mirror:   p.Mirror,
		notifier: p.Notifier,
		metrics:  p.Metrics,
		logg:     p.Logger,
		carts:    ttlcache.New[string, *cartEntry](opts...),
	}, nil
}

// Start runs the background eviction loop until Stop is called. Without it
// expired carts are still reloaded on access but their memory is kept.
func (s *Service) Start() {
	if s.running.CompareAndSwap(false, true) {
		go s.carts.Start()
	}
}

// Stop ends the eviction loop. It is safe to call on a service never started.
func (s *Service) Stop() {
	if s.running.CompareAndSwap(true, false) {
		s.carts.Stop()
	}
}

// Snapshot returns the current contents of the cart.
func (s *Service) Snapshot(ctx context.Context, cartID string) (Snapshot, error) {
	var snap Snapshot
	err := s.read(ctx, cartID, func(l *Ledger) {
		snap = l.Snapshot()
	})
	return snap, err
}

// AddProduct adds qty units of a catalog product as a direct line item.
func (s *Service) AddProduct(ctx context.Context, cartID, productID string, qty int) (Snapshot, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		s.notifier.NotifyError(ctx, cartID, err)
		return Snapshot{}, err
	}
	candidate := NewDirect(product, qty)
	return s.mutate(ctx, cartID, "add_product", func(l *Ledger) (string, error) {
		if err := l.Add(candidate); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s added to cart", product.Name), nil
	})
}

// AddCustomized composes the base product with the chosen add-ons and adds
// the result as a new line item.
func (s *Service) AddCustomized(ctx context.Context, cartID, productID string, fruitIDs []string) (Snapshot, error) {
	base, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		s.notifier.NotifyError(ctx, cartID, err)
		return Snapshot{}, err
	}
	composed, err := s.composer.Compose(base, fruitIDs)
	if err != nil {
		s.metrics.ObserveOperation("add_customized", resultOf(err))
		s.notifier.NotifyError(ctx, cartID, err)
		return Snapshot{}, err
	}
	return s.mutate(ctx, cartID, "add_customized", func(l *Ledger) (string, error) {
		if err := l.Add(composed); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s added to cart", composed.Name), nil
	})
}

func (s *Service) SetQuantity(ctx context.Context, cartID, itemID string, qty int) (Snapshot, error) {
	return s.mutate(ctx, cartID, "set_quantity", func(l *Ledger) (string, error) {
		return "", l.SetQuantity(itemID, qty)
	})
}

// Remove deletes a line item. Removing an absent item succeeds.
func (s *Service) Remove(ctx context.Context, cartID, itemID string) (Snapshot, error) {
	return s.mutate(ctx, cartID, "remove", func(l *Ledger) (string, error) {
		if l.Remove(itemID) {
			return "Item removed from cart", nil
		}
		return "", nil
	})
}

func (s *Service) Clear(ctx context.Context, cartID string) (Snapshot, error) {
	return s.mutate(ctx, cartID, "clear", func(l *Ledger) (string, error) {
		l.Clear()
		return "", nil
	})
}

// QuantityForProduct counts every unit in the cart built on productID.
func (s *Service) QuantityForProduct(ctx context.Context, cartID, productID string) (int, error) {
	var qty int
	err := s.read(ctx, cartID, func(l *Ledger) {
		qty = l.QuantityInCartForProduct(productID)
	})
	return qty, err
}

// DecrementProduct takes one unit off the most recent entry built on
// productID. The bool reports whether anything changed.
func (s *Service) DecrementProduct(ctx context.Context, cartID, productID string) (Snapshot, bool, error) {
	changed := false
	snap, err := s.mutate(ctx, cartID, "decrement", func(l *Ledger) (string, error) {
		changed = l.DecrementMostRecentComposed(productID)
		return "", nil
	})
	return snap, changed, err
}

// read runs fn against the cart's ledger. A cart that is not in memory is
// loaded, and only kept in memory when it holds something.
func (s *Service) read(ctx context.Context, cartID string, fn func(*Ledger)) error {
	cartID = strings.TrimSpace(cartID)
	entry, err := s.entry(ctx, cartID, false)
	if err != nil {
		return err
	}
	if entry != nil {
		defer entry.mu.Unlock()
		fn(entry.ledger)
		return nil
	}

	ledger, err := s.mirror.Load(s.logg.WithCartID(ctx, cartID), cartID)
	if err != nil {
		s.metrics.IncMirrorError("load")
		return err
	}
	fn(ledger)
	if ledger.Len() > 0 {
		s.adopt(cartID, ledger)
	}
	return nil
}

// mutate applies fn to the cart's ledger. A failed fn leaves the ledger as it
// was; a successful one is mirrored best effort.
func (s *Service) mutate(ctx context.Context, cartID, op string, fn func(*Ledger) (string, error)) (Snapshot, error) {
	cartID = strings.TrimSpace(cartID)
	entry, err := s.entry(ctx, cartID, true)
	if err != nil {
		return Snapshot{}, err
	}
	defer entry.mu.Unlock()

	ctx = s.logg.WithCartID(ctx, cartID)
	message, err := fn(entry.ledger)
	if err != nil {
		s.metrics.ObserveOperation(op, resultOf(err))
		s.notifier.NotifyError(ctx, cartID, err)
		return entry.ledger.Snapshot(), err
	}

	snap := entry.ledger.Snapshot()
	s.metrics.ObserveOperation(op, "ok")
	s.metrics.ObserveLineItems(len(snap.Items))
	if err := s.mirror.Save(ctx, cartID, snap); err != nil {
		s.metrics.IncMirrorError("save")
		warnCtx := s.logg.WithFields(ctx, map[string]any{"operation": op, "error": err.Error()})
		s.logg.Warn(warnCtx, "cart.mirror.save_failed")
	}
	if message != "" {
		s.notifier.Notify(ctx, cartID, enums.SeveritySuccess, message)
	}
	return snap, nil
}

// entry returns the locked entry for cartID, rehydrating it from the mirror
// on first use. Callers must unlock it. With create unset a cart that is not
// in memory yields a nil entry. A failed load leaves the ledger unset so the
// next access retries.
func (s *Service) entry(ctx context.Context, cartID string, create bool) (*cartEntry, error) {
	if cartID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}

	s.mu.Lock()
	var entry *cartEntry
	if item := s.carts.Get(cartID); item != nil {
		entry = item.Value()
	} else if create {
		entry = &cartEntry{}
		s.carts.Set(cartID, entry, ttlcache.DefaultTTL)
	}
	s.mu.Unlock()
	if entry == nil {
		return nil, nil
	}

	entry.mu.Lock()
	if entry.ledger == nil {
		ledger, err := s.mirror.Load(s.logg.WithCartID(ctx, cartID), cartID)
		if err != nil {
			entry.mu.Unlock()
			s.metrics.IncMirrorError("load")
			return nil, err
		}
		entry.ledger = ledger
	}
	return entry, nil
}

// adopt caches a ledger loaded outside the cache unless another caller got
// there first.
func (s *Service) adopt(cartID string, ledger *Ledger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.carts.Get(cartID) == nil {
		s.carts.Set(cartID, &cartEntry{ledger: ledger}, ttlcache.DefaultTTL)
	}
}

func resultOf(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return string(typed.Code())
	}
	return string(pkgerrors.CodeInternal)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, enums.Severity, string) {}
func (nopNotifier) NotifyError(context.Context, string, error)             {}
