package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/freshbowl/storefront/internal/catalog"
	"github.com/freshbowl/storefront/pkg/enums"
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/freshbowl/storefront/pkg/logger"
	"github.com/freshbowl/storefront/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubComposer struct {
	mu  sync.Mutex
	seq int
}

func (c *stubComposer) Compose(base catalog.Product, fruitIDs []string) (*Composed, error) {
	if len(fruitIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptySelection, "pick a fruit")
	}
	c.mu.Lock()
	c.seq++
	id := fmt.Sprintf("%s-custom-%d", base.ID, c.seq)
	c.mu.Unlock()
	return testComposed(id, base.ID, base.UnitPrice.String(), base.Stock, fruitIDs...), nil
}

type recordedNote struct {
	scope    string
	severity enums.Severity
	message  string
	code     pkgerrors.Code
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []recordedNote
}

func (n *recordingNotifier) Notify(_ context.Context, scope string, severity enums.Severity, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, recordedNote{scope: scope, severity: severity, message: message})
}

func (n *recordingNotifier) NotifyError(_ context.Context, scope string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	note := recordedNote{scope: scope, severity: enums.SeverityError, message: err.Error()}
	if typed := pkgerrors.As(err); typed != nil {
		note.code = typed.Code()
	}
	n.notes = append(n.notes, note)
}

func (n *recordingNotifier) last() recordedNote {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.notes[len(n.notes)-1]
}

type serviceFixture struct {
	svc      *Service
	store    *failingStore
	notifier *recordingNotifier
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()

	bowl := testProduct("bowl", 100, 10)
	bowl.IsCustomizable = true
	bowl.MaxSubProducts = 5
	weekly := testProduct("bowl-weekly", 1199, 3)
	weekly.HasSubscription = true
	cat, err := catalog.NewMemoryCatalog([]catalog.Product{
		testProduct("apple", 20, 5),
		testProduct("banana", 12, 0),
		bowl,
		weekly,
	})
	require.NoError(t, err)

	store := &failingStore{Store: NewMemoryStore()}
	notifier := &recordingNotifier{}
	svc, err := NewService(ServiceParams{
		Catalog:  cat,
		Composer: &stubComposer{},
		Mirror:   NewMirror(store, logger.Nop()),
		Notifier: notifier,
		Metrics:  metrics.NewCartMetrics(prometheus.NewRegistry()),
		Logger:   logger.Nop(),
	})
	require.NoError(t, err)
	return serviceFixture{svc: svc, store: store, notifier: notifier}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestServiceAddProductMirrorsAndNotifies(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	snap, err := f.svc.AddProduct(ctx, "cart-1", "apple", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalItemCount)

	raw, err := f.store.Store.Load(ctx, "cart-1")
	require.NoError(t, err)
	restored, err := DecodeSnapshot(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.TotalItemCount())

	note := f.notifier.last()
	assert.Equal(t, "cart-1", note.scope)
	assert.Equal(t, enums.SeveritySuccess, note.severity)
}

func TestServiceAddProductErrors(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddProduct(ctx, "cart-1", "missing", 1)
	requireCode(t, err, pkgerrors.CodeNotFound)
	assert.Equal(t, pkgerrors.CodeNotFound, f.notifier.last().code)

	_, err = f.svc.AddProduct(ctx, "cart-1", "banana", 1)
	requireCode(t, err, pkgerrors.CodeStockExceeded)
	assert.Equal(t, pkgerrors.CodeStockExceeded, f.notifier.last().code)

	_, err = f.svc.AddProduct(ctx, " ", "apple", 1)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceCartsAreIsolated(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddProduct(ctx, "cart-a", "apple", 1)
	require.NoError(t, err)

	snap, err := f.svc.Snapshot(ctx, "cart-b")
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestServiceRehydratesFromMirror(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddProduct(ctx, "cart-1", "apple", 3)
	require.NoError(t, err)

	restarted, err := NewService(ServiceParams{
		Catalog:  f.svc.catalog,
		Composer: &stubComposer{},
		Mirror:   NewMirror(f.store.Store, nil),
	})
	require.NoError(t, err)

	qty, err := restarted.QuantityForProduct(ctx, "cart-1", "apple")
	require.NoError(t, err)
	assert.Equal(t, 3, qty)
}

func TestServiceSaveFailureKeepsMutation(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.store.saveErr = errors.New("quota exceeded")

	snap, err := f.svc.AddProduct(context.Background(), "cart-1", "apple", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalItemCount)

	snap, err = f.svc.Snapshot(context.Background(), "cart-1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalItemCount)
}

func TestServiceCustomizedFlow(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddCustomized(ctx, "cart-1", "bowl", nil)
	requireCode(t, err, pkgerrors.CodeEmptySelection)

	_, err = f.svc.AddCustomized(ctx, "cart-1", "bowl", []string{"apple"})
	require.NoError(t, err)
	_, err = f.svc.AddCustomized(ctx, "cart-1", "bowl", []string{"apple"})
	require.NoError(t, err)
	_, err = f.svc.AddProduct(ctx, "cart-1", "bowl", 1)
	require.NoError(t, err)

	qty, err := f.svc.QuantityForProduct(ctx, "cart-1", "bowl")
	require.NoError(t, err)
	assert.Equal(t, 3, qty)

	snap, changed, err := f.svc.DecrementProduct(ctx, "cart-1", "bowl")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, snap.Items, 2)
	_, stillThere := findItem(snap, "bowl-custom-2")
	assert.False(t, stillThere)
}

func TestServiceSetQuantityRemoveAndClear(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddProduct(ctx, "cart-1", "apple", 5)
	require.NoError(t, err)

	snap, err := f.svc.SetQuantity(ctx, "cart-1", "apple", 6)
	requireCode(t, err, pkgerrors.CodeStockExceeded)
	assert.Equal(t, 5, snap.TotalItemCount)

	_, err = f.svc.SetQuantity(ctx, "cart-1", "missing", 1)
	requireCode(t, err, pkgerrors.CodeNotFound)

	snap, err = f.svc.Remove(ctx, "cart-1", "apple")
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
	_, err = f.svc.Remove(ctx, "cart-1", "apple")
	require.NoError(t, err)

	_, err = f.svc.AddProduct(ctx, "cart-1", "bowl-weekly", 1)
	require.NoError(t, err)
	snap, err = f.svc.Clear(ctx, "cart-1")
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())

	raw, err := f.store.Store.Load(ctx, "cart-1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))
}

func TestServiceConcurrentAddsStayWithinStock(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.AddProduct(ctx, "cart-1", "apple", 1)
		}()
	}
	wg.Wait()

	qty, err := f.svc.QuantityForProduct(ctx, "cart-1", "apple")
	require.NoError(t, err)
	assert.Equal(t, 5, qty)
}

func TestServiceLoadFailureKeepsDurableCart(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddProduct(ctx, "cart-1", "apple", 3)
	require.NoError(t, err)

	flaky := &failingStore{Store: f.store.Store, loadErr: errors.New("connection refused")}
	restarted, err := NewService(ServiceParams{
		Catalog:  f.svc.catalog,
		Composer: &stubComposer{},
		Mirror:   NewMirror(flaky, nil),
	})
	require.NoError(t, err)

	_, err = restarted.Snapshot(ctx, "cart-1")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())

	_, err = restarted.AddProduct(ctx, "cart-1", "apple", 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())

	raw, err := f.store.Store.Load(ctx, "cart-1")
	require.NoError(t, err)
	durable, err := DecodeSnapshot(raw)
	require.NoError(t, err)
	assert.Equal(t, 3, durable.TotalItemCount())

	flaky.loadErr = nil
	snap, err := restarted.AddProduct(ctx, "cart-1", "apple", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.TotalItemCount)
}

func TestServiceReadOfUnknownCartIsNotCached(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	snap, err := f.svc.Snapshot(ctx, "ghost")
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
	qty, err := f.svc.QuantityForProduct(ctx, "ghost", "apple")
	require.NoError(t, err)
	assert.Zero(t, qty)
	assert.Zero(t, f.svc.carts.Len())
}

func TestServiceEvictsIdleCartsAndRehydrates(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()
	svc, err := NewService(ServiceParams{
		Catalog:  f.svc.catalog,
		Composer: &stubComposer{},
		Mirror:   NewMirror(f.store.Store, nil),
		IdleTTL:  20 * time.Millisecond,
	})
	require.NoError(t, err)
	svc.Start()
	defer svc.Stop()

	_, err = svc.AddProduct(ctx, "cart-1", "apple", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.carts.Len())

	require.Eventually(t, func() bool {
		return svc.carts.Len() == 0
	}, time.Second, 5*time.Millisecond)

	qty, err := svc.QuantityForProduct(ctx, "cart-1", "apple")
	require.NoError(t, err)
	assert.Equal(t, 2, qty)
}

func TestServiceCapacityEvictsOldestCart(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()
	svc, err := NewService(ServiceParams{
		Catalog:  f.svc.catalog,
		Composer: &stubComposer{},
		Mirror:   NewMirror(f.store.Store, nil),
		MaxCarts: 2,
	})
	require.NoError(t, err)

	for _, id := range []string{"cart-a", "cart-b", "cart-c"} {
		_, err := svc.AddProduct(ctx, id, "apple", 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, svc.carts.Len())
	assert.Nil(t, svc.carts.Get("cart-a"))

	snap, err := svc.AddProduct(ctx, "cart-a", "apple", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalItemCount)
}

func findItem(s Snapshot, id string) (LineItem, bool) {
	for _, item := range s.Items {
		if item.Details().ID == id {
			return item, true
		}
	}
	return nil, false
}
