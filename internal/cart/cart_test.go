package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellora/client-go/internal/model"
	"github.com/sellora/client-go/internal/storage"
)

func intPtr(n int) *int { return &n }

func setupCartTest(t *testing.T) (*Store, *storage.Memory, context.Context) {
	kv := storage.NewMemory()
	store := NewStore(kv)
	return store, kv, context.Background()
}

func testProduct(id string, price float64, stock *int) *model.Product {
	return &model.Product{
		ID:    id,
		Name:  "Product " + id,
		Price: price,
		Stock: stock,
	}
}

func TestCartStore_Add_NewLine(t *testing.T) {
	store, _, ctx := setupCartTest(t)

	changed := store.Add(ctx, testProduct("p1", 10, intPtr(5)))
	assert.True(t, changed)

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestCartStore_Add_SameProductNeverDuplicatesLine(t *testing.T) {
	store, _, ctx := setupCartTest(t)
	product := testProduct("p1", 10, intPtr(5))

	store.Add(ctx, product)
	store.Add(ctx, product)
	store.Add(ctx, product)

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestCartStore_Add_StockCeilingSoftCap(t *testing.T) {
	store, _, ctx := setupCartTest(t)
	product := testProduct("p1", 10, intPtr(2))

	assert.True(t, store.Add(ctx, product))
	assert.True(t, store.Add(ctx, product))
	// Third add hits the ceiling: silent no-op, reported via the flag.
	assert.False(t, store.Add(ctx, product))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCartStore_Add_ZeroStockStillInsertsOnce(t *testing.T) {
	store, _, ctx := setupCartTest(t)
	product := testProduct("p1", 10, intPtr(0))

	assert.True(t, store.Add(ctx, product))
	assert.False(t, store.Add(ctx, product))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestCartStore_Add_NoStockCeiling(t *testing.T) {
	store, _, ctx := setupCartTest(t)
	product := testProduct("p1", 10, nil)

	for i := 0; i < 50; i++ {
		assert.True(t, store.Add(ctx, product))
	}
	assert.Equal(t, 50, store.Totals().Count)
}

func TestCartStore_Decrease(t *testing.T) {
	store, _, ctx := setupCartTest(t)
	product := testProduct("p1", 10, intPtr(5))

	store.Add(ctx, product)
	store.Add(ctx, product)

	store.Decrease(ctx, "p1")
	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)

	// Quantity 1: the line is removed, not kept at zero.
	store.Decrease(ctx, "p1")
	assert.Empty(t, store.Lines())
}

func TestCartStore_Decrease_MissingLineIsNoOp(t *testing.T) {
	store, _, ctx := setupCartTest(t)

	assert.NotPanics(t, func() {
		store.Decrease(ctx, "missing")
	})
	assert.Empty(t, store.Lines())
}

func TestCartStore_Remove(t *testing.T) {
	store, _, ctx := setupCartTest(t)

	store.Add(ctx, testProduct("p1", 10, intPtr(5)))
	store.Add(ctx, testProduct("p2", 20, intPtr(5)))

	store.Remove(ctx, "p1")
	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p2", lines[0].ProductID)

	assert.NotPanics(t, func() {
		store.Remove(ctx, "missing")
	})
	assert.Len(t, store.Lines(), 1)
}

func TestCartStore_Totals_MatchLines(t *testing.T) {
	store, _, ctx := setupCartTest(t)

	store.Add(ctx, testProduct("p1", 10, intPtr(5)))
	store.Add(ctx, testProduct("p1", 10, intPtr(5)))
	store.Add(ctx, testProduct("p2", 7.5, intPtr(5)))

	totals := store.Totals()
	assert.Equal(t, 3, totals.Count)
	assert.InDelta(t, 27.5, totals.Amount, 0.001)

	// Recomputation is idempotent.
	assert.Equal(t, totals, store.Totals())
}

func TestCartStore_Clear(t *testing.T) {
	store, _, ctx := setupCartTest(t)

	store.Add(ctx, testProduct("p1", 10, intPtr(5)))
	store.Clear(ctx)

	assert.Empty(t, store.Lines())
	totals := store.Totals()
	assert.Equal(t, 0, totals.Count)
	assert.Zero(t, totals.Amount)
}

func TestCartStore_StockCeilingScenario(t *testing.T) {
	store, _, ctx := setupCartTest(t)
	product := testProduct("productA", 10, intPtr(2))

	store.Add(ctx, product)
	assert.Equal(t, model.CartTotals{Amount: 10, Count: 1}, store.Totals())

	store.Add(ctx, product)
	assert.Equal(t, model.CartTotals{Amount: 20, Count: 2}, store.Totals())

	store.Add(ctx, product)
	assert.Equal(t, model.CartTotals{Amount: 20, Count: 2}, store.Totals())

	store.Decrease(ctx, "productA")
	assert.Equal(t, model.CartTotals{Amount: 10, Count: 1}, store.Totals())

	store.Decrease(ctx, "productA")
	assert.Equal(t, model.CartTotals{Amount: 0, Count: 0}, store.Totals())
	assert.Empty(t, store.Lines())
}

func TestCartStore_PersistsAcrossReload(t *testing.T) {
	store, kv, ctx := setupCartTest(t)

	store.Add(ctx, testProduct("p1", 10, intPtr(5)))
	store.Add(ctx, testProduct("p1", 10, intPtr(5)))
	store.Add(ctx, testProduct("p2", 20, intPtr(3)))

	// A fresh store over the same storage sees the same lines and totals.
	reloaded := NewStore(kv)
	reloaded.Load(ctx)

	lines := reloaded.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, model.CartTotals{Amount: 40, Count: 3}, reloaded.Totals())
}

func TestCartStore_Load_CorruptStateStartsEmpty(t *testing.T) {
	store, kv, ctx := setupCartTest(t)

	require.NoError(t, kv.Set(ctx, storage.KeyCartItems, "{not json"))
	store.Load(ctx)

	assert.Empty(t, store.Lines())
}
