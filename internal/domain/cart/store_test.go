package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenlight/pizzeria-cart/internal/storage"
)

// --- Helpers ---

const testKey = "cart:test"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func openTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	slot := storage.NewMemory()
	store, err := Open(context.Background(), slot, testKey)
	require.NoError(t, err)
	return store, slot
}

// failingSlot returns an error from Set while allowing reads.
type failingSlot struct {
	storage.Slot
	setErr error
}

func (f *failingSlot) Set(_ context.Context, _ string, _ []byte) error {
	return f.setErr
}

func assertTotals(t *testing.T, totals Totals, subtotal, tax, total string, count int) {
	t.Helper()
	assert.True(t, dec(subtotal).Equal(totals.Subtotal), "subtotal: want %s, got %s", subtotal, totals.Subtotal)
	assert.True(t, dec(tax).Equal(totals.Tax), "tax: want %s, got %s", tax, totals.Tax)
	assert.True(t, dec(total).Equal(totals.Total), "total: want %s, got %s", total, totals.Total)
	assert.Equal(t, count, totals.ItemCount)
}

// --- Tests ---

func TestOpen_EmptySlot(t *testing.T) {
	store, _ := openTestStore(t)

	assert.Empty(t, store.Snapshot())
	assertTotals(t, store.Totals(), "0", "0", "0", 0)
}

func TestOpen_MalformedState(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"invalid json", `{"name": "Margherita`},
		{"not an array", `{"name":"Margherita (Medium)","price":30,"quantity":1}`},
		{"element not an object", `["Margherita"]`},
		{"missing quantity", `[{"name":"Margherita (Medium)","price":30}]`},
		{"price not a number", `[{"name":"Margherita (Medium)","price":"30","quantity":1}]`},
		{"negative price", `[{"name":"Margherita (Medium)","price":-30,"quantity":1}]`},
		{"zero quantity", `[{"name":"Margherita (Medium)","price":30,"quantity":0}]`},
		{"fractional quantity", `[{"name":"Margherita (Medium)","price":30,"quantity":1.5}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slot := storage.NewMemory()
			require.NoError(t, slot.Set(context.Background(), testKey, []byte(tc.data)))

			store, err := Open(context.Background(), slot, testKey)
			require.NoError(t, err)
			assert.Empty(t, store.Snapshot())
			assertTotals(t, store.Totals(), "0", "0", "0", 0)
		})
	}
}

func TestOpen_SlotFailure(t *testing.T) {
	slot := &failingGetSlot{err: errors.New("connection refused")}

	_, err := Open(context.Background(), slot, testKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load cart")
}

type failingGetSlot struct {
	storage.Slot
	err error
}

func (f *failingGetSlot) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, f.err
}

func TestAddItem_MergesSameLine(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "Margherita", dec("30"), "Medium")
	require.NoError(t, err)
	ch, err := store.AddItem(ctx, "Margherita", dec("30"), "Medium")
	require.NoError(t, err)

	require.Len(t, ch.Items, 1)
	assert.Equal(t, "Margherita (Medium)", ch.Items[0].Name)
	assert.Equal(t, 2, ch.Items[0].Quantity)
	assert.Equal(t, "Added to cart: Margherita (Medium)", ch.Message)
	assertTotals(t, ch.Totals, "60", "6", "66", 2)
}

func TestAddItem_DifferentPriceIsNewLine(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "Margherita", dec("30"), "Medium")
	require.NoError(t, err)
	// Catalog price drift: same label, different price, separate line.
	ch, err := store.AddItem(ctx, "Margherita", dec("32"), "Medium")
	require.NoError(t, err)

	require.Len(t, ch.Items, 2)
	assert.Equal(t, 1, ch.Items[0].Quantity)
	assert.Equal(t, 1, ch.Items[1].Quantity)
}

func TestAddItem_NegativePriceIsNoOp(t *testing.T) {
	store, slot := openTestStore(t)
	ctx := context.Background()

	ch, err := store.AddItem(ctx, "X", dec("-5"), "Small")
	require.NoError(t, err)

	assert.Empty(t, ch.Items)
	assert.Empty(t, ch.Message)
	assert.Empty(t, store.Snapshot())

	// Nothing was persisted either.
	_, err = slot.Get(ctx, testKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestChangeQuantity_RemovesAtZero(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "Pepperoni", dec("40"), "Large")
	require.NoError(t, err)

	ch, err := store.ChangeQuantity(ctx, 0, -1)
	require.NoError(t, err)

	assert.Empty(t, ch.Items)
	assertTotals(t, ch.Totals, "0", "0", "0", 0)
}

func TestChangeQuantity_NeverLeavesNonPositive(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "Hawaiian", dec("33"), "Medium")
	require.NoError(t, err)

	// Large negative delta removes the line instead of leaving qty < 0.
	ch, err := store.ChangeQuantity(ctx, 0, -10)
	require.NoError(t, err)
	assert.Empty(t, ch.Items)

	for _, item := range store.Snapshot() {
		assert.GreaterOrEqual(t, item.Quantity, 1)
	}
}

func TestChangeQuantity_OutOfRangeIsNoOp(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "Veggie", dec("31"), "Medium")
	require.NoError(t, err)

	for _, index := range []int{-1, 1, 42} {
		ch, err := store.ChangeQuantity(ctx, index, 1)
		require.NoError(t, err)
		require.Len(t, ch.Items, 1)
		assert.Equal(t, 1, ch.Items[0].Quantity)
	}
}

func TestRemoveItem(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "Supreme", dec("39"), "Medium")
	require.NoError(t, err)
	_, err = store.AddItem(ctx, "Buffalo", dec("36"), "Medium")
	require.NoError(t, err)

	ch, err := store.RemoveItem(ctx, 0)
	require.NoError(t, err)

	require.Len(t, ch.Items, 1)
	assert.Equal(t, "Buffalo (Medium)", ch.Items[0].Name)
	assert.Equal(t, "Removed Supreme (Medium)", ch.Message)
}

func TestRemoveItem_OutOfRangeIsNoOp(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "Supreme", dec("39"), "Medium")
	require.NoError(t, err)

	ch, err := store.RemoveItem(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, ch.Items, 1)
	assert.Empty(t, ch.Message)
}

func TestClear(t *testing.T) {
	store, slot := openTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "BBQ Chicken", dec("37"), "Medium")
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, store.Snapshot())

	// The empty state is persisted, not just in memory.
	raw, err := slot.Get(ctx, testKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestRoundTrip(t *testing.T) {
	slot := storage.NewMemory()
	ctx := context.Background()

	store, err := Open(ctx, slot, testKey)
	require.NoError(t, err)

	_, err = store.AddItem(ctx, "Margherita", dec("30"), "Medium")
	require.NoError(t, err)
	_, err = store.AddItem(ctx, "Four Cheese", dec("29.50"), "Small")
	require.NoError(t, err)
	_, err = store.AddItem(ctx, "Margherita", dec("30"), "Medium")
	require.NoError(t, err)
	_, err = store.ChangeQuantity(ctx, 1, 2)
	require.NoError(t, err)

	before := store.Snapshot()

	reloaded, err := Open(ctx, slot, testKey)
	require.NoError(t, err)
	after := reloaded.Snapshot()

	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Name, after[i].Name)
		assert.True(t, before[i].UnitPrice.Equal(after[i].UnitPrice))
		assert.Equal(t, before[i].Quantity, after[i].Quantity)
	}
}

func TestPersistFailureRollsBack(t *testing.T) {
	slot := storage.NewMemory()
	ctx := context.Background()

	store, err := Open(ctx, slot, testKey)
	require.NoError(t, err)
	_, err = store.AddItem(ctx, "Margherita", dec("30"), "Medium")
	require.NoError(t, err)

	store.slot = &failingSlot{setErr: errors.New("disk full")}
	_, err = store.AddItem(ctx, "Pepperoni", dec("40"), "Large")
	require.Error(t, err)

	// In-memory state matches what is persisted.
	require.Len(t, store.Snapshot(), 1)
	assert.Equal(t, "Margherita (Medium)", store.Snapshot()[0].Name)
}

func TestOnChange(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	var changes []Change
	store.OnChange(func(ch Change) {
		changes = append(changes, ch)
	})

	_, err := store.AddItem(ctx, "Margherita", dec("30"), "Medium")
	require.NoError(t, err)
	_, err = store.ChangeQuantity(ctx, 0, 1)
	require.NoError(t, err)
	// No-ops do not announce.
	_, err = store.ChangeQuantity(ctx, 99, 1)
	require.NoError(t, err)
	_, err = store.AddItem(ctx, "X", dec("-1"), "Small")
	require.NoError(t, err)

	require.Len(t, changes, 2)
	assert.Equal(t, "Added to cart: Margherita (Medium)", changes[0].Message)
	assert.Empty(t, changes[1].Message)
	assert.Equal(t, 2, changes[1].Items[0].Quantity)
}

func TestSnapshotIsACopy(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.AddItem(ctx, "Margherita", dec("30"), "Medium")
	require.NoError(t, err)

	snap := store.Snapshot()
	snap[0].Quantity = 99

	assert.Equal(t, 1, store.Snapshot()[0].Quantity)
}
