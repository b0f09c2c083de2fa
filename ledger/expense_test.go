package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/homeledger/identity"
	"github.com/warp/homeledger/ledger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newTestLedger returns a ledger with the four household members a-d.
func newTestLedger(t *testing.T) *ledger.Registry {
	t.Helper()
	users := identity.NewRegistry()
	for _, id := range []string{"a", "b", "c", "d"} {
		_, err := users.Create(id, "")
		require.NoError(t, err)
	}
	return ledger.NewRegistry(users)
}

func cents(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// EXPENSE CREATION
// =============================================================================

func TestRegistry_AddExpense_PriceAndSharedPrice(t *testing.T) {
	// Payers {a:700, b:300}, sharers {a, c, d}: price 1000, shared
	// price 333.33...

	reg := newTestLedger(t)
	e, err := reg.AddExpense(ledger.ExpenseParams{
		Title:   "groceries",
		Payers:  map[string]int64{"a": 700, "b": 300},
		Sharers: []string{"a", "c", "d"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1000), e.Price())
	shared, _ := e.SharedPrice().Float64()
	assert.InDelta(t, 333.333, shared, 0.001)
}

func TestRegistry_AddExpense_SharersDefaultToPayers(t *testing.T) {
	reg := newTestLedger(t)
	e, err := reg.AddExpense(ledger.ExpenseParams{
		Title:  "pizza",
		Payers: map[string]int64{"d": 1200, "b": 300},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "d"}, e.Sharers, "default sharers are the payers, sorted")
}

func TestRegistry_AddExpense_RejectsNegativeContribution(t *testing.T) {
	tests := []struct {
		name   string
		payers map[string]int64
	}{
		{"single negative", map[string]int64{"a": -1}},
		{"negative entry, positive total", map[string]int64{"a": 10, "b": 20, "c": -5}},
		{"negative total", map[string]int64{"a": 10, "b": -20, "c": 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestLedger(t)
			_, err := reg.AddExpense(ledger.ExpenseParams{Title: "bad", Payers: tt.payers})
			assert.ErrorIs(t, err, ledger.ErrNegativeContribution)
			assert.Empty(t, reg.Items(), "failed creation must not register anything")
		})
	}
}

func TestRegistry_AddExpense_RejectsUnknownUsers(t *testing.T) {
	reg := newTestLedger(t)

	_, err := reg.AddExpense(ledger.ExpenseParams{
		Title:  "ghost",
		Payers: map[string]int64{"nobody": 100},
	})
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestRegistry_AddExpense_NormalizesUserIDs(t *testing.T) {
	reg := newTestLedger(t)
	e, err := reg.AddExpense(ledger.ExpenseParams{
		Title:   "mixed case",
		Payers:  map[string]int64{"A": 500},
		Sharers: []string{"B", "a"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(500), e.Payers["a"])
	assert.Equal(t, []string{"b", "a"}, e.Sharers)
}

// =============================================================================
// REGISTRY LIFECYCLE
// =============================================================================

func TestRegistry_IDsAreMonotonic_EvenAfterDelete(t *testing.T) {
	reg := newTestLedger(t)

	first, err := reg.AddExpense(ledger.ExpenseParams{Title: "one", Payers: map[string]int64{"a": 1}})
	require.NoError(t, err)
	second, err := reg.AddExpense(ledger.ExpenseParams{Title: "two", Payers: map[string]int64{"a": 1}})
	require.NoError(t, err)
	assert.Equal(t, first.ID+1, second.ID)

	require.NoError(t, reg.Delete(first.ID))

	third, err := reg.AddExpense(ledger.ExpenseParams{Title: "three", Payers: map[string]int64{"a": 1}})
	require.NoError(t, err)
	assert.Equal(t, second.ID+1, third.ID, "deleted IDs are never reused")
}

func TestRegistry_Delete_Unknown(t *testing.T) {
	reg := newTestLedger(t)
	assert.ErrorIs(t, reg.Delete(42), ledger.ErrNotFound)
}

func TestRegistry_Lookup(t *testing.T) {
	reg := newTestLedger(t)
	e, err := reg.AddExpense(ledger.ExpenseParams{Title: "x", Payers: map[string]int64{"a": 1}})
	require.NoError(t, err)

	item, err := reg.Lookup(e.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.KindExpense, item.ItemKind())

	_, err = reg.Lookup(e.ID + 100)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
