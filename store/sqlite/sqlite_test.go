package sqlite_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/homeledger/ledger"
	"github.com/warp/homeledger/store"
	"github.com/warp/homeledger/store/sqlite"
	"github.com/warp/homeledger/tasks"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func ref(v int64) *int64 { return &v }

func sampleState() *store.State {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	due := created.AddDate(0, 0, 7)

	return &store.State{
		Users: []store.UserRecord{
			{ID: "ana", Name: "Ana"},
			{ID: "ben", Name: "Ben"},
		},
		Todos: []tasks.TodoSnapshot{
			{ID: 0, Maintainers: []string{"ana"}, Title: "spring cleaning", CreatedAt: created, Archived: true},
			{ID: 1, Maintainers: []string{"ana", "ben"}, Title: "kitchen", CreatedAt: created, ParentID: ref(0), DueAt: &due, Progress: 30, Description: "degrease everything"},
		},
		Expenses: []ledger.ExpenseSnapshot{
			{ID: 0, CreatedAt: created, Title: "supplies", Payers: map[string]int64{"ana": 600, "ben": 400}, Sharers: []string{"ana", "ben"}, TaskID: ref(1)},
			{ID: 1, CreatedAt: created, Title: "takeout", Payers: map[string]int64{"ben": 2000}, Sharers: []string{"ana", "ben"}, BalanceID: ref(2)},
		},
		Balances: []ledger.BalanceSnapshot{
			{ID: 2, CreatedAt: created, Title: "Balance", Payers: map[string]int64{"ana": 1000, "ben": -1000}, ExpenseIDs: []int64{1}},
		},
		NextItemID: 3,
	}
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

func TestDB_SaveLoad_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Save(sampleState()))

	loaded, err := db.Load()
	require.NoError(t, err)

	assert.Equal(t, sampleState(), loaded)
}

func TestDB_Load_FreshDatabaseIsEmpty(t *testing.T) {
	db := openTestDB(t)

	loaded, err := db.Load()
	require.NoError(t, err)

	assert.Empty(t, loaded.Users)
	assert.Empty(t, loaded.Todos)
	assert.Empty(t, loaded.Expenses)
	assert.Empty(t, loaded.Balances)
	assert.Zero(t, loaded.NextItemID)
}

func TestDB_Save_ReplacesPreviousState(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Save(sampleState()))

	smaller := &store.State{
		Users:      []store.UserRecord{{ID: "ana", Name: "Ana"}},
		NextItemID: 3,
	}
	require.NoError(t, db.Save(smaller))

	loaded, err := db.Load()
	require.NoError(t, err)
	assert.Len(t, loaded.Users, 1)
	assert.Empty(t, loaded.Todos)
	assert.Empty(t, loaded.Expenses)
	assert.Equal(t, int64(3), loaded.NextItemID)
}

func TestDB_SaveLoad_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	db, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Save(sampleState()))
	require.NoError(t, db.Close())

	db, err = sqlite.Open(path)
	require.NoError(t, err)
	defer db.Close()

	loaded, err := db.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleState(), loaded)
}

func TestDB_Loaded_StateRestores(t *testing.T) {
	// The loaded records must be accepted by the domain restore path.

	db := openTestDB(t)
	require.NoError(t, db.Save(sampleState()))

	loaded, err := db.Load()
	require.NoError(t, err)

	_, tree, reg, err := loaded.Restore()
	require.NoError(t, err)

	kitchen, err := tree.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Level(kitchen))

	takeout, err := reg.Expense(1)
	require.NoError(t, err)
	assert.True(t, takeout.Settled())
	assert.Equal(t, int64(3), reg.NextID())
}
