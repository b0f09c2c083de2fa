/*
Package sqlite provides SQLite-backed persistence for the household
state.

PURPOSE:
  Persists and reloads a complete store.State. The household data set
  is tiny (one group's tasks and expenses), so Save replaces the whole
  state inside one database transaction instead of tracking row-level
  diffs - simple and atomic.

KEY TABLES:
  users:       registered members
  todos:       task nodes, parent as nullable reference ID
  money_items: both ledger variants, tagged by kind
  meta:        the ledger's monotonic ID counter

WAL MODE:
  The database is opened with WAL for better crash recovery. A mutex
  serializes Save/Load; SQLite handles the rest.

USAGE:
  db, err := sqlite.Open("./homeledger.db")
  defer db.Close()
  state, err := db.Load()
  ...
  err = db.Save(store.Capture(users, tree, reg))
*/
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/homeledger/ledger"
	"github.com/warp/homeledger/store"
	"github.com/warp/homeledger/tasks"
)

// DB persists whole-state snapshots in SQLite.
type DB struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (and migrates) the database at path. Use ":memory:" for
// an in-memory database in tests.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error { return d.db.Close() }

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS todos (
		id          INTEGER PRIMARY KEY,
		maintainers TEXT NOT NULL,
		title       TEXT NOT NULL,
		created_at  INTEGER NOT NULL,
		parent_id   INTEGER,
		description TEXT NOT NULL DEFAULT '',
		due_at      INTEGER,
		progress    INTEGER NOT NULL DEFAULT 0,
		archived    INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS money_items (
		id          INTEGER PRIMARY KEY,
		kind        TEXT NOT NULL,
		created_at  INTEGER NOT NULL,
		title       TEXT NOT NULL,
		payers      TEXT NOT NULL,
		sharers     TEXT,
		balance_id  INTEGER,
		task_id     INTEGER,
		expense_ids TEXT,
		description TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Save replaces the stored state with s, atomically.
func (d *DB) Save(s *store.State) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"users", "todos", "money_items", "meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, u := range s.Users {
		if _, err := tx.Exec(`INSERT INTO users (id, name) VALUES (?, ?)`, u.ID, u.Name); err != nil {
			return fmt.Errorf("save user %q: %w", u.ID, err)
		}
	}

	for _, t := range s.Todos {
		maintainers, err := json.Marshal(t.Maintainers)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO todos (id, maintainers, title, created_at, parent_id, description, due_at, progress, archived)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, string(maintainers), t.Title, t.CreatedAt.UnixMilli(),
			nullableID(t.ParentID), t.Description, nullableTime(t.DueAt),
			t.Progress, t.Archived,
		); err != nil {
			return fmt.Errorf("save todo %d: %w", t.ID, err)
		}
	}

	for _, e := range s.Expenses {
		payers, err := json.Marshal(e.Payers)
		if err != nil {
			return err
		}
		sharers, err := json.Marshal(e.Sharers)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO money_items (id, kind, created_at, title, payers, sharers, balance_id, task_id, description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, string(ledger.KindExpense), e.CreatedAt.UnixMilli(), e.Title,
			string(payers), string(sharers), nullableID(e.BalanceID),
			nullableID(e.TaskID), e.Description,
		); err != nil {
			return fmt.Errorf("save expense %d: %w", e.ID, err)
		}
	}

	for _, b := range s.Balances {
		payers, err := json.Marshal(b.Payers)
		if err != nil {
			return err
		}
		expenseIDs, err := json.Marshal(b.ExpenseIDs)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO money_items (id, kind, created_at, title, payers, expense_ids, description)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			b.ID, string(ledger.KindBalance), b.CreatedAt.UnixMilli(), b.Title,
			string(payers), string(expenseIDs), b.Description,
		); err != nil {
			return fmt.Errorf("save balance %d: %w", b.ID, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('next_item_id', ?)`,
		fmt.Sprintf("%d", s.NextItemID)); err != nil {
		return err
	}

	return tx.Commit()
}

// Load reads the stored state. A fresh database yields an empty state.
func (d *DB) Load() (*store.State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := &store.State{}

	rows, err := d.db.Query(`SELECT id, name FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var u store.UserRecord
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		s.Users = append(s.Users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := d.loadTodos(s); err != nil {
		return nil, err
	}
	if err := d.loadItems(s); err != nil {
		return nil, err
	}

	var next sql.NullString
	err = d.db.QueryRow(`SELECT value FROM meta WHERE key = 'next_item_id'`).Scan(&next)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if next.Valid {
		if _, err := fmt.Sscanf(next.String, "%d", &s.NextItemID); err != nil {
			return nil, fmt.Errorf("parse next_item_id: %w", err)
		}
	}

	return s, nil
}

func (d *DB) loadTodos(s *store.State) error {
	rows, err := d.db.Query(`
		SELECT id, maintainers, title, created_at, parent_id, description, due_at, progress, archived
		FROM todos ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t           tasks.TodoSnapshot
			maintainers string
			createdAt   int64
			parentID    sql.NullInt64
			dueAt       sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &maintainers, &t.Title, &createdAt,
			&parentID, &t.Description, &dueAt, &t.Progress, &t.Archived); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(maintainers), &t.Maintainers); err != nil {
			return fmt.Errorf("todo %d maintainers: %w", t.ID, err)
		}
		t.CreatedAt = time.UnixMilli(createdAt).UTC()
		if parentID.Valid {
			id := parentID.Int64
			t.ParentID = &id
		}
		if dueAt.Valid {
			due := time.UnixMilli(dueAt.Int64).UTC()
			t.DueAt = &due
		}
		s.Todos = append(s.Todos, t)
	}
	return rows.Err()
}

func (d *DB) loadItems(s *store.State) error {
	rows, err := d.db.Query(`
		SELECT id, kind, created_at, title, payers, sharers, balance_id, task_id, expense_ids, description
		FROM money_items ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id         int64
			kind       string
			createdAt  int64
			title      string
			payersJSON string
			sharers    sql.NullString
			balanceID  sql.NullInt64
			taskID     sql.NullInt64
			expenseIDs sql.NullString
			desc       string
		)
		if err := rows.Scan(&id, &kind, &createdAt, &title, &payersJSON,
			&sharers, &balanceID, &taskID, &expenseIDs, &desc); err != nil {
			return err
		}

		payers := make(map[string]int64)
		if err := json.Unmarshal([]byte(payersJSON), &payers); err != nil {
			return fmt.Errorf("item %d payers: %w", id, err)
		}

		switch ledger.Kind(kind) {
		case ledger.KindExpense:
			e := ledger.ExpenseSnapshot{
				ID:          id,
				CreatedAt:   time.UnixMilli(createdAt).UTC(),
				Title:       title,
				Payers:      payers,
				Description: desc,
			}
			if sharers.Valid {
				if err := json.Unmarshal([]byte(sharers.String), &e.Sharers); err != nil {
					return fmt.Errorf("item %d sharers: %w", id, err)
				}
			}
			if balanceID.Valid {
				v := balanceID.Int64
				e.BalanceID = &v
			}
			if taskID.Valid {
				v := taskID.Int64
				e.TaskID = &v
			}
			s.Expenses = append(s.Expenses, e)

		case ledger.KindBalance:
			b := ledger.BalanceSnapshot{
				ID:          id,
				CreatedAt:   time.UnixMilli(createdAt).UTC(),
				Title:       title,
				Payers:      payers,
				Description: desc,
			}
			if expenseIDs.Valid {
				if err := json.Unmarshal([]byte(expenseIDs.String), &b.ExpenseIDs); err != nil {
					return fmt.Errorf("item %d expense ids: %w", id, err)
				}
			}
			s.Balances = append(s.Balances, b)

		default:
			return fmt.Errorf("item %d: unknown kind %q", id, kind)
		}
	}
	return rows.Err()
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
