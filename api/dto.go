/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP surface. They decouple the domain model
  from the wire contract: references travel as IDs, fractional money
  values as decimal strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Done in handlers and the domain layer, not in DTOs. DTOs are pure
  data carriers.
*/
package api

import "time"

// =============================================================================
// USERS
// =============================================================================

type UserDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateUserRequest struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// =============================================================================
// TODOS
// =============================================================================

type TodoDTO struct {
	ID          int64      `json:"id"`
	Maintainers []string   `json:"maintainers"`
	Title       string     `json:"title"`
	CreatedAt   time.Time  `json:"created_at"`
	ParentID    *int64     `json:"parent_id,omitempty"`
	Level       int        `json:"level"`
	Description string     `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Progress    int        `json:"progress"`
	Archived    bool       `json:"archived"`
}

type CreateTodoRequest struct {
	Maintainers []string   `json:"maintainers"`
	Title       string     `json:"title"`
	ParentID    *int64     `json:"parent_id,omitempty"`
	Description string     `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Progress    int        `json:"progress,omitempty"`
}

type SetParentRequest struct {
	// ParentID of the new parent; null clears the link.
	ParentID *int64 `json:"parent_id"`
}

type SetProgressRequest struct {
	Progress int `json:"progress"`
}

type ToggleArchiveResponse struct {
	Archived bool `json:"archived"`
}

// =============================================================================
// LEDGER
// =============================================================================

type ExpenseDTO struct {
	ID          int64            `json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	Title       string           `json:"title"`
	Payers      map[string]int64 `json:"payers"`
	Sharers     []string         `json:"sharers"`
	Price       int64            `json:"price"`
	SharedPrice string           `json:"shared_price"`
	BalanceID   *int64           `json:"balance_id,omitempty"`
	TaskID      *int64           `json:"task_id,omitempty"`
	Description string           `json:"description,omitempty"`
}

type CreateExpenseRequest struct {
	Title       string           `json:"title"`
	Payers      map[string]int64 `json:"payers"`
	Sharers     []string         `json:"sharers,omitempty"` // omitted: the payers share
	TaskID      *int64           `json:"task_id,omitempty"`
	Description string           `json:"description,omitempty"`
}

type BalanceDTO struct {
	ID         int64            `json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	Title      string           `json:"title"`
	Payers     map[string]int64 `json:"payers"`
	ExpenseIDs []int64          `json:"expense_ids"`
}

// BillRequest selects the expense set a bill is computed over.
type BillRequest struct {
	ExpenseIDs []int64 `json:"expense_ids"`
}

// BillDTO carries the per-user aggregation of a bill. Fractional
// amounts are decimal strings in minor units.
type BillDTO struct {
	ExpenseIDs   []int64           `json:"expense_ids"`
	Participants []string          `json:"participants"`
	UserPaid     map[string]int64  `json:"user_paid"`
	SharedPrice  string            `json:"shared_price"`
	UserPrices   map[string]string `json:"user_prices"`
	UserBalances map[string]string `json:"user_balances"`
}

// SettleRequest settles a bill. Payers, when given, override the
// rounded plan and must exactly match the bill's participants.
type SettleRequest struct {
	ExpenseIDs []int64          `json:"expense_ids"`
	Minimum    int64            `json:"minimum"`
	Payers     map[string]int64 `json:"payers,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
