/*
handlers.go - HTTP handlers for the household ledger

PURPOSE:
  Exposes the domain registries over REST. Handles request parsing,
  DTO mapping, error-to-status translation and persistence after every
  successful mutation. All domain rules live in the domain packages.

ERROR HANDLING:
  Domain errors map to HTTP status by kind:
  - 400: invalid ids, empty titles, tree violations, negative
         contributions, participant mismatch, unbalanceable shares
  - 404: unknown user/todo/item IDs
  - 409: duplicate user ID, already settled expenses
  - 500: anything else (including persistence failures)

CONCURRENCY:
  The registries are single-writer by design. One handler-level mutex
  serializes every request against them; at household scale that is
  plenty.

SEE ALSO:
  - dto.go: Wire types
  - server.go: Router and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/warp/homeledger/identity"
	"github.com/warp/homeledger/ledger"
	"github.com/warp/homeledger/store"
	"github.com/warp/homeledger/tasks"
)

// StateStore persists whole-state snapshots. Nil disables persistence
// (useful in tests).
type StateStore interface {
	Save(*store.State) error
}

// Handler holds the domain registries and the persistence backend.
type Handler struct {
	mu     sync.Mutex
	users  *identity.Registry
	tree   *tasks.Tree
	ledger *ledger.Registry
	db     StateStore
}

// NewHandler wires a handler over the given registries.
func NewHandler(users *identity.Registry, tree *tasks.Tree, reg *ledger.Registry, db StateStore) *Handler {
	return &Handler{users: users, tree: tree, ledger: reg, db: db}
}

// persist snapshots the registries into the store. Called with the
// mutex held, after the mutation succeeded.
func (h *Handler) persist() {
	if h.db == nil {
		return
	}
	if err := h.db.Save(store.Capture(h.users, h.tree, h.ledger)); err != nil {
		slog.Error("persist failed", "error", err)
	}
}

// =============================================================================
// USERS
// =============================================================================

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	users := h.users.All()
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, UserDTO{ID: u.ID, Name: u.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	u, err := h.users.Create(req.ID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	h.persist()
	writeJSON(w, http.StatusCreated, UserDTO{ID: u.ID, Name: u.Name})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	u, err := h.users.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserDTO{ID: u.ID, Name: u.Name})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.users.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	h.persist()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TODOS
// =============================================================================

func (h *Handler) todoDTO(t *tasks.Todo) TodoDTO {
	dto := TodoDTO{
		ID:          t.ID,
		Maintainers: make([]string, 0, len(t.Maintainers)),
		Title:       t.Title,
		CreatedAt:   t.CreatedAt,
		Level:       h.tree.Level(t),
		Description: t.Description,
		DueAt:       t.DueAt,
		Progress:    t.Progress(),
		Archived:    h.tree.IsArchived(t),
	}
	for _, u := range t.Maintainers {
		dto.Maintainers = append(dto.Maintainers, u.ID)
	}
	if pid, ok := t.Parent(); ok {
		dto.ParentID = &pid
	}
	return dto
}

func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	todos := h.tree.Active()
	if r.URL.Query().Get("archived") == "true" {
		todos = h.tree.Archived()
	}
	out := make([]TodoDTO, 0, len(todos))
	for _, t := range todos {
		out = append(out, h.todoDTO(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	params := tasks.TodoParams{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		Progress:    req.Progress,
	}
	for _, id := range req.Maintainers {
		u, err := h.users.Lookup(id)
		if err != nil {
			writeError(w, err)
			return
		}
		params.Maintainers = append(params.Maintainers, u)
	}
	if req.ParentID != nil {
		parent, err := h.tree.Lookup(*req.ParentID)
		if err != nil {
			writeError(w, err)
			return
		}
		params.Parent = parent
	}

	t, err := h.tree.Create(params)
	if err != nil {
		writeError(w, err)
		return
	}
	h.persist()
	writeJSON(w, http.StatusCreated, h.todoDTO(t))
}

func (h *Handler) GetTodo(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, err := h.lookupTodo(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.todoDTO(t))
}

func (h *Handler) SetTodoParent(w http.ResponseWriter, r *http.Request) {
	var req SetParentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	t, err := h.lookupTodo(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var parent *tasks.Todo
	if req.ParentID != nil {
		if parent, err = h.tree.Lookup(*req.ParentID); err != nil {
			writeError(w, err)
			return
		}
	}
	if err := h.tree.SetParent(t, parent); err != nil {
		writeError(w, err)
		return
	}
	h.persist()
	writeJSON(w, http.StatusOK, h.todoDTO(t))
}

func (h *Handler) ToggleTodoArchive(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, err := h.lookupTodo(r)
	if err != nil {
		writeError(w, err)
		return
	}
	archived := h.tree.ToggleArchive(t)
	h.persist()
	writeJSON(w, http.StatusOK, ToggleArchiveResponse{Archived: archived})
}

func (h *Handler) CopyTodo(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, err := h.lookupTodo(r)
	if err != nil {
		writeError(w, err)
		return
	}
	dup, err := h.tree.Copy(t)
	if err != nil {
		writeError(w, err)
		return
	}
	h.persist()
	writeJSON(w, http.StatusCreated, h.todoDTO(dup))
}

func (h *Handler) SetTodoProgress(w http.ResponseWriter, r *http.Request) {
	var req SetProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	t, err := h.lookupTodo(r)
	if err != nil {
		writeError(w, err)
		return
	}
	t.SetProgress(req.Progress)
	h.persist()
	writeJSON(w, http.StatusOK, h.todoDTO(t))
}

func (h *Handler) lookupTodo(r *http.Request) (*tasks.Todo, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, &tasks.NotFoundError{ID: -1}
	}
	return h.tree.Lookup(id)
}

// =============================================================================
// EXPENSES
// =============================================================================

func expenseDTO(e *ledger.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          e.ID,
		CreatedAt:   e.CreatedAt,
		Title:       e.Title,
		Payers:      e.Payers,
		Sharers:     e.Sharers,
		Price:       e.Price(),
		SharedPrice: e.SharedPrice().String(),
		BalanceID:   e.BalanceID,
		TaskID:      e.TaskID,
		Description: e.Description,
	}
}

func balanceDTO(b *ledger.Balance) BalanceDTO {
	return BalanceDTO{
		ID:         b.ID,
		CreatedAt:  b.CreatedAt,
		Title:      b.Title,
		Payers:     b.Payers,
		ExpenseIDs: b.ExpenseIDs,
	}
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	expenses := []ExpenseDTO{}
	balances := []BalanceDTO{}
	for _, item := range h.ledger.Items() {
		switch it := item.(type) {
		case *ledger.Expense:
			expenses = append(expenses, expenseDTO(it))
		case *ledger.Balance:
			balances = append(balances, balanceDTO(it))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": expenses,
		"balances": balances,
	})
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if req.TaskID != nil {
		if _, err := h.tree.Lookup(*req.TaskID); err != nil {
			writeError(w, err)
			return
		}
	}
	e, err := h.ledger.AddExpense(ledger.ExpenseParams{
		Title:       req.Title,
		Payers:      req.Payers,
		Sharers:     req.Sharers,
		Description: req.Description,
		TaskID:      req.TaskID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	h.persist()
	writeJSON(w, http.StatusCreated, expenseDTO(e))
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, err := h.lookupExpense(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenseDTO(e))
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid item id"})
		return
	}
	if err := h.ledger.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	h.persist()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lookupExpense(r *http.Request) (*ledger.Expense, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, &ledger.NotFoundError{ID: -1}
	}
	return h.ledger.Expense(id)
}

// =============================================================================
// BILLS AND SETTLEMENT
// =============================================================================

func (h *Handler) billFromIDs(ids []int64) (*ledger.Bill, error) {
	expenses := make([]*ledger.Expense, 0, len(ids))
	for _, id := range ids {
		e, err := h.ledger.Expense(id)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return ledger.NewBill(expenses...), nil
}

func billDTO(b *ledger.Bill) BillDTO {
	dto := BillDTO{
		Participants: b.Participants(),
		UserPaid:     b.UserPaid(),
		SharedPrice:  b.SharedPrice().String(),
		UserPrices:   map[string]string{},
		UserBalances: map[string]string{},
	}
	for _, e := range b.Expenses() {
		dto.ExpenseIDs = append(dto.ExpenseIDs, e.ID)
	}
	for userID, price := range b.UserPrices() {
		dto.UserPrices[userID] = price.String()
	}
	for userID, balance := range b.UserBalances() {
		dto.UserBalances[userID] = balance.String()
	}
	return dto
}

// PreviewBill computes the aggregation over a chosen expense set
// without settling anything.
func (h *Handler) PreviewBill(w http.ResponseWriter, r *http.Request) {
	var req BillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	bill, err := h.billFromIDs(req.ExpenseIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, billDTO(bill))
}

// SettleBill turns a bill into a registered Balance, marking its
// expenses settled.
func (h *Handler) SettleBill(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Minimum == 0 {
		req.Minimum = 1 // settle to the cent by default
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	bill, err := h.billFromIDs(req.ExpenseIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	var bal *ledger.Balance
	if req.Payers != nil {
		bal, err = bill.ToBalanceWith(h.ledger, req.Payers)
	} else {
		bal, err = bill.ToBalance(h.ledger, req.Minimum)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	h.persist()
	writeJSON(w, http.StatusCreated, balanceDTO(bal))
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case identity.IsNotFound(err),
		errors.Is(err, tasks.ErrNotFound),
		errors.Is(err, ledger.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, identity.ErrDuplicateID),
		errors.Is(err, ledger.ErrAlreadySettled):
		status = http.StatusConflict
	case errors.Is(err, identity.ErrInvalidID),
		errors.Is(err, tasks.ErrEmptyTitle),
		errors.Is(err, tasks.ErrSelfParent),
		errors.Is(err, tasks.ErrCyclicParent),
		errors.Is(err, ledger.ErrNegativeContribution),
		errors.Is(err, ledger.ErrParticipantMismatch),
		errors.Is(err, ledger.ErrUnbalanceable),
		errors.Is(err, ledger.ErrInvalidMinimum):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
