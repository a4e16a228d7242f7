package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type expenseJSON struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Note     string `json:"note,omitempty"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:       e.ID,
		Category: e.Category,
		Amount:   e.Amount.String(),
		Date:     e.Date.String(),
		Note:     e.Note,
	}
}

type expenseRequest struct {
	Category      string `json:"category"`
	OtherCategory string `json:"other_category"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Note          string `json:"note"`
}

func (req expenseRequest) input() services.ExpenseInput {
	return services.ExpenseInput{
		Category:      req.Category,
		OtherCategory: req.OtherCategory,
		Amount:        req.Amount,
		Date:          req.Date,
		Note:          req.Note,
	}
}

type expenseUpdateRequest struct {
	ID int64 `json:"id"`
	expenseRequest
}

// handleListExpenses filters server-side: category, from, and to are
// ANDed, with from/to inclusive.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	expenses, err := s.ledger.ListExpenses(r.Context(), userID(r), services.ExpenseQuery{
		Category: q.Get("category"),
		From:     q.Get("from"),
		To:       q.Get("to"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	uid := userID(r)
	e, err := s.ledger.AddExpense(r.Context(), uid, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCharts(uid)
	writeJSON(w, http.StatusCreated, toExpenseJSON(e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	uid := userID(r)
	if err := s.ledger.EditExpense(r.Context(), uid, req.ID, req.input()); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCharts(uid)
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	uid := userID(r)
	if err := s.ledger.DeleteExpense(r.Context(), uid, req.ID); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCharts(uid)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
