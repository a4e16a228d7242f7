package http

import (
	"net/http"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type incomeJSON struct {
	ID          int64  `json:"id"`
	Source      string `json:"source"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

func toIncomeJSON(in core.Income) incomeJSON {
	return incomeJSON{
		ID:          in.ID,
		Source:      in.Source,
		Amount:      in.Amount.String(),
		Date:        in.Date.String(),
		Description: in.Description,
	}
}

type incomeRequest struct {
	Source      string `json:"source"`
	OtherSource string `json:"other_source"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

func (req incomeRequest) input() services.IncomeInput {
	return services.IncomeInput{
		Source:      req.Source,
		OtherSource: req.OtherSource,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
	}
}

type incomeUpdateRequest struct {
	ID int64 `json:"id"`
	incomeRequest
}

type idRequest struct {
	ID int64 `json:"id"`
}

type salaryRequest struct {
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	income, err := s.ledger.ListIncome(r.Context(), userID(r), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]incomeJSON, 0, len(income))
	for _, in := range income {
		out = append(out, toIncomeJSON(in))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	uid := userID(r)
	in, err := s.ledger.AddIncome(r.Context(), uid, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCharts(uid)
	writeJSON(w, http.StatusCreated, toIncomeJSON(in))
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	uid := userID(r)
	if err := s.ledger.EditIncome(r.Context(), uid, req.ID, req.input()); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCharts(uid)
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	uid := userID(r)
	if err := s.ledger.DeleteIncome(r.Context(), uid, req.ID); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCharts(uid)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleUpsertSalary records the month's salary, overwriting the
// existing entry for the same calendar month instead of stacking a
// duplicate.
func (s *Server) handleUpsertSalary(w http.ResponseWriter, r *http.Request) {
	var req salaryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	uid := userID(r)
	if err := s.ledger.UpsertSalary(r.Context(), uid, req.Amount, req.Date, req.Description); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCharts(uid)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
