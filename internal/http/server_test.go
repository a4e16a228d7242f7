package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/services"
	"fintrack/internal/storage/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New()
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	srv := NewServer(Options{
		Addr:               ":0",
		Ledger:             services.NewLedgerService(store, nil),
		Aggregator:         services.NewAggregator(store).WithClock(func() time.Time { return now }),
		RateLimitPerMinute: 10000,
		CacheTTL:           time.Minute,
		CacheMaxEntries:    100,
	})
	t.Cleanup(func() {
		srv.cacheManager.Stop()
		srv.rateLimiter.Stop()
	})
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

type chartResponse struct {
	Labels       []string `json:"labels"`
	Income       []string `json:"income"`
	Expense      []string `json:"expense"`
	Savings      []string `json:"savings"`
	TotalIncome  string   `json:"total_income"`
	TotalExpense string   `json:"total_expense"`
	TotalSavings string   `json:"total_savings"`
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMissingUserHeader(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/summary", "/api/income", "/api/expenses"} {
		rec := doRequest(t, srv, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/summary", "not-a-number", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/summary", "-3", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestIncomeLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/income", "1", map[string]string{
		"source": "Salary",
		"amount": "1000,50",
		"date":   "15/03/2024",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[incomeJSON](t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "2024-03-15", created.Date)
	assert.Equal(t, "1000.5", created.Amount)

	rec = doRequest(t, srv, http.MethodPost, "/api/income/update", "1", map[string]any{
		"id":     created.ID,
		"source": "Salary",
		"amount": "1100",
		"date":   "2024-03-15",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, srv, http.MethodGet, "/api/income", "1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeBody[[]incomeJSON](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, "1100", listed[0].Amount)

	rec = doRequest(t, srv, http.MethodPost, "/api/income/delete", "1", map[string]any{"id": created.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/income", "1", nil)
	listed = decodeBody[[]incomeJSON](t, rec)
	assert.Empty(t, listed)
}

func TestIncomeValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"bad date", map[string]string{"source": "Salary", "amount": "100", "date": "2024/03/15"}, http.StatusUnprocessableEntity},
		{"bad amount", map[string]string{"source": "Salary", "amount": "abc", "date": "2024-03-15"}, http.StatusUnprocessableEntity},
		{"negative amount", map[string]string{"source": "Salary", "amount": "-5", "date": "2024-03-15"}, http.StatusUnprocessableEntity},
		{"missing source", map[string]string{"amount": "100", "date": "2024-03-15"}, http.StatusUnprocessableEntity},
		{"impossible date", map[string]string{"source": "Salary", "amount": "100", "date": "31/02/2024"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/income", "1", tt.body)
			assert.Equal(t, tt.want, rec.Code)

			body := decodeBody[map[string]string](t, rec)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestMutationOwnership(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/income", "1", map[string]string{
		"source": "Salary", "amount": "1000", "date": "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[incomeJSON](t, rec)

	rec = doRequest(t, srv, http.MethodPost, "/api/income/delete", "2", map[string]any{"id": created.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/income/update", "2", map[string]any{
		"id": created.ID, "source": "Salary", "amount": "1", "date": "2024-03-01",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Still owned and unchanged.
	rec = doRequest(t, srv, http.MethodGet, "/api/income", "1", nil)
	listed := decodeBody[[]incomeJSON](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, "1000", listed[0].Amount)
}

func TestSummaryChart(t *testing.T) {
	srv := newTestServer(t)

	seed := []map[string]string{
		{"source": "Salary", "amount": "1000", "date": "2024-01-15"},
		{"source": "Freelance", "amount": "500", "date": "2024-03-05"},
	}
	for _, body := range seed {
		rec := doRequest(t, srv, http.MethodPost, "/api/income", "1", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := doRequest(t, srv, http.MethodPost, "/api/expenses", "1", map[string]string{
		"category": "Rent", "amount": "200", "date": "2024-02-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/summary?range=all", "1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chart := decodeBody[chartResponse](t, rec)

	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, chart.Labels)
	assert.Equal(t, []string{"1000", "0", "500"}, chart.Income)
	assert.Equal(t, []string{"0", "200", "0"}, chart.Expense)
	assert.Equal(t, []string{"1000", "-200", "500"}, chart.Savings)
	assert.Equal(t, "1500", chart.TotalIncome)
	assert.Equal(t, "200", chart.TotalExpense)
	assert.Equal(t, "1300", chart.TotalSavings)
}

func TestSummaryRejectsUnknownRange(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/summary?range=decade", "1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryAndReportDiffer(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []map[string]string{
		{"source": "Salary", "amount": "1000", "date": "2024-01-15"},
		{"source": "Salary", "amount": "7000", "date": "2022-06-15"},
	} {
		rec := doRequest(t, srv, http.MethodPost, "/api/income", "1", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/summary?range=year", "1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1000", decodeBody[chartResponse](t, rec).TotalIncome)

	rec = doRequest(t, srv, http.MethodGet, "/api/reports/savings?range=year", "1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "8000", decodeBody[chartResponse](t, rec).TotalIncome)
}

func TestSummaryCacheInvalidatedByMutation(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/income", "1", map[string]string{
		"source": "Salary", "amount": "1000", "date": "2024-01-15",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/summary?range=all", "1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1000", decodeBody[chartResponse](t, rec).TotalIncome)

	rec = doRequest(t, srv, http.MethodPost, "/api/income", "1", map[string]string{
		"source": "Freelance", "amount": "500", "date": "2024-01-20",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/summary?range=all", "1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1500", decodeBody[chartResponse](t, rec).TotalIncome)
}

func TestSummaryCacheScopedPerUser(t *testing.T) {
	srv := newTestServer(t)

	for user, amount := range map[string]string{"1": "1000", "2": "2000"} {
		rec := doRequest(t, srv, http.MethodPost, "/api/income", user, map[string]string{
			"source": "Salary", "amount": amount, "date": "2024-01-15",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/summary?range=all", "1", nil)
	assert.Equal(t, "1000", decodeBody[chartResponse](t, rec).TotalIncome)

	rec = doRequest(t, srv, http.MethodGet, "/api/summary?range=all", "2", nil)
	assert.Equal(t, "2000", decodeBody[chartResponse](t, rec).TotalIncome)
}

func TestSalaryUpsertEndpoint(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 2; i++ {
		rec := doRequest(t, srv, http.MethodPost, "/api/salary", "1", map[string]string{
			"amount": "5000", "date": "2024-03-01",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/income", "1", nil)
	listed := decodeBody[[]incomeJSON](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, "Salary", listed[0].Source)
	assert.Equal(t, "5000", listed[0].Amount)
}

func TestExpenseListFilters(t *testing.T) {
	srv := newTestServer(t)

	seed := []map[string]string{
		{"category": "Groceries", "amount": "50", "date": "2024-01-10"},
		{"category": "Groceries", "amount": "60", "date": "2024-02-10"},
		{"category": "Rent", "amount": "800", "date": "2024-02-01"},
	}
	for _, body := range seed {
		rec := doRequest(t, srv, http.MethodPost, "/api/expenses", "1", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/expenses?category=Groceries", "1", nil)
	assert.Len(t, decodeBody[[]expenseJSON](t, rec), 2)

	rec = doRequest(t, srv, http.MethodGet, "/api/expenses?from=2024-02-01&to=2024-02-10", "1", nil)
	assert.Len(t, decodeBody[[]expenseJSON](t, rec), 2)

	rec = doRequest(t, srv, http.MethodGet, "/api/expenses?category=Rent&from=2024-02-01", "1", nil)
	listed := decodeBody[[]expenseJSON](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, "800", listed[0].Amount)

	rec = doRequest(t, srv, http.MethodGet, "/api/expenses?from=bogus", "1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestOtherCategoryResolution(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/expenses", "1", map[string]string{
		"category": "Other", "other_category": "Vet bills", "amount": "120", "date": "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Vet bills", decodeBody[expenseJSON](t, rec).Category)

	rec = doRequest(t, srv, http.MethodPost, "/api/expenses", "1", map[string]string{
		"category": "Other", "amount": "120", "date": "2024-03-01",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMalformedJSONBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/income", bytes.NewBufferString("{not json"))
	req.Header.Set(userHeader, "1")
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
