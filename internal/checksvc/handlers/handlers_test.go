package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/avvvet/cardcheck-services/internal/card"
	"github.com/avvvet/cardcheck-services/internal/checksvc/handlers"
	"github.com/avvvet/cardcheck-services/internal/checksvc/models"
	"github.com/avvvet/cardcheck-services/internal/checksvc/store"
	"github.com/avvvet/cardcheck-services/internal/probe"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	got probe.Details
	res *models.CheckResult
	err error
}

func (f *fakeChecker) CheckCard(_ context.Context, d probe.Details) (*models.CheckResult, error) {
	f.got = d
	return f.res, f.err
}

type fakeBatches struct {
	reports  *store.ReportStore
	records  []models.CardRecord
	runs     map[string]models.BatchRun
	hasStore bool
}

func (f *fakeBatches) Run(_ context.Context, records []models.CardRecord) (*models.BatchRun, error) {
	f.records = records
	run := models.BatchRun{ID: uuid.New().String(), Total: len(records), Invalid: len(records)}
	invalid := make([]models.CardReport, 0, len(records))
	for _, rec := range records {
		invalid = append(invalid, models.CardReport{CardRecord: rec, TransactionError: "declined"})
	}
	if err := f.reports.Save(run.ID, nil, invalid); err != nil {
		return nil, err
	}
	return &run, nil
}

func (f *fakeBatches) GetRun(_ context.Context, id string) (*models.BatchRun, error) {
	run, ok := f.runs[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

func (f *fakeBatches) HasRunStore() bool { return f.hasStore }

type fixture struct {
	router  *chi.Mux
	checker *fakeChecker
	batches *fakeBatches
	token   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reports, err := store.NewReportStore(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		router:  chi.NewRouter(),
		checker: &fakeChecker{},
		batches: &fakeBatches{reports: reports, runs: map[string]models.BatchRun{}},
	}
	h := handlers.NewHandler("8080", f.checker, f.batches, reports)
	f.token = h.InitAuth("test-secret")
	h.SetRoutes(f.router)
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func checkForm(values map[string]string) *http.Request {
	form := url.Values{}
	for k, v := range values {
		form.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/cards/check", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func uploadRequest(t *testing.T, field, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "cards.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/cards/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCheckCard_OK(t *testing.T) {
	f := newFixture(t)
	f.checker.res = &models.CheckResult{
		LuhnValid:   true,
		CardType:    "Visa",
		MII:         "Banking and Financial",
		BinInfo:     models.BinInfo{Bank: "Test Bank", Country: "Test Country", Brand: "visa", Type: "debit"},
		CanPurchase: true,
	}

	rr := f.do(checkForm(map[string]string{
		"card_number": "4111111111111111",
		"exp_month":   "12",
		"exp_year":    "2030",
		"cvc":         "123",
	}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "4111111111111111", f.checker.got.Number)
	assert.Equal(t, "2030", f.checker.got.ExpYear)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, true, body["luhn_valid"])
	assert.Equal(t, "Visa", body["card_type"])
	assert.Equal(t, true, body["can_purchase"])
	assert.Nil(t, body["transaction_error"])
	assert.Equal(t, "Test Bank", body["bin_info"].(map[string]interface{})["bank"])
}

func TestCheckCard_MissingFields(t *testing.T) {
	f := newFixture(t)

	rr := f.do(checkForm(map[string]string{"card_number": "4111111111111111"}))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "exp_month, exp_year, cvc")
	assert.Empty(t, f.checker.got.Number)
}

func TestCheckCard_Malformed(t *testing.T) {
	f := newFixture(t)
	f.checker.err = errors.Join(card.ErrMalformed, errors.New("non-digit"))

	rr := f.do(checkForm(map[string]string{
		"card_number": "4111-1111",
		"exp_month":   "12",
		"exp_year":    "2030",
		"cvc":         "123",
	}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpload_RedirectsToValidReport(t *testing.T) {
	f := newFixture(t)

	rr := f.do(uploadRequest(t, "file",
		"card_number,exp_month,exp_year,cvc\n4111111111111111,12,2030,123\n"))
	require.Equal(t, http.StatusSeeOther, rr.Code)

	job := rr.Header().Get("X-Batch-Job")
	require.NotEmpty(t, job)
	assert.Equal(t, "/v1/cards/download/"+job+"/"+store.ValidReportName, rr.Header().Get("Location"))
	require.Len(t, f.batches.records, 1)
	assert.Equal(t, "4111111111111111", f.batches.records[0].CardNumber)

	dl := f.do(httptest.NewRequest(http.MethodGet, "/v1/cards/download/"+job+"/"+store.InvalidReportName, nil))
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, "text/csv", dl.Header().Get("Content-Type"))
	assert.Contains(t, dl.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, dl.Body.String(), "4111111111111111")
	assert.Contains(t, dl.Body.String(), "declined")
}

func TestUpload_NoFile(t *testing.T) {
	f := newFixture(t)

	rr := f.do(uploadRequest(t, "other", "card_number\n"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Nil(t, f.batches.records)
}

func TestUpload_MissingColumn(t *testing.T) {
	f := newFixture(t)

	rr := f.do(uploadRequest(t, "file", "card_number,exp_month\n4111111111111111,12\n"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "cvc")
}

func TestDownload_NotFound(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{
		"/v1/cards/download/" + uuid.New().String() + "/valid_cards.csv",
		"/v1/cards/download/not-a-job/valid_cards.csv",
		"/v1/cards/download/" + uuid.New().String() + "/passwd",
	} {
		rr := f.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
		assert.Contains(t, rr.Body.String(), "not found", path)
	}
}

func TestSecureRoutes_RequireToken(t *testing.T) {
	f := newFixture(t)

	rr := f.do(httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rr = f.do(req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "8080")
}

func TestGetRun(t *testing.T) {
	f := newFixture(t)
	get := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/runs/"+id, nil)
		req.Header.Set("Authorization", "Bearer "+f.token)
		return f.do(req)
	}

	assert.Equal(t, http.StatusServiceUnavailable, get(uuid.New().String()).Code)

	f.batches.hasStore = true
	assert.Equal(t, http.StatusNotFound, get(uuid.New().String()).Code)
	assert.Equal(t, http.StatusNotFound, get("not-a-run").Code)

	run := models.BatchRun{ID: uuid.New().String(), Total: 3, Valid: 2, Invalid: 1, CompletedAt: time.Now()}
	f.batches.runs[run.ID] = run

	rr := get(run.ID)
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Data models.BatchRun `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.Valid)
}
