package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/avvvet/cardcheck-services/internal/batch"
	"github.com/avvvet/cardcheck-services/internal/card"
	"github.com/avvvet/cardcheck-services/internal/checksvc/models"
	"github.com/avvvet/cardcheck-services/internal/checksvc/store"
	"github.com/avvvet/cardcheck-services/internal/probe"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// max in-memory size of an uploaded batch file, the rest spills to disk
const maxUploadMemory = 32 << 20

type CardChecker interface {
	CheckCard(ctx context.Context, d probe.Details) (*models.CheckResult, error)
}

type BatchRunner interface {
	Run(ctx context.Context, records []models.CardRecord) (*models.BatchRun, error)
	GetRun(ctx context.Context, id string) (*models.BatchRun, error)
	HasRunStore() bool
}

type ReportLocator interface {
	Path(jobID, filename string) (string, error)
}

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	port      string

	checks  CardChecker
	batches BatchRunner
	reports ReportLocator
}

func NewHandler(port string, checks CardChecker, batches BatchRunner, reports ReportLocator) *Handler {
	return &Handler{port: port, checks: checks, batches: batches, reports: reports}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (rs *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "check service is running at port " + h.port,
		Code:    http.StatusOK,
	})
}

func (h *Handler) CheckCard(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.CreateResponse(w, Response{Message: "invalid form", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}

	rec := models.CardRecord{
		CardNumber: strings.TrimSpace(r.PostFormValue("card_number")),
		ExpMonth:   strings.TrimSpace(r.PostFormValue("exp_month")),
		ExpYear:    strings.TrimSpace(r.PostFormValue("exp_year")),
		CVC:        strings.TrimSpace(r.PostFormValue("cvc")),
	}
	if missing := rec.Missing(); len(missing) > 0 {
		h.CreateResponse(w, Response{
			Message: "missing form fields",
			Code:    http.StatusBadRequest,
			Error:   "missing required field(s): " + strings.Join(missing, ", "),
		})
		return
	}

	res, err := h.checks.CheckCard(r.Context(), probe.Details{
		Number:   rec.CardNumber,
		ExpMonth: rec.ExpMonth,
		ExpYear:  rec.ExpYear,
		CVC:      rec.CVC,
	})
	if err != nil {
		if errors.Is(err, card.ErrMalformed) {
			h.CreateResponse(w, Response{Message: "invalid card number", Code: http.StatusBadRequest, Error: err.Error()})
			return
		}
		log.Errorf("Error [CheckService.CheckCard] %s", err)
		h.CreateResponse(w, Response{Message: "card check failed", Code: http.StatusInternalServerError, Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(res)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.CreateResponse(w, Response{Message: "No file uploaded", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.CreateResponse(w, Response{Message: "No file uploaded", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}
	defer file.Close()

	records, err := batch.ReadRecords(file)
	if err != nil {
		h.CreateResponse(w, Response{Message: "invalid csv file", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}

	run, err := h.batches.Run(r.Context(), records)
	if err != nil {
		log.Errorf("Error [BatchService.Run] %s", err)
		h.CreateResponse(w, Response{Message: "batch processing failed", Code: http.StatusInternalServerError, Error: err.Error()})
		return
	}

	w.Header().Set("X-Batch-Job", run.ID)
	http.Redirect(w, r, fmt.Sprintf("/v1/cards/download/%s/%s", run.ID, store.ValidReportName), http.StatusSeeOther)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	job := chi.URLParam(r, "job")
	filename := chi.URLParam(r, "filename")

	path, err := h.reports.Path(job, filename)
	if err != nil {
		if !errors.Is(err, store.ErrReportNotFound) {
			log.Errorf("Error [ReportStore.Path] %s", err)
		}
		h.CreateResponse(w, Response{
			Message: fmt.Sprintf("File %s not found", filename),
			Code:    http.StatusNotFound,
		})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	if !h.batches.HasRunStore() {
		h.CreateResponse(w, Response{Message: "batch run store not configured", Code: http.StatusServiceUnavailable})
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		h.CreateResponse(w, Response{Message: "batch run not found", Code: http.StatusNotFound})
		return
	}
	run, err := h.batches.GetRun(r.Context(), id)
	if err != nil {
		log.Errorf("Error [BatchService.GetRun] %s", err)
		h.CreateResponse(w, Response{Message: "unable to load batch run", Code: http.StatusInternalServerError, Error: err.Error()})
		return
	}
	if run == nil {
		h.CreateResponse(w, Response{Message: "batch run not found", Code: http.StatusNotFound})
		return
	}

	h.CreateResponse(w, Response{Message: "batch run", Code: http.StatusOK, Data: run})
}
