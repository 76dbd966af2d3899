package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"procurement/db"
	"procurement/internal/apierr"
	"procurement/internal/lifecycle"
	"procurement/internal/logger"
	"procurement/internal/progress"
	"procurement/models"
)

// Handler оборачивает Storage для доступа к данным
type Handler struct {
	Store StorageInterface
	Exec  *lifecycle.Executor
	Log   *logger.Logger
	now   func() time.Time
}

// NewHandler создает новый Handler
func NewHandler(store StorageInterface, log *logger.Logger) *Handler {
	return &Handler{
		Store: store,
		Exec:  lifecycle.NewExecutor(store, log),
		Log:   log,
		now:   time.Now,
	}
}

// WithClock фиксирует "сейчас" для статусов, нужно тестам
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	h.Exec.WithClock(now)
	return h
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams парсит limit и offset из query, с дефолтами и ограничениями
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: 5}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 50 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		params.Offset = o
	}
	return params
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apierr.BadRequest(fmt.Sprintf("Invalid %s", name))
	}
	return id, nil
}

// decodeBody читает тело с ограничением размера, чтобы избежать DoS
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return apierr.BadRequest("Failed to read request body")
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apierr.BadRequest("Invalid JSON format: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

// writeError выбирает статус по ошибке; неожиданные ошибки логируются и не раскрываются
func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	status := apierr.StatusOf(err)
	if status == http.StatusInternalServerError {
		h.Log.Error(fallback, "err", err)
		http.Error(w, fallback, status)
		return
	}
	http.Error(w, err.Error(), status)
}

// ContractDetail всё, что нужно экрану договора
type ContractDetail struct {
	Contract  models.Contract         `json:"contract"`
	Agenda    []progress.StepView     `json:"agenda"`
	Vendors   []models.ContractVendor `json:"vendors"`
	StepDates []models.VendorStepDate `json:"stepDates"`
	Summary   progress.Summary        `json:"summary"`
}

func (h *Handler) detail(s *progress.Snapshot) ContractDetail {
	return ContractDetail{
		Contract:  s.Contract,
		Agenda:    progress.EnrichAgenda(s.Agenda, s.StepDates),
		Vendors:   s.Vendors,
		StepDates: s.StepDates,
		Summary:   progress.Summarize(*s, h.now()),
	}
}

// run загружает снимок договора и прогоняет команды через Executor
func (h *Handler) run(w http.ResponseWriter, r *http.Request, cmds ...lifecycle.Command) {
	contractID, err := pathID(r, "contractId")
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	snap, err := h.Store.LoadSnapshot(r.Context(), contractID)
	if err != nil {
		h.writeError(w, err, "Failed to load contract")
		return
	}
	snap, err = h.Exec.Run(r.Context(), snap, cmds...)
	if err != nil {
		h.writeError(w, err, "Failed to save contract")
		return
	}
	writeJSON(w, h.detail(snap))
}
