package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"procurement/internal/apierr"
	"procurement/internal/lifecycle"
	"procurement/internal/progress"
	"procurement/models"
)

type ContractInput struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Division    string `json:"division"`
	Department  string `json:"department"`
	Description string `json:"description"`
}

func (in ContractInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || len(in.Title) > 200 {
		return apierr.BadRequest("title is required and max length 200")
	}
	if len(in.Description) > 2000 {
		return apierr.BadRequest("description max length 2000")
	}
	return nil
}

// CreateContractHandler создаёт договор и сразу заводит стандартную повестку
func (h *Handler) CreateContractHandler(w http.ResponseWriter, r *http.Request) {
	var in ContractInput
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, err, "")
		return
	}
	if err := in.validate(); err != nil {
		h.writeError(w, err, "")
		return
	}

	c := &models.Contract{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(in.Title),
		Category:    in.Category,
		Division:    in.Division,
		Department:  in.Department,
		Description: in.Description,
		Status:      models.ContractOnProgress,
		CurrentStep: progress.CurrentStepInitiated,
		Version:     1,
	}
	if err := h.Store.CreateContract(r.Context(), c); err != nil {
		h.writeError(w, err, "Failed to create contract")
		return
	}

	snap, err := h.Exec.Run(r.Context(), &progress.Snapshot{Contract: *c}, &lifecycle.SeedAgenda{})
	if err != nil {
		h.writeError(w, err, "Failed to create agenda")
		return
	}
	h.Log.Info("contract created", "id", c.ID, "title", c.Title)
	writeJSON(w, h.detail(snap))
}

// ContractRow строка списка договоров
type ContractRow struct {
	models.Contract
	Summary progress.Summary `json:"summary"`
}

// GetContractsHandler список договоров с производным статусом.
// Статус отображения не хранится, поэтому с фильтром status limit и offset
// считаются по уже отфильтрованным строкам: хранилище читается пачками,
// пока страница не заполнится или договоры не кончатся.
func (h *Handler) GetContractsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	var filter progress.DisplayStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, ok := progress.ParseDisplayStatus(raw)
		if !ok {
			http.Error(w, "Invalid status filter", http.StatusBadRequest)
			return
		}
		filter = st
	}

	var (
		rows []ContractRow
		err  error
	)
	if filter == "" {
		rows, _, err = h.contractRows(r.Context(), params.Limit, params.Offset, "")
	} else {
		rows, err = h.filteredContractRows(r.Context(), params, filter)
	}
	if err != nil {
		h.writeError(w, err, "Failed to get contracts")
		return
	}
	writeJSON(w, rows)
}

// размер пачки при чтении договоров под фильтр статуса
const filterBatch = 50

func (h *Handler) filteredContractRows(ctx context.Context, params PaginationParams, filter progress.DisplayStatus) ([]ContractRow, error) {
	rows := make([]ContractRow, 0, params.Limit)
	skip := params.Offset
	for offset := 0; ; offset += filterBatch {
		batch, read, err := h.contractRows(ctx, filterBatch, offset, filter)
		if err != nil {
			return nil, err
		}
		for _, row := range batch {
			if skip > 0 {
				skip--
				continue
			}
			rows = append(rows, row)
			if len(rows) == params.Limit {
				return rows, nil
			}
		}
		if read < filterBatch {
			return rows, nil
		}
	}
}

// contractRows читает страницу договоров со сводками; строки с другим статусом
// отбрасываются, если задан filter. read сколько договоров вернуло хранилище.
func (h *Handler) contractRows(ctx context.Context, limit, offset int, filter progress.DisplayStatus) (rows []ContractRow, read int, err error) {
	contracts, err := h.Store.ListContracts(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	snaps, err := h.Store.LoadSnapshots(ctx, contracts)
	if err != nil {
		return nil, 0, err
	}

	now := h.now()
	rows = make([]ContractRow, 0, len(snaps))
	for _, s := range snaps {
		sum := progress.Summarize(s, now)
		if filter != "" && sum.DisplayStatus != filter {
			continue
		}
		rows = append(rows, ContractRow{Contract: s.Contract, Summary: sum})
	}
	return rows, len(contracts), nil
}

// GetContractHandler полная карточка договора
func (h *Handler) GetContractHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contractId")
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	snap, err := h.Store.LoadSnapshot(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to get contract")
		return
	}
	writeJSON(w, h.detail(snap))
}

type EditContractInput struct {
	Title       *string `json:"title"`
	Category    *string `json:"category"`
	Division    *string `json:"division"`
	Department  *string `json:"department"`
	Description *string `json:"description"`
}

// EditContractHandler частичная правка заголовка
func (h *Handler) EditContractHandler(w http.ResponseWriter, r *http.Request) {
	var in EditContractInput
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, err, "")
		return
	}
	if in.Description != nil && len(*in.Description) > 2000 {
		http.Error(w, "description max length 2000", http.StatusBadRequest)
		return
	}
	h.run(w, r, &lifecycle.EditContract{
		Title:       in.Title,
		Category:    in.Category,
		Division:    in.Division,
		Department:  in.Department,
		Description: in.Description,
	})
}

// DeleteContractHandler удаляет договор, связанные записи уходят каскадом
func (h *Handler) DeleteContractHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contractId")
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	if err := h.Store.DeleteContract(r.Context(), id); err != nil {
		h.writeError(w, err, "Failed to delete contract")
		return
	}
	h.Log.Info("contract deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// GetScheduleHandler данные для диаграммы Ганта
func (h *Handler) GetScheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contractId")
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	snap, err := h.Store.LoadSnapshot(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to get contract")
		return
	}
	writeJSON(w, progress.BuildSchedule(snap.Agenda, snap.Vendors, snap.StepDates))
}

// RollbackContractHandler восстанавливает заголовок из сохранённой версии
func (h *Handler) RollbackContractHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contractId")
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	version, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || version < 1 {
		http.Error(w, "Invalid version", http.StatusBadRequest)
		return
	}
	saved, err := h.Store.GetContractVersion(r.Context(), id, version)
	if err != nil {
		h.writeError(w, err, "Failed to get contract version")
		return
	}
	h.run(w, r, &lifecycle.RestoreVersion{Version: *saved})
}
