package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"procurement/internal/apierr"
	"procurement/internal/lifecycle"
	"procurement/models"
)

// AgendaItemInput шаг повестки из формы; без id создаётся новый шаг
type AgendaItemInput struct {
	ID        *uuid.UUID      `json:"id"`
	StepName  string          `json:"stepName"`
	Status    string          `json:"status"`
	StartDate models.NullDate `json:"startDate"`
	EndDate   models.NullDate `json:"endDate"`
	Remarks   *string         `json:"remarks"`
}

func (in AgendaItemInput) command() lifecycle.Command {
	item := models.AgendaItem{
		StepName:  in.StepName,
		Status:    in.Status,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Remarks:   in.Remarks,
	}
	if in.ID != nil {
		item.ID = *in.ID
	}
	return &lifecycle.UpsertAgendaItem{Item: item}
}

type StepDateInput struct {
	VendorID     uuid.UUID       `json:"vendorId"`
	AgendaStepID uuid.UUID       `json:"agendaStepId"`
	StartDate    models.NullDate `json:"startDate"`
	EndDate      models.NullDate `json:"endDate"`
	Remarks      *string         `json:"remarks"`
}

func (in StepDateInput) command() lifecycle.Command {
	return &lifecycle.UpsertVendorStepDate{Date: models.VendorStepDate{
		VendorID:     in.VendorID,
		AgendaStepID: in.AgendaStepID,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Remarks:      in.Remarks,
	}}
}

// SaveAgendaInput сохранение всей таблицы повестки одной кнопкой
type SaveAgendaInput struct {
	Items     []AgendaItemInput `json:"items"`
	StepDates []StepDateInput   `json:"stepDates"`
}

// SaveAgendaHandler сохраняет все шаги и даты поставщиков одним запросом.
// Ошибка проверки любой строки отменяет сохранение целиком.
func (h *Handler) SaveAgendaHandler(w http.ResponseWriter, r *http.Request) {
	var in SaveAgendaInput
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, err, "")
		return
	}
	cmds := make([]lifecycle.Command, 0, len(in.Items)+len(in.StepDates))
	for _, it := range in.Items {
		cmds = append(cmds, it.command())
	}
	for _, d := range in.StepDates {
		cmds = append(cmds, d.command())
	}
	if len(cmds) == 0 {
		http.Error(w, "Nothing to save", http.StatusBadRequest)
		return
	}
	h.run(w, r, cmds...)
}

// AddAgendaItemHandler добавляет произвольный шаг
func (h *Handler) AddAgendaItemHandler(w http.ResponseWriter, r *http.Request) {
	var in AgendaItemInput
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, err, "")
		return
	}
	if in.ID != nil {
		h.writeError(w, apierr.BadRequest("id must not be set for a new step"), "")
		return
	}
	h.run(w, r, in.command())
}

// DeleteAgendaItemHandler удаляет шаг повестки
func (h *Handler) DeleteAgendaItemHandler(w http.ResponseWriter, r *http.Request) {
	stepID, err := pathID(r, "stepId")
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	h.run(w, r, &lifecycle.DeleteAgendaItem{ID: stepID})
}

// SetVendorStepDatesHandler даты одного поставщика по одному шагу
func (h *Handler) SetVendorStepDatesHandler(w http.ResponseWriter, r *http.Request) {
	vendorID, err := pathID(r, "vendorId")
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	stepID, err := pathID(r, "stepId")
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	var in StepDateInput
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, err, "")
		return
	}
	in.VendorID = vendorID
	in.AgendaStepID = stepID
	h.run(w, r, in.command())
}
