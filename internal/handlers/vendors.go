package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"procurement/internal/lifecycle"
	"procurement/models"
)

type VendorInput struct {
	VendorName   string     `json:"vendorName"`
	AgendaStepID *uuid.UUID `json:"agendaStepId"`
	KYCResult    *string    `json:"kycResult"`
	KYCNotes     *string    `json:"kycNotes"`
	TechScore    *float64   `json:"techScore"`
	TechNotes    *string    `json:"techNotes"`
	Price        *string    `json:"price"`
	RevisedPrice *string    `json:"revisedPrice"`
}

// AddVendorHandler добавляет кандидата к договору
func (h *Handler) AddVendorHandler(w http.ResponseWriter, r *http.Request) {
	var in VendorInput
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, err, "")
		return
	}
	h.run(w, r, &lifecycle.UpsertVendor{Vendor: models.ContractVendor{
		VendorName:   in.VendorName,
		AgendaStepID: in.AgendaStepID,
		KYCResult:    in.KYCResult,
		KYCNotes:     in.KYCNotes,
		TechScore:    in.TechScore,
		TechNotes:    in.TechNotes,
		Price:        in.Price,
		RevisedPrice: in.RevisedPrice,
	}})
}

type EditVendorInput struct {
	VendorName   *string    `json:"vendorName"`
	AgendaStepID *uuid.UUID `json:"agendaStepId"`
	KYCResult    *string    `json:"kycResult"`
	KYCNotes     *string    `json:"kycNotes"`
	TechScore    *float64   `json:"techScore"`
	TechNotes    *string    `json:"techNotes"`
	Price        *string    `json:"price"`
	RevisedPrice *string    `json:"revisedPrice"`
}

// EditVendorHandler частичная правка оценки кандидата
func (h *Handler) EditVendorHandler(w http.ResponseWriter, r *http.Request) {
	contractID, err := pathID(r, "contractId")
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	vendorID, err := pathID(r, "vendorId")
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	var in EditVendorInput
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, err, "")
		return
	}

	snap, err := h.Store.LoadSnapshot(r.Context(), contractID)
	if err != nil {
		h.writeError(w, err, "Failed to load contract")
		return
	}
	var v *models.ContractVendor
	for i := range snap.Vendors {
		if snap.Vendors[i].ID == vendorID {
			v = &snap.Vendors[i]
			break
		}
	}
	if v == nil {
		http.Error(w, "Vendor not found", http.StatusNotFound)
		return
	}

	updated := *v
	if in.VendorName != nil {
		updated.VendorName = *in.VendorName
	}
	if in.AgendaStepID != nil {
		updated.AgendaStepID = in.AgendaStepID
	}
	if in.KYCResult != nil {
		updated.KYCResult = emptyToNil(in.KYCResult)
	}
	if in.KYCNotes != nil {
		updated.KYCNotes = in.KYCNotes
	}
	if in.TechScore != nil {
		updated.TechScore = in.TechScore
	}
	if in.TechNotes != nil {
		updated.TechNotes = in.TechNotes
	}
	if in.Price != nil {
		updated.Price = emptyToNil(in.Price)
	}
	if in.RevisedPrice != nil {
		updated.RevisedPrice = emptyToNil(in.RevisedPrice)
	}

	snap, err = h.Exec.Run(r.Context(), snap, &lifecycle.UpsertVendor{Vendor: updated})
	if err != nil {
		h.writeError(w, err, "Failed to save vendor")
		return
	}
	writeJSON(w, h.detail(snap))
}

// пустая строка из формы означает "сбросить значение"
func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// DeleteVendorHandler удаляет кандидата
func (h *Handler) DeleteVendorHandler(w http.ResponseWriter, r *http.Request) {
	vendorID, err := pathID(r, "vendorId")
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	h.run(w, r, &lifecycle.DeleteVendor{ID: vendorID})
}

// AppointVendorHandler назначает поставщика по имени (?vendor=NAME).
// Пустое или неизвестное имя снимает назначение.
func (h *Handler) AppointVendorHandler(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, &lifecycle.AppointVendor{Name: r.URL.Query().Get("vendor")})
}
