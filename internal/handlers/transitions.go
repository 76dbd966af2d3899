package handlers

import (
	"net/http"

	"procurement/internal/lifecycle"
	"procurement/models"
)

type DatesInput struct {
	EffectiveDate models.NullDate `json:"effectiveDate"`
	ExpiryDate    models.NullDate `json:"expiryDate"`
}

// FinalizeContractHandler Ready to Finalize -> Active
func (h *Handler) FinalizeContractHandler(w http.ResponseWriter, r *http.Request) {
	var in DatesInput
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, err, "")
		return
	}
	h.run(w, r, &lifecycle.Finalize{EffectiveDate: in.EffectiveDate, ExpiryDate: in.ExpiryDate})
}

// CompleteContractHandler Active -> Completed
func (h *Handler) CompleteContractHandler(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, &lifecycle.Complete{})
}

// ExtendContractHandler продление срока действия
func (h *Handler) ExtendContractHandler(w http.ResponseWriter, r *http.Request) {
	var in DatesInput
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, err, "")
		return
	}
	h.run(w, r, &lifecycle.Extend{ExpiryDate: in.ExpiryDate})
}

// AmendContractHandler новая версия договора с новой повесткой
func (h *Handler) AmendContractHandler(w http.ResponseWriter, r *http.Request) {
	var in DatesInput
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, err, "")
		return
	}
	h.run(w, r, &lifecycle.Amend{ExpiryDate: in.ExpiryDate})
}

// RevertContractHandler возврат в работу
func (h *Handler) RevertContractHandler(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, &lifecycle.Revert{})
}
