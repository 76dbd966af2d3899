package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes собирает роутер API
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		r.Post("/contracts", h.CreateContractHandler)
		r.Get("/contracts", h.GetContractsHandler)

		r.Route("/contracts/{contractId}", func(r chi.Router) {
			r.Get("/", h.GetContractHandler)
			r.Patch("/", h.EditContractHandler)
			r.Delete("/", h.DeleteContractHandler)
			r.Get("/schedule", h.GetScheduleHandler)

			// повестка
			r.Put("/agenda", h.SaveAgendaHandler)
			r.Post("/agenda", h.AddAgendaItemHandler)
			r.Delete("/agenda/{stepId}", h.DeleteAgendaItemHandler)

			// поставщики
			r.Post("/vendors", h.AddVendorHandler)
			r.Patch("/vendors/{vendorId}", h.EditVendorHandler)
			r.Delete("/vendors/{vendorId}", h.DeleteVendorHandler)
			r.Put("/vendors/{vendorId}/steps/{stepId}", h.SetVendorStepDatesHandler)
			r.Put("/appointed", h.AppointVendorHandler)

			// жизненный цикл
			r.Put("/finalize", h.FinalizeContractHandler)
			r.Put("/complete", h.CompleteContractHandler)
			r.Put("/extend", h.ExtendContractHandler)
			r.Put("/amend", h.AmendContractHandler)
			r.Put("/revert", h.RevertContractHandler)
			r.Put("/rollback/{version}", h.RollbackContractHandler)
		})
	})
	return r
}
