// Package handler exposes the /secretary routes.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"brgyconnect/internal/directory/models"
	"brgyconnect/internal/directory/service"
	dErrors "brgyconnect/pkg/domain-errors"
	"brgyconnect/pkg/httputil"
)

type Handler struct {
	service *service.Service
}

func New(service *service.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/secretary", func(r chi.Router) {
		r.Get("/residents", h.handleSearch)
	})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	actorID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid user_id"))
		return
	}
	entries, err := h.service.Search(r.Context(), actorID, models.SearchFilter{
		Query:    r.URL.Query().Get("query"),
		Purok:    r.URL.Query().Get("purok"),
		Barangay: r.URL.Query().Get("barangay"),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}
