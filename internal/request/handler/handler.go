// Package handler exposes the /document-requests routes.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"brgyconnect/internal/request/models"
	"brgyconnect/internal/request/service"
	dErrors "brgyconnect/pkg/domain-errors"
	"brgyconnect/pkg/httputil"
	"brgyconnect/pkg/requestcontext"
)

type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the document-request routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/document-requests", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Post("/status", h.handleTransition)
		r.Post("/{id}/update", h.handleResubmit)
		r.Get("/{id}", h.handleGet)
		r.Delete("/{id}", h.handleDelete)
	})
}

type createRequest struct {
	DocumentType       string `json:"documentType"`
	Purpose            string `json:"purpose"`
	Copies             int    `json:"copies"`
	Requirements       string `json:"requirements"`
	AuthorizationPhoto string `json:"authorizationPhoto"`
	Contact            string `json:"contact"`
	Notes              string `json:"notes"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), service.CreateParams{
		DocumentType:       req.DocumentType,
		Purpose:            req.Purpose,
		Copies:             req.Copies,
		Requirements:       req.Requirements,
		AuthorizationPhoto: req.AuthorizationPhoto,
		Contact:            req.Contact,
		Notes:              req.Notes,
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(r.Context(), "failed to create document request",
				"request_id", requestcontext.RequestID(r.Context()),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	includeDeleted, _ := strconv.ParseBool(r.URL.Query().Get("include_deleted"))
	rows, err := h.service.List(r.Context(), models.Filter{
		Contact:        r.URL.Query().Get("contact"),
		Status:         models.Status(r.URL.Query().Get("status")),
		IncludeDeleted: includeDeleted,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list document requests",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseRequestID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	row, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, row)
}

type transitionRequest struct {
	ID          uuid.UUID `json:"id"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	Action      string    `json:"action"`
	PerformedBy uuid.UUID `json:"performed_by_id"`
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	updated, err := h.service.Transition(r.Context(), service.TransitionParams{
		RequestID:   req.ID,
		Target:      models.Status(req.Status),
		Notes:       req.Notes,
		Action:      req.Action,
		PerformedBy: req.PerformedBy,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleResubmit(w http.ResponseWriter, r *http.Request) {
	id, err := parseRequestID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var patch models.UpdatePatch
	if err := httputil.Decode(r, &patch); err != nil {
		httputil.WriteError(w, err)
		return
	}
	updated, err := h.service.Resubmit(r.Context(), id, patch)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseRequestID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.SoftDelete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Request " + id.String() + " soft deleted successfully",
	})
}

func parseRequestID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid request id")
	}
	return id, nil
}
