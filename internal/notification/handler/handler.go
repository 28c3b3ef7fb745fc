package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"brgyconnect/internal/notification/service"
	dErrors "brgyconnect/pkg/domain-errors"
	"brgyconnect/pkg/httputil"
	"brgyconnect/pkg/requestcontext"
)

// Handler exposes the notifications collection.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the notification routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Put("/mark-all-read", h.handleMarkAllRead)
		r.Put("/{id}/read", h.handleMarkRead)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var accountID *uuid.UUID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid user_id"))
			return
		}
		accountID = &id
	}
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread_only"))

	rows, err := h.service.List(ctx, r.URL.Query().Get("role"), accountID, unreadOnly)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to list notifications",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid notification id"))
		return
	}
	if err := h.service.MarkRead(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Notification " + id.String() + " marked as read",
	})
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	var accountID *uuid.UUID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid user_id"))
			return
		}
		accountID = &id
	}
	count, err := h.service.MarkAllRead(r.Context(), accountID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to mark notifications read",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": strconv.Itoa(count) + " notifications marked as read",
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid notification id"))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Notification " + id.String() + " deleted successfully",
	})
}
