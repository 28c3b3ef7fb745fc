// Package handler exposes the /users routes.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"brgyconnect/internal/account/models"
	"brgyconnect/internal/account/service"
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

// Register mounts the account routes. Order matters: the literal segments
// (login, verify, approve, forgot-password) must be declared before the
// catch-all /{user_id} routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Get("/", h.handleList)
		r.Get("/verify/{contact}", h.handleVerifyStatus)
		r.Put("/verify/{user_id}", h.handleVerifyRegistration)
		r.Put("/approve/{user_id}", h.handleApprovePendingUpdate)
		r.Post("/forgot-password/send-otp", h.handleForgotPasswordSendOTP)
		r.Post("/forgot-password/verify", h.handleForgotPasswordVerify)
		r.Post("/{user_id}/request-contact-change", h.handleRequestContactChange)
		r.Post("/verify-contact/{user_id}", h.handleVerifyContactChange)
		r.Get("/{user_id}", h.handleGet)
		r.Put("/{user_id}", h.handleStageProfileUpdate)
		r.Delete("/{user_id}", h.handleDelete)
	})
}

type registerRequest struct {
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	DOB         string `json:"dob"`
	Gender      string `json:"gender"`
	CivilStatus string `json:"civilStatus"`
	Contact     string `json:"contact"`
	Purok       string `json:"purok"`
	Barangay    string `json:"barangay"`
	City        string `json:"city"`
	Province    string `json:"province"`
	// Clients have sent this both as a string and a bare number.
	PostalCode   flexString `json:"postalCode"`
	PlaceOfBirth string     `json:"placeOfBirth"`
	Password     string     `json:"password"`
	Photo        string     `json:"photo"`
	Role         string     `json:"role"`
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// parseDOB accepts both date-only and full RFC 3339 timestamps; mobile
// clients have sent either.
func parseDOB(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "Invalid date of birth")
	}
	return t, nil
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	dob, err := parseDOB(req.DOB)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	account, err := h.service.Register(r.Context(), service.RegisterParams{
		FirstName:    req.FirstName,
		MiddleName:   req.MiddleName,
		LastName:     req.LastName,
		DOB:          dob,
		Gender:       req.Gender,
		CivilStatus:  req.CivilStatus,
		Contact:      req.Contact,
		Purok:        req.Purok,
		Barangay:     req.Barangay,
		City:         req.City,
		Province:     req.Province,
		PostalCode:   string(req.PostalCode),
		PlaceOfBirth: req.PlaceOfBirth,
		Password:     strings.TrimSpace(req.Password),
		Photo:        req.Photo,
		Role:         req.Role,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, account)
}

type loginRequest struct {
	Contact  string `json:"contact"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.Login(r.Context(), req.Contact, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"user":         result.Account,
		"message":      "Login successful — user synced for offline use.",
		"can_offline":  result.CanOffline,
		"access_token": result.AccessToken,
		"token_type":   "bearer",
	})
}

func (h *Handler) handleVerifyStatus(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.VerifyStatus(r.Context(), chi.URLParam(r, "contact"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"contact": account.Contact,
		"status":  account.Status,
		"role":    account.Role,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list users",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, accounts)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, account)
}

// decisionRequest carries a staff approve/reject verdict. PerformedBy is
// the acting staff account; the role check happens in the service.
type decisionRequest struct {
	Action      string    `json:"action"`
	PerformedBy uuid.UUID `json:"performed_by_id"`
}

func (h *Handler) handleVerifyRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req decisionRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DecideRegistration(r.Context(), id, service.Decision(req.Action), req.PerformedBy); err != nil {
		httputil.WriteError(w, err)
		return
	}
	verb := "approved"
	if service.Decision(req.Action) == service.DecisionReject {
		verb = "rejected"
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "User registration " + verb + " and SMS sent.",
	})
}

func (h *Handler) handleStageProfileUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// Unknown fields are rejected outright; the updatable set is closed.
	var patch models.ProfileUpdate
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "invalid update payload"))
		return
	}

	if err := h.service.StageProfileUpdate(r.Context(), id, patch); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Profile update submitted for approval.",
	})
}

func (h *Handler) handleApprovePendingUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req decisionRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DecidePendingUpdate(r.Context(), id, service.Decision(req.Action), req.PerformedBy); err != nil {
		httputil.WriteError(w, err)
		return
	}
	verb := "approved"
	if service.Decision(req.Action) == service.DecisionReject {
		verb = "rejected"
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Pending updates " + verb + ".",
	})
}

func (h *Handler) handleRequestContactChange(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req struct {
		NewContact string `json:"new_contact"`
	}
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RequestContactChange(r.Context(), id, req.NewContact); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Verification code sent. It is valid for 5 minutes.",
	})
}

func (h *Handler) handleVerifyContactChange(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req struct {
		OTP string `json:"otp"`
	}
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.ConfirmContactChange(r.Context(), id, req.OTP); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Contact number updated successfully.",
	})
}

func (h *Handler) handleForgotPasswordSendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Contact string `json:"contact"`
	}
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if strings.TrimSpace(req.Contact) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "Contact number is required"))
		return
	}
	if err := h.service.ForgotPasswordSendOTP(r.Context(), req.Contact); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Verification code sent. It is valid for 5 minutes.",
	})
}

func (h *Handler) handleForgotPasswordVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Contact     string `json:"contact"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.ForgotPasswordVerify(r.Context(), req.Contact, req.OTP, req.NewPassword); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset successful.",
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "User deleted successfully",
	})
}

func parseUserID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid user id")
	}
	return id, nil
}
