package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	accountmodels "brgyconnect/internal/account/models"
	accountstore "brgyconnect/internal/account/store"
	notifservice "brgyconnect/internal/notification/service"
	notifstore "brgyconnect/internal/notification/store"
	"brgyconnect/internal/request/service"
	"brgyconnect/internal/request/store"
	"brgyconnect/internal/sms"
)

type fixture struct {
	router *chi.Mux
	staff  *accountmodels.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accounts := accountstore.NewMemory()

	owner := &accountmodels.Account{
		ID: uuid.New(), FirstName: "Maria", LastName: "Santos",
		Contact: "09171234567", Role: accountmodels.RoleResident,
		Status: accountmodels.StatusApproved,
	}
	staff := &accountmodels.Account{
		ID: uuid.New(), FirstName: "System", LastName: "Secretary",
		Contact: "09180000001", Role: accountmodels.RoleSecretary,
		Status: accountmodels.StatusApproved,
	}
	require.NoError(t, accounts.Save(context.Background(), owner))
	require.NoError(t, accounts.Save(context.Background(), staff))

	notifier := notifservice.New(notifstore.NewMemory(), sms.NewLogGateway(logger))
	svc := service.New(store.NewMemory(), accounts, notifier, service.WithLogger(logger))

	router := chi.NewRouter()
	New(svc, logger).Register(router)
	return &fixture{router: router, staff: staff}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) createRequest(t *testing.T) uuid.UUID {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/document-requests", map[string]any{
		"documentType": "Barangay Clearance",
		"purpose":      "Employment",
		"copies":       1,
		"contact":      "+639171234567",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created.ID
}

func TestCreateAndList(t *testing.T) {
	f := newFixture(t)
	id := f.createRequest(t)

	rec := f.do(t, http.MethodGet, "/document-requests?contact=%2B639171234567", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	require.Equal(t, id.String(), rows[0]["id"])
	require.Equal(t, "Pending", rows[0]["status"])
}

func TestCreateRejectsUnknownContact(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/document-requests", map[string]any{
		"documentType": "Barangay Clearance",
		"contact":      "09170000000",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "validation_error", body["error"])
	require.Contains(t, body["error_description"], "not found or not approved")
}

func TestTransitionEndpoint(t *testing.T) {
	f := newFixture(t)
	id := f.createRequest(t)

	rec := f.do(t, http.MethodPost, "/document-requests/status", map[string]any{
		"id":              id,
		"status":          "Returned",
		"performed_by_id": f.staff.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "Returned", updated["status"])
	require.Equal(t, "Request returned for correction", updated["notes"])

	// Non-staff actor is rejected.
	rec = f.do(t, http.MethodPost, "/document-requests/status", map[string]any{
		"id":              id,
		"status":          "Approved",
		"performed_by_id": uuid.New(),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResubmitEndpoint(t *testing.T) {
	f := newFixture(t)
	id := f.createRequest(t)

	rec := f.do(t, http.MethodPost, "/document-requests/status", map[string]any{
		"id":              id,
		"status":          "Returned",
		"performed_by_id": f.staff.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/document-requests/%s/update", id), map[string]any{
		"purpose": "Scholarship",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "Pending", updated["status"])
	require.Equal(t, "Scholarship", updated["purpose"])
}

func TestSoftDeleteEndpoint(t *testing.T) {
	f := newFixture(t)
	id := f.createRequest(t)

	rec := f.do(t, http.MethodDelete, "/document-requests/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/document-requests/"+id.String(), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Hidden from the default listing, visible with include_deleted.
	rec = f.do(t, http.MethodGet, "/document-requests", nil)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Empty(t, rows)

	rec = f.do(t, http.MethodGet, "/document-requests?include_deleted=true", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	require.Equal(t, "Cancelled", rows[0]["status"])
}

func TestInvalidRequestID(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodDelete, "/document-requests/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/document-requests/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
