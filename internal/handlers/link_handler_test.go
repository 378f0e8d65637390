package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spenly/backend/internal/middleware"
	"github.com/spenly/backend/internal/models"
	"github.com/spenly/backend/internal/services"
)

func authed(req *http.Request, ownerID string) *http.Request {
	return req.WithContext(middleware.WithOwnerID(req.Context(), ownerID))
}

func TestLinkHandler_IssueCode(t *testing.T) {
	t.Run("with currency", func(t *testing.T) {
		svc := new(MockLinkManager)
		h := NewLinkHandler(svc, "+14155238886")
		svc.On("IssueCode", mock.Anything, "owner-1", "INR", "+14155238886").Return(&services.IssuedCode{
			Code:      "link_3f9a1c2e",
			ExpiresIn: 600,
			DeepLink:  "https://wa.me/14155238886?text=link_3f9a1c2e",
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/link/codes", strings.NewReader(`{"currency":"INR"}`))
		w := httptest.NewRecorder()
		h.IssueCode(w, authed(req, "owner-1"))

		require.Equal(t, http.StatusCreated, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "link_3f9a1c2e", body["code"])
		assert.Equal(t, float64(600), body["expiresIn"])
	})

	t.Run("empty body uses default currency", func(t *testing.T) {
		svc := new(MockLinkManager)
		h := NewLinkHandler(svc, "")
		svc.On("IssueCode", mock.Anything, "owner-1", "", "").Return(&services.IssuedCode{Code: "link_x"}, nil)

		w := httptest.NewRecorder()
		h.IssueCode(w, authed(httptest.NewRequest(http.MethodPost, "/api/v1/link/codes", nil), "owner-1"))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unknown currency", func(t *testing.T) {
		svc := new(MockLinkManager)
		h := NewLinkHandler(svc, "")

		req := httptest.NewRequest(http.MethodPost, "/api/v1/link/codes", strings.NewReader(`{"currency":"DOGE"}`))
		w := httptest.NewRecorder()
		h.IssueCode(w, authed(req, "owner-1"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "IssueCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		h := NewLinkHandler(new(MockLinkManager), "")
		w := httptest.NewRecorder()
		h.IssueCode(w, httptest.NewRequest(http.MethodPost, "/api/v1/link/codes", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		svc := new(MockLinkManager)
		h := NewLinkHandler(svc, "")
		svc.On("IssueCode", mock.Anything, "owner-1", "", "").Return(nil, errors.New("db down"))

		w := httptest.NewRecorder()
		h.IssueCode(w, authed(httptest.NewRequest(http.MethodPost, "/api/v1/link/codes", nil), "owner-1"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestLinkHandler_StatusAndUnlink(t *testing.T) {
	svc := new(MockLinkManager)
	h := NewLinkHandler(svc, "")
	linkedAt := time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC)
	svc.On("Status", mock.Anything, "owner-1").Return(&models.LinkedIdentity{
		OwnerID: "owner-1", MessagingAddress: "+14155550123", LinkedAt: linkedAt, Currency: "USD",
	}, nil)
	svc.On("Status", mock.Anything, "owner-2").Return(nil, nil)
	svc.On("Unlink", mock.Anything, "owner-1").Return(true, nil)

	w := httptest.NewRecorder()
	h.Status(w, authed(httptest.NewRequest(http.MethodGet, "/api/v1/link/status", nil), "owner-1"))
	var status linkStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Linked)
	assert.Equal(t, "+*******0123", status.Address)
	assert.Equal(t, "USD", status.Currency)

	w = httptest.NewRecorder()
	h.Status(w, authed(httptest.NewRequest(http.MethodGet, "/api/v1/link/status", nil), "owner-2"))
	assert.JSONEq(t, `{"linked":false}`, w.Body.String())

	w = httptest.NewRecorder()
	h.Unlink(w, authed(httptest.NewRequest(http.MethodDelete, "/api/v1/link", nil), "owner-1"))
	assert.JSONEq(t, `{"success":true,"unlinked":true}`, w.Body.String())
}
