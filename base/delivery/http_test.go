package delivery

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/domain"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err error
		exp int
	}{
		{xerrors.Errorf("amount: %w", domain.ErrValidation), http.StatusBadRequest},
		{&domain.BidTooLowError{}, http.StatusBadRequest},
		{domain.ErrPermissionDenied, http.StatusForbidden},
		{domain.ErrNotFound, http.StatusNotFound},
		{&domain.StateError{Entity: "listing", Status: "SOLD"}, http.StatusConflict},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrExpired, http.StatusGone},
		{domain.ErrDependencyFailure, http.StatusFailedDependency},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		require.Equal(t, tt.exp, ErrorStatus(tt.err), tt.err.Error())
	}
}

func TestMakeJsonResp(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, MakeJsonResp(c, http.StatusOK, map[string]string{"id": "l1"}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":{"id":"l1"},"status":"success"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, MakeJsonResp(c, http.StatusInternalServerError, domain.ErrExpired))
	require.Equal(t, http.StatusGone, rec.Code)
	require.JSONEq(t, `{"data":"expired","status":"fail"}`, rec.Body.String())
}
