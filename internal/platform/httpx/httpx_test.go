package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type supplierForm struct {
	AFM  string `json:"afm" validate:"required,len=9,numeric"`
	Name string `json:"name" validate:"required"`
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("procurement: %w", ErrNotFound), http.StatusNotFound},
		{ErrDuplicate, http.StatusConflict},
		{ErrConflict, http.StatusConflict},
		{ErrValidation, http.StatusBadRequest},
		{ErrForbidden, http.StatusForbidden},
		{ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		require.Equal(t, tc.want, rec.Code, tc.err.Error())
		require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	}
}

func TestBindReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"afm":"12AB"}`))
	var form supplierForm
	err := Bind(req, NewValidator(), &form)

	var verr ValidationErrors
	require.ErrorAs(t, err, &verr)
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, "must be 9 characters", verr["afm"])
	require.Equal(t, "is required", verr["name"])

	rec := httptest.NewRecorder()
	RespondError(rec, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Fields, 2)
}

func TestBindRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"afm":"123456789","name":"x","extra":1}`))
	var form supplierForm
	require.ErrorIs(t, Bind(req, NewValidator(), &form), ErrValidation)
}

func TestIsClientError(t *testing.T) {
	require.True(t, IsClientError(ValidationErrors{"a": "b"}))
	require.True(t, IsClientError(fmt.Errorf("x: %w", ErrForbidden)))
	require.False(t, IsClientError(errors.New("db down")))
}
