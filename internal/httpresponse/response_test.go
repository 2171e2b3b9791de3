package httpresponse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	errs "margo/internal/errors"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", errs.ErrKoViolation), http.StatusUnprocessableEntity},
		{errs.ErrSuicideMove, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: %w", errs.ErrBadPosition, errs.ErrBrokenSupport), http.StatusBadRequest},
		{errs.ErrInvalidSide, http.StatusBadRequest},
		{errs.ErrMatchNotFound, http.StatusNotFound},
		{errs.ErrPassRefused, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusOf(tc.err); got != tc.want {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errs.ErrNotYourTurn)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var resp Response[ErrorResponse]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusConflict || resp.Body.ErrorDescription != errs.ErrNotYourTurn.Error() {
		t.Fatalf("unexpected envelope %+v", resp)
	}

	rec = httptest.NewRecorder()
	WriteError(rec, errors.New("db password leaked"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var internal Response[ErrorResponse]
	if err := json.Unmarshal(rec.Body.Bytes(), &internal); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if internal.Body.ErrorDescription != "Internal server error" {
		t.Fatalf("internal error text exposed: %q", internal.Body.ErrorDescription)
	}
}
