package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestTaxonomyWrapping(t *testing.T) {
	err := Conflictf("vehicle not available for requested dates")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("conflict must not match validation")
	}
}

func TestStorageClassification(t *testing.T) {
	transient := Storage("query reservations", context.DeadlineExceeded)
	if !IsTransient(transient) {
		t.Fatalf("deadline exceeded should be transient")
	}

	terminal := Storage("insert reservation", fmt.Errorf("Error 1062: Duplicate entry"))
	if IsTransient(terminal) {
		t.Fatalf("constraint violation should be terminal")
	}

	// domain errors pass through unwrapped
	passthrough := Storage("get vehicle", NotFoundf("vehicle not found"))
	if !errors.Is(passthrough, ErrNotFound) {
		t.Fatalf("domain error should pass through Storage, got %v", passthrough)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validationf("end date before start date"), http.StatusBadRequest},
		{Conflictf("overlap"), http.StatusConflict},
		{NotFoundf("vehicle"), http.StatusNotFound},
		{Forbiddenf("admin only"), http.StatusForbidden},
		{Storage("ping", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{Storage("insert", errors.New("boom")), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
