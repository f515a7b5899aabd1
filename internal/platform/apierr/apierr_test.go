package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	base := errors.New("semanas inválido: 0")
	if e := Invalid("semanas", base); e.Status != http.StatusUnprocessableEntity || e.Code != "invalid_semanas" || e.Error() != base.Error() {
		t.Fatalf("Invalid=%+v", e)
	}
	if e := NotFound("plan", nil); e.Status != http.StatusNotFound || e.Code != "plan_not_found" || e.Error() != "plan_not_found" {
		t.Fatalf("NotFound=%+v msg=%q", e, e.Error())
	}
	if e := Unavailable("storage_disabled", nil); e.Status != http.StatusServiceUnavailable {
		t.Fatalf("Unavailable=%+v", e)
	}
	if got := (&Error{Status: 418}).Error(); got != "api error (418)" {
		t.Fatalf("Error()=%q", got)
	}
}

func TestFrom(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NotFound("card", errors.New("missing")))
	if e := From(wrapped); e.Code != "card_not_found" {
		t.Fatalf("From(wrapped)=%+v", e)
	}
	plain := errors.New("boom")
	e := From(plain)
	if e.Status != http.StatusInternalServerError || e.Code != "internal_error" || !errors.Is(e, plain) {
		t.Fatalf("From(plain)=%+v", e)
	}
}
