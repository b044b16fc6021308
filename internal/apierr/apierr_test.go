package apierr

import (
	"net/http"
	"testing"
)

func TestStatusCodeMapping(t *testing.T) {
	cases := map[Kind]int{
		ClientInvalid:   http.StatusBadRequest,
		OriginDenied:    http.StatusForbidden,
		RateLimited:     http.StatusTooManyRequests,
		PayloadTooLarge: http.StatusRequestEntityTooLarge,
		SchemaViolation: http.StatusUnprocessableEntity,
	}
	for kind, want := range cases {
		if got := kind.StatusCode(); got != want {
			t.Errorf("kind %d: got %d want %d", kind, got, want)
		}
	}
}

func TestErrorImplementsError(t *testing.T) {
	err := New(ClientInvalid, "bad site_id")
	if err.Error() != "bad site_id" {
		t.Errorf("got %q", err.Error())
	}
	if err.StatusCode() != http.StatusBadRequest {
		t.Errorf("got %d", err.StatusCode())
	}
}
