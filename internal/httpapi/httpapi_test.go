package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/event", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	r.RemoteAddr = "127.0.0.1:1234"
	if got := clientIP(r); got != "203.0.113.5" {
		t.Errorf("got %q", got)
	}
}

func TestClientIPFallsBackToRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/event", nil)
	r.Header.Set("X-Real-Ip", "198.51.100.9")
	r.RemoteAddr = "127.0.0.1:1234"
	if got := clientIP(r); got != "198.51.100.9" {
		t.Errorf("got %q", got)
	}
}

func TestClientIPFallsBackToRemoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/event", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	if got := clientIP(r); got != "192.0.2.1" {
		t.Errorf("got %q", got)
	}
}

func TestOriginAuthorityParsesHost(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/event", nil)
	r.Header.Set("Origin", "https://example.com:8443")
	if got := originAuthority(r); got != "example.com:8443" {
		t.Errorf("got %q", got)
	}
}

func TestOriginAuthorityEmptyWhenAbsent(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/event", nil)
	if got := originAuthority(r); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestSplitStepsFiltersEmptyTokens(t *testing.T) {
	got := splitSteps("page:/a,,event:signup")
	want := []string{"page:/a", "event:signup"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestSplitStepsEmptyInput(t *testing.T) {
	if got := splitSteps(""); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestHandleMainRejectsInvalidSiteID(t *testing.T) {
	s := New(nil, nil, nil, nil)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/stats/main?site_id=..%2F..", nil)
	s.handleMain(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d", w.Code)
	}
}

func TestHandleFunnelRejectsMissingSteps(t *testing.T) {
	s := New(nil, nil, nil, nil)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/stats/funnel?site_id=example.com", nil)
	s.handleFunnel(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d", w.Code)
	}
}

func TestHandleFunnelRejectsInvalidStepToken(t *testing.T) {
	s := New(nil, nil, nil, nil)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/stats/funnel?site_id=example.com&steps=notastep", nil)
	s.handleFunnel(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d", w.Code)
	}
}

func TestHandleSequencesRejectsSingleStep(t *testing.T) {
	s := New(nil, nil, nil, nil)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/stats/sequences?site_id=example.com&steps=page:/a", nil)
	s.handleSequences(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d", w.Code)
	}
}

func TestHandleFlowRejectsMissingPage(t *testing.T) {
	s := New(nil, nil, nil, nil)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/stats/flow?site_id=example.com", nil)
	s.handleFlow(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d", w.Code)
	}
}

func TestHandleRetentionRejectsOutOfRangeWeeks(t *testing.T) {
	s := New(nil, nil, nil, nil)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/stats/retention?site_id=example.com&weeks=99", nil)
	s.handleRetention(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d", w.Code)
	}
}

func TestDefaultAuthorizerAdmitsEverything(t *testing.T) {
	var a DefaultAuthorizer
	if !a.Authorize(httptest.NewRequest(http.MethodGet, "/", nil), "example.com") {
		t.Error("expected DefaultAuthorizer to admit")
	}
}
