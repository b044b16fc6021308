package ingest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mallardmetrics/mallard/internal/apierr"
	"github.com/mallardmetrics/mallard/internal/buffer"
	"github.com/mallardmetrics/mallard/internal/config"
	"github.com/mallardmetrics/mallard/internal/flush"
	"github.com/mallardmetrics/mallard/internal/geoip"
	"github.com/mallardmetrics/mallard/internal/ratelimit"
	"github.com/mallardmetrics/mallard/internal/visitorid"
	"github.com/mallardmetrics/mallard/internal/workerpool"
)

func newTestOrchestrator(opts *config.Options) (*Orchestrator, *buffer.Buffer) {
	buf := buffer.New()
	pool := workerpool.New(context.Background(), 1)
	sup := flush.New(noopFlusher{}, 0, pool)
	o := New(opts, ratelimit.New(0, 0), visitorid.New("test-secret"), geoip.Open(""), buf, sup)
	return o, buf
}

type noopFlusher struct{}

func (noopFlusher) Flush(context.Context) error { return nil }

func validBody(t *testing.T, extra map[string]any) []byte {
	t.Helper()
	body := map[string]any{
		"d": "example.com",
		"n": "pageview",
		"u": "https://example.com/pricing?utm_source=newsletter",
	}
	for k, v := range extra {
		body[k] = v
	}
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestIngestAcceptsValidEvent(t *testing.T) {
	o, buf := newTestOrchestrator(config.Defaults())
	err := o.Ingest(Request{Body: validBody(t, nil), UserAgent: "Mozilla/5.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 1 {
		t.Fatalf("expected 1 buffered event, got %d", buf.Len())
	}
}

func TestIngestRejectsOversizedBody(t *testing.T) {
	o, _ := newTestOrchestrator(config.Defaults())
	big := make([]byte, MaxBodyBytes+1)
	err := o.Ingest(Request{Body: big})
	if err == nil || err.Kind != apierr.PayloadTooLarge {
		t.Fatalf("expected PayloadTooLarge, got %v", err)
	}
}

func TestIngestRejectsMalformedJSON(t *testing.T) {
	o, _ := newTestOrchestrator(config.Defaults())
	err := o.Ingest(Request{Body: []byte("{not json")})
	if err == nil || err.Kind != apierr.SchemaViolation {
		t.Fatalf("expected SchemaViolation, got %v", err)
	}
}

func TestIngestRejectsMissingRequiredFields(t *testing.T) {
	o, _ := newTestOrchestrator(config.Defaults())
	err := o.Ingest(Request{Body: []byte(`{"d":"example.com"}`)})
	if err == nil || err.Kind != apierr.SchemaViolation {
		t.Fatalf("expected SchemaViolation, got %v", err)
	}
}

func TestIngestRejectsInvalidSiteID(t *testing.T) {
	o, _ := newTestOrchestrator(config.Defaults())
	body := validBody(t, map[string]any{"d": "../../etc/passwd"})
	err := o.Ingest(Request{Body: body})
	if err == nil || err.Kind != apierr.ClientInvalid {
		t.Fatalf("expected ClientInvalid, got %v", err)
	}
}

func TestIngestRejectsDisallowedOrigin(t *testing.T) {
	opts := config.Defaults()
	opts.SiteIDs = []string{"allowed.example.com"}
	o, _ := newTestOrchestrator(opts)
	err := o.Ingest(Request{Body: validBody(t, nil), Origin: "evil.example.com"})
	if err == nil || err.Kind != apierr.OriginDenied {
		t.Fatalf("expected OriginDenied, got %v", err)
	}
}

func TestIngestAllowsMatchingOrigin(t *testing.T) {
	opts := config.Defaults()
	opts.SiteIDs = []string{"allowed.example.com"}
	o, _ := newTestOrchestrator(opts)
	err := o.Ingest(Request{Body: validBody(t, nil), Origin: "allowed.example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIngestRateLimited(t *testing.T) {
	opts := config.Defaults()
	buf := buffer.New()
	pool := workerpool.New(context.Background(), 1)
	sup := flush.New(noopFlusher{}, 0, pool)
	o := New(opts, ratelimit.New(1, 1), visitorid.New("secret"), geoip.Open(""), buf, sup)

	if err := o.Ingest(Request{Body: validBody(t, nil)}); err != nil {
		t.Fatalf("first request should be admitted: %v", err)
	}
	err := o.Ingest(Request{Body: validBody(t, nil)})
	if err == nil || err.Kind != apierr.RateLimited {
		t.Fatalf("expected RateLimited on second request, got %v", err)
	}
}

func TestIngestSilentlyDropsBots(t *testing.T) {
	o, buf := newTestOrchestrator(config.Defaults())
	err := o.Ingest(Request{Body: validBody(t, nil), UserAgent: "Googlebot/2.1"})
	if err != nil {
		t.Fatalf("bot requests should report success, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected the bot event to be discarded, got %d buffered", buf.Len())
	}
}

func TestIngestStripsControlCharsFromProps(t *testing.T) {
	o, buf := newTestOrchestrator(config.Defaults())
	err := o.Ingest(Request{Body: validBody(t, map[string]any{"p": "{\"a\":1}\x00\x01"})})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	drained := buf.Drain()
	if len(drained) != 1 {
		t.Fatalf("expected 1 event, got %d", len(drained))
	}
	for _, r := range drained[0].Props {
		if r == 0 {
			t.Fatalf("props should have had control characters stripped, got %q", drained[0].Props)
		}
	}
}

func TestSplitURLExtractsHostnameAndPath(t *testing.T) {
	host, path := splitURL("https://example.com/pricing?utm_source=x")
	if host != "example.com" || path != "/pricing" {
		t.Fatalf("got host=%q path=%q", host, path)
	}
}

func TestSplitURLUnparseableReturnsEmpty(t *testing.T) {
	host, path := splitURL("http://[::1")
	if host != "" || path != "" {
		t.Fatalf("expected empty host/path for an unparseable URL, got host=%q path=%q", host, path)
	}
}

func TestIngestCapturesRevenue(t *testing.T) {
	o, buf := newTestOrchestrator(config.Defaults())
	err := o.Ingest(Request{Body: validBody(t, map[string]any{"ra": 19.99, "rc": "USD"})})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	drained := buf.Drain()
	if !drained[0].RevenueSet || drained[0].RevenueCents != 1999 || drained[0].RevenueCurrency != "USD" {
		t.Fatalf("unexpected revenue fields: %+v", drained[0])
	}
}
