package intel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/marthaea/link-guardian-safecheck/internal/target"
)

type stubSource struct {
	name   string
	signal Signal
	err    error
	delay  time.Duration
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Lookup(ctx context.Context, _ target.Parsed) (Signal, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Signal{}, ctx.Err()
		}
	}
	return s.signal, s.err
}

func TestGather_AllSucceed(t *testing.T) {
	sources := []Source{
		stubSource{name: "a", signal: Signal{Service: "a"}},
		stubSource{name: "b", signal: Signal{Service: "b"}},
	}
	got := Gather(context.Background(), sources, target.Parse("example.com"), time.Second, zerolog.Nop())
	if len(got) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(got))
	}
	if got[0].Service != "a" || got[1].Service != "b" {
		t.Errorf("expected source order preserved, got %v", got)
	}
}

func TestGather_FailureIsolated(t *testing.T) {
	sources := []Source{
		stubSource{name: "bad", err: errors.New("boom")},
		stubSource{name: "good", signal: Signal{Service: "good"}},
	}
	got := Gather(context.Background(), sources, target.Parse("example.com"), time.Second, zerolog.Nop())
	if len(got) != 1 || got[0].Service != "good" {
		t.Fatalf("expected only the good signal, got %v", got)
	}
}

func TestGather_TimeoutTreatedAsAbsent(t *testing.T) {
	sources := []Source{
		stubSource{name: "slow", delay: 500 * time.Millisecond, signal: Signal{Service: "slow"}},
		stubSource{name: "fast", signal: Signal{Service: "fast"}},
	}
	start := time.Now()
	got := Gather(context.Background(), sources, target.Parse("example.com"), 50*time.Millisecond, zerolog.Nop())
	if len(got) != 1 || got[0].Service != "fast" {
		t.Fatalf("expected only the fast signal, got %v", got)
	}
	if time.Since(start) > 400*time.Millisecond {
		t.Error("gather did not respect the per-call timeout")
	}
}

func TestGather_NoSources(t *testing.T) {
	if got := Gather(context.Background(), nil, target.Parse("x.com"), time.Second, zerolog.Nop()); got != nil {
		t.Errorf("expected nil for no sources, got %v", got)
	}
}

func TestSimulatedSources_Deterministic(t *testing.T) {
	tgt := target.Parse("http://example.com")
	ctx := context.Background()

	var ipqs SimulatedIPQS
	first, _ := ipqs.Lookup(ctx, tgt)
	second, _ := ipqs.Lookup(ctx, tgt)
	if *first.RiskScore != *second.RiskScore || first.Phishing != second.Phishing {
		t.Error("simulated IPQS is not deterministic")
	}

	var vt SimulatedVirusTotal
	v1, _ := vt.Lookup(ctx, tgt)
	v2, _ := vt.Lookup(ctx, tgt)
	if *v1.Positives != *v2.Positives {
		t.Error("simulated VirusTotal is not deterministic")
	}
}

func TestSignal_DetectionRatio(t *testing.T) {
	s := Signal{Positives: intPtr(7), Total: intPtr(70)}
	ratio, ok := s.DetectionRatio()
	if !ok || ratio != 0.1 {
		t.Errorf("expected ratio 0.1, got %v (%v)", ratio, ok)
	}

	if _, ok := (Signal{}).DetectionRatio(); ok {
		t.Error("expected no ratio when engine counts are absent")
	}
}

func TestIPQSClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"risk_score":88,"unsafe":true,"phishing":true,"domain_age":12,"country_code":"RU"}`))
	}))
	defer srv.Close()

	c := NewIPQSClient("test-key", 2, zerolog.Nop())
	c.baseURL = srv.URL

	sig, err := c.Lookup(context.Background(), target.Parse("http://bad.example.ru"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.RiskScore == nil || *sig.RiskScore != 88 {
		t.Errorf("expected risk score 88, got %v", sig.RiskScore)
	}
	if !sig.Phishing || !sig.Suspicious {
		t.Error("expected phishing and suspicious flags")
	}
	if sig.DomainAgeDays == nil || *sig.DomainAgeDays != 12 {
		t.Errorf("expected domain age 12, got %v", sig.DomainAgeDays)
	}
}

func TestIPQSClient_ErrorPaths(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-2xx", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"malformed JSON", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}},
		{"api-level failure", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":false,"message":"invalid key"}`))
		}},
	}

	for _, tc := range tests {
		srv := httptest.NewServer(tc.handler)
		c := NewIPQSClient("k", 0, zerolog.Nop())
		c.baseURL = srv.URL
		if _, err := c.Lookup(context.Background(), target.Parse("example.com")); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
		srv.Close()
	}
}
