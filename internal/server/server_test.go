package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"pkt.systems/mdhtml"
)

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	srv := httptest.NewServer(New(cfg))
	t.Cleanup(srv.Close)
	return srv, cfg.Registry
}

func post(t *testing.T, url, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(url, "text/markdown", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(out)
}

func TestRenderEndpoint(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, Config{})
	resp, body := post(t, srv.URL+"/render", "# Hi\n\nthere\n")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if want := "<h1>Hi</h1>\n<p>there</p>\n"; body != want {
		t.Fatalf("want %q got %q", want, body)
	}
}

func TestRenderEndpointErrors(t *testing.T) {
	t.Parallel()
	srv, reg := newTestServer(t, Config{
		MaxBodyBytes: 64,
		Options:      []mdhtml.RenderOption{mdhtml.WithMaxDepth(2)},
	})
	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "binary", body: "a\x00b", code: http.StatusBadRequest},
		{name: "too deep", body: ">>> deep\n", code: http.StatusUnprocessableEntity},
		{name: "too large", body: strings.Repeat("x", 65), code: http.StatusRequestEntityTooLarge},
	}
	for _, tc := range tests {
		resp, body := post(t, srv.URL+"/render", tc.body)
		if resp.StatusCode != tc.code {
			t.Fatalf("%s: status %d want %d (%s)", tc.name, resp.StatusCode, tc.code, body)
		}
	}

	for status, want := range map[string]float64{"bad_request": 1, "malformed": 1, "too_large": 1} {
		c, err := findCounter(reg, status)
		if err != nil {
			t.Fatalf("counter %s: %v", status, err)
		}
		if c != want {
			t.Fatalf("renders_total{status=%q}=%v want %v", status, c, want)
		}
	}
}

func findCounter(reg *prometheus.Registry, status string) (float64, error) {
	families, err := reg.Gather()
	if err != nil {
		return 0, err
	}
	for _, f := range families {
		if f.GetName() != "mdhtml_renders_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() == status {
					return m.GetCounter().GetValue(), nil
				}
			}
		}
	}
	return 0, nil
}

func TestMetricsAndHealth(t *testing.T) {
	t.Parallel()
	srv, reg := newTestServer(t, Config{})
	post(t, srv.URL+"/render", "text\n")

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(body), `mdhtml_renders_total{status="ok"} 1`) {
		t.Fatalf("metrics missing ok counter:\n%s", body)
	}
	n, err := testutil.GatherAndCount(reg, "mdhtml_render_duration_seconds")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected duration histogram, got %d series", n)
	}

	resp, err = http.Get(srv.URL + "/render")
	if err != nil {
		t.Fatalf("GET /render: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET /render status %d, want 405", resp.StatusCode)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, New(Config{})) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("Serve did not return after cancel")
	}
}

func TestRenderEndpointRejectsQuoteFlood(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, Config{})
	body := strings.Repeat(">", DefaultMaxBodyBytes-16) + " x\n"
	resp, out := post(t, srv.URL+"/render", body)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status %d want %d (%.200s)", resp.StatusCode, http.StatusUnprocessableEntity, out)
	}
}
