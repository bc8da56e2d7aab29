package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/bin-packing/internal/api"
	"github.com/eugenenazirov/bin-packing/internal/binpacking"
	"github.com/eugenenazirov/bin-packing/internal/metrics"
	"github.com/eugenenazirov/bin-packing/internal/storage"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	store, err := storage.NewMemoryStorage(storage.DefaultCapacity)
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	m := metrics.New()
	handler := api.NewHandler(binpacking.NewExact(), binpacking.NewFirstFit(), store, api.WithObserver(m))
	logger := zaptest.NewLogger(t)
	return api.NewRouter(handler, logger, api.WithMetrics(m))
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationFlow(t *testing.T) {
	handler := newRouter(t)
	jsonHeaders := map[string]string{"Content-Type": "application/json"}

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	genPayload, _ := json.Marshal(map[string]any{"items": 8, "capacity": "sqrt", "seed": 42})
	rec = performRequest(t, handler, http.MethodPost, "/api/generate", genPayload, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from generate, got %d: %s", rec.Code, rec.Body.String())
	}
	instancePayload := rec.Body.Bytes()

	rec = performRequest(t, handler, http.MethodPost, "/api/compare", instancePayload, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from compare, got %d: %s", rec.Code, rec.Body.String())
	}

	var compared struct {
		ID     string `json:"id"`
		Exact  *binpacking.Solution
		Greedy binpacking.Solution
		Ratio  float64 `json:"ratio"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&compared); err != nil {
		t.Fatalf("decode compare response: %v", err)
	}
	if compared.ID == "" || compared.Exact == nil {
		t.Fatalf("expected stored report with exact solution, got %+v", compared)
	}
	if compared.Exact.Bins > compared.Greedy.Bins || compared.Ratio < 1 {
		t.Fatalf("exact %d bins vs greedy %d bins, ratio %v", compared.Exact.Bins, compared.Greedy.Bins, compared.Ratio)
	}

	rec = performRequest(t, handler, http.MethodGet, "/api/reports/"+compared.ID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from report lookup, got %d", rec.Code)
	}

	rec = performRequest(t, handler, http.MethodGet, "/api/reports?limit=5", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from report list, got %d", rec.Code)
	}
	var listed struct {
		Reports []storage.Record `json:"reports"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("decode report list: %v", err)
	}
	if len(listed.Reports) != 1 || listed.Reports[0].ID != compared.ID {
		t.Fatalf("unexpected reports: %+v", listed.Reports)
	}

	rec = performRequest(t, handler, http.MethodGet, "/metrics", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`binpacking_solves_total{outcome="success",solver="exact"} 1`,
		`binpacking_solves_total{outcome="success",solver="first-fit"} 1`,
		"binpacking_approximation_ratio_count 1",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
