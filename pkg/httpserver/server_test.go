package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mselser95/dex-arb/internal/spread"
	"github.com/mselser95/dex-arb/internal/testutil"
	"github.com/mselser95/dex-arb/pkg/healthprobe"
	"github.com/mselser95/dex-arb/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type staticProvider struct {
	report *spread.Report
}

func (p *staticProvider) LatestReport() *spread.Report {
	return p.report
}

func qualifyingReport(t *testing.T) *spread.Report {
	t.Helper()

	pair := testutil.WETHUSDC(t)
	samples := []types.PriceSample{
		types.NewPresentSample("uniswap", pair, 4, decimal.RequireFromString("100")),
		types.NewPresentSample("pancakeswap", pair, 4, decimal.RequireFromString("102")),
	}

	result := &types.SpreadResult{
		Pair:      pair,
		Tick:      4,
		Spread:    decimal.RequireFromString("2"),
		Threshold: decimal.RequireFromString("1.5"),
		Qualifies: true,
		BuyVenue:  "uniswap",
		SellVenue: "pancakeswap",
		BuyPrice:  decimal.RequireFromString("100"),
		SellPrice: decimal.RequireFromString("102"),
	}

	return spread.NewReport(4, pair, samples, result, "")
}

func TestNew(t *testing.T) {
	logger := zap.NewNop()
	healthChecker := healthprobe.New()

	server := New(&Config{
		Port:          "8080",
		Logger:        logger,
		HealthChecker: healthChecker,
	})

	if server == nil {
		t.Fatal("New() returned nil server")
	}
	if server.server == nil {
		t.Error("New() server.server is nil")
	}
	if server.logger != logger {
		t.Error("New() logger not set correctly")
	}
	if server.healthChecker != healthChecker {
		t.Error("New() healthChecker not set correctly")
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := New(&Config{
		Port:          "0",
		Logger:        zap.NewNop(),
		HealthChecker: healthprobe.New(),
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.server.Handler.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Health endpoint status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		setReady       bool
		expectedStatus int
	}{
		{
			name:           "ready_when_set",
			setReady:       true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not_ready_initially",
			setReady:       false,
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := healthprobe.New()
			if tt.setReady {
				hc.SetReady(true)
			}

			server := New(&Config{
				Port:          "0",
				Logger:        zap.NewNop(),
				HealthChecker: hc,
			})

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			w := httptest.NewRecorder()

			server.server.Handler.ServeHTTP(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("Ready endpoint status = %d, want %d", resp.StatusCode, tt.expectedStatus)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := New(&Config{
		Port:          "0",
		Logger:        zap.NewNop(),
		HealthChecker: healthprobe.New(),
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	server.server.Handler.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Metrics endpoint status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	if resp.Header.Get("Content-Type") == "" {
		t.Error("Metrics endpoint missing Content-Type header")
	}
}

func TestSpreadHandler_LatestTick(t *testing.T) {
	report := qualifyingReport(t)

	server := New(&Config{
		Port:           "0",
		Logger:         zap.NewNop(),
		HealthChecker:  healthprobe.New(),
		ReportProvider: &staticProvider{report: report},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/spread", nil)
	w := httptest.NewRecorder()

	server.server.Handler.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Spread endpoint status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body SpreadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode spread response: %v", err)
	}

	if body.ReportID != report.ID {
		t.Errorf("ReportID = %q, want %q", body.ReportID, report.ID)
	}
	if body.Tick != 4 {
		t.Errorf("Tick = %d, want 4", body.Tick)
	}
	if !body.Qualifies {
		t.Error("expected snapshot to qualify")
	}
	if body.BuyVenue != "uniswap" || body.SellVenue != "pancakeswap" {
		t.Errorf("venues = %q/%q, want uniswap/pancakeswap", body.BuyVenue, body.SellVenue)
	}
	if len(body.Samples) != 2 {
		t.Errorf("samples = %d, want 2", len(body.Samples))
	}
}

func TestSpreadHandler_InconclusiveTick(t *testing.T) {
	pair := testutil.WETHUSDC(t)
	samples := []types.PriceSample{
		types.NewAbsentSample("uniswap", pair, 1, types.ReasonNetworkError),
		types.NewAbsentSample("pancakeswap", pair, 1, types.ReasonPoolNotFound),
	}
	report := spread.NewReport(1, pair, samples, nil, types.InconclusiveTooFewSamples)

	server := New(&Config{
		Port:           "0",
		Logger:         zap.NewNop(),
		HealthChecker:  healthprobe.New(),
		ReportProvider: &staticProvider{report: report},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/spread", nil)
	w := httptest.NewRecorder()

	server.server.Handler.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	var body SpreadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode spread response: %v", err)
	}

	if body.Qualifies {
		t.Error("inconclusive tick must not qualify")
	}
	if body.Inconclusive != string(types.InconclusiveTooFewSamples) {
		t.Errorf("Inconclusive = %q, want %q", body.Inconclusive, types.InconclusiveTooFewSamples)
	}
	for _, sample := range body.Samples {
		if !sample.Absent || sample.Reason == "" {
			t.Errorf("expected absent sample with reason, got %+v", sample)
		}
	}
}

func TestSpreadHandler_NoTickYet(t *testing.T) {
	server := New(&Config{
		Port:           "0",
		Logger:         zap.NewNop(),
		HealthChecker:  healthprobe.New(),
		ReportProvider: &staticProvider{},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/spread", nil)
	w := httptest.NewRecorder()

	server.server.Handler.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("No tick yet status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if errResp.Error == "" {
		t.Error("Error response missing error message")
	}
}

func TestSpreadEndpoint_OnlyWithProvider(t *testing.T) {
	server := New(&Config{
		Port:          "0",
		Logger:        zap.NewNop(),
		HealthChecker: healthprobe.New(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/spread", nil)
	w := httptest.NewRecorder()

	server.server.Handler.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Route without provider status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	server := New(&Config{
		Port:          "0", // Random available port
		Logger:        zap.NewNop(),
		HealthChecker: healthprobe.New(),
	})

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start()
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	select {
	case err := <-serverDone:
		if err != nil {
			t.Errorf("Start() returned error after shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after shutdown")
	}
}

func TestServer_Timeouts(t *testing.T) {
	server := New(&Config{
		Port:          "8080",
		Logger:        zap.NewNop(),
		HealthChecker: healthprobe.New(),
	})

	if server.server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want %v", server.server.ReadTimeout, 15*time.Second)
	}

	if server.server.ReadHeaderTimeout != 10*time.Second {
		t.Errorf("ReadHeaderTimeout = %v, want %v", server.server.ReadHeaderTimeout, 10*time.Second)
	}

	if server.server.WriteTimeout != 15*time.Second {
		t.Errorf("WriteTimeout = %v, want %v", server.server.WriteTimeout, 15*time.Second)
	}

	if server.server.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want %v", server.server.IdleTimeout, 60*time.Second)
	}
}

func TestServer_RouteNotFound(t *testing.T) {
	server := New(&Config{
		Port:          "0",
		Logger:        zap.NewNop(),
		HealthChecker: healthprobe.New(),
	})

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	w := httptest.NewRecorder()

	server.server.Handler.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Non-existent route status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
