package httpserver

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/mselser95/dex-arb/internal/spread"
	"go.uber.org/zap"
)

// ReportProvider exposes the latest completed tick report. Implemented by the
// monitor scheduler.
type ReportProvider interface {
	LatestReport() *spread.Report
}

// SpreadHandler handles HTTP requests for the latest spread snapshot.
type SpreadHandler struct {
	provider ReportProvider
	logger   *zap.Logger
}

// NewSpreadHandler creates a new spread snapshot handler.
func NewSpreadHandler(provider ReportProvider, logger *zap.Logger) *SpreadHandler {
	return &SpreadHandler{
		provider: provider,
		logger:   logger,
	}
}

// VenueSample represents one venue's price in the snapshot.
type VenueSample struct {
	Venue  string `json:"venue"`
	Price  string `json:"price,omitempty"`
	Absent bool   `json:"absent,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// SpreadResponse represents the HTTP response for the latest tick.
type SpreadResponse struct {
	ReportID     string        `json:"report_id"`
	Tick         uint64        `json:"tick"`
	Pair         string        `json:"pair"`
	CreatedAt    string        `json:"created_at"`
	Samples      []VenueSample `json:"samples"`
	SpreadPct    string        `json:"spread_pct,omitempty"`
	ThresholdPct string        `json:"threshold_pct,omitempty"`
	BuyVenue     string        `json:"buy_venue,omitempty"`
	SellVenue    string        `json:"sell_venue,omitempty"`
	Qualifies    bool          `json:"qualifies"`
	Inconclusive string        `json:"inconclusive,omitempty"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleSpread handles GET /api/spread requests.
func (h *SpreadHandler) HandleSpread(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := h.provider.LatestReport()
	if report == nil {
		h.writeError(w, "no tick completed yet", http.StatusNotFound)
		return
	}

	response := SpreadResponse{
		ReportID:  report.ID,
		Tick:      report.Tick,
		Pair:      report.Pair.String(),
		CreatedAt: report.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Samples:   make([]VenueSample, 0, len(report.Samples)),
	}

	for _, sample := range report.Samples {
		vs := VenueSample{Venue: sample.Venue}
		if sample.Absent {
			vs.Absent = true
			vs.Reason = string(sample.Reason)
		} else {
			vs.Price = sample.Price.String()
		}
		response.Samples = append(response.Samples, vs)
	}

	if report.Result != nil {
		response.SpreadPct = report.Result.Spread.String()
		response.ThresholdPct = report.Result.Threshold.String()
		response.BuyVenue = report.Result.BuyVenue
		response.SellVenue = report.Result.SellVenue
		response.Qualifies = report.Result.Qualifies
	} else {
		response.Inconclusive = string(report.Inconclusive)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (h *SpreadHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{Error: message}
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
