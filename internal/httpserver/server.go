package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radiusdt/vector-reports/internal/config"
	"github.com/radiusdt/vector-reports/internal/metrics"
	"github.com/radiusdt/vector-reports/internal/report"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	Reports *report.Service
	Config  *config.Config
	Logger  *zap.Logger
}

// Server exposes the report pipeline over HTTP. It is a thin boundary
// adapter: request parsing and response rendering live here, the pipeline
// itself stays in the report package.
type Server struct {
	reports *report.Service
	config  *config.Config
	logger  *zap.Logger
}

// NewServer constructs a new http.Handler with all routes registered.
func NewServer(deps *Dependencies) http.Handler {
	s := &Server{
		reports: deps.Reports,
		config:  deps.Config,
		logger:  deps.Logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)

	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	mux.HandleFunc("/reports/campaign", s.handleCampaignReport)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// GET /reports/campaign?campaign_id=...&start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
func (s *Server) handleCampaignReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	campaignID := q.Get("campaign_id")
	startDate := q.Get("start_date")
	endDate := q.Get("end_date")

	if campaignID == "" || startDate == "" || endDate == "" {
		s.errorResponse(w, "campaign_id, start_date and end_date are required", http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()
	begin := time.Now()

	result, err := s.reports.CampaignReport(r.Context(), campaignID, startDate, endDate)
	if err != nil {
		switch {
		case errors.Is(err, report.ErrInvalidRange):
			s.errorResponse(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, report.ErrCampaignNotFound):
			s.errorResponse(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, report.ErrSourceUnavailable):
			s.logger.Error("report source failure",
				zap.String("request_id", requestID),
				zap.String("campaign_id", campaignID),
				zap.Error(err),
			)
			s.errorResponse(w, "upstream data source unavailable", http.StatusBadGateway)
		default:
			s.logger.Error("report generation failed",
				zap.String("request_id", requestID),
				zap.String("campaign_id", campaignID),
				zap.Error(err),
			)
			s.errorResponse(w, "failed to generate report", http.StatusInternalServerError)
		}
		return
	}

	s.logger.Debug("report request served",
		zap.String("request_id", requestID),
		zap.String("campaign_id", campaignID),
		zap.Duration("took", time.Since(begin)),
	)

	s.jsonResponse(w, result)
}

// ---- Helper Methods ----

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
