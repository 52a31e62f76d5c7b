package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/fire-inspection-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxReportBytes bounds the body accepted by POST /parse.
const maxReportBytes = 4 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportParser parses one report. *domain.Parser implements it.
type ReportParser interface {
	Parse(content, sourceID string) (domain.InspectionReport, error)
}

// Server exposes health, readiness, metrics, and on-demand parse endpoints.
type Server struct {
	httpServer *http.Server
	parser     ReportParser
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// POST /parse routes. A nil parser disables /parse.
func NewServer(addr string, ready sharedobs.ReadinessChecker, parser ReportParser, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		parser: parser,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if parser != nil {
		mux.HandleFunc("POST /parse", s.handleParse)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleParse parses the request body as a report. The building is resolved
// from the source_id query parameter, which is normally the report file name.
// format=xlsx returns the report as a workbook instead of JSON.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	sourceID := r.URL.Query().Get("source_id")
	if sourceID == "" {
		writeError(w, http.StatusBadRequest, "source_id query parameter is required")
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "format must be json or xlsx")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxReportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "report body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	report, err := s.parser.Parse(string(body), sourceID)
	switch {
	case errors.Is(err, domain.ErrUnresolvedBuildingName):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, domain.ErrReportTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case err != nil:
		s.logger.Error("parse report failed", "source_id", sourceID, "error", err)
		writeError(w, http.StatusInternalServerError, "parse failed")
		return
	}

	if format == "xlsx" {
		s.writeWorkbook(w, report)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

func (s *Server) writeWorkbook(w http.ResponseWriter, report domain.InspectionReport) {
	var buf bytes.Buffer
	if err := xlsx.Write(&buf, []domain.InspectionReport{report}); err != nil {
		s.logger.Error("build workbook failed", "source_id", report.SourceID, "error", err)
		writeError(w, http.StatusInternalServerError, "build workbook failed")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.BuildingName+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
