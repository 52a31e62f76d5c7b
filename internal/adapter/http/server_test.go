package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	httpadapter "github.com/couchcryptid/fire-inspection-etl/internal/adapter/http"
	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, domain.NewParser(domain.WithMaxLines(10)), slog.Default())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("pipeline has not loaded any reports yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "pipeline has not loaded any reports yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func parseRequest(sourceID, body string) *http.Request {
	target := "/parse"
	if sourceID != "" {
		target += "?source_id=" + url.QueryEscape(sourceID)
	}
	return httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
}

func TestParseReturnsReport(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	body := "Customer ID: 5034876\nANNUAL TEST AND INSPECTION RECORD\nSE Bishop Exit (14)    H    2"

	srv.ServeHTTP(rec, parseRequest("5034876_2025_Cardston Temple.txt", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var report domain.InspectionReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "Cardston Temple", report.BuildingName)
	assert.Equal(t, "5034876", report.TestInfo.CustomerID)
	require.Len(t, report.FireAlarmDevices, 1)
	assert.Equal(t, "SE Bishop Exit (14)", report.FireAlarmDevices[0].Location)
}

func TestParseReturnsWorkbook(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	body := "ANNUAL TEST AND INSPECTION RECORD\nSE Bishop Exit (14)    H    2"
	req := parseRequest("5034876_2025_Cardston Temple.txt", body)
	req.URL.RawQuery += "&format=xlsx"

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Cardston Temple.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Devices")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1], "SE Bishop Exit (14)")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		sourceID string
		format   string
		body     string
		status   int
	}{
		{"missing source id", "", "", "text", http.StatusBadRequest},
		{"unresolved building", "9999_2025_Unknown.txt", "", "text", http.StatusUnprocessableEntity},
		{"too many lines", "Cardston Temple.txt", "", strings.Repeat("line\n", 20), http.StatusRequestEntityTooLarge},
		{"unknown format", "Cardston Temple.txt", "csv", "text", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(nil)
			rec := httptest.NewRecorder()
			req := parseRequest(tt.sourceID, tt.body)
			if tt.format != "" {
				req.URL.RawQuery += "&format=" + tt.format
			}

			srv.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestParseDisabledWithoutParser(t *testing.T) {
	srv := httpadapter.NewServer(":0", &mockReadiness{}, nil, slog.Default())
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, parseRequest("Cardston Temple.txt", "text"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
