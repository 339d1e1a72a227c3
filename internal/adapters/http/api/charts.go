package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/ringlens/internal/adapters/render"
	"github.com/okian/ringlens/internal/domain/catalog"
	"github.com/okian/ringlens/internal/domain/chart"
	"github.com/okian/ringlens/pkg/metrics"
)

type overviewResponse struct {
	SessionID string `json:"session_id"`
	catalog.Overview
}

type chartsResponse struct {
	File   string       `json:"file"`
	Days   int          `json:"days"`
	Charts []chart.Spec `json:"charts"`
}

// HandleOverview handles GET /overview requests.
func (s *Server) HandleOverview(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Session(r.Context(), sessionID(r))
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overviewResponse{SessionID: sess.ID(), Overview: sess.Overview()})
}

// HandleCharts handles GET /charts/{filename} requests.
func (s *Server) HandleCharts(w http.ResponseWriter, r *http.Request) {
	days, err := parseDays(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	file := r.PathValue("filename")
	specs, err := s.deps.Charts(r.Context(), sessionID(r), file, days)
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}
	metrics.RecordChartRendered("json")
	writeJSON(w, http.StatusOK, chartsResponse{File: file, Days: days, Charts: specs})
}

// HandleChartPNG handles GET /charts/{filename}/{chart}.png requests.
func (s *Server) HandleChartPNG(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutSuffix(r.PathValue("chart"), ".png")
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_chart", "Chart not found")
		return
	}
	days, err := parseDays(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	spec, err := s.deps.Chart(r.Context(), sessionID(r), r.PathValue("filename"), id, days)
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := render.PNG(&buf, spec); err != nil {
		if errors.Is(err, render.ErrNotPlottable) {
			writeError(w, http.StatusNotFound, "no_data", "Chart has no data")
			return
		}
		s.writeLookupError(w, r, err)
		return
	}
	metrics.RecordChartRendered("png")
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func parseDays(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0, fmt.Errorf("%w: days must be a non-negative integer", ErrBadRequest)
	}
	return days, nil
}
