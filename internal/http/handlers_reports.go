package http

import (
	"net/http"
)

// reportParams parses ?period= and ?limit=, writing a 400 on bad input.
func reportParams(w http.ResponseWriter, r *http.Request) (ReportParams, bool) {
	params, err := ParseReportParams(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return ReportParams{}, false
	}
	return params, true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.service.Summary(r.Context())).Write(w)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	params, ok := reportParams(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Body(s.service.Trend(r.Context(), params.Period)).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"categories": s.service.Categories(r.Context()),
	}).Write(w)
}

func (s *Server) handleTopSellers(w http.ResponseWriter, r *http.Request) {
	params, ok := reportParams(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Body(map[string]any{
		"items": s.service.TopSellers(r.Context(), params.Limit),
	}).Write(w)
}

// handleDashboard serves every report at once from the report cache.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	params, ok := reportParams(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Body(s.dashboard(r.Context(), params)).Write(w)
}
