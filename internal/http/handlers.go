package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"posjournal/internal/core"
	applog "posjournal/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	}).Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{
		"catalog": map[string]any{"items": len(s.service.Catalog()), "status": "ok"},
		"cache":   map[string]any{"dashboard_entries": s.dashboardCache.Size(), "status": "ok"},
	}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Storage readiness check failed", applog.FieldError, err.Error())
			checks["storage"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	}

	NewJSONResponse().Status(httpStatus).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	metrics := []struct {
		name, help, kind string
		value            int64
	}{
		{"http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests},
		{"http_response_time_avg_microseconds", "Average response time", "gauge", traceMetrics.AverageResponseTime},
		{"sales_recorded_total", "Sales recorded through the API", "counter", atomic.LoadInt64(&s.appMetrics.salesRecorded)},
		{"journal_resets_total", "Journal resets through the API", "counter", atomic.LoadInt64(&s.appMetrics.resets)},
		{"dashboard_cache_hits_total", "Dashboard cache hits", "counter", atomic.LoadInt64(&s.appMetrics.cacheHits)},
		{"dashboard_cache_misses_total", "Dashboard cache misses", "counter", atomic.LoadInt64(&s.appMetrics.cacheMisses)},
		{"dashboard_cache_entries", "Current dashboard cache entries", "gauge", int64(s.dashboardCache.Size())},
		{"rate_limit_hits_total", "Total rate limit hits", "counter", rateLimitMetrics.TotalHits},
		{"active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateLimitMetrics.ClientCount},
		{"suspicious_requests_total", "Total suspicious requests detected", "counter", securityMetrics.SuspiciousRequests},
		{"uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.appMetrics.uptime).Seconds())},
	}

	w.WriteHeader(http.StatusOK)
	for _, m := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", m.name, m.help, m.name, m.kind, m.name, m.value)
	}
}

// handleCatalog lists the catalog, filtered by ?q= when present.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	items := s.service.SearchCatalog(sanitizeInput(r.URL.Query().Get("q")))
	NewJSONResponse().Body(map[string]any{
		"items": items,
		"count": len(items),
	}).Write(w)
}

// handleListTransactions returns the journal in history order.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.service.ListTransactions(r.Context())
	NewJSONResponse().Body(map[string]any{
		"transactions": txs,
		"count":        len(txs),
	}).Write(w)
}

// handleRecordSale records one sale submitted as JSON or form values.
func (s *Server) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	req, err := NewRequestBodyParser(w, r).ParseSaleRequest(s.today())
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			ErrorResponse(http.StatusRequestEntityTooLarge, "too_large", "request body too large").Write(w)
		case errors.Is(err, core.ErrInvalidQuantity):
			UnprocessableEntityError("invalid_quantity", "quantity must be a positive whole number").Write(w)
		default:
			logger.WarnContext(ctx, "Malformed sale request", applog.FieldError, err.Error())
			BadRequestError("malformed request body").Write(w)
		}
		return
	}

	tx, err := s.service.RecordSale(ctx, req.ItemName, req.Quantity, req.Date)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrItemNotFound):
		NotFoundError("item_not_found", fmt.Sprintf("item %q is not in the catalog", req.ItemName)).Write(w)
		return
	case errors.Is(err, core.ErrInvalidQuantity):
		UnprocessableEntityError("invalid_quantity", "quantity must be a positive whole number").Write(w)
		return
	case errors.Is(err, core.ErrUnparseableDate):
		UnprocessableEntityError("invalid_date", "date must be YYYY-MM-DD").Write(w)
		return
	default:
		s.structured.LogError(ctx, "Failed to record sale", err, applog.OpRecord,
			applog.NewFields().WithComponent(applog.ComponentJournal))
		InternalServerError("could not save the sale").Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.salesRecorded, 1)
	s.invalidateReports()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions#"+tx.ID).
		Body(tx).
		Write(w)
}

// handleResetJournal deletes every transaction.
func (s *Server) handleResetJournal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.service.ResetJournal(ctx); err != nil {
		s.structured.LogError(ctx, "Failed to reset journal", err, applog.OpReset,
			applog.NewFields().WithComponent(applog.ComponentJournal))
		InternalServerError("could not reset the journal").Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.resets, 1)
	s.invalidateReports()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
