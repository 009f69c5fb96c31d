// Package http exposes the journal service as a JSON API.
//
// This file implements utilities for parsing and validating HTTP request data.
// Sale submissions arrive either as JSON from the register UI or as
// form-encoded values from simple clients, and both go through the same
// parser.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"posjournal/internal/core"
	"posjournal/internal/report"
)

// maxBodyBytes bounds request bodies; a sale is a handful of fields.
const maxBodyBytes = 64 << 10

var errInvalidLimit = errors.New("invalid limit")

// SaleRequest is a sale submission before catalog lookup.
type SaleRequest struct {
	ItemName string
	Quantity int
	Date     string
}

// ReportParams holds the optional period and limit of report endpoints.
type ReportParams struct {
	Period report.Period
	Limit  int
}

// ParseReportParams reads period and limit from the query string. Missing
// values fall back to the dashboard defaults.
func ParseReportParams(query url.Values) (ReportParams, error) {
	params := ReportParams{
		Period: report.DefaultPeriod,
		Limit:  report.DefaultTopLimit,
	}

	if v := strings.TrimSpace(query.Get("period")); v != "" {
		p, err := report.ParsePeriod(v)
		if err != nil {
			return ReportParams{}, err
		}
		params.Period = p
	}
	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return ReportParams{}, fmt.Errorf("%w %q", errInvalidLimit, v)
		}
		params.Limit = n
	}

	return params, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, at most maxBodyBytes.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || body[0] == '{' {
		p.jsonData = make(map[string]any)
		dec := json.NewDecoder(strings.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(body)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseSaleRequest extracts itemName, quantity and date. A quantity that
// is not a whole number is reported as core.ErrInvalidQuantity. An empty
// date defaults to today.
func (p *RequestBodyParser) ParseSaleRequest(today string) (SaleRequest, error) {
	if err := p.Parse(); err != nil {
		return SaleRequest{}, err
	}

	req := SaleRequest{
		ItemName: p.Get("itemName"),
		Date:     p.Get("date"),
	}
	if req.Date == "" {
		req.Date = today
	}

	raw := p.Get("quantity")
	q, err := strconv.Atoi(raw)
	if err != nil {
		return req, fmt.Errorf("%w: %q", core.ErrInvalidQuantity, raw)
	}
	req.Quantity = q
	return req, nil
}
