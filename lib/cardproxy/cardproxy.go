// Package cardproxy serves card searches to clients that should not hold the
// upstream api key. Incoming queries are rebuilt from their criteria so only
// known parameters are forwarded.
package cardproxy

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"tcgsearch/internal/assert"
	"tcgsearch/internal/telemetry"
	"tcgsearch/lib/cardsearch"
)

const (
	report_proxy_search = "proxy.search"
	report_proxy_write  = "proxy.write"
)

type dataResponse struct {
	Data []cardsearch.Card `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	fetcher cardsearch.Fetcher
	tel     telemetry.API
}

// NewHandler returns a mux serving GET /cards and GET /healthz.
func NewHandler(fetcher cardsearch.Fetcher, tel telemetry.API) *http.ServeMux {
	assert.NotNil(fetcher)

	h := handler{
		fetcher: fetcher,
		tel:     telemetry.NewScopedAPI("cardproxy", tel),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /cards", h.cards)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (h handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(body)
	if err != nil {
		h.tel.ReportWarning(report_proxy_write, err)
	}
}

func (h handler) cards(w http.ResponseWriter, r *http.Request) {
	incoming, err := cardsearch.ParseDescriptor(r.URL.RawQuery)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid query string"})
		return
	}
	query, ok := cardsearch.Build(incoming.Criteria())
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing query"})
		return
	}

	h.tel.ReportDebug(report_proxy_search, query.Encode())

	switch outcome := h.fetcher.Fetch(r.Context(), query).(type) {
	case cardsearch.Success:
		cards := outcome.Cards
		if cards == nil {
			cards = []cardsearch.Card{}
		}
		h.writeJSON(w, http.StatusOK, dataResponse{Data: cards})
	case cardsearch.Failure:
		h.writeJSON(w, statusOf(outcome.Err), errorResponse{Error: outcome.Message()})
	default:
		h.tel.ReportBroken(report_proxy_search, "unexpected outcome", outcome)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: cardsearch.UnknownErrorMessage})
	}
}

// statusOf maps a failure to the status the proxy responds with, upstream
// error statuses are passed through.
func statusOf(err error) int {
	var apiErr *cardsearch.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 {
		return apiErr.Status
	}
	var transportErr *cardsearch.TransportError
	if errors.As(err, &transportErr) && isTimeout(transportErr.Cause) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// isTimeout covers both context deadlines and the http client's own timeout,
// which is reported as a net.Error rather than context.DeadlineExceeded.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
