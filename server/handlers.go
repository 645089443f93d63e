package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/etnz/dca"
	"github.com/etnz/dca/analysis"
	"github.com/etnz/dca/renderer"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler serves the simulation endpoints.
type Handler struct {
	market dca.MarketData
	log    zerolog.Logger
}

// NewHandler creates a handler simulating plans on market.
func NewHandler(market dca.MarketData, log zerolog.Logger) *Handler {
	return &Handler{
		market: market,
		log:    log.With().Str("handler", "simulation").Logger(),
	}
}

// RegisterRoutes registers the endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.HandleHealth)
	r.Get("/catalog", h.HandleCatalog)
	r.Post("/simulate", h.HandleSimulate)
	r.Post("/optimize", h.HandleOptimize)
	r.Post("/forecast", h.HandleForecast)
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleCatalog handles GET /catalog - the candidates of a search.
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, dca.DefaultCatalog)
}

// HandleSimulate handles POST /simulate - simulates a plan, and compares it
// to a benchmark when one is named.
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Benchmark == "" {
		res, err := dca.Run(r.Context(), h.market, req.Plan)
		if err != nil {
			h.fail(w, err, "simulation failed")
			return
		}
		h.writeJSON(w, http.StatusOK, SimulateResponse{
			Result: newResult(res),
			Report: renderer.Report(res, renderer.Options{Evolution: req.Evolution}),
		})
		return
	}

	cmp, err := dca.Compare(r.Context(), h.market, req.Plan, req.Benchmark)
	if err != nil {
		h.fail(w, err, "comparison failed")
		return
	}
	h.writeJSON(w, http.StatusOK, SimulateResponse{
		Result: newResult(cmp.Portfolio),
		Benchmark: &Benchmark{
			Ticker:    cmp.Benchmark,
			From:      cmp.From,
			Reference: newResult(cmp.Reference),
		},
		Report: renderer.Report(cmp.Portfolio, renderer.Options{Comparison: cmp, Evolution: req.Evolution}),
	})
}

// HandleOptimize handles POST /optimize - searches the best candidates for
// the plan terms.
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	s, err := dca.Search(r.Context(), h.market, req.Plan, dca.SearchOptions{
		TopN:    req.TopN,
		Catalog: req.Catalog,
		Log:     &h.log,
	})
	if err != nil {
		h.fail(w, err, "search failed")
		return
	}
	resp := OptimizeResponse{
		Ranking:     s.Ranking,
		Composition: s.Composition,
		Result:      newResult(s.Result),
		Report:      renderer.Report(s.Result, renderer.Options{Search: s}),
	}
	for _, sk := range s.Skipped {
		resp.Skipped = append(resp.Skipped, Skip{Candidate: sk.Candidate, Error: sk.Err.Error()})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleForecast handles POST /forecast - EMA regressions of tickers.
func (h *Handler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	var req ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Tickers) == 0 || req.From.IsZero() || req.To.IsZero() {
		h.writeError(w, http.StatusBadRequest, "tickers, from and to are required")
		return
	}
	forecasts, err := analysis.Run(r.Context(), h.market, dca.NewRange(req.From, req.To), h.log, req.Tickers...)
	if err != nil {
		h.fail(w, err, "forecast failed")
		return
	}
	h.writeJSON(w, http.StatusOK, forecasts)
}

// fail maps err to a status: invalid requests are the client's fault,
// simulations without data or with undefined figures are unprocessable,
// anything else comes from the market data provider.
func (h *Handler) fail(w http.ResponseWriter, err error, msg string) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, dca.ErrInvalidPlan),
		errors.Is(err, dca.ErrInvalidAllocation),
		errors.Is(err, dca.ErrUnknownFrequency):
		status = http.StatusBadRequest
	case errors.Is(err, dca.ErrNoContributions),
		errors.Is(err, dca.ErrMissingPrice),
		errors.Is(err, dca.ErrNoCandidates),
		errors.Is(err, dca.ErrEmptyBenchmark),
		errors.Is(err, dca.ErrZeroInvestment),
		errors.Is(err, dca.ErrZeroDuration),
		errors.Is(err, dca.ErrUndefinedVolatility),
		errors.Is(err, analysis.ErrNotEnoughData):
		status = http.StatusUnprocessableEntity
	}
	h.log.Error().Err(err).Int("status", status).Msg(msg)
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
