package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/andygrunwald/fuel-prices/internal/models"
	"github.com/andygrunwald/fuel-prices/internal/prices"
	"github.com/andygrunwald/fuel-prices/internal/report"
)

func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	list, err := s.prices.List(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("listing prices")
		writeError(w, r, http.StatusInternalServerError, "failed to fetch prices")
		return
	}
	writeJSON(w, r, http.StatusOK, toJSON(list))
}

func (s *Server) handleAPIGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusNotFound, "price not found")
		return
	}

	p, err := s.prices.Get(r.Context(), id)
	if errors.Is(err, prices.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "price not found")
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int64("id", id).Msg("loading price")
		writeError(w, r, http.StatusInternalServerError, "failed to fetch price")
		return
	}
	writeJSON(w, r, http.StatusOK, p.JSON())
}

func (s *Server) handleAPIByFuelType(w http.ResponseWriter, r *http.Request) {
	fuelType := r.PathValue("tipo")

	list, err := s.prices.ListByFuelType(r.Context(), fuelType)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("fuel_type", fuelType).Msg("listing prices by fuel type")
		writeError(w, r, http.StatusInternalServerError, "failed to fetch prices")
		return
	}
	writeJSON(w, r, http.StatusOK, toJSON(list))
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Compute(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("computing statistics")
		writeError(w, r, http.StatusInternalServerError, "failed to compute statistics")
		return
	}
	writeJSON(w, r, http.StatusOK, report.JSON(rep))
}

func toJSON(list []models.PriceRecord) []models.PriceJSON {
	out := make([]models.PriceJSON, len(list))
	for i, p := range list {
		out[i] = p.JSON()
	}
	return out
}

// --- helpers ---

// writeJSON encodes v before touching the response, so an encoding failure
// still yields a 500 with an error body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("encoding JSON response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("writing response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}
