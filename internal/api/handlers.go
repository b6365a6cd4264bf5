// Package api exposes the ingestion pipeline and official stats over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/penaltybox/officials-stats-service/internal/ingest"
	"github.com/penaltybox/officials-stats-service/internal/registry"
	"github.com/penaltybox/officials-stats-service/internal/service"
	"github.com/penaltybox/officials-stats-service/internal/store"
	"github.com/penaltybox/officials-stats-service/pkg/models"
)

// Ingester runs one ingestion batch; satisfied by service.Ingestion.
type Ingester interface {
	Run(ctx context.Context, leagueID, date string, seasonID int) (*models.BatchResult, error)
}

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	ingester Ingester
	leagues  *registry.Registry
	store    store.Store
}

// NewHandler creates a new handler with dependencies.
func NewHandler(ingester Ingester, leagues *registry.Registry, st store.Store) *Handler {
	return &Handler{
		ingester: ingester,
		leagues:  leagues,
		store:    st,
	}
}

// HealthCheck returns the health status of the service.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "officials-stats-service",
	})
}

type ingestRequest struct {
	Date   string `json:"date"`
	League string `json:"league"`
	Season int    `json:"season,omitempty"`
}

// Ingest runs an ingestion batch for one league day.
// Body: {"date": "YYYY-MM-DD", "league": "kijhl", "season": 65}
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.League == "" {
		respondError(w, http.StatusBadRequest, "league is required", nil)
		return
	}

	result, err := h.ingester.Run(r.Context(), req.League, req.Date, req.Season)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDate):
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", err)
		case errors.Is(err, ingest.ErrUnknownLeague):
			respondError(w, http.StatusNotFound, "unknown league", err)
		default:
			respondError(w, http.StatusInternalServerError, "ingestion failed", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetLeagues lists the registered leagues.
func (h *Handler) GetLeagues(w http.ResponseWriter, r *http.Request) {
	type leagueInfo struct {
		Key           string `json:"key"`
		Name          string `json:"name"`
		CurrentSeason int    `json:"current_season"`
	}

	var leagues []leagueInfo
	for _, key := range h.leagues.AllLeagueKeys() {
		module, err := h.leagues.GetModule(key)
		if err != nil {
			continue
		}
		cfg := module.Config()
		leagues = append(leagues, leagueInfo{
			Key:           key,
			Name:          module.GetDisplayName(),
			CurrentSeason: cfg.CurrentSeason,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"leagues": leagues,
		"count":   len(leagues),
	})
}

// GetOfficials retrieves the season leaderboard for a league.
// Query params: league (required), season (defaults to the current season)
func (h *Handler) GetOfficials(w http.ResponseWriter, r *http.Request) {
	leagueKey := r.URL.Query().Get("league")
	if leagueKey == "" {
		respondError(w, http.StatusBadRequest, "league is required", nil)
		return
	}
	module, err := h.leagues.GetModule(leagueKey)
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown league", err)
		return
	}

	season := parseIntParam(r, "season", module.Config().CurrentSeason)

	officials, err := h.store.OfficialsForSeason(r.Context(), leagueKey, season)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve officials", err)
		return
	}
	sort.Slice(officials, func(i, j int) bool {
		if officials[i].TotalPims != officials[j].TotalPims {
			return officials[i].TotalPims > officials[j].TotalPims
		}
		return officials[i].Name < officials[j].Name
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"league":    leagueKey,
		"season":    season,
		"officials": officials,
		"count":     len(officials),
	})
}

// GetOfficialCareer retrieves every season record for one official plus the
// career totals across them.
// Query params: league (required), name (required)
func (h *Handler) GetOfficialCareer(w http.ResponseWriter, r *http.Request) {
	leagueKey := r.URL.Query().Get("league")
	name := r.URL.Query().Get("name")
	if leagueKey == "" || name == "" {
		respondError(w, http.StatusBadRequest, "league and name are required", nil)
		return
	}
	if _, err := h.leagues.GetModule(leagueKey); err != nil {
		respondError(w, http.StatusNotFound, "unknown league", err)
		return
	}

	seasons, err := h.store.CareerForOfficial(r.Context(), leagueKey, name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve career", err)
		return
	}
	if len(seasons) == 0 {
		respondError(w, http.StatusNotFound, "official not found", nil)
		return
	}

	var games, pims int
	for _, s := range seasons {
		games += s.GamesCalled
		pims += s.TotalPims
	}
	career := models.OfficialRecord{
		Name:        seasons[0].Name,
		Role:        seasons[0].Role,
		GamesCalled: games,
		TotalPims:   pims,
	}
	career.Recompute()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"league":  leagueKey,
		"name":    seasons[0].Name,
		"seasons": seasons,
		"career":  career,
	})
}

// Helper functions

func parseIntParam(r *http.Request, param string, defaultValue int) int {
	valueStr := r.URL.Query().Get(param)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[api] error encoding response: %v", err)
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Printf("[api] %s: %v", message, err)
	}

	respondJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
