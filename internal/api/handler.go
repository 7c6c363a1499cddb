package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/alexivanou/aqimap-api/internal/model"
	"github.com/alexivanou/aqimap-api/internal/service"
	"github.com/alexivanou/aqimap-api/internal/suggest"
)

// RateLimitedMessage is shown instead of results when the search window is full
const RateLimitedMessage = "Too many searches. Please wait a moment before trying again."

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	suggest service.SuggestInterface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, suggest service.SuggestInterface, logger *zap.Logger) *Handler {
	return &Handler{service: service, suggest: suggest, logger: logger}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// Suggest handles GET /api/v1/suggest
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	if !params.Has("q") {
		http.Error(w, "query parameter 'q' is required", http.StatusBadRequest)
		return
	}
	query := params.Get("q")

	result, err := h.suggest.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, suggest.ErrRateLimited) {
			retry := int(math.Ceil(h.suggest.RetryAfter().Seconds()))
			if retry > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(retry))
			}
			http.Error(w, RateLimitedMessage, http.StatusTooManyRequests)
			return
		}
		h.internalError(w, "Error searching places", err)
		return
	}

	h.writeJSON(w, http.StatusOK, model.SuggestResponse{
		Query:    query,
		Source:   result.Source,
		Degraded: result.Degraded(),
		Results:  h.suggest.Display(result.Places),
	})
}

// SelectSuggestion handles POST /api/v1/suggest/select
func (h *Handler) SelectSuggestion(w http.ResponseWriter, r *http.Request) {
	var req model.SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "field 'name' is required", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, model.SelectResponse{Value: h.suggest.RecordSelection(req.Name)})
}

// EstimateAQI handles GET /api/v1/aqi
func (h *Handler) EstimateAQI(w http.ResponseWriter, r *http.Request) {
	valueStr := r.URL.Query().Get("value")
	if valueStr == "" {
		http.Error(w, "query parameter 'value' is required", http.StatusBadRequest)
		return
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		http.Error(w, "invalid value parameter", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.EstimateAQI(value))
}

// ListStations handles GET /api/v1/stations
func (h *Handler) ListStations(w http.ResponseWriter, r *http.Request) {
	markers, err := h.service.ListStations(r.Context())
	if err != nil {
		h.internalError(w, "Error listing stations", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"stations": markers,
		"count":    len(markers),
	})
}

// GetStation handles GET /api/v1/stations/{province}
func (h *Handler) GetStation(w http.ResponseWriter, r *http.Request) {
	province := mux.Vars(r)["province"]

	detail, err := h.service.GetStation(r.Context(), province)
	if err != nil {
		h.internalError(w, "Error getting station", err)
		return
	}
	if detail == nil {
		http.Error(w, "province not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, detail)
}

// GetForecast handles GET /api/v1/forecast/{province}
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	province := mux.Vars(r)["province"]

	forecast, err := h.service.GetForecast(r.Context(), province)
	if err != nil {
		h.internalError(w, "Error getting forecast", err)
		return
	}
	if forecast == nil {
		http.Error(w, "no data", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, forecast)
}

// GetAirQuality handles GET /api/v1/air-quality/{lat}/{lon}
func (h *Handler) GetAirQuality(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	lat, err := strconv.ParseFloat(vars["lat"], 64)
	if err != nil {
		http.Error(w, "invalid latitude", http.StatusBadRequest)
		return
	}
	lon, err := strconv.ParseFloat(vars["lon"], 64)
	if err != nil {
		http.Error(w, "invalid longitude", http.StatusBadRequest)
		return
	}

	result, err := h.service.GetNearest(r.Context(), lat, lon)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCoordinates) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.internalError(w, "Error finding nearest reading", err)
		return
	}
	if result == nil {
		http.Error(w, "no data", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// ListProvinces handles GET /api/v1/provinces
func (h *Handler) ListProvinces(w http.ResponseWriter, r *http.Request) {
	provinces, err := h.service.ListProvinces(r.Context())
	if err != nil {
		h.internalError(w, "Error listing provinces", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"provinces": provinces,
		"count":     len(provinces),
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
