package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/alexivanou/aqimap-api/internal/metrics"
	"github.com/alexivanou/aqimap-api/internal/service"
	"github.com/alexivanou/aqimap-api/internal/stats"
)

// NewRouter creates a new HTTP router wrapped with CORS
func NewRouter(
	service service.ServiceInterface,
	suggest service.SuggestInterface,
	statsCollector *stats.Collector,
	allowedOrigins []string,
	logger *zap.Logger,
) http.Handler {
	handler := NewHandler(service, suggest, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()
	router.Use(requestLogger(logger))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/suggest", handler.Suggest).Methods("GET")
	v1.HandleFunc("/suggest/select", handler.SelectSuggestion).Methods("POST")
	v1.HandleFunc("/aqi", handler.EstimateAQI).Methods("GET")
	v1.HandleFunc("/stations", handler.ListStations).Methods("GET")
	v1.HandleFunc("/stations/{province}", handler.GetStation).Methods("GET")
	v1.HandleFunc("/forecast/{province}", handler.GetForecast).Methods("GET")
	v1.HandleFunc("/air-quality/{lat}/{lon}", handler.GetAirQuality).Methods("GET")
	v1.HandleFunc("/provinces", handler.ListProvinces).Methods("GET")
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With", RequestIDHeader},
		ExposedHeaders: []string{"Retry-After", RequestIDHeader},
	})

	return corsHandler.Handler(router)
}
