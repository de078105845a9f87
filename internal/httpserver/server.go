package httpserver

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/radiusdt/vector-attrib/internal/attribution"
	"github.com/radiusdt/vector-attrib/internal/config"
	"github.com/radiusdt/vector-attrib/internal/database"
	"github.com/radiusdt/vector-attrib/internal/geo"
	"github.com/radiusdt/vector-attrib/internal/metrics"
	"github.com/radiusdt/vector-attrib/internal/middleware"
	"github.com/radiusdt/vector-attrib/internal/models"
	"github.com/radiusdt/vector-attrib/internal/pivot"
	"github.com/radiusdt/vector-attrib/internal/storage"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	SpendDB      *database.PostgresDB
	ConversionDB *database.ClickHouseDB
	Redis        *database.RedisDB
	Config       *config.Config
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
}

// Server wraps HTTP handlers around the pivot service.
type Server struct {
	pivotService *pivot.Service
	logger       *zap.Logger
	config       *config.Config
	metrics      *metrics.Metrics
}

// NewServer constructs a new http.Handler with all routes registered.
// Backends missing from deps degrade to in-memory stores or disabled
// features rather than failing.
func NewServer(deps *Dependencies) http.Handler {
	var spendStore storage.SpendStore
	if deps.SpendDB != nil {
		spendStore = storage.NewPostgresSpendStore(deps.SpendDB.Pool)
	} else {
		spendStore = storage.NewInMemorySpendStore()
	}

	var conversionStore storage.ConversionStore
	if deps.ConversionDB != nil {
		conversionStore = storage.NewClickHouseConversionStore(deps.ConversionDB.Conn)
	} else {
		conversionStore = storage.NewInMemoryConversionStore()
	}

	var resolver geo.Resolver
	if deps.Config.Geo.Enabled {
		r, err := geo.NewMaxMindResolver(deps.Config.Geo.DatabasePath)
		if err != nil {
			deps.Logger.Warn("failed to open GeoIP database, enrichment disabled", zap.Error(err))
		} else {
			resolver = r
		}
	}

	var cache *pivot.Cache
	if deps.Config.Pivot.CacheEnabled && deps.Redis != nil {
		cache = pivot.NewCache(deps.Redis.Client, deps.Config.Pivot.CacheTTL)
	}

	svc := pivot.NewService(
		spendStore,
		conversionStore,
		attribution.DefaultSourceAliases(),
		resolver,
		cache,
		deps.Metrics,
		deps.Logger,
		pivot.Config{
			FetchRowCap:          deps.Config.Pivot.FetchRowCap,
			MinSampleDenominator: int64(deps.Config.Pivot.MinSampleDenominator),
		},
	)

	s := &Server{
		pivotService: svc,
		logger:       deps.Logger,
		config:       deps.Config,
		metrics:      deps.Metrics,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/pivot", s.handlePivot)
	mux.HandleFunc("/api/v1/pivot/records", s.handleRecords)
	mux.HandleFunc("/api/v1/dimensions", s.handleDimensions)

	// Middleware chain, outermost first: recovery, request id, logging,
	// rate limit, auth.
	rateLimit := middleware.NewRateLimitMiddleware(deps.Config.RateLimit, deps.Logger)
	rateLimit.SetMetrics(deps.Metrics)

	var handler http.Handler = mux
	handler = middleware.NewAuthMiddleware(deps.Config.Auth, deps.Logger).Handler(handler)
	handler = rateLimit.Handler(handler)
	handler = middleware.NewLoggingMiddleware(deps.Logger).Handler(handler)
	handler = middleware.NewRequestIDMiddleware().Handler(handler)
	handler = middleware.NewRecoveryMiddleware(deps.Logger).Handler(handler)

	return handler
}

// ---- Handlers ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, map[string]string{"status": "ok"})
}

func (s *Server) handlePivot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.PivotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}

	resp := s.pivotService.Pivot(r.Context(), req)
	s.jsonResponse(w, resp)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.RecordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}

	resp := s.pivotService.Records(r.Context(), req)
	s.jsonResponse(w, resp)
}

func (s *Server) handleDimensions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.jsonResponse(w, map[string][]string{
		"tracking": pivot.TrackingRegistry().Dimensions(),
		"geo":      pivot.GeoRegistry().Dimensions(),
	})
}

// ---- Response helpers ----

func (s *Server) jsonResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
