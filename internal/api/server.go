// Package api exposes the booking engine over HTTP. Handlers stay thin:
// they decode, call the resolver or storage, and map the domain error
// taxonomy onto status codes.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"seatwise/internal/booking"
	"seatwise/internal/database"
)

// HTTPServer serves the reservation API for one restaurant.
type HTTPServer struct {
	db       *database.DB
	resolver *booking.Resolver
	logger   *zerolog.Logger

	restaurantID int64
	floorplanID  int64
	location     *time.Location
	apiKey       string

	redis    *redis.Client
	cacheTTL time.Duration

	now func() time.Time
}

// NewHTTPServer creates the API server. apiKey may be empty to disable auth
// (local development); redisClient may be nil to disable response caching.
func NewHTTPServer(db *database.DB, resolver *booking.Resolver, restaurantID, floorplanID int64, location *time.Location, apiKey string, logger *zerolog.Logger) *HTTPServer {
	return &HTTPServer{
		db:           db,
		resolver:     resolver,
		logger:       logger,
		restaurantID: restaurantID,
		floorplanID:  floorplanID,
		location:     location,
		apiKey:       apiKey,
		now:          time.Now,
	}
}

// UseRedisCache enables caching of availability responses.
func (s *HTTPServer) UseRedisCache(client *redis.Client, ttl time.Duration) {
	s.redis = client
	s.cacheTTL = ttl
}

// localNow is the ambient UTC now converted to the restaurant's timezone.
// The core only ever sees local wall-clock values.
func (s *HTTPServer) localNow() time.Time {
	return s.now().In(s.location)
}

// Handler builds the routed handler with auth and request logging applied.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/reservations", s.handleReservations)
	mux.HandleFunc("/api/reservations/walk-in", s.handleCreateWalkIn)
	mux.HandleFunc("/api/reservations/assign", s.handleAssignTable)
	mux.HandleFunc("/api/reservations/reassign", s.handleUpdateAssignedTable)
	mux.HandleFunc("/api/reservations/unassign", s.handleRemoveAssignment)
	mux.HandleFunc("/api/reservations/update", s.handleUpdateReservation)
	mux.HandleFunc("/api/shifts", s.handleShifts)
	mux.HandleFunc("/api/tables", s.handleTables)
	mux.HandleFunc("/api/combined-tables", s.handleCombinedTables)
	mux.HandleFunc("/api/blocks", s.handleBlocks)
	mux.HandleFunc("/api/clients", s.handleClients)
	mux.HandleFunc("/api/availability", s.handleAvailability)
	mux.HandleFunc("/api/export", s.handleExport)
	return s.withAuth(s.withLogging(mux))
}

func (s *HTTPServer) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("X-API-Key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps the closed error taxonomy of the booking core onto
// status codes. Unexpected errors are logged and surface as 500.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	var notFoundErr *booking.NotFoundError
	var invalidErr *booking.InvalidRequestError
	var conflictErr *booking.ConflictError
	switch {
	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &invalidErr):
		writeError(w, http.StatusBadRequest, invalidErr.Error())
	case errors.As(err, &conflictErr):
		writeError(w, http.StatusConflict, conflictErr.Error())
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, database.ErrAlreadyMember),
		errors.Is(err, database.ErrDuplicateShift),
		errors.Is(err, database.ErrDuplicateClient):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
