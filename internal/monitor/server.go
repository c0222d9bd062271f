// Package monitor implements the scheduler's control-and-observability
// surface: a chi-routed REST API and a websocket feed that lets an operator
// watch field status and issue pause/resume/terminate commands without
// touching the observation loop's own process signals directly.
//
// Grounded on the teacher's cmd/web-server/main.go: the same
// Server-struct-holds-router-and-repos shape, the same chi middleware stack
// and CORS policy, the same JWT bearer-token auth middleware. The
// aircraft/observation-point/telescope-alpaca endpoints are replaced with
// field-roster/visit-history/loop-control endpoints.
package monitor

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/dlrabinowitz/ls4scheduler/internal/auth"
	"github.com/dlrabinowitz/ls4scheduler/internal/obsloop"
	"github.com/dlrabinowitz/ls4scheduler/internal/store"
)

// Server holds the HTTP router and the dependencies its handlers need.
type Server struct {
	router   *chi.Mux
	authSvc  *auth.Service
	userRepo *store.UserRepository
	fieldDB  *store.FieldRepository
	visitDB  *store.VisitRepository
	loop     *obsloop.SchedulerContext

	upgrader websocket.Upgrader
}

// NewServer builds a monitor Server wired to a running observation loop and
// its Postgres mirror.
func NewServer(authSvc *auth.Service, userRepo *store.UserRepository, fieldDB *store.FieldRepository, visitDB *store.VisitRepository, loop *obsloop.SchedulerContext) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		authSvc:  authSvc,
		userRepo: userRepo,
		fieldDB:  fieldDB,
		visitDB:  visitDB,
		loop:     loop,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.setupRoutes()
	return s
}

// Router returns the underlying chi router, for http.Server.Handler.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleGetCurrentUser)

			r.Get("/fields", s.handleGetFields)
			r.Get("/fields/{index}", s.handleGetField)
			r.Get("/fields/{index}/visits", s.handleGetFieldVisits)
			r.Get("/visits/recent", s.handleGetRecentVisits)

			r.Get("/status", s.handleGetStatus)
			r.Post("/control/pause", s.requireRole(auth.RoleObserver, s.handlePause))
			r.Post("/control/resume", s.requireRole(auth.RoleObserver, s.handleResume))
			r.Post("/control/terminate", s.requireRole(auth.RoleAdmin, s.handleTerminate))

			r.Get("/ws", s.handleWebSocket)
		})
	})
}

type ctxKey string

const (
	ctxUserID   ctxKey = "user_id"
	ctxUsername ctxKey = "username"
	ctxRole     ctxKey = "role"
)

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := s.authSvc.ValidateToken(authHeader[7:])
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxUsername, claims.Username)
		ctx = context.WithValue(ctx, ctxRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole wraps a handler so it 403s unless the caller's role meets or
// exceeds minRole in internal/auth's hierarchy.
func (s *Server) requireRole(minRole string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(ctxRole).(string)
		if !auth.HasRole(role, minRole) {
			http.Error(w, "insufficient permissions", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.userRepo.GetByUsername(r.Context(), req.Username)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := s.authSvc.ComparePassword(user.PasswordHash, req.Password); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !user.IsActive {
		http.Error(w, "account is disabled", http.StatusForbidden)
		return
	}

	token, err := s.authSvc.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}
	_ = s.userRepo.UpdateLastLogin(r.Context(), user.ID)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":       r.Context().Value(ctxUserID),
		"username": r.Context().Value(ctxUsername),
		"role":     r.Context().Value(ctxRole),
	})
}

func (s *Server) handleGetFields(w http.ResponseWriter, r *http.Request) {
	night := time.Now().UTC().Truncate(24 * time.Hour)
	fields, err := s.fieldDB.GetFieldsForNight(r.Context(), night)
	if err != nil {
		log.Printf("monitor: get fields failed: %v", err)
		http.Error(w, "failed to get fields", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"fields": fields, "count": len(fields)})
}

func (s *Server) handleGetField(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid field index", http.StatusBadRequest)
		return
	}
	night := time.Now().UTC().Truncate(24 * time.Hour)
	f, err := s.fieldDB.GetField(r.Context(), night, idx)
	if err != nil {
		log.Printf("monitor: get field failed: %v", err)
		http.Error(w, "failed to get field", http.StatusInternalServerError)
		return
	}
	if f == nil {
		http.Error(w, "field not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, f)
}

func (s *Server) handleGetFieldVisits(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid field index", http.StatusBadRequest)
		return
	}
	night := time.Now().UTC().Truncate(24 * time.Hour)
	visits, err := s.visitDB.GetVisitsForField(r.Context(), night, idx)
	if err != nil {
		log.Printf("monitor: get field visits failed: %v", err)
		http.Error(w, "failed to get visits", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"visits": visits, "count": len(visits)})
}

func (s *Server) handleGetRecentVisits(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	visits, err := s.visitDB.GetRecentVisits(r.Context(), limit)
	if err != nil {
		log.Printf("monitor: get recent visits failed: %v", err)
		http.Error(w, "failed to get recent visits", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"visits": visits, "count": len(visits)})
}

// handleGetStatus reports the loop's pause/terminate flags, for the
// dashboard's header.
func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"paused":      s.loop.Signals.Paused(),
		"terminating": s.loop.Signals.Terminating(),
	})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.loop.Signals.Pause()
	respondJSON(w, http.StatusOK, map[string]interface{}{"paused": true})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.loop.Signals.Resume()
	respondJSON(w, http.StatusOK, map[string]interface{}{"paused": false})
}

func (s *Server) handleTerminate(w http.ResponseWriter, r *http.Request) {
	s.loop.Signals.Terminate()
	respondJSON(w, http.StatusOK, map[string]interface{}{"terminating": true})
}

// handleWebSocket streams field status snapshots to the dashboard every
// CoarseTick, matching the loop's own idle polling cadence.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("monitor: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(obsloop.CoarseTick)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			snapshot := fieldSnapshot(s.loop)
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		}
	}
}

func fieldSnapshot(loop *obsloop.SchedulerContext) map[string]interface{} {
	statuses := make([]map[string]interface{}, len(loop.Fields))
	for i, f := range loop.Fields {
		statuses[i] = map[string]interface{}{
			"index":  f.Index,
			"kind":   f.Kind.String(),
			"ndone":  f.NDone,
			"status": f.Status.String(),
			"doable": f.Doable,
		}
	}
	return map[string]interface{}{
		"paused":      loop.Signals.Paused(),
		"terminating": loop.Signals.Terminating(),
		"fields":      statuses,
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("monitor: encode response failed: %v", err)
	}
}
