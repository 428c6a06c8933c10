package http

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HenryPajuri/interparents2-sub000/internal/auth"
	"github.com/HenryPajuri/interparents2-sub000/internal/config"
	"github.com/HenryPajuri/interparents2-sub000/internal/model"
	"github.com/HenryPajuri/interparents2-sub000/internal/ratelimit"
	"github.com/HenryPajuri/interparents2-sub000/internal/repository"
	"github.com/HenryPajuri/interparents2-sub000/internal/storage"
)

const sessionCookieName = "ip_session"

type Server struct {
	cfg          config.Config
	store        *repository.Store
	files        *storage.FileStore
	limiter      *ratelimit.Limiter
	loginLimiter *ratelimit.Limiter
}

func NewServer(cfg config.Config, store *repository.Store, files *storage.FileStore, limiter, loginLimiter *ratelimit.Limiter) *Server {
	return &Server{
		cfg:          cfg,
		store:        store,
		files:        files,
		limiter:      limiter,
		loginLimiter: loginLimiter,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(metricsMiddleware)
	r.Use(s.rateLimitMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/login", s.handleLogin)
	r.With(s.requireAuth).Post("/auth/logout", s.handleLogout)
	r.With(s.requireAuth).Get("/auth/me", s.handleGetMe)
	r.With(s.requireAuth).Put("/auth/change-password", s.handleChangePassword)

	r.Route("/events", func(r chi.Router) {
		r.With(s.optionalAuth).Get("/", s.handleListEvents)
		r.With(s.requireAuth).Post("/", s.handleCreateEvent)
		r.With(s.requireAuth).Put("/{eventID}", s.handleUpdateEvent)
		r.With(s.requireAuth).Delete("/{eventID}", s.handleDeleteEvent)
	})

	r.Route("/communications", func(r chi.Router) {
		r.Get("/", s.handleListCommunications)
		r.Get("/{docID}", s.handleGetCommunication)
		r.Get("/{docID}/file", s.handleGetCommunicationFile)
		r.With(s.requireAuth).Post("/", s.handleCreateCommunication)
		r.With(s.requireAuth).Put("/{docID}", s.handleUpdateCommunication)
		r.With(s.requireAuth).Delete("/{docID}", s.handleDeleteCommunication)
	})

	r.Route("/users", func(r chi.Router) {
		r.With(s.requireAuth).Get("/", s.handleListUsers)
		r.With(s.requireAuth).Get("/{userID}", s.handleGetUser)
		r.With(s.requireAuth).Post("/", s.handleCreateUser)
		r.With(s.requireAuth).Put("/{userID}", s.handleUpdateUser)
		r.With(s.requireAuth).Delete("/{userID}", s.handleDeleteUser)
	})

	return r
}

// Session middleware

type actorKey struct{}

// resolveActor maps a token to an active account, or nil for anything
// malformed, expired, or pointing at a deactivated account.
func (s *Server) resolveActor(r *http.Request) *model.Account {
	token := sessionToken(r)
	if token == "" {
		return nil
	}
	claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
	if err != nil {
		return nil
	}
	account, err := s.store.GetAccountByID(r.Context(), claims.AccountID)
	if err != nil || !account.IsActive {
		return nil
	}
	return &account
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := s.resolveActor(r)
		if actor == nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := s.resolveActor(r)
		if actor != nil {
			r = r.WithContext(context.WithValue(r.Context(), actorKey{}, actor))
		}
		next.ServeHTTP(w, r)
	})
}

func actorFromContext(ctx context.Context) *model.Account {
	value := ctx.Value(actorKey{})
	actor, _ := value.(*model.Account)
	return actor
}

// sessionToken prefers the httpOnly cookie and falls back to a bearer header.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Rate limiting

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter, err := s.limiter.Allow(r.Context(), clientIP(r))
		if err != nil {
			// The global window fails open; the login limiter fails closed.
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			writeRateLimited(w, retryAfter)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(retryAfter.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
		"success":    false,
		"message":    "rate_limited",
		"retryAfter": seconds,
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return host
}

// JSON helpers

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": code,
	})
}

func writeValidationError(w http.ResponseWriter, violations map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"success": false,
		"message": "validation_error",
		"errors":  violations,
	})
}

// Input validation helpers

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func validTimeOfDay(value string) bool {
	return timeOfDayPattern.MatchString(value)
}

func parseDate(value string) (time.Time, bool) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

func formatDate(value time.Time) string {
	return value.Format("2006-01-02")
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validEmail(value string) bool {
	return emailPattern.MatchString(value)
}
