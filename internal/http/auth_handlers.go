package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/HenryPajuri/interparents2-sub000/internal/auth"
	"github.com/HenryPajuri/interparents2-sub000/internal/crypto"
	"github.com/HenryPajuri/interparents2-sub000/internal/model"
)

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	School    string `json:"school"`
	Position  string `json:"position"`
	IsActive  bool   `json:"isActive"`
	LastLogin string `json:"lastLogin,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func mapUserResponse(account model.Account) userResponse {
	resp := userResponse{
		ID:        account.ID,
		Email:     account.Email,
		Name:      account.Name,
		Role:      account.Role,
		School:    account.School,
		Position:  account.Position,
		IsActive:  account.IsActive,
		CreatedAt: account.CreatedAt.UTC().Format(time.RFC3339),
	}
	if account.LastLoginAt != nil {
		resp.LastLogin = account.LastLoginAt.UTC().Format(time.RFC3339)
	}
	return resp
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	violations := map[string]string{}
	if req.Email == "" {
		violations["email"] = "required"
	}
	if req.Password == "" {
		violations["password"] = "required"
	}
	if len(violations) > 0 {
		writeValidationError(w, violations)
		return
	}

	// The login window counts every attempt, correct or not, so a stuffed
	// credential list burns through it regardless of hits.
	allowed, retryAfter, err := s.loginLimiter.Allow(r.Context(), clientIP(r)+":"+req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !allowed {
		writeRateLimited(w, retryAfter)
		return
	}

	account, err := s.store.GetAccountByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	// Inactive accounts answer exactly like unknown ones.
	if !account.IsActive {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	if err := crypto.CheckPassword(account.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	token, err := auth.NewSessionToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.SessionTTL, auth.Claims{
		AccountID: account.ID,
		Role:      account.Role,
		School:    account.School,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}

	now := time.Now().UTC()
	_ = s.store.TouchLastLogin(r.Context(), account.ID, now)
	account.LastLoginAt = &now

	s.setSessionCookie(w, token, s.cfg.SessionTTL)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    mapUserResponse(account),
	})
}

// handleLogout clears the cookie. The token itself stays valid until its
// natural expiry; nothing is persisted server-side to revoke.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setSessionCookie(w, "", -time.Hour)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    mapUserResponse(*actor),
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	// Mismatch wins over every other failure, including strength.
	if req.NewPassword != req.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "password_mismatch")
		return
	}
	if err := crypto.CheckPassword(actor.PasswordHash, req.CurrentPassword); err != nil {
		writeError(w, http.StatusBadRequest, "wrong_current_password")
		return
	}
	if req.NewPassword == req.CurrentPassword {
		writeError(w, http.StatusBadRequest, "password_unchanged")
		return
	}
	if ok, failed := crypto.CheckPasswordStrength(req.NewPassword); !ok {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success":      false,
			"message":      "weak_password",
			"failedChecks": failed,
		})
		return
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "password_hash_failed")
		return
	}
	if err := s.store.UpdatePasswordHash(r.Context(), actor.ID, hash); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	// Other sessions stay valid; tokens are stateless.
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
