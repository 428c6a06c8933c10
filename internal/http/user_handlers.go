package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HenryPajuri/interparents2-sub000/internal/crypto"
	"github.com/HenryPajuri/interparents2-sub000/internal/model"
	"github.com/HenryPajuri/interparents2-sub000/internal/policy"
	"github.com/HenryPajuri/interparents2-sub000/internal/repository"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !policy.CanViewUsers(actor) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	limit := 200
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	accounts, err := s.store.ListAccounts(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	users := make([]userResponse, 0, len(accounts))
	for _, account := range accounts {
		users = append(users, mapUserResponse(account))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !policy.CanViewUsers(actor) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	account, err := s.store.GetAccountByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    mapUserResponse(account),
	})
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	School   string `json:"school"`
	Position string `json:"position"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !policy.CanManageUsers(actor) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.TrimSpace(strings.ToLower(req.Role))

	violations := map[string]string{}
	if req.Email == "" {
		violations["email"] = "required"
	} else if !validEmail(req.Email) {
		violations["email"] = "invalid"
	}
	if req.Name == "" {
		violations["name"] = "required"
	}
	if req.Role == "" {
		violations["role"] = "required"
	} else if !model.ValidRole(req.Role) {
		violations["role"] = "invalid"
	}
	if req.Password == "" {
		violations["password"] = "required"
	}
	if len(violations) > 0 {
		writeValidationError(w, violations)
		return
	}

	if req.Role == model.RoleAdmin && !policy.CanCreateAdminAccount(actor) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	if ok, failed := crypto.CheckPasswordStrength(req.Password); !ok {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success":      false,
			"message":      "weak_password",
			"failedChecks": failed,
		})
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "password_hash_failed")
		return
	}

	now := time.Now().UTC()
	account := model.Account{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         req.Role,
		School:       strings.TrimSpace(req.School),
		Position:     strings.TrimSpace(req.Position),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateAccount(r.Context(), account); err != nil {
		if repository.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "email_taken")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"user":    mapUserResponse(account),
	})
}

type updateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	School   *string `json:"school,omitempty"`
	Position *string `json:"position,omitempty"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !policy.CanManageUsers(actor) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	target, err := s.store.GetAccountByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	update := repository.AccountUpdate{}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if !validEmail(email) {
			writeValidationError(w, map[string]string{"email": "invalid"})
			return
		}
		update.Email = &email
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeValidationError(w, map[string]string{"name": "required"})
			return
		}
		update.Name = &name
	}
	if req.School != nil {
		school := strings.TrimSpace(*req.School)
		update.School = &school
	}
	if req.Position != nil {
		position := strings.TrimSpace(*req.Position)
		update.Position = &position
	}
	if req.Role != nil {
		role := strings.TrimSpace(strings.ToLower(*req.Role))
		if !model.ValidRole(role) {
			writeValidationError(w, map[string]string{"role": "invalid"})
			return
		}
		if role != target.Role {
			if !policy.CanChangeRole(actor, target) {
				writeError(w, http.StatusForbidden, "cannot_change_own_role")
				return
			}
			if role == model.RoleAdmin && !policy.CanCreateAdminAccount(actor) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			update.Role = &role
		}
	}
	if req.Password != nil && *req.Password != "" {
		if ok, failed := crypto.CheckPasswordStrength(*req.Password); !ok {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success":      false,
				"message":      "weak_password",
				"failedChecks": failed,
			})
			return
		}
		hash, err := crypto.HashPassword(*req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "password_hash_failed")
			return
		}
		update.PasswordHash = &hash
	}

	account, err := s.store.UpdateAccount(r.Context(), target.ID, update)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "email_taken")
			return
		}
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    mapUserResponse(account),
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !policy.CanManageUsers(actor) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	target, err := s.store.GetAccountByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if !policy.CanDeleteAccount(actor, target) {
		writeError(w, http.StatusForbidden, "cannot_delete_self")
		return
	}

	deactivated, err := s.store.DeactivateAccount(r.Context(), target.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deactivated {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
