package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dharsanguruparan/coedash/internal/auth"
	"github.com/dharsanguruparan/coedash/internal/model"
	"github.com/dharsanguruparan/coedash/internal/repository"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := s.deps.Validator.Struct(req); err != nil {
		respondInvalid(w, err)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	user := &model.User{
		ID:            uuid.NewString(),
		Email:         strings.ToLower(req.Email),
		Role:          req.Role,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		DateOfBirth:   req.DateOfBirth,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.deps.Users.Create(r.Context(), user, hash); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			respondError(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		s.logger.Error("create user", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	s.respondSession(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := s.deps.Validator.Struct(req); err != nil {
		respondInvalid(w, err)
		return
	}
	user, hash, err := s.deps.Users.GetByEmail(r.Context(), strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
			return
		}
		s.logger.Error("load user", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}
	if err := auth.CheckPassword(hash, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	if req.Role != "" && req.Role != user.Role {
		respondError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	s.respondSession(w, http.StatusOK, user)
}

func (s *Server) respondSession(w http.ResponseWriter, status int, user *model.User) {
	token, err := s.deps.Issuer.Issue(user)
	if err != nil {
		s.logger.Error("issue token", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	respondJSON(w, status, model.AuthResponse{Token: token, User: user})
}

// handleProfile returns the stored profile. Users of an external identity
// provider may have no stored profile; they get one built from their token.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims := viewerFrom(r)
	user, err := s.deps.Users.Get(r.Context(), claims.Subject)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, user)
	case errors.Is(err, repository.ErrNotFound):
		respondJSON(w, http.StatusOK, &model.User{ID: claims.Subject, Email: claims.Email, Role: claims.Role})
	default:
		s.logger.Error("load profile", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load profile")
	}
}
