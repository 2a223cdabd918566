package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ipex/docregistro/internal/database"
	"github.com/ipex/docregistro/internal/middleware"
	"github.com/ipex/docregistro/internal/models"
	"github.com/ipex/docregistro/internal/utils"
	"go.uber.org/zap"
)

const minPasswordLength = 8

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// login handles user login
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var loginReq LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&loginReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	// 1. Find User
	user, err := r.users.FindByEmail(req.Context(), strings.ToLower(strings.TrimSpace(loginReq.Email)))
	if err != nil {
		if !errors.Is(err, database.ErrUserNotFound) {
			r.logger.Error("Login lookup failed", zap.Error(err))
		}
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// 2. Check Password
	if !utils.CheckPasswordHash(loginReq.Password, user.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// 3. Update Last Login
	if err := r.users.TouchLastLogin(req.Context(), user, r.now().UTC()); err != nil {
		r.logger.Warn("Failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	// 4. Generate Tokens
	r.respondWithTokens(w, http.StatusOK, user, "")
}

// register handles user registration
func (r *Router) register(w http.ResponseWriter, req *http.Request) {
	var regReq RegisterRequest
	if err := json.NewDecoder(req.Body).Decode(&regReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	regReq.Email = strings.ToLower(strings.TrimSpace(regReq.Email))
	regReq.Username = strings.TrimSpace(regReq.Username)
	if regReq.Email == "" || regReq.Username == "" {
		respondError(w, http.StatusBadRequest, "Email and username are required")
		return
	}
	if len(regReq.Password) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "Password must have at least 8 characters")
		return
	}

	// 1. Hash Password
	hashedPassword, err := utils.HashPassword(regReq.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	// 2. Create User
	user := models.UserAuth{
		Username: regReq.Username,
		Email:    regReq.Email,
		Password: hashedPassword,
		Name:     strings.TrimSpace(regReq.Name),
		Role:     "user",
		IsActive: true,
	}

	if err := r.users.Create(req.Context(), &user); err != nil {
		r.logger.Warn("User registration failed", zap.String("email", user.Email), zap.Error(err))
		respondError(w, http.StatusBadRequest, "Failed to create user (email or username might exist)")
		return
	}

	r.logger.Info("User registered", zap.String("user_id", user.ID))

	// 3. Generate Tokens for immediate login
	r.respondWithTokens(w, http.StatusCreated, &user, "User registered successfully")
}

// logout handles user logout
func (r *Router) logout(w http.ResponseWriter, req *http.Request) {
	// Tokens are stateless; the client drops them
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// me returns the authenticated user
func (r *Router) me(w http.ResponseWriter, req *http.Request) {
	user, err := r.users.FindByID(req.Context(), middleware.UserID(req.Context()))
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			respondError(w, http.StatusUnauthorized, "User no longer exists")
			return
		}
		r.logger.Error("Failed to load user", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (r *Router) respondWithTokens(w http.ResponseWriter, status int, user *models.UserAuth, message string) {
	accessToken, refreshToken, err := utils.GenerateTokens(user, r.cfg)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate tokens")
		return
	}

	response := map[string]interface{}{
		"tokens": map[string]string{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
		"user": user,
	}
	if message != "" {
		response["message"] = message
	}
	respondJSON(w, status, response)
}
