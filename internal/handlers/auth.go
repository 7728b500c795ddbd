package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"smartjournal/internal/models"
	"smartjournal/internal/store"
)

type AuthHandler struct {
	users     store.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewAuthHandler(users store.UserRepository, jwtSecret []byte, tokenTTL time.Duration, logger *zap.Logger) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthHandler{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		validate:  validator.New(),
		logger:    logger,
	}
}

type signupRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	DisplayName  string `json:"display_name" validate:"max=100"`
	WeekStartDay string `json:"week_start_day"`
}

type credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Signup godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body signupRequest true "New account"
// @Success 201 {object} tokenResponse
// @Failure 400 {string} string "invalid body"
// @Failure 409 {string} string "email already registered"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "a valid email and a password of at least 8 characters are required", http.StatusBadRequest)
		return
	}
	weekStart, err := models.ParseWeekDay(req.WeekStartDay)
	if err != nil {
		http.Error(w, "invalid week_start_day", http.StatusBadRequest)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "could not hash password", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		Email:        req.Email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: string(hashed),
		WeekStartDay: weekStart,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		}
		writeError(w, h.logger, err)
		return
	}

	token, err := h.issueJWT(user.Email)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

// Login godoc
// @Summary Exchange credentials for a token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body credentials true "Credentials"
// @Success 200 {object} tokenResponse
// @Failure 401 {string} string "invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	if err := h.validate.Struct(c); err != nil {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), c.Email)
	if err != nil {
		if store.IsNotFoundError(err) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		writeError(w, h.logger, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(c.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	token, err := h.issueJWT(user.Email)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *AuthHandler) issueJWT(email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}
