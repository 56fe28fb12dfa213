package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ragforge-labs/ragforge/internal/auth"
	"github.com/ragforge-labs/ragforge/internal/store"
	"github.com/ragforge-labs/ragforge/internal/store/postgres"
	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

type AuthHandler struct {
	logger *slog.Logger
	store  *store.Store
	tokens *auth.TokenService
}

func NewAuthHandler(logger *slog.Logger, s *store.Store, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{logger: logger, store: s, tokens: tokens}
}

type registerRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        postgres.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if e := validateEmail(req.Email); e != nil {
		writeAPIError(w, h.logger, e)
		return
	}
	if len(req.Password) < auth.MinPasswordLength {
		writeAPIError(w, h.logger, apierr.PasswordTooShort())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	user, err := h.store.CreateUser(r.Context(), postgres.CreateUserParams{
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
	})
	if err != nil {
		if apierr.IsUniqueViolation(err, "") {
			writeAPIError(w, h.logger, apierr.EmailTaken())
			return
		}
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{AccessToken: token, TokenType: "bearer", User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		// Same response as a wrong password; do not reveal which accounts exist.
		writeAPIError(w, h.logger, apierr.InvalidCredentials())
		return
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeAPIError(w, h.logger, apierr.InvalidCredentials())
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	writeJSON(w, http.StatusOK, authResponse{AccessToken: token, TokenType: "bearer", User: user})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, h.logger, apierr.Unauthorized())
			return
		}
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	writeJSON(w, http.StatusOK, user)
}
