package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/stockpilot-io/stockpilot/internal/auth"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *Api) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, kindValidation, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	switch {
	case req.Username == "" || req.Password == "" || req.FullName == "":
		respondError(w, http.StatusBadRequest, kindValidation, "username, password and full_name are required")
		return
	case len(req.Username) < 3 || strings.Contains(req.Username, " "):
		respondError(w, http.StatusBadRequest, kindValidation, "username must be at least 3 characters and contain no spaces")
		return
	case len(req.Password) < 6:
		respondError(w, http.StatusBadRequest, kindValidation, "password must be at least 6 characters")
		return
	}

	user, err := a.Auth.Register(req.Username, req.Password, req.FullName)
	if errors.Is(err, auth.ErrDuplicateUser) {
		respondError(w, http.StatusConflict, kindConflict, "username already registered")
		return
	}
	if err != nil {
		respondStorageError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (a *Api) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, kindValidation, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, kindValidation, "username and password are required")
		return
	}

	user, err := a.Auth.Authenticate(req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, kindUnauthenticated, "invalid username or password")
		return
	}
	if errors.Is(err, auth.ErrUserInactive) {
		respondError(w, http.StatusForbidden, kindForbidden, "account is inactive")
		return
	}
	if err != nil {
		respondStorageError(w, err)
		return
	}

	token, expiresAt, err := a.Auth.Issue(user)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		Username:  user.Username,
		FullName:  user.FullName,
		ExpiresAt: expiresAt,
	})
}

// LogoutHandler revokes the presented token. It reports success even when
// no token was sent or the token was already gone, so clients can always
// clear local state.
func (a *Api) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if token, ok := bearerToken(r); ok {
		if err := a.Auth.Revoke(token); err != nil {
			respondStorageError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
