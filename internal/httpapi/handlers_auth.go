package httpapi

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/clusterdesk/internal/auth"
	"github.com/dropDatabas3/clusterdesk/internal/httpapi/apierr"
	"github.com/dropDatabas3/clusterdesk/internal/httpapi/middlewares"
	"github.com/dropDatabas3/clusterdesk/internal/observability/logger"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !apierr.ReadJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		apierr.WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := a.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			apierr.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		logger.From(r.Context()).Error("login failed", logger.Err(err))
		apierr.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	logger.From(r.Context()).Info("user logged in", logger.Email(req.Email))
	apierr.WriteJSON(w, http.StatusOK, result)
}

// POST /api/auth/logout
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middlewares.BearerToken(r); ok {
		a.auth.Logout(token)
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
