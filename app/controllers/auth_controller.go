package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matjarhq/matjar/app/services"
	"github.com/matjarhq/matjar/pkg/auth"
	"github.com/matjarhq/matjar/pkg/response"
)

// AuthController serves login and session endpoints.
type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Login exchanges credentials for a session token: POST /api/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, err := c.service.Login(body.Email, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondError(w, err)
		return
	}

	response.Success(w, map[string]string{"token": token})
}

// Me returns the authenticated operator: GET /api/me
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	actorID := auth.UserFromCtx(r.Context())
	if actorID == "" {
		response.Unauthorized(w)
		return
	}

	user, err := c.service.CurrentUser(actorID)
	if err != nil {
		respondError(w, err)
		return
	}
	response.Success(w, user)
}
