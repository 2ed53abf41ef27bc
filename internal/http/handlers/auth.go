package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/bytesolver-backend/internal/http/response"
	"github.com/yungbote/bytesolver-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func authPayload(res *services.AuthResult) gin.H {
	return gin.H{"user": res.User, "accessToken": res.AccessToken, "expiresIn": res.ExpiresIn}
}

// POST /auth/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, authPayload(res))
}

// POST /auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, authPayload(res))
}

// POST /auth/google
func (ah *AuthHandler) Google(c *gin.Context) {
	var req struct {
		Credential string `json:"credential"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.LoginWithGoogle(c.Request.Context(), req.Credential)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, authPayload(res))
}

// GET /auth/me
func (ah *AuthHandler) Me(c *gin.Context) {
	user, err := ah.authService.Me(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// PATCH /auth/profile
func (ah *AuthHandler) UpdateProfile(c *gin.Context) {
	var req services.ProfileInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := ah.authService.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// PUT /auth/password
func (ah *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := ah.authService.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Password updated"})
}
