package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"campusx/internal/app/dto"
	authsvc "campusx/internal/app/services/auth"
	domainuser "campusx/internal/domain/user"
)

type AuthHandler struct {
	Auth  *authsvc.Service
	Users domainuser.Repository
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
	City     string `json:"city"`
}

func (h AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := h.Auth.Register(c.Request.Context(), authsvc.RegisterParams{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
		City:     req.City,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, dto.NewAuthResponse(result.User, result.Token))
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := h.Auth.Login(c.Request.Context(), authsvc.LoginParams{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, dto.NewAuthResponse(result.User, result.Token))
}

func (h AuthHandler) Me(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	account, err := h.Users.ByID(c.Request.Context(), domainuser.ID(p.ID))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapUserProfile(account))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h AuthHandler) ChangePassword(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.Auth.ChangePassword(c.Request.Context(), domainuser.ID(p.ID), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "password updated")
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.Auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	// Same answer whether or not the account exists.
	respondMessage(c, http.StatusOK, "if the account exists, a reset token has been sent")
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (h AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := h.Auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "password reset")
}
