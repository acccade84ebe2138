package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/internal/application"
	"github.com/oksasatya/bookstore-backend/pkg/helpers"
	"github.com/oksasatya/bookstore-backend/pkg/response"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  logrus.FieldLogger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, logger logrus.FieldLogger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toUserResponse(u), "user registered", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.Cookies.SetAccessToken(c, res.AccessToken, res.ExpiresAt)
	response.Success(c, http.StatusOK, loginResponse{
		User:        toUserResponse(res.User),
		AccessToken: res.AccessToken,
		ExpiresAt:   res.ExpiresAt,
	}, "login successful", nil)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.NoContent(c)
}

// VerifyEmail confirms the address carried by the token query parameter
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error[any](c, http.StatusBadRequest, "token is required", nil)
		return
	}
	u, err := h.Svc.ConfirmEmail(c.Request.Context(), token)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "email verified", nil)
}

// ResendVerification mails a new confirmation link to the signed in user
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	if err := h.Svc.SendConfirmation(c.Request.Context(), c.GetString("userID")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "verification email sent", nil)
}

func (h *AuthHandler) Profile(c *gin.Context) {
	u, err := h.Svc.Users.GetByID(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "profile", nil)
}
