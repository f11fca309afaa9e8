package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/roadwatch/warning-service/internal/application"
	"github.com/roadwatch/warning-service/pkg/response"
	"github.com/roadwatch/warning-service/pkg/validation"
)

// RegistrationHandler serves the unauthenticated registration endpoint.
type RegistrationHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewRegistrationHandler(svc *application.UserService, logger *logrus.Logger) *RegistrationHandler {
	return &RegistrationHandler{Svc: svc, Logger: logger}
}

type registrationRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

func (h *RegistrationHandler) Register(c *gin.Context) {
	var req registrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Logger.WithField("details", validation.ToDetails(err)).Debug("invalid registration payload")
		response.BadRequest(c, "invalid registration payload")
		return
	}

	err := h.Svc.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	switch {
	case errors.Is(err, application.ErrUserExists):
		response.BadRequest(c, "user already exists")
	case err != nil:
		h.Logger.WithError(err).WithField("username", req.Username).Error("registration failed")
		response.InternalError(c, err)
	default:
		c.String(http.StatusOK, "Registered")
	}
}
