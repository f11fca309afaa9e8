package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/roadwatch/warning-service/internal/interface/http"
)

// RegistrationModule exposes the unauthenticated registration endpoint.
type RegistrationModule struct {
	Handler *handlers.RegistrationHandler
}

func NewRegistrationModule(h *handlers.RegistrationHandler) *RegistrationModule {
	return &RegistrationModule{Handler: h}
}

func (m *RegistrationModule) Register(rg *gin.RouterGroup) {
	rg.POST("/registration", m.Handler.Register)
}
