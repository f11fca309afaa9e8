package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/roadwatch/warning-service/internal/interface/http"
	"github.com/roadwatch/warning-service/internal/interface/middleware"
	"github.com/roadwatch/warning-service/internal/observability"
)

// WarningModule exposes the warning endpoints behind Basic auth.
type WarningModule struct {
	Handler *handlers.WarningHandler
	Vault   middleware.CredentialChecker
	Metrics *observability.Metrics
}

func NewWarningModule(h *handlers.WarningHandler, vault middleware.CredentialChecker, metrics *observability.Metrics) *WarningModule {
	return &WarningModule{Handler: h, Vault: vault, Metrics: metrics}
}

func (m *WarningModule) Register(rg *gin.RouterGroup) {
	authed := rg.Group("/")
	authed.Use(middleware.BasicAuth(m.Vault, m.Metrics))
	{
		authed.GET("/warning", m.Handler.Get)
		authed.POST("/warning", m.Handler.Post)
	}
}
