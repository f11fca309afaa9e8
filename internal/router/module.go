package router

import "github.com/gin-gonic/gin"

// Module is a feature area (registration, warnings, debug) that knows how to
// register its own routes on the shared API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
