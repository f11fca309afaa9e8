package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Helpers for the plain response contract existing clients depend on:
// writes answer with a bare status code, reads with a raw JSON array, and
// errors with a short text body. No envelope.

// OK sends 200 with no body (successful write).
func OK(c *gin.Context) {
	c.Status(http.StatusOK)
}

// JSONArray sends 200 with the given slice, or 204 with no body when it is
// empty. An empty result is a normal outcome, not an error.
func JSONArray[T any](c *gin.Context, items []T) {
	if len(items) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, items)
}

// BadRequest sends 400 with a short text body.
func BadRequest(c *gin.Context, msg string) {
	c.String(http.StatusBadRequest, msg)
}

// Forbidden sends 403 with a short text body.
func Forbidden(c *gin.Context, msg string) {
	c.String(http.StatusForbidden, msg)
}

// InternalError sends 500 carrying the underlying cause description.
func InternalError(c *gin.Context, err error) {
	c.String(http.StatusInternalServerError, "storage error: %s", err.Error())
}
