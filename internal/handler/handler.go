package handler

import (
	"net/http"

	"pavestock/internal/apperror"
	"pavestock/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto the response envelope. Domain errors
// carry their code and mapped status; anything else is a plain 500 so internal
// details never leak to clients.
func respondError(c *gin.Context, err error) {
	status := apperror.Status(err)
	if code := apperror.Code(err); code != "" {
		c.JSON(status, response.ErrorCode(status, code, err.Error()))
		return
	}
	c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal server error"))
}
