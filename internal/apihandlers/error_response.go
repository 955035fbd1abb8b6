package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorResponse matches the conversion service's error body:
// { "error": "Invalid task ID" }
type errorResponse struct {
	Error string `json:"error"`
}

// JSONError aborts the request with the service's error shape.
func JSONError(ctx *gin.Context, status int, msg string) {
	ctx.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

func BadRequest(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusBadRequest, msg)
}

func NotFound(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusNotFound, msg)
}

func Internal(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusInternalServerError, msg)
}
