package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes v as the response body. Successful responses are bare payloads because the
// browser widgets read fields directly off the body.
func JSON(ctx *gin.Context, status int, v any) {
	ctx.JSON(status, v)
}

// RawJSON writes pre-encoded JSON, used for cached aggregate responses.
func RawJSON(ctx *gin.Context, status int, b []byte) {
	ctx.Data(status, "application/json; charset=utf-8", b)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, ErrorResponse{Error: message})
}
