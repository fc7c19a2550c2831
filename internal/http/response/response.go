// Package response standardizes the JSON envelope every handler writes,
// including the apperr.Code -> HTTP status mapping.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kochimetro/induction-engine/internal/platform/apperr"
)

// APIError is the error body shape.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError the way every non-2xx response is shaped.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// OK writes a 200 with payload as the body.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Created writes a 201 with payload as the body.
func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// Error inspects err for an *apperr.Error, maps its Code to an HTTP
// status, and writes the envelope. Any other error is treated as
// internal.
func Error(c *gin.Context, err error) {
	status, code := statusFor(err)
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func statusFor(err error) (int, string) {
	switch apperr.CodeOf(err) {
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized, string(apperr.CodeUnauthorized)
	case apperr.CodeForbidden:
		return http.StatusForbidden, string(apperr.CodeForbidden)
	case apperr.CodeNotFound:
		return http.StatusNotFound, string(apperr.CodeNotFound)
	case apperr.CodeConflict:
		return http.StatusConflict, string(apperr.CodeConflict)
	case apperr.CodeBadRequest:
		return http.StatusBadRequest, string(apperr.CodeBadRequest)
	case apperr.CodeUpstreamUnavailable:
		return http.StatusBadGateway, string(apperr.CodeUpstreamUnavailable)
	default:
		return http.StatusInternalServerError, string(apperr.CodeInternal)
	}
}
