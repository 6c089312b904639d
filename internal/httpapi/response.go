// Package httpapi defines the uniform JSON envelope and error codes used
// by every endpoint.
package httpapi

import "github.com/gin-gonic/gin"

// Application-level error codes carried alongside the HTTP status so the
// client can branch without string matching.
const (
	CodeOK              = 0
	CodeValidation      = 40001
	CodeUnauthenticated = 40101
	CodeForbidden       = 40301
	CodeNotFound        = 40401
	CodeConflict        = 40901
	CodeRateLimited     = 42901
	CodeInternal        = 50001
)

// Response is the uniform structure for API responses.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(c *gin.Context, status, code int, message string, data interface{}) {
	c.JSON(status, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// OK returns a standard success response.
func OK(c *gin.Context, data interface{}) {
	Respond(c, 200, CodeOK, "success", data)
}

// Error returns a standard error response.
func Error(c *gin.Context, status, code int, message string) {
	Respond(c, status, code, message, nil)
}
