package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the data part of a JSON envelope.
type Response map[string]interface{}

// business codes
const (
	CodeOK          = 0
	CodeNotFound    = 40401
	CodeServerErr   = 50001
	CodeUnavailable = 50301
)

// Success writes {"code": 0, "data": data}.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes {"code": code, "message": msg}.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}
