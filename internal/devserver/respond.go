package devserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every response carries the {code, message, data} envelope. Business
// failures ride an HTTP 200 with a non-200 envelope code; only auth
// failures use the HTTP status itself (401/403), which is what the
// client keys its global handling on.

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    data,
	})
}

func fail(c *gin.Context, err error) {
	var r rejection
	if errors.As(err, &r) {
		c.JSON(http.StatusOK, gin.H{
			"code":    r.code,
			"message": r.message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    http.StatusInternalServerError,
		"message": "internal server error",
	})
}

func failStatus(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    status,
		"message": message,
	})
}

func failValidation(c *gin.Context, message string, fields map[string][]string) {
	c.JSON(http.StatusOK, gin.H{
		"code":    422,
		"message": message,
		"errors":  fields,
	})
}
