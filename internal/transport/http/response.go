package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondOK 输出 {status:"ok", ...payload}
func respondOK(c *gin.Context, payload gin.H) {
	body := gin.H{"status": "ok"}
	for k, v := range payload {
		if k == "status" {
			continue
		}
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// respondError 输出 {status:"error", message}
func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"status":  "error",
		"message": message,
	})
}

// respond 按结果类型输出：gin.H 套用统一结构，其余值原样输出
func respond(c *gin.Context, result interface{}) {
	switch v := result.(type) {
	case nil:
		respondOK(c, nil)
	case gin.H:
		respondOK(c, v)
	default:
		c.JSON(http.StatusOK, v)
	}
}
