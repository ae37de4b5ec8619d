package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 请求上下文中保存调用方信息的键
const (
	AccountKey     = "account"
	ActionKey      = "action"
	// RouteActionKey 仅在处理器识别出 action 后设置，作为指标标签避免任意取值。
	RouteActionKey = "route_action"
)

// AccountContext 从查询参数或 JSON 请求体中提取 uuid 与 action，供限流、日志与指标使用。
//
// 请求体读取后会原样放回，处理器仍可正常解析。
func AccountContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		account := c.Query("uuid")
		action := c.Query("action")

		if c.Request.Method == http.MethodPost && c.Request.Body != nil {
			raw, err := io.ReadAll(c.Request.Body)
			if err != nil {
				abortWithError(c, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))

			var peek struct {
				UUID   interface{} `json:"uuid"`
				Action interface{} `json:"action"`
			}
			if json.Unmarshal(raw, &peek) == nil {
				if s, ok := peek.UUID.(string); ok && s != "" {
					account = s
				}
				if s, ok := peek.Action.(string); ok && s != "" {
					action = s
				}
			}
		}

		c.Set(AccountKey, account)
		c.Set(ActionKey, action)
		c.Next()
	}
}
