package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailroom/backend/internal/middleware"
	"mailroom/backend/internal/service"
)

// actionFunc 处理一个具名操作。返回 gin.H 时包装为 {status:"ok", ...}，其余值原样输出。
type actionFunc func(ctx context.Context, p params) (interface{}, error)

// Handler 聚合所有 HTTP 处理逻辑。
type Handler struct {
	svc    *service.Services
	logger *zap.Logger

	reads  map[string]actionFunc
	writes map[string]actionFunc
}

// NewHandler 创建处理器并登记全部操作。
func NewHandler(svc *service.Services, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{svc: svc, logger: logger}

	h.reads = map[string]actionFunc{
		"getTasks":             h.getTasks,
		"searchRecipients":     h.searchRecipients,
		"getMailLogStaff":      h.getMailLogStaff,
		"getAgentsForPlanCard": h.getAgentsForPlanCard,
		"getExceptions":        h.getExceptions,
		"getPlanCardsStaff":    h.getPlanCardsStaff,
	}

	h.writes = map[string]actionFunc{
		// 客户读取
		"getMailLog":      h.getClientMailLog,
		"getPlanCard":     h.getPlanCard,
		"getAgents":       h.getAgents,
		"getRecipients":   h.getRecipients,
		"getPlanTemplate": h.getPlanTemplate,

		// 客户写入
		"submitOnboarding":   h.submitOnboarding,
		"addRecipient":       h.addRecipient,
		"updateFriendlyName": h.updateFriendlyName,
		"addAgent":           h.addAgent,
		"removeAgent":        h.removeAgent,

		// 工作人员写入
		"logMail":               h.logMail,
		"resolveTask":           h.resolveTask,
		"snoozeTask":            h.snoozeTask,
		"releaseMail":           h.releaseMail,
		"bulkForwardMail":       h.bulkForwardMail,
		"assignMailRecipient":   h.assignMailRecipient,
		"editMailItem":          h.editMailItem,
		"deleteMailItem":        h.deleteMailItem,
		"updateMailStatus":      h.updateMailStatus,
		"addTempRecipient":      h.addTempRecipient,
		"updateRecipient":       h.updateRecipient,
		"updateRecipientStatus": h.updateRecipientStatus,
		"notifyNonPayment":      h.notifyNonPayment,
	}
	return h
}

// handleGet 处理查询字符串形式的读取请求，缺少 action 时执行访问解析。
func (h *Handler) handleGet(c *gin.Context) {
	p := queryParams(c.Request.URL.Query())
	action := p.String("action")
	if action == "" {
		c.Set(middleware.RouteActionKey, "resolveAccess")
		h.run(c, h.resolveAccess, p)
		return
	}
	h.dispatch(c, h.reads, action, p)
}

// handlePost 处理 JSON 请求体形式的写入和复杂读取请求。
func (h *Handler) handlePost(c *gin.Context) {
	var p params
	decoder := json.NewDecoder(c.Request.Body)
	if err := decoder.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			p = params{}
		} else {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondError(c, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			respondError(c, http.StatusBadRequest, MsgInvalidJSON)
			return
		}
	}
	if p == nil {
		p = params{}
	}
	h.dispatch(c, h.writes, p.String("action"), p)
}

func (h *Handler) dispatch(c *gin.Context, table map[string]actionFunc, action string, p params) {
	fn, ok := table[action]
	if !ok {
		h.logger.Warn("unknown action", zap.String("action", action), zap.String("method", c.Request.Method))
		respondError(c, http.StatusBadRequest, MsgUnknownAction+action)
		return
	}
	c.Set(middleware.RouteActionKey, action)
	h.run(c, fn, p)
}

func (h *Handler) run(c *gin.Context, fn actionFunc, p params) {
	result, err := fn(c.Request.Context(), p)
	if err != nil {
		code := statusFor(err)
		if code >= http.StatusInternalServerError {
			h.logger.Error("action failed",
				zap.String("action", c.GetString(middleware.RouteActionKey)),
				zap.Error(err),
			)
		}
		respondError(c, code, messageFor(err))
		return
	}
	respond(c, result)
}

func (h *Handler) resolveAccess(ctx context.Context, p params) (interface{}, error) {
	return h.svc.Access.Resolve(ctx, p.String("uuid"))
}
