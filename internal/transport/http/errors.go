package httptransport

import (
	"errors"
	"net/http"

	"mailroom/backend/internal/service"
)

// 通用错误消息
const (
	MsgInvalidJSON    = "Invalid JSON body"
	MsgInternalError  = "Internal server error"
	MsgUnknownAction  = "Unknown action: "
	MsgInvalidMailIDs = "mailIds must be a list of mail IDs"
)

// statusFor 将业务错误类型映射为 HTTP 状态码
func statusFor(err error) int {
	switch service.KindOf(err) {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindCapacityExceeded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// messageFor 返回面向调用方的错误消息，非业务错误不暴露内部细节
func messageFor(err error) string {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		return svcErr.Error()
	}
	return MsgInternalError
}
