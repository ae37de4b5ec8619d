package service

import (
	"errors"

	"mailroom/backend/internal/storage"
)

// Kind 标识业务错误的类别，传输层据此选择响应码。
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindCapacityExceeded Kind = "capacity_exceeded"
	KindValidation       Kind = "validation"
	KindStorage          Kind = "storage"
)

// Error 是业务层返回给调用方的错误，Message 可以直接展示给用户。
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is 让 errors.Is(err, ErrNotFound) 这类按类别的判断成立。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrCapacityExceeded = &Error{Kind: KindCapacityExceeded}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrStorage          = &Error{Kind: KindStorage}
)

// KindOf 返回错误类别，无法识别的错误按存储故障处理。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

func notFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func capacityExceeded(message string) error {
	return &Error{Kind: KindCapacityExceeded, Message: message}
}

func validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// storageErr 包装存储层错误并保留原始信息。
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindStorage, Message: err.Error(), Err: err}
}

// notFoundOr 将 storage.ErrNotFound 转换为带提示的 NotFound，其余按存储故障处理。
func notFoundOr(err error, message string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &Error{Kind: KindNotFound, Message: message, Err: err}
	}
	return storageErr(err)
}
