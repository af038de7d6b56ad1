// Package apperr 定义了跨服务共享的错误类别。
// 领域错误通过 New 归属到某一个类别，接口层只需按类别映射状态码。
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrTemporal   = errors.New("no longer valid")
)

type categorized struct {
	category error
	msg      string
}

func (e *categorized) Error() string { return e.msg }

func (e *categorized) Unwrap() error { return e.category }

// New 创建一个归属于 category 的哨兵错误
func New(category error, msg string) error {
	return &categorized{category: category, msg: msg}
}

// StatusCode 将错误类别映射为 HTTP 状态码
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict), errors.Is(err, ErrTemporal):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError 判断错误是否由调用方输入导致
func IsClientError(err error) bool {
	return StatusCode(err) < http.StatusInternalServerError
}
