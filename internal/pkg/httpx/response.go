// Package httpx 放置各服务 HTTP 处理器共用的编解码辅助函数。
package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"bistro/internal/pkg/apperr"
	"bistro/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// ErrorBody 是所有错误响应的格式
type ErrorBody struct {
	Error string `json:"error"`
}

// Context 从请求头中恢复上游的链路上下文
func Context(r *http.Request) *http.Request {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return r.WithContext(ctx)
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError 按错误类别写出状态码，未归类的错误不向调用方暴露细节
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusCode(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		msg = http.StatusText(status)
	}
	WriteJSON(w, status, ErrorBody{Error: msg})
}

// DecodeJSON 解析请求体，失败时已写出 400
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: "invalid request body"})
		return false
	}
	return true
}

// PathInt64 读取路径参数并解析为 int64，失败时已写出 400
func PathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: "invalid " + name})
		return 0, false
	}
	return v, true
}
