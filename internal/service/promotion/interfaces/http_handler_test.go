package interfaces

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bistro/internal/service/promotion/application"
	"bistro/internal/service/promotion/infrastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newMux() *http.ServeMux {
	svc := application.NewCouponLifecycleService(infrastructure.NewMemoryCouponRepository(), nil, noop.NewTracerProvider().Tracer("test"))
	mux := http.NewServeMux()
	NewCouponHandler(svc).RegisterRoutes(mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

const save20 = `{"userId":1,"code":"SAVE20","discountAmount":20,"discountType":"percentage","expiresAt":"2099-01-01T00:00:00Z"}`

func TestCouponHandlerLifecycle(t *testing.T) {
	mux := newMux()

	rec := do(mux, http.MethodPost, "/coupons", save20)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(mux, http.MethodPost, "/coupons", save20)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "coupon code already exists")

	rec = do(mux, http.MethodGet, "/coupons/1/quote?subtotal=50", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var quote map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, "10", quote["discount"])
	assert.Equal(t, "40", quote["finalAmount"])

	rec = do(mux, http.MethodPost, "/coupons/1/use", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Coupon redeemed successfully.")

	rec = do(mux, http.MethodPost, "/coupons/1/use", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "coupon already used")

	rec = do(mux, http.MethodGet, "/users/1/coupons", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isUsed":true`)
}

func TestCouponHandlerErrors(t *testing.T) {
	mux := newMux()
	require.Equal(t, http.StatusCreated, do(mux, http.MethodPost, "/coupons", save20).Code)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing fields", http.MethodPost, "/coupons", `{"code":"X"}`, http.StatusBadRequest},
		{"out of range", http.MethodPost, "/coupons", `{"userId":1,"code":"X","discountAmount":120,"discountType":"percentage","expiresAt":"2099-01-01T00:00:00Z"}`, http.StatusBadRequest},
		{"unknown coupon", http.MethodGet, "/coupons/42", "", http.StatusNotFound},
		{"use unknown coupon", http.MethodPost, "/coupons/42/use", "", http.StatusNotFound},
		{"empty patch", http.MethodPatch, "/coupons/1", `{}`, http.StatusBadRequest},
		{"bad subtotal", http.MethodGet, "/coupons/1/quote?subtotal=abc", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, do(mux, tc.method, tc.path, tc.body).Code)
		})
	}
}
