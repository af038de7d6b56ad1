package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	errMissing := New(ErrValidation, "missing field")
	errTaken := New(ErrConflict, "code taken")
	errGone := New(ErrNotFound, "coupon not found")
	errExpired := New(ErrTemporal, "coupon expired")

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", errMissing, http.StatusBadRequest},
		{"temporal", errExpired, http.StatusConflict},
		{"conflict", errTaken, http.StatusConflict},
		{"not found", errGone, http.StatusNotFound},
		{"wrapped with stack", errors.Wrap(errTaken, "create coupon"), http.StatusConflict},
		{"wrapped with fmt", fmt.Errorf("lookup: %w", errGone), http.StatusNotFound},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusCode(tc.err))
		})
	}
}

func TestCategorizedKeepsMessage(t *testing.T) {
	err := New(ErrConflict, "coupon code already exists")
	assert.Equal(t, "coupon code already exists", err.Error())
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.True(t, IsClientError(err))
}
