package google

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
)

func apiErr(code int) error {
	return &googleapi.Error{Code: code, Message: http.StatusText(code)}
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsUnauthorized(apiErr(http.StatusUnauthorized)))
	assert.True(t, IsForbidden(apiErr(http.StatusForbidden)))
	assert.True(t, IsNotFound(apiErr(http.StatusNotFound)))
	assert.True(t, IsRateLimited(apiErr(http.StatusTooManyRequests)))

	assert.False(t, IsNotFound(apiErr(http.StatusInternalServerError)))
	assert.False(t, IsRateLimited(errors.New("plain")))
	assert.False(t, IsUnauthorized(nil))
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		err := WrapError(apiErr(tt.code))
		assert.ErrorIs(t, err, tt.want)
		assert.Contains(t, err.Error(), http.StatusText(tt.code))
	}

	assert.ErrorIs(t, WrapError(apiErr(http.StatusNotFound)), domain.ErrNotFound)
	assert.ErrorIs(t, WrapError(apiErr(http.StatusUnauthorized)), domain.ErrAuthRequired)
}

func TestWrapError_Passthrough(t *testing.T) {
	assert.NoError(t, WrapError(nil))

	plain := errors.New("boom")
	assert.Equal(t, plain, WrapError(plain))

	server := apiErr(http.StatusInternalServerError)
	assert.Equal(t, server, WrapError(server))
}

func TestRetryAfter(t *testing.T) {
	err := &googleapi.Error{Code: 429, Header: http.Header{"Retry-After": {"12"}}}
	assert.Equal(t, 12, RetryAfter(err))

	assert.Equal(t, 0, RetryAfter(&googleapi.Error{Code: 429}))
	assert.Equal(t, 0, RetryAfter(&googleapi.Error{Code: 429, Header: http.Header{"Retry-After": {"soon"}}}))
	assert.Equal(t, 0, RetryAfter(errors.New("x")))
}
