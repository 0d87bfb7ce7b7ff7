package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindRateLimitExceeded, KindOf(RateLimitExceeded("user-1")))
	assert.Equal(t, KindBadInput, KindOf(BadInput(nil, "empty query")))
	assert.Equal(t, KindGeneratorTimeout, KindOf(GeneratorFailure(errors.New("deadline"), KindGeneratorTimeout)))

	// wrapped chains still classify
	wrapped := fmt.Errorf("handling query: %w", BadInput(nil, "empty query"))
	assert.Equal(t, KindBadInput, KindOf(wrapped))

	// plain errors default to internal
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestAppErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := New(cause, KindStoreUnavailable, http.StatusBadGateway, StoreErrorMessage)

	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusTooManyRequests, RateLimitExceeded("s").Status)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
}

func TestAppErrorMessageIsSafe(t *testing.T) {
	t.Parallel()

	err := RateLimitExceeded("user-1")
	assert.Equal(t, "rate limit exceeded for user-1", err.Message)

	// the message side carries no wrapped detail
	detail := New(errors.New("dial tcp 10.0.0.4:6379: timeout"), KindStoreUnavailable,
		http.StatusBadGateway, StoreErrorMessage)
	assert.Equal(t, StoreErrorMessage, detail.Message)
	assert.Contains(t, detail.Error(), "dial tcp")
}
