package errx

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// WrapStore maps shared-store errors to the unified AppError type. A redis.Nil
// is a normal miss, not an outage; everything else counts as StoreUnavailable
// and is eligible for the retry-then-reduced-mode policy.
func WrapStore(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return New(err, KindInternal, http.StatusNotFound, StoreNotFoundMessage)
	}

	return New(err, KindStoreUnavailable, http.StatusBadGateway, StoreErrorMessage)
}
