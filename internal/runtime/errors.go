package runtime

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	dc "github.com/joshsymonds/driveloader/internal/drive"
)

// classify tags Google API failures with a drive sentinel while keeping the
// original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	var kind error
	switch gerr.Code {
	case http.StatusUnauthorized:
		kind = dc.ErrUnauthorized
	case http.StatusForbidden:
		if isRateLimitReason(gerr) {
			kind = dc.ErrRateLimited
		} else {
			kind = dc.ErrForbidden
		}
	case http.StatusNotFound:
		kind = dc.ErrNotFound
	case http.StatusTooManyRequests:
		kind = dc.ErrRateLimited
	default:
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Drive reports quota exhaustion as 403 with a rate limit reason.
func isRateLimitReason(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}
