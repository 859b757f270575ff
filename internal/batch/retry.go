package batch

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/oukeidos/npcxlate/internal/apperrors"
)

var (
	retryBaseDelay = 1 * time.Second
	retryMaxDelay  = 20 * time.Second
	retryJitter    = 1 * time.Second
)

// retryDecision reports whether a failed attempt should be retried and how
// long to wait first. Rate limits back off twice as long.
func retryDecision(ctx context.Context, err error, attempt, maxAttempts int) (bool, time.Duration) {
	if err == nil || attempt >= maxAttempts {
		return false, 0
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, 0
	}
	if !apperrors.IsRetryable(err) {
		return false, 0
	}

	backoff := retryBaseDelay << (attempt - 1)
	if apperrors.IsRateLimit(err) {
		backoff *= 2
	}
	if backoff > retryMaxDelay {
		backoff = retryMaxDelay
	}
	if retryJitter > 0 {
		backoff += time.Duration(rand.Int63n(int64(retryJitter)))
	}
	return true, backoff
}
