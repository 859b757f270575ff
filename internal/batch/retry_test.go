package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oukeidos/npcxlate/internal/apperrors"
)

func TestRetryDecision(t *testing.T) {
	prevJitter := retryJitter
	retryJitter = 0
	defer func() { retryJitter = prevJitter }()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name    string
		ctx     context.Context
		err     error
		attempt int
		retry   bool
		backoff time.Duration
	}{
		{name: "transient_first", ctx: context.Background(), err: apperrors.Transient(errors.New("x")), attempt: 1, retry: true, backoff: time.Second},
		{name: "transient_second", ctx: context.Background(), err: apperrors.Transient(errors.New("x")), attempt: 2, retry: true, backoff: 2 * time.Second},
		{name: "rate_limit_doubles", ctx: context.Background(), err: apperrors.RateLimit(errors.New("x")), attempt: 1, retry: true, backoff: 2 * time.Second},
		{name: "capped", ctx: context.Background(), err: apperrors.Transient(errors.New("x")), attempt: 9, retry: true, backoff: 20 * time.Second},
		{name: "exhausted", ctx: context.Background(), err: apperrors.Transient(errors.New("x")), attempt: 10},
		{name: "auth", ctx: context.Background(), err: apperrors.Auth(errors.New("x")), attempt: 1},
		{name: "unclassified", ctx: context.Background(), err: errors.New("x"), attempt: 1},
		{name: "canceled", ctx: canceled, err: apperrors.Transient(errors.New("x")), attempt: 1},
		{name: "nil", ctx: context.Background(), err: nil, attempt: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			retry, backoff := retryDecision(tc.ctx, tc.err, tc.attempt, 10)
			if retry != tc.retry || backoff != tc.backoff {
				t.Fatalf("retryDecision() = (%v, %v), want (%v, %v)", retry, backoff, tc.retry, tc.backoff)
			}
		})
	}
}
