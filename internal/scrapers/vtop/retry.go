package vtop

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy is an exponential backoff, each delay is twice the previous.
type RetryPolicy struct {
	MaxRetries      uint64        `json:"max_retries"`
	InitialInterval time.Duration `json:"initial_interval"`
	MaxInterval     time.Duration `json:"max_interval"`
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      2,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

func (p RetryPolicy) backoff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	// the retry count bounds the operation, not the elapsed time
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, p.MaxRetries), ctx)
}

// retry runs op until it succeeds, fails with an error that retrying cannot
// fix, or the policy runs out of attempts.
func (c *Client) retry(ctx context.Context, report string, op func() error) error {
	attempt := 0
	return backoff.RetryNotify(
		func() error {
			attempt++
			err := op()
			if err != nil && !IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		},
		c.retryPolicy.backoff(ctx),
		func(err error, wait time.Duration) {
			c.tel.ReportWarning(report, err, "attempt", attempt, "retrying in", wait.String())
		},
	)
}
