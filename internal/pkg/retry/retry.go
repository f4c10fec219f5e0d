package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultMaxDelay = 2 * time.Second
	defaultDelay    = 500 * time.Millisecond
)

// RetryConfig bounds retries of outbound deliveries
type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"500ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
}

// Options returns exponential backoff with jitter bound to ctx, followed by extra.
// Later options win, so extra can override the delay policy.
func (rc *RetryConfig) Options(ctx context.Context, extra ...retry.Option) []retry.Option {
	jitter := rc.Delay / 2
	if jitter <= 0 {
		jitter = time.Millisecond
	}

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(rc.Attempts),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(jitter),
		retry.LastErrorOnly(true),
	}
	return append(opts, extra...)
}

// ServerDelay prefers the wait the server asked for and falls back to backoff.
// hint reports that wait, or zero when err carries none.
func ServerDelay(hint func(error) time.Duration) retry.Option {
	return retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
		if wait := hint(err); wait > 0 {
			return wait
		}
		return retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)(n, err, config)
	})
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}
