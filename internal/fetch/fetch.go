package fetch

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"myresources/internal/transport"
)

// Retrier wraps a transport and runs a command again after a transient
// failure, waiting a doubling, jittered delay between attempts. Each attempt
// gets its own AttemptTimeout when it is set.
type Retrier struct {
	Transport      transport.Transport
	Retries        int
	AttemptTimeout time.Duration
	BaseBackoff    time.Duration
	MaxBackoff     time.Duration
	Rand           *rand.Rand
	Logger         zerolog.Logger
}

func NewRetrier(t transport.Transport, retries int, attemptTimeout time.Duration, logger zerolog.Logger) *Retrier {
	return &Retrier{
		Transport:      t,
		Retries:        retries,
		AttemptTimeout: attemptTimeout,
		BaseBackoff:    1 * time.Second,
		MaxBackoff:     15 * time.Second,
		Logger:         logger,
	}
}

func (r *Retrier) Describe() string {
	return r.Transport.Describe()
}

func (r *Retrier) Run(ctx context.Context, command string) (transport.RunResult, error) {
	if r.Rand == nil {
		r.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	attempt := 0
	for {
		attempt++
		res, err := r.runAttempt(ctx, command)
		if err == nil {
			if attempt > 1 {
				r.Logger.Debug().Int("attempt", attempt).Str("source", r.Describe()).Msg("command succeeded after retry")
			}
			return res, nil
		}
		if attempt > r.Retries || !transport.IsRetryable(err) || ctx.Err() != nil {
			return res, err
		}

		delay := r.backoffDelay(attempt)
		r.Logger.Warn().
			Err(err).
			Str("source", r.Describe()).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("transient failure running " + command)

		if !wait(ctx, delay) {
			return res, err
		}
	}
}

// Budget is the longest Run can take: every attempt timing out plus the
// maximum wait before each retry.
func (r *Retrier) Budget() time.Duration {
	return time.Duration(r.Retries+1)*r.AttemptTimeout + time.Duration(r.Retries)*r.MaxBackoff
}

func (r *Retrier) runAttempt(ctx context.Context, command string) (transport.RunResult, error) {
	if r.AttemptTimeout <= 0 {
		return r.Transport.Run(ctx, command)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.AttemptTimeout)
	defer cancel()
	return r.Transport.Run(attemptCtx, command)
}

func (r *Retrier) backoffDelay(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	delay := r.BaseBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= r.MaxBackoff {
			delay = r.MaxBackoff
			break
		}
	}

	jitterFactor := 0.8 + (r.Rand.Float64() * 0.4)
	jittered := time.Duration(float64(delay) * jitterFactor)
	if jittered < r.BaseBackoff {
		jittered = r.BaseBackoff
	}
	if jittered > r.MaxBackoff {
		jittered = r.MaxBackoff
	}
	return jittered
}

func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
