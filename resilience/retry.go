// Package resilience bounds retries around calls to external model services
package resilience

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrRetryTimeout is returned once every attempt of a call has failed. The
// underlying causes are logged, not returned
var ErrRetryTimeout = errors.New("retry timeout")

const (
	// ChatAttempts bounds calls made while answering a conversation
	ChatAttempts = 5
	// IndexingAttempts bounds calls made while building embeddings
	IndexingAttempts = 3
	// DefaultDelay is the fixed pause between attempts
	DefaultDelay = time.Second
)

// Policy configures a bounded retry
type Policy struct {
	Attempts int
	Delay    time.Duration
	Logger   *zap.Logger

	// sleep is swapped out in tests
	sleep func(time.Duration)
}

// ChatPolicy returns the policy used on the conversation path
func ChatPolicy(logger *zap.Logger) Policy {
	return Policy{Attempts: ChatAttempts, Delay: DefaultDelay, Logger: logger}
}

// IndexingPolicy returns the policy used while embedding a corpus
func IndexingPolicy(logger *zap.Logger) Policy {
	return Policy{Attempts: IndexingAttempts, Delay: DefaultDelay, Logger: logger}
}

func (p Policy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

func (p Policy) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func (p Policy) pause() {
	if p.Delay <= 0 {
		return
	}
	if p.sleep != nil {
		p.sleep(p.Delay)
		return
	}
	time.Sleep(p.Delay)
}

// Do runs fn until it succeeds or the policy's attempts are used up, pausing
// a fixed delay between attempts. Every failed attempt is logged with the
// operation name. ctx is handed to fn; the loop itself is not interrupted by
// cancellation, so a call always ends in success or ErrRetryTimeout
func Do[T any](ctx context.Context, p Policy, operation string, fn func(context.Context) (T, error)) (T, error) {
	log := p.logger()
	attempts := p.attempts()

	var zero T
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		if attempt == attempts {
			log.Error("retry attempts exhausted",
				zap.String("operation", operation),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
			break
		}

		log.Warn("retrying call",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		p.pause()
	}

	return zero, ErrRetryTimeout
}
