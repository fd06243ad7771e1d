// Package embedding turns candidate and job profiles into semantic vectors in
// the background and tracks their pollable status.
package embedding

import (
	"context"
	"fmt"
	"time"
)

// Provider produces one embedding vector for a piece of text.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// Model names the embedding model, recorded alongside each vector.
	Model() string
}

// ProviderError is returned when every attempt to embed a text failed.
type ProviderError struct {
	Attempts int
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding failed after %d attempt(s): %v", e.Attempts, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// RetryingProvider retries a provider a fixed number of times with a fixed
// delay between attempts.
type RetryingProvider struct {
	next     Provider
	attempts int
	delay    time.Duration
}

// WithRetry wraps next. Attempts below 1 are treated as 1.
func WithRetry(next Provider, attempts int, delay time.Duration) *RetryingProvider {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryingProvider{next: next, attempts: attempts, delay: delay}
}

// Model returns the wrapped provider's model.
func (p *RetryingProvider) Model() string {
	return p.next.Model()
}

// Embed calls the wrapped provider until it succeeds, attempts run out or
// ctx is done.
func (p *RetryingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	attempt := 0
	for attempt < p.attempts {
		attempt++
		vec, err := p.next.Embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err

		if attempt == p.attempts {
			break
		}
		if err := sleep(ctx, p.delay); err != nil {
			lastErr = err
			break
		}
	}
	return nil, &ProviderError{Attempts: attempt, Cause: lastErr}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
