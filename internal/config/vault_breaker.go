package config

import (
	stderrors "errors"
	"fmt"

	"cvscore/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/sony/gobreaker/v2"
)

var errSecretNotFound = stderrors.New("secret not found")

// secretBreaker wraps Vault secret reads in a circuit breaker
type secretBreaker struct {
	cb *gobreaker.CircuitBreaker[*api.Secret]
}

// newSecretBreaker returns nil when the breaker is disabled
func newSecretBreaker(cfg CircuitBreakerConfig, logger *errors.Logger) *secretBreaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        "vault-secrets",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureThreshold
		},
		// a missing secret is a configuration problem, not an unhealthy Vault
		IsSuccessful: func(err error) bool {
			return err == nil || stderrors.Is(err, errSecretNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger != nil {
				logger.Info("Circuit breaker state changed",
					"name", name,
					"from", from.String(),
					"to", to.String())
			}
		},
	}

	return &secretBreaker{cb: gobreaker.NewCircuitBreaker[*api.Secret](settings)}
}

// Execute runs fn with circuit breaker protection
func (b *secretBreaker) Execute(fn func() (*api.Secret, error)) (*api.Secret, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	secret, err := b.cb.Execute(fn)
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkTimeout,
			fmt.Sprintf("vault circuit breaker is %s", b.cb.State()), err)
	}
	return secret, err
}

// Stats returns circuit breaker statistics
func (b *secretBreaker) Stats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{"enabled": false}
	}
	counts := b.cb.Counts()
	return map[string]any{
		"enabled":              true,
		"name":                 b.cb.Name(),
		"state":                b.cb.State().String(),
		"requests":             counts.Requests,
		"consecutive_failures": counts.ConsecutiveFailures,
		"total_failures":       counts.TotalFailures,
	}
}

// IsHealthy reports whether the breaker is closed
func (b *secretBreaker) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
