package loyalty

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/loyalty-bridge/internal/config"
	"github.com/spec-kit/loyalty-bridge/internal/observability"
)

// expirySafetyMargin is subtracted from the nominal token lifetime so a
// token is never handed out moments before the platform invalidates it.
const expirySafetyMargin = 60 * time.Second

// TokenSource supplies a valid bearer token for loyalty-platform calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// credential is an issued bearer token. Immutable; refresh supersedes
// the whole value.
type credential struct {
	value     string
	expiresAt time.Time
}

// authCall is the single in-flight authorization shared by all callers
// that hit a cold cache concurrently.
type authCall struct {
	done  chan struct{}
	token string
	err   error
}

// TokenManager owns the platform bearer credential: it caches the token
// with an expiry buffer and coalesces concurrent refreshes into one
// upstream authorization call. Authorization failures propagate to every
// waiting caller and leave the cache empty, so the next caller retries
// from scratch. No backoff is applied.
type TokenManager struct {
	auth     authorizer
	lifetime time.Duration
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	cached   *credential
	inflight *authCall
}

// NewTokenManager constructs a manager backed by the platform oauth
// endpoint.
func NewTokenManager(cfg config.LoyaltyConfig, metrics *observability.Metrics, logger *zap.Logger) *TokenManager {
	return &TokenManager{
		auth:     newAuthClient(cfg),
		lifetime: cfg.TokenLifetime(),
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Token returns a bearer token valid for at least the safety margin.
// Cache hits cost no I/O. On a cold or expired cache exactly one
// authorization call is issued regardless of how many callers arrive.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.cached != nil && m.now().Before(m.cached.expiresAt) {
		token := m.cached.value
		m.mu.Unlock()
		return token, nil
	}

	if call := m.inflight; call != nil {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.token, call.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	call := &authCall{done: make(chan struct{})}
	m.inflight = call
	m.mu.Unlock()

	m.metrics.RecordAuthorization()
	token, err := m.auth.authorize(ctx)

	m.mu.Lock()
	if err == nil {
		m.cached = &credential{
			value:     token,
			expiresAt: m.now().Add(m.lifetime - expirySafetyMargin),
		}
	} else {
		m.logger.Error("authorization failed", zap.Error(err))
	}
	// Clear the slot on success and failure alike so a failed
	// authorization cannot wedge future calls.
	m.inflight = nil
	m.mu.Unlock()

	call.token = token
	call.err = err
	close(call.done)

	return token, err
}

// Reset clears the cached credential. Test hook.
func (m *TokenManager) Reset() {
	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()
}
