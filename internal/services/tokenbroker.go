package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultClientTokenTTL bounds how long a minted client token is served
// from the cache before a fresh mint is required.
const DefaultClientTokenTTL = 5 * time.Minute

// ClientTokenBroker caches payment client tokens per client id and collapses
// concurrent mint requests for the same client id into a single network
// call. It is constructed once per application session and shared.
type ClientTokenBroker struct {
	api    BackendAPI
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	group singleflight.Group

	mu    sync.Mutex
	cache map[string]cachedToken
}

type cachedToken struct {
	token     string
	expiresAt time.Time
}

// NewClientTokenBroker creates a broker with the given TTL. A TTL of zero
// falls back to DefaultClientTokenTTL.
func NewClientTokenBroker(api BackendAPI, ttl time.Duration, logger *slog.Logger) *ClientTokenBroker {
	if ttl <= 0 {
		ttl = DefaultClientTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ClientTokenBroker{
		api:    api,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		cache:  make(map[string]cachedToken),
	}
}

// RefreshClientToken returns a valid client token for the client id. A
// cached token younger than the TTL is returned without a network call.
// Concurrent callers for the same client id share one in-flight mint. A
// failed mint clears the cache entry so the next call re-attempts.
func (b *ClientTokenBroker) RefreshClientToken(ctx context.Context, clientID string) (string, error) {
	if clientID == "" {
		return "", fmt.Errorf("client id is required")
	}

	if token, ok := b.cachedValid(clientID); ok {
		return token, nil
	}

	v, err, shared := b.group.Do(clientID, func() (interface{}, error) {
		// A caller that queued behind a completed mint sees the fresh
		// cache entry here instead of minting again.
		if token, ok := b.cachedValid(clientID); ok {
			return token, nil
		}

		token, err := b.api.MintClientToken(ctx, clientID)
		if err != nil {
			b.Invalidate(clientID)
			return "", fmt.Errorf("could not prepare payment for this session: %w", err)
		}

		b.store(clientID, token)
		return token, nil
	})
	if err != nil {
		return "", err
	}

	if shared {
		b.logger.Debug("client token mint de-duplicated", "client_id", clientID)
	}

	return v.(string), nil
}

// Invalidate drops any cached token for the client id
func (b *ClientTokenBroker) Invalidate(clientID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.cache, clientID)
}

// cachedValid returns the cached token when present and not expired.
// Expired entries are dropped on read.
func (b *ClientTokenBroker) cachedValid(clientID string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.cache[clientID]
	if !ok {
		return "", false
	}
	if !b.now().Before(entry.expiresAt) {
		delete(b.cache, clientID)
		return "", false
	}
	return entry.token, true
}

func (b *ClientTokenBroker) store(clientID, token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache[clientID] = cachedToken{
		token:     token,
		expiresAt: b.now().Add(b.ttl),
	}
}
