package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-oidc-session/internal/config"
	"github.com/jrsteele09/go-oidc-session/oidcflow"
	"github.com/jrsteele09/go-oidc-session/store"
	"github.com/rs/zerolog/log"
)

const memoryStoreSweepInterval = time.Minute

// Dependencies are the external collaborators built from configuration.
type Dependencies struct {
	Store    store.Store
	Provider oidcflow.Provider // nil selects the Keycloak provider
	close    []func() error
}

// Close releases everything Bootstrap opened.
func (d *Dependencies) Close() error {
	var firstErr error
	for i := len(d.close) - 1; i >= 0; i-- {
		if err := d.close[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Bootstrap selects the session store and identity provider. Redis is used
// when an address is configured, otherwise sessions are kept in memory.
func Bootstrap(ctx context.Context, cfg config.Config) (*Dependencies, error) {
	deps := &Dependencies{}

	if addr := cfg.GetRedisAddr(); addr != "" {
		client := store.NewRedisClient(addr, cfg.GetRedisPassword(), cfg.GetRedisDB())
		rs := store.NewRedisStore(client, cfg.GetRedisKeyPrefix())
		latency, err := rs.Ping(ctx)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("[Bootstrap] redis at %s: %w", addr, err)
		}
		log.Info().Str("addr", addr).Dur("latency", latency).Msg("Using redis session store")
		deps.Store = rs
		deps.close = append(deps.close, client.Close)
	} else {
		ms := store.NewMemoryStore()
		stop := sweepExpired(ms, memoryStoreSweepInterval)
		log.Warn().Msg("REDIS_ADDR not set, sessions are kept in memory")
		deps.Store = ms
		deps.close = append(deps.close, func() error { stop(); return nil })
	}

	if cfg.GetUseDiscovery() {
		discoverCtx, cancel := context.WithTimeout(ctx, cfg.GetDiscoveryTimeout())
		defer cancel()
		provider, err := oidcflow.DiscoverProvider(discoverCtx, cfg.GetIssuer(), cfg.GetClientID(), cfg.GetClientSecret())
		if err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("[Bootstrap] %w", err)
		}
		log.Info().Str("issuer", cfg.GetIssuer()).Msg("Using discovered OIDC provider")
		deps.Provider = provider
	}

	return deps, nil
}

// sweepExpired periodically drops expired entries from ms until stop is called.
func sweepExpired(ms *store.MemoryStore, interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if n := ms.DeleteExpired(); n > 0 {
					log.Debug().Int("removed", n).Msg("Swept expired sessions")
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}
