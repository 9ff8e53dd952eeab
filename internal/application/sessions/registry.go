package sessions

import (
	"context"
	"fmt"
	"sync"

	"github.com/yuzvak/storefront-cart/internal/application/cartstore"
	"github.com/yuzvak/storefront-cart/internal/application/ports"
	domainErrors "github.com/yuzvak/storefront-cart/internal/domain/errors"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/monitoring"
	"github.com/yuzvak/storefront-cart/internal/pkg/generator"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

// Registry hands out one cart store per shopper session, all backed by the
// same persistence provider under "<prefix>:<session id>".
type Registry struct {
	mu     sync.Mutex
	stores map[string]*session

	provider ports.PersistenceProvider
	prefix   string
	log      *logger.Logger
}

// session is published before hydration finishes; ready closes once the
// store holds the persisted cart.
type session struct {
	store *cartstore.Store
	ready chan struct{}
}

func NewRegistry(provider ports.PersistenceProvider, prefix string, log *logger.Logger) *Registry {
	return &Registry{
		stores:   make(map[string]*session),
		provider: provider,
		prefix:   prefix,
		log:      log,
	}
}

func (r *Registry) Key(sessionID string) string {
	return r.prefix + ":" + sessionID
}

// Get returns the session's store, hydrating it on first use. A hydration
// error is returned alongside a usable, empty store. Concurrent callers for a
// new session wait until hydration is done.
func (r *Registry) Get(ctx context.Context, sessionID string) (*cartstore.Store, error) {
	if sessionID == "" {
		return nil, domainErrors.ErrSessionRequired
	}
	if !generator.ValidSessionID(sessionID) {
		return nil, fmt.Errorf("%w: malformed session id", domainErrors.ErrInvalidRequest)
	}

	r.mu.Lock()
	sess, ok := r.stores[sessionID]
	if !ok {
		sess = &session{
			store: cartstore.New(r.provider, r.Key(sessionID), r.log.WithField("session_id", sessionID)),
			ready: make(chan struct{}),
		}
		r.stores[sessionID] = sess
		monitoring.CartSessionsActive.Set(float64(len(r.stores)))
	}
	r.mu.Unlock()

	if ok {
		select {
		case <-sess.ready:
			return sess.store, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	store := sess.store
	err := store.Hydrate(ctx)
	close(sess.ready)
	if err != nil {
		r.log.Warn("Session started with an empty cart", "session_id", sessionID, "error", err)
		return store, err
	}

	return store, nil
}

// Forget drops the in-memory store. The persisted snapshot stays.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.stores, sessionID)
	monitoring.CartSessionsActive.Set(float64(len(r.stores)))
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
