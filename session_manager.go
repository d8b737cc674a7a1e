package fideauth

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// DefaultRefreshInterval is how often the proactive refresh loop ticks.
	DefaultRefreshInterval = 60 * time.Second

	// DefaultRefreshThreshold is the remaining credential lifetime below
	// which a tick triggers a refresh.
	DefaultRefreshThreshold = 300 * time.Second
)

// SessionManager keeps the ambient session consistent and fresh across
// application restarts. It is constructed once at boot, started once, and
// stopped at shutdown. Two independent producers write the durable slot: the
// session-changed subscription and the periodic refresh loop. Writes are
// whole-value overwrites, so no ordering between them is assumed beyond
// last write wins.
type SessionManager struct {
	client    IdentityClient
	durable   SessionStore
	transient TransientStore
	validator TokenValidator
	logger    Logger
	now       clock

	refreshInterval  time.Duration
	refreshThreshold time.Duration

	mu          sync.Mutex
	started     bool
	stopped     bool
	unsubscribe func()
	done        chan struct{}
}

// NewSessionManager creates a manager with sane defaults.
func NewSessionManager(client IdentityClient, durable SessionStore, transient TransientStore) *SessionManager {
	return &SessionManager{
		client:           client,
		durable:          durable,
		transient:        transient,
		logger:           defLogger{},
		now:              time.Now,
		refreshInterval:  DefaultRefreshInterval,
		refreshThreshold: DefaultRefreshThreshold,
		done:             make(chan struct{}),
	}
}

// WithLogger overrides the logger used by the manager.
func (m *SessionManager) WithLogger(logger Logger) *SessionManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithClock injects a custom clock (useful for tests).
func (m *SessionManager) WithClock(now func() time.Time) *SessionManager {
	if now != nil {
		m.now = now
	}
	return m
}

// WithRefreshPolicy overrides the tick interval and the remaining-lifetime
// threshold of the proactive refresh loop.
func (m *SessionManager) WithRefreshPolicy(interval, threshold time.Duration) *SessionManager {
	if interval > 0 {
		m.refreshInterval = interval
	}
	if threshold > 0 {
		m.refreshThreshold = threshold
	}
	return m
}

// WithTokenValidator adds an extra check on the restored access credential,
// e.g. a JWKS validator against the identity provider's published keys. A
// failing credential discards the envelope instead of restoring it.
func (m *SessionManager) WithTokenValidator(validator TokenValidator) *SessionManager {
	m.validator = validator
	return m
}

// Start bootstraps the session, subscribes to session-changed notifications,
// and launches the refresh loop. Calling Start twice is an error.
func (m *SessionManager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return goerrors.New("session manager already started", goerrors.CategoryOperation)
	}
	m.started = true
	m.mu.Unlock()

	m.bootstrap(ctx)

	m.mu.Lock()
	if !m.stopped {
		m.unsubscribe = m.client.OnSessionChange(m.handleSessionChange)
	}
	m.mu.Unlock()

	go m.refreshLoop()

	return nil
}

// Stop tears the manager down: the refresh loop is cancelled and the
// subscription released. Safe to call multiple times; no storage writes
// happen after it returns.
func (m *SessionManager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	close(m.done)
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// bootstrap prefers a live session from the provider and falls back to
// restoring the persisted envelope. Restoration failures degrade to "not
// logged in"; they never fail application startup.
func (m *SessionManager) bootstrap(ctx context.Context) {
	session, err := m.client.CurrentSession(ctx)
	if err != nil {
		m.logger.Warn("session bootstrap query failed: %v", err)
		return
	}

	if session != nil {
		m.logger.Info("session bootstrap found live session for subject %s", session.SubjectID)
		return
	}

	m.restore(ctx)
}

func (m *SessionManager) restore(ctx context.Context) {
	raw, err := m.durable.Get(ctx, StorageKeySession)
	if err != nil {
		if err != ErrKeyNotFound {
			m.logger.Warn("session restore read failed: %v", err)
		}
		return
	}

	envelope, err := decodeEnvelope(raw)
	if err != nil {
		// corrupt envelopes are treated as absence
		m.logger.Debug("discarding corrupt session envelope: %v", err)
		m.clearPersisted(ctx)
		return
	}

	if err := envelope.Validate(m.now()); err != nil {
		m.logger.Debug("discarding stale session envelope: %v", err)
		m.clearPersisted(ctx)
		return
	}

	if m.validator != nil {
		if err := m.validator.Validate(envelope.Session.AccessToken); err != nil {
			m.logger.Debug("discarding envelope with rejected credential: %v", err)
			m.clearPersisted(ctx)
			return
		}
	}

	if _, err := m.client.SetSession(ctx, envelope.Session.AccessToken, envelope.Session.RefreshToken); err != nil {
		m.logger.Warn("session restore rejected by provider: %v", err)
		m.clearPersisted(ctx)
		return
	}

	m.logger.Info("session restored for subject %s", envelope.Session.SubjectID)
}

// handleSessionChange is the subscription callback. A non-empty session is
// persisted; an empty one (sign-out) clears every slot.
func (m *SessionManager) handleSessionChange(event string, session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}

	ctx := context.Background()

	if session == nil || session.AccessToken == "" {
		m.logger.Debug("session change %q cleared session", event)
		m.clearPersisted(ctx)
		if err := m.transient.Delete(ctx, StorageKeyActive); err != nil {
			m.logger.Warn("session active marker delete failed: %v", err)
		}
		return
	}

	m.persist(ctx, *session)
}

func (m *SessionManager) persist(ctx context.Context, session Session) {
	session.EnsureExpiry()
	session.IssuedAt = m.now()

	envelope := Envelope{Session: session, PersistedAt: m.now()}
	data, err := encodeEnvelope(envelope)
	if err != nil {
		m.logger.Error("session persist failed to serialize: %v", err)
		return
	}

	if err := m.durable.Set(ctx, StorageKeySession, data); err != nil {
		m.logger.Error("session persist envelope write failed: %v", err)
	}
	if err := m.durable.Set(ctx, StorageKeySubject, []byte(session.SubjectID)); err != nil {
		m.logger.Error("session persist subject write failed: %v", err)
	}
	if err := m.transient.Set(ctx, StorageKeyActive, []byte("1")); err != nil {
		m.logger.Error("session persist active marker write failed: %v", err)
	}
}

func (m *SessionManager) clearPersisted(ctx context.Context) {
	if err := m.durable.Delete(ctx, StorageKeySession); err != nil {
		m.logger.Warn("session envelope delete failed: %v", err)
	}
	if err := m.durable.Delete(ctx, StorageKeySubject); err != nil {
		m.logger.Warn("session subject delete failed: %v", err)
	}
}

func (m *SessionManager) refreshLoop() {
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			// a failed tick must never stop future ticks
			if err := m.CheckRefresh(context.Background()); err != nil {
				m.logger.Warn("session refresh tick failed: %v", err)
			}
		}
	}
}

// CheckRefresh evaluates the refresh policy once: when the current session's
// remaining lifetime is below the threshold, ask the provider to refresh.
// The refresh loop calls this every tick.
func (m *SessionManager) CheckRefresh(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	session, err := m.client.CurrentSession(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to query session for refresh check")
	}

	if session == nil {
		return nil
	}

	session.EnsureExpiry()
	if session.ExpiresAt.IsZero() {
		return nil
	}

	if session.TimeToLive(m.now()) >= m.refreshThreshold {
		return nil
	}

	if _, err := m.client.RefreshSession(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "session refresh failed")
	}

	m.logger.Info("session refreshed for subject %s", session.SubjectID)
	return nil
}
