package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/octabyte/alumni-portal/enums"
	"github.com/octabyte/alumni-portal/events"
	"github.com/octabyte/alumni-portal/models"
	otelLogger "github.com/octabyte/alumni-portal/otel/logger"
	"github.com/octabyte/alumni-portal/otel/metrics"
	"github.com/octabyte/alumni-portal/storage"
)

// API is the part of the REST client the Manager drives. *api.Client
// satisfies it.
type API interface {
	SetBearer(token string)
	ClearBearer()
	Login(ctx context.Context, username, password string) (models.Tokens, error)
	Register(ctx context.Context, reg models.Registration) error
	Me(ctx context.Context) (*models.User, error)
}

// Session is what views need from a visitor's session.
type Session interface {
	State() State
	Restore(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, reg models.Registration) (*models.User, error)
	Logout(ctx context.Context) error
}

type State struct {
	User      *models.User
	Resolving bool
}

func (s State) Authenticated() bool {
	return !s.Resolving && s.User != nil
}

type Option func(*Manager)

func WithNotifier(n events.Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager owns one visitor's tokens and identity. It is the only writer of
// the visitor's Store and of the API client's bearer credential.
type Manager struct {
	api      API
	store    storage.Store
	notifier events.Notifier
	validate *validator.Validate
	now      func() time.Time

	mu        sync.Mutex
	user      *models.User
	resolving bool
	// generation changes on every logout so an in-flight sign-in can tell
	// that its result must be discarded.
	generation uint64
}

var _ Session = (*Manager)(nil)

// NewManager returns a Manager that reports Resolving until Restore, Login
// or Register completes.
func NewManager(api API, store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		api:       api,
		store:     store,
		notifier:  events.NopNotifier{},
		validate:  validator.New(),
		now:       time.Now,
		resolving: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{User: m.user, Resolving: m.resolving}
}

// Restore rebuilds the session from storage and re-fetches the identity.
// A nil user with a nil error is an anonymous visitor. Any returned error
// means the visitor ends up anonymous and the stored session is gone.
func (m *Manager) Restore(ctx context.Context) (*models.User, error) {
	gen := m.beginResolve()

	rec, err := m.store.Load(ctx)
	if err != nil {
		m.finishAnonymous(gen)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if rec.Empty() {
		m.finishAnonymous(gen)
		return nil, nil
	}
	if !rec.Complete() {
		otelLogger.WarnCtx(ctx, "discarding incomplete stored session")
		m.expire(ctx, gen, nil)
		return nil, ErrSessionExpired
	}

	m.api.SetBearer(rec.AccessToken)
	user, err := m.api.Me(ctx)
	if err != nil {
		otelLogger.InfoCtx(ctx, "stored session rejected", zap.String("role", string(rec.Role)), zap.Error(err))
		m.expire(ctx, gen, nil)
		return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	if user.Role != rec.Role {
		otelLogger.WarnCtx(ctx, "stored role no longer matches account",
			zap.String("username", user.Username),
			zap.String("stored_role", string(rec.Role)),
			zap.String("role", string(user.Role)),
		)
		m.expire(ctx, gen, user)
		return nil, ErrRoleChanged
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		m.api.ClearBearer()
		return nil, ErrSuperseded
	}
	// Refreshes the expiry. The stored record is already complete, so a
	// failure here leaves storage consistent.
	if err := m.store.Save(ctx, rec); err != nil {
		otelLogger.WarnCtx(ctx, "refresh stored session", zap.Error(err))
	}
	m.user, m.resolving = user, false
	return user, nil
}

// Login exchanges credentials for tokens and resolves the identity behind them.
func (m *Manager) Login(ctx context.Context, username, password string) (*models.User, error) {
	release, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	user, err := m.login(ctx, username, password)
	metrics.RecordAuthAttempt(ctx, "login", err == nil)
	if err != nil {
		return nil, err
	}

	m.notify(ctx, enums.SessionEventLogin, user)
	return user, nil
}

func (m *Manager) login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	m.mu.Lock()
	gen := m.generation
	m.mu.Unlock()

	tokens, err := m.api.Login(ctx, username, password)
	if err != nil {
		otelLogger.InfoCtx(ctx, "credentials rejected", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCredentialsRejected, err)
	}

	// The identity fetch must already carry the new token.
	m.api.SetBearer(tokens.Access)
	user, err := m.api.Me(ctx)
	if err != nil {
		otelLogger.WarnCtx(ctx, "identity fetch after sign-in failed", zap.String("username", username), zap.Error(err))
		m.discard(ctx, gen)
		return nil, fmt.Errorf("%w: %w", ErrIdentityUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		m.api.ClearBearer()
		return nil, ErrSuperseded
	}

	rec := storage.Record{AccessToken: tokens.Access, RefreshToken: tokens.Refresh, Role: user.Role}
	if err := m.store.Save(ctx, rec); err != nil {
		m.api.ClearBearer()
		_ = m.store.Clear(ctx)
		m.user, m.resolving = nil, false
		otelLogger.ErrorCtx(ctx, "persist session", err, zap.String("username", username))
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	m.user, m.resolving = user, false
	otelLogger.InfoCtx(ctx, "signed in", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return user, nil
}

// Register creates a graduate or employer account and signs it in.
func (m *Manager) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if err := m.validateRegistration(reg); err != nil {
		metrics.RecordAuthAttempt(ctx, "register", false)
		return nil, err
	}

	release, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := m.api.Register(ctx, reg); err != nil {
		metrics.RecordAuthAttempt(ctx, "register", false)
		otelLogger.InfoCtx(ctx, "registration rejected", zap.String("username", reg.Username), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRegistrationRejected, err)
	}
	metrics.RecordAuthAttempt(ctx, "register", true)

	user, err := m.login(ctx, reg.Username, reg.Password)
	metrics.RecordAuthAttempt(ctx, "login", err == nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegisteredLoginFailed, err)
	}

	m.notify(ctx, enums.SessionEventRegister, user)
	return user, nil
}

func (m *Manager) validateRegistration(reg models.Registration) error {
	if reg.Password != reg.Password2 {
		return ErrPasswordMismatch
	}
	if err := m.validate.Struct(reg); err != nil {
		return fmt.Errorf("%w: %w", ErrRegistrationRejected, err)
	}
	if !reg.Role.SelfRegistrable() {
		return ErrRoleNotAllowed
	}
	return nil
}

// Logout clears storage, the bearer credential and the cached user. It is
// safe to call on an anonymous session.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.generation++
	user := m.user
	m.user, m.resolving = nil, false
	m.mu.Unlock()

	m.api.ClearBearer()
	if err := m.store.Clear(ctx); err != nil {
		otelLogger.ErrorCtx(ctx, "clear session storage", err)
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if user != nil {
		otelLogger.InfoCtx(ctx, "signed out", zap.String("username", user.Username))
		m.notify(ctx, enums.SessionEventLogout, user)
	}
	return nil
}

func (m *Manager) acquire(ctx context.Context) (func(), error) {
	release, err := m.store.AcquireSubmit(ctx)
	switch {
	case errors.Is(err, storage.ErrLocked):
		return nil, ErrSubmissionInProgress
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return release, nil
}

func (m *Manager) beginResolve() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolving = true
	return m.generation
}

func (m *Manager) finishAnonymous(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation == gen {
		m.user, m.resolving = nil, false
	}
}

// discard undoes a half-finished sign-in unless a logout already did.
func (m *Manager) discard(ctx context.Context, gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.api.ClearBearer()
	if m.generation != gen {
		return
	}
	if err := m.store.Clear(ctx); err != nil {
		otelLogger.ErrorCtx(ctx, "clear session storage", err)
	}
	m.user, m.resolving = nil, false
}

// expire is an implicit logout found while restoring.
func (m *Manager) expire(ctx context.Context, gen uint64, user *models.User) {
	m.discard(ctx, gen)
	m.notify(ctx, enums.SessionEventExpired, user)
}

func (m *Manager) notify(ctx context.Context, typ enums.SessionEvent, user *models.User) {
	ev := events.Event{Type: typ, At: m.now().UTC()}
	if user != nil {
		ev.Username, ev.Role = user.Username, user.Role
	}
	m.notifier.Notify(ctx, ev)
}
