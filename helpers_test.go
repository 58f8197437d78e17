package authflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
	})
	return mr, rdb
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.Provision.ProfileWriteTimeout = 50 * time.Millisecond
	cfg.Verification.ResendCooldown = 30 * time.Millisecond
	return cfg
}

// newTestEngine assembles an engine over miniredis with short timeouts. The
// returned fake gateway starts empty; seed it via its users map or let
// CreateAccount populate it.
func newTestEngine(t *testing.T, mutate func(*Config)) (*Engine, *fakeGateway, *miniredis.Miniredis) {
	t.Helper()

	mr, rdb := newTestRedis(t)
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	gw := newFakeGateway()
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityGateway(gw).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, gw, mr
}

func validForm() AccountForm {
	return AccountForm{
		ChildName:       "Maya",
		ChildAge:        "6",
		ParentName:      "Dana",
		ParentPhone:     "555-123-4567",
		Email:           "dana@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	}
}

// ---------------------------------------------------------------------------
// Fake identity gateway
// ---------------------------------------------------------------------------

type fakeUser struct {
	uid         string
	password    string
	displayName string
	verified    bool
}

type fakeGateway struct {
	mu    sync.Mutex
	users map[string]*fakeUser

	createErr      error
	displayNameErr error
	signInErr      error
	signOutErr     error
	reloadErr      error
	sendVerifyErr  error
	sendResetErr   error

	createCalls     int
	signInCalls     int
	signOutCalls    int
	reloadCalls     int
	sendVerifyCalls int
	sendResetCalls  int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{users: make(map[string]*fakeUser)}
}

func (g *fakeGateway) seed(email, password string, verified bool) *Identity {
	g.mu.Lock()
	defer g.mu.Unlock()

	u := &fakeUser{uid: uuid.NewString(), password: password, verified: verified}
	g.users[email] = u
	return &Identity{UID: u.uid, Email: email, Verified: verified}
}

func (g *fakeGateway) setVerified(email string, verified bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if u, ok := g.users[email]; ok {
		u.verified = verified
	}
}

func (g *fakeGateway) CreateIdentity(_ context.Context, email, password string) (*Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	if _, exists := g.users[email]; exists {
		return nil, &GatewayError{Code: CodeEmailInUse, Message: "email already registered"}
	}
	u := &fakeUser{uid: uuid.NewString(), password: password}
	g.users[email] = u
	return &Identity{UID: u.uid, Email: email}, nil
}

func (g *fakeGateway) UpdateDisplayName(_ context.Context, id *Identity, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.displayNameErr != nil {
		return g.displayNameErr
	}
	u, ok := g.users[id.Email]
	if !ok {
		return &GatewayError{Code: CodeUserNotFound, Message: "no such user"}
	}
	u.displayName = name
	id.DisplayName = name
	return nil
}

func (g *fakeGateway) SignIn(_ context.Context, email, password string) (*Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.signInCalls++
	if g.signInErr != nil {
		return nil, g.signInErr
	}
	u, ok := g.users[email]
	if !ok {
		return nil, &GatewayError{Code: CodeUserNotFound, Message: "no such user"}
	}
	if u.password != password {
		return nil, &GatewayError{Code: CodeWrongPassword, Message: "bad password"}
	}
	return &Identity{UID: u.uid, Email: email, DisplayName: u.displayName, Verified: u.verified}, nil
}

func (g *fakeGateway) SignOut(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.signOutCalls++
	return g.signOutErr
}

func (g *fakeGateway) Reload(_ context.Context, id *Identity) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.reloadCalls++
	if g.reloadErr != nil {
		return g.reloadErr
	}
	u, ok := g.users[id.Email]
	if !ok {
		return &GatewayError{Code: CodeUserNotFound, Message: "no such user"}
	}
	id.Verified = u.verified
	return nil
}

func (g *fakeGateway) SendVerificationEmail(_ context.Context, id *Identity) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sendVerifyCalls++
	if g.sendVerifyErr != nil {
		return g.sendVerifyErr
	}
	if _, ok := g.users[id.Email]; !ok {
		return &GatewayError{Code: CodeUserNotFound, Message: "no such user"}
	}
	return nil
}

func (g *fakeGateway) SendPasswordResetEmail(_ context.Context, email string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sendResetCalls++
	if g.sendResetErr != nil {
		return g.sendResetErr
	}
	if _, ok := g.users[email]; !ok {
		return &GatewayError{Code: CodeUserNotFound, Message: "no such user"}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Profile store fakes
// ---------------------------------------------------------------------------

// recordingProfileStore captures writes in memory.
type recordingProfileStore struct {
	mu       sync.Mutex
	profiles map[string]Profile
	err      error
}

func newRecordingProfileStore() *recordingProfileStore {
	return &recordingProfileStore{profiles: make(map[string]Profile)}
}

func (s *recordingProfileStore) WriteProfile(_ context.Context, uid string, profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.profiles[uid] = profile
	return nil
}

func (s *recordingProfileStore) get(uid string) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[uid]
	return p, ok
}

// blockingProfileStore never completes until released.
type blockingProfileStore struct {
	release chan struct{}
	entered chan struct{}
	once    sync.Once
}

func newBlockingProfileStore() *blockingProfileStore {
	return &blockingProfileStore{
		release: make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
}

func (s *blockingProfileStore) WriteProfile(ctx context.Context, _ string, _ Profile) error {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *blockingProfileStore) unblock() {
	s.once.Do(func() {
		close(s.release)
	})
}
