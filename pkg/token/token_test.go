package token

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu        sync.Mutex
	creds     map[uint]*Credential
	findErr   error
	updateErr error
}

func newMemStore(creds ...*Credential) *memStore {
	m := &memStore{creds: map[uint]*Credential{}}
	for _, c := range creds {
		cp := *c
		m.creds[c.ID] = &cp
	}
	return m
}

func (m *memStore) FindByID(_ context.Context, id uint) (*Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.creds[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) UpdateRefreshToken(_ context.Context, id uint, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if c, ok := m.creds[id]; ok {
		c.RefreshToken = value
	}
	return nil
}

func testService(t *testing.T, store CredentialStore) *Service {
	t.Helper()
	svc, err := NewService(Config{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Issuer:        "vidtube-test",
	}, store)
	require.NoError(t, err)
	return svc
}

func TestNewServiceRejectsSharedSecret(t *testing.T) {
	_, err := NewService(Config{
		AccessSecret:  []byte("same"),
		RefreshSecret: []byte("same"),
	}, newMemStore())
	assert.Error(t, err)
}

func TestNewServiceRequiresSecrets(t *testing.T) {
	_, err := NewService(Config{}, newMemStore())
	assert.Error(t, err)
}

func TestIssuePairPersistsRefreshSlot(t *testing.T) {
	store := newMemStore(&Credential{ID: 1, Username: "alice"})
	svc := testService(t, store)

	pair, err := svc.IssuePair(context.Background(), 1, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	cred, _ := store.FindByID(context.Background(), 1)
	assert.Equal(t, pair.Refresh, cred.RefreshToken)
}

func TestVerifyAccess(t *testing.T) {
	store := newMemStore(&Credential{ID: 7, Username: "bob"})
	svc := testService(t, store)

	pair, err := svc.IssuePair(context.Background(), 7, "bob")
	require.NoError(t, err)

	claims, err := svc.VerifyAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "bob", claims.Username)
}

func TestVerifyAccessRejectsRefreshToken(t *testing.T) {
	store := newMemStore(&Credential{ID: 7, Username: "bob"})
	svc := testService(t, store)

	pair, err := svc.IssuePair(context.Background(), 7, "bob")
	require.NoError(t, err)

	// signed with the other secret, must not verify as access
	_, err = svc.VerifyAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyAccessRejectsGarbage(t *testing.T) {
	svc := testService(t, newMemStore())
	_, err := svc.VerifyAccess("not.a.jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyAccessRejectsExpired(t *testing.T) {
	store := newMemStore(&Credential{ID: 3, Username: "carol"})
	svc, err := NewService(Config{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		AccessTTL:     -time.Minute,
		RefreshTTL:    time.Hour,
	}, store)
	require.NoError(t, err)
	// negative TTL falls back to the default, so sign one directly
	expired, err := svc.sign(3, "carol", svc.cfg.AccessSecret, -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyAccess(expired)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRotateExchangesAndRevokesOld(t *testing.T) {
	store := newMemStore(&Credential{ID: 1, Username: "alice"})
	svc := testService(t, store)
	ctx := context.Background()

	first, err := svc.IssuePair(ctx, 1, "alice")
	require.NoError(t, err)

	second, err := svc.Rotate(ctx, first.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, first.Refresh, second.Refresh)

	cred, _ := store.FindByID(ctx, 1)
	assert.Equal(t, second.Refresh, cred.RefreshToken)

	// replaying the rotated-out token must fail with the generic error
	_, err = svc.Rotate(ctx, first.Refresh)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// the new token still works
	_, err = svc.Rotate(ctx, second.Refresh)
	assert.NoError(t, err)
}

// Storage failures during rotation are real errors, not bad credentials:
// they must never read as ErrUnauthorized or the caller will answer 401 for
// a database outage.
func TestRotateSurfacesStoreFailures(t *testing.T) {
	store := newMemStore(&Credential{ID: 1, Username: "alice"})
	svc := testService(t, store)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, 1, "alice")
	require.NoError(t, err)

	store.mu.Lock()
	store.updateErr = errors.New("pq: connection refused")
	store.mu.Unlock()
	_, err = svc.Rotate(ctx, pair.Refresh)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)

	store.mu.Lock()
	store.updateErr = nil
	store.findErr = errors.New("pq: connection refused")
	store.mu.Unlock()
	_, err = svc.Rotate(ctx, pair.Refresh)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestRotateRejectsUnknownIdentity(t *testing.T) {
	store := newMemStore(&Credential{ID: 1, Username: "alice"})
	svc := testService(t, store)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, 1, "alice")
	require.NoError(t, err)

	delete(store.creds, 1)
	_, err = svc.Rotate(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRevokeBlocksRotation(t *testing.T) {
	store := newMemStore(&Credential{ID: 1, Username: "alice"})
	svc := testService(t, store)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, 1, "alice")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, 1))

	_, err = svc.Rotate(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// access token keeps working until natural expiry
	_, err = svc.VerifyAccess(pair.Access)
	assert.NoError(t, err)
}

// A second login revokes the first session's refresh token: the slot holds
// exactly one token per identity.
func TestSecondLoginEvictsFirstRefresh(t *testing.T) {
	store := newMemStore(&Credential{ID: 1, Username: "alice"})
	svc := testService(t, store)
	ctx := context.Background()

	laptop, err := svc.IssuePair(ctx, 1, "alice")
	require.NoError(t, err)
	phone, err := svc.IssuePair(ctx, 1, "alice")
	require.NoError(t, err)

	_, err = svc.Rotate(ctx, laptop.Refresh)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Rotate(ctx, phone.Refresh)
	assert.NoError(t, err)
}

// Two pairs issued back to back inside the same second must still carry
// distinct refresh tokens, or replay detection silently breaks.
func TestRefreshTokensAreUnique(t *testing.T) {
	store := newMemStore(&Credential{ID: 1, Username: "alice"})
	svc := testService(t, store)
	ctx := context.Background()

	a, err := svc.IssuePair(ctx, 1, "alice")
	require.NoError(t, err)
	b, err := svc.IssuePair(ctx, 1, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, a.Refresh, b.Refresh)
}
