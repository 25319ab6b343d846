// Package token issues, verifies and rotates the access/refresh token pair.
//
// Access tokens are stateless: verification is signature plus expiry and
// never touches storage, so a stolen access token stays usable until its
// short natural expiry. Refresh tokens are persisted into a single slot on
// the credential record; issuing a new pair overwrites the slot, which
// revokes the previous refresh token. The slot doubles as a size-1
// revocation list: "logout everywhere" and stolen-refresh-token detection
// are one equality check, at the cost of one concurrent session per
// identity.
package token

import (
	"bytes"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrUnauthorized is returned for every verification or rotation failure.
// The message is deliberately generic: a rotated-out refresh token must be
// indistinguishable from one that never existed.
var ErrUnauthorized = errors.New("invalid or expired token")

// Credential is the slice of an identity the token service needs.
type Credential struct {
	ID           uint
	Username     string
	RefreshToken string
}

// CredentialStore is the persistence contract. UpdateRefreshToken must be an
// atomic single-record write; the refresh slot is mutated through this
// interface only.
type CredentialStore interface {
	FindByID(ctx context.Context, id uint) (*Credential, error)
	UpdateRefreshToken(ctx context.Context, id uint, value string) error
}

type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Claims carried by both token kinds. Refresh tokens omit Username.
type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Pair is one issued access/refresh token pair.
type Pair struct {
	Access  string `json:"accessToken"`
	Refresh string `json:"refreshToken"`
}

type Service struct {
	cfg   Config
	store CredentialStore
}

func NewService(cfg Config, store CredentialStore) (*Service, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token: both signing secrets are required")
	}
	if bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, errors.New("token: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if store == nil {
		return nil, errors.New("token: credential store is required")
	}
	return &Service{cfg: cfg, store: store}, nil
}

// IssuePair signs a fresh access/refresh pair for the identity and persists
// the refresh token into the credential slot, revoking any prior refresh
// token for that identity.
func (s *Service) IssuePair(ctx context.Context, id uint, username string) (Pair, error) {
	access, err := s.sign(id, username, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.signRefresh(id)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	if err := s.store.UpdateRefreshToken(ctx, id, refresh); err != nil {
		return Pair{}, fmt.Errorf("persist refresh token: %w", err)
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// VerifyAccess checks signature and expiry of an access token. It never
// touches storage.
func (s *Service) VerifyAccess(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, s.cfg.AccessSecret)
}

// Rotate exchanges a valid refresh token for a new pair. The presented value
// must exactly equal the stored slot; a mismatch means the token was rotated
// out or revoked (a replayed token), and fails the same way as any other bad
// token.
func (s *Service) Rotate(ctx context.Context, presented string) (Pair, error) {
	claims, err := s.parse(presented, s.cfg.RefreshSecret)
	if err != nil {
		return Pair{}, err
	}
	cred, err := s.store.FindByID(ctx, claims.UserID)
	if err != nil {
		return Pair{}, fmt.Errorf("load credential: %w", err)
	}
	if cred == nil {
		return Pair{}, ErrUnauthorized
	}
	if cred.RefreshToken == "" ||
		subtle.ConstantTimeCompare([]byte(cred.RefreshToken), []byte(presented)) != 1 {
		return Pair{}, ErrUnauthorized
	}
	return s.IssuePair(ctx, cred.ID, cred.Username)
}

// Revoke clears the refresh slot so no rotation can succeed until the next
// login.
func (s *Service) Revoke(ctx context.Context, id uint) error {
	return s.store.UpdateRefreshToken(ctx, id, "")
}

// AccessTTL reports the configured access token lifetime, used for cookie
// expiry.
func (s *Service) AccessTTL() time.Duration { return s.cfg.AccessTTL }

// RefreshTTL reports the configured refresh token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

func (s *Service) sign(id uint, username string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   id,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// signRefresh adds a unique jti so two rotations inside the same second never
// produce equal token strings; slot comparison in Rotate depends on that.
func (s *Service) signRefresh(id uint) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.RefreshSecret)
}

func (s *Service) parse(tokenStr string, secret []byte) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.UserID == 0 {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
