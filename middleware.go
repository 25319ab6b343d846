package main

import (
	"strings"
	"time"

	"vidtube/pkg/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"

	ctxPrincipalKey = "vidtube/principal"
)

// principal is the typed identity attached to a call by the session
// middleware. It lives for the duration of one request only.
type principal struct {
	ID       uint
	Username string
}

// currentUser returns the identity the session middleware resolved for this
// call, if any.
func currentUser(c *gin.Context) (principal, bool) {
	v, ok := c.Get(ctxPrincipalKey)
	if !ok {
		return principal{}, false
	}
	p, ok := v.(principal)
	return p, ok
}

// bearerToken extracts the access token from the cookie or the
// Authorization header; either form is accepted.
func bearerToken(c *gin.Context) string {
	if v, err := c.Cookie(accessCookie); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// requireAuth rejects the call before any handler runs unless a valid access
// token resolves to an identity that still exists. Every failure mode gets
// the same generic message.
func (a *app) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := a.resolve(c)
		if err != nil {
			a.abortErr(c, apperr.New(apperr.Unauthorized, "please login to access this route"))
			return
		}
		c.Set(ctxPrincipalKey, p)
		c.Next()
	}
}

// optionalAuth attaches the identity when a valid token is present and
// otherwise lets the call through unauthenticated.
func (a *app) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, err := a.resolve(c); err == nil {
			c.Set(ctxPrincipalKey, p)
		}
		c.Next()
	}
}

func (a *app) resolve(c *gin.Context) (principal, error) {
	raw := bearerToken(c)
	if raw == "" {
		return principal{}, apperr.New(apperr.Unauthorized, "missing credentials")
	}
	claims, err := a.tokens.VerifyAccess(raw)
	if err != nil {
		return principal{}, err
	}
	cred, err := a.creds.FindByID(c.Request.Context(), claims.UserID)
	if err != nil || cred == nil {
		return principal{}, apperr.New(apperr.Unauthorized, "unknown identity")
	}
	return principal{ID: cred.ID, Username: cred.Username}, nil
}

// requestLogger writes one structured line per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
