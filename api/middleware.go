package api

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/shift-handover/config"
)

const tokenTTL = 12 * time.Hour

var errInvalidCredentials = errors.New("invalid credentials")

// Guard authenticates requests with basic auth or a bearer token issued by
// CreateToken. A Guard built from an AuthConfig without credentials lets
// every request through.
type Guard struct {
	conf          config.AuthConfig
	authenticator auth.Authenticator
	cache         store.Cache
}

// NewGuard sets up go-guardian for the configured user. The token cache is
// swept until ctx is done.
func NewGuard(ctx context.Context, conf config.AuthConfig) *Guard {
	g := &Guard{conf: conf}
	if !conf.Enabled() {
		return g
	}

	g.authenticator = auth.New()
	g.cache = store.NewFIFO(ctx, tokenTTL)
	basicStrategy := basic.New(g.ValidateUser, g.cache)
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, g.cache)

	g.authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
	g.authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
	return g
}

// Enabled reports whether requests are checked
func (g *Guard) Enabled() bool {
	return g.authenticator != nil
}

// Middleware rejects unauthenticated requests with 401
func (g *Guard) Middleware(next http.Handler) http.Handler {
	if !g.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.authenticator.Authenticate(r)
		if err != nil {
			zap.S().Warnw("unauthorized",
				"url", r.URL.Path,
				"requestId", RequestID(r.Context()))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugw("user authenticated", "user", user.UserName())
		next.ServeHTTP(w, r)
	})
}

// CreateToken issues a bearer token for a request that passed basic auth
func (g *Guard) CreateToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	username, _, ok := r.BasicAuth()
	if !ok {
		config.ErrorStatus("basic auth required", http.StatusUnauthorized, w, nil)
		return
	}

	token := uuid.New().String()
	authUser := auth.NewDefaultUser(username, "1", nil, nil)
	tokenStrategy := g.authenticator.Strategy(bearer.CachedStrategyKey)
	if err := auth.Append(tokenStrategy, token, authUser, r); err != nil {
		config.ErrorStatus("failed to store token", http.StatusInternalServerError, w, err)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]string{
		"token": token,
	})
}

// RevokeToken drops the bearer token of the request
func (g *Guard) RevokeToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	reqToken, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || reqToken == "" {
		config.ErrorStatus("bearer token required", http.StatusBadRequest, w, nil)
		return
	}

	tokenStrategy := g.authenticator.Strategy(bearer.CachedStrategyKey)
	if err := auth.Revoke(tokenStrategy, reqToken, r); err != nil {
		config.ErrorStatus("failed to revoke token", http.StatusInternalServerError, w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"revoked": reqToken,
	})
}

// ValidateUser checks basic credentials against the configured user
func (g *Guard) ValidateUser(ctx context.Context, r *http.Request, username, password string) (auth.Info, error) {
	usernameHash := sha256.Sum256([]byte(username))
	expectedUsernameHash := sha256.Sum256([]byte(g.conf.Username))
	usernameMatch := subtle.ConstantTimeCompare(usernameHash[:], expectedUsernameHash[:]) == 1

	err := bcrypt.CompareHashAndPassword([]byte(g.conf.PasswordHash), []byte(password))
	if err != nil || !usernameMatch {
		return nil, errInvalidCredentials
	}
	return auth.NewDefaultUser(username, "1", nil, nil), nil
}
