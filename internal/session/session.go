// Package session keeps the ephemeral per-browser state. Sessions live in a
// bounded TTL cache and are addressed by signed tokens; nothing survives a
// restart.
package session

import (
	"fmt"
	"time"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"
	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/observability"
	"github.com/boddenberg/schemexpert-bfa-go/internal/port"
	"github.com/boddenberg/schemexpert-bfa-go/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	tokenType   = "session"
	tokenIssuer = "schemexpert-bfa"
)

// Session is one browser's application state.
type Session struct {
	ID        string
	CreatedAt time.Time
	App       *service.App
}

// Claims are the custom claims of a session token.
type Claims struct {
	Sub  string `json:"sub"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// Store creates and resolves sessions.
type Store struct {
	cache   port.Cache[*Session]
	secret  []byte
	ttl     time.Duration
	newApp  func() *service.App
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewStore wires the store. cache must expire entries after ttl.
func NewStore(cache port.Cache[*Session], secret string, ttl time.Duration, newApp func() *service.App, metrics *observability.Metrics, logger *zap.Logger) *Store {
	return &Store{
		cache:   cache,
		secret:  []byte(secret),
		ttl:     ttl,
		newApp:  newApp,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Create starts a new session and returns it with its token.
func (s *Store) Create() (*Session, string, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: s.now(),
		App:       s.newApp(),
	}

	token, err := s.sign(sess.ID, sess.CreatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}

	s.cache.Set(sess.ID, sess)
	s.metrics.SetActiveSessions(s.cache.Len())
	s.logger.Debug("session created", zap.String("session_id", sess.ID))
	return sess, token, nil
}

// Resolve returns the session a token points to. Invalid, expired and
// evicted sessions all yield ErrUnauthorized.
func (s *Store) Resolve(tokenString string) (*Session, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	sess, ok := s.cache.Get(claims.Sub)
	if !ok {
		return nil, &domain.ErrUnauthorized{Message: "session expired or unknown"}
	}
	return sess, nil
}

// Parse validates a session token and returns its claims.
func (s *Store) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired session token"}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid session token"}
	}
	if claims.Type != tokenType || claims.Sub == "" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}
	return claims, nil
}

// Delete ends a session.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
	s.metrics.SetActiveSessions(s.cache.Len())
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	n := s.cache.Len()
	s.metrics.SetActiveSessions(n)
	return n
}

func (s *Store) sign(id string, now time.Time) (string, error) {
	claims := Claims{
		Sub:  id,
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
