package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"
	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/cache"
	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/observability"
	"github.com/boddenberg/schemexpert-bfa-go/internal/service"
	"github.com/boddenberg/schemexpert-bfa-go/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopAdvisor struct{}

func (nopAdvisor) GenerateSchemes(context.Context, domain.UserProfile) []domain.Scheme {
	return []domain.Scheme{}
}

func (nopAdvisor) GetChatResponse(context.Context, []domain.Turn, string, string) string {
	return domain.ChatOfflineReply
}

func newStore(ttl time.Duration, size int) (*session.Store, *observability.Metrics) {
	metrics := observability.NewMetrics()
	newApp := func() *service.App { return service.NewApp(nopAdvisor{}, zap.NewNop()) }
	return session.NewStore(cache.New[*session.Session](ttl, size), "test-secret", ttl, newApp, metrics, zap.NewNop()), metrics
}

func TestCreateAndResolve(t *testing.T) {
	store, metrics := newStore(time.Hour, 10)

	sess, token, err := store.Create()
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotNil(t, sess.App)

	got, err := store.Resolve(token)
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, metrics.GetGatewaySnapshot().ActiveSessions)
}

func TestSessionsAreIsolated(t *testing.T) {
	store, _ := newStore(time.Hour, 10)
	a, _, err := store.Create()
	require.NoError(t, err)
	b, _, err := store.Create()
	require.NoError(t, err)

	a.App.Start()

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, service.StageProfile, a.App.View().Stage)
	assert.Equal(t, service.StageHero, b.App.View().Stage)
}

func TestResolve_Rejects(t *testing.T) {
	store, _ := newStore(time.Hour, 10)
	_, token, err := store.Create()
	require.NoError(t, err)

	other, _ := newStore(time.Hour, 10)
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, session.Claims{Sub: "x", Type: "access"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":         "not-a-token",
		"wrong type":      foreign,
		"unknown session": mustCreateToken(t, other),
		"tampered":        token + "x",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := store.Resolve(tok)
			var unauthorized *domain.ErrUnauthorized
			assert.True(t, errors.As(err, &unauthorized), "got %v", err)
		})
	}
}

func TestResolve_EvictedSession(t *testing.T) {
	store, _ := newStore(time.Hour, 1)
	_, first, err := store.Create()
	require.NoError(t, err)
	_, second, err := store.Create()
	require.NoError(t, err)

	_, err = store.Resolve(first)
	assert.Error(t, err, "oldest session evicted by size bound")
	_, err = store.Resolve(second)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestDelete(t *testing.T) {
	store, _ := newStore(time.Hour, 10)
	sess, token, err := store.Create()
	require.NoError(t, err)

	store.Delete(sess.ID)

	_, err = store.Resolve(token)
	assert.Error(t, err)
}

func mustCreateToken(t *testing.T, s *session.Store) string {
	t.Helper()
	_, tok, err := s.Create()
	require.NoError(t, err)
	return tok
}
