package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgAuth "github.com/sisterblooms/storefront-backend/pkg/auth"
	"github.com/sisterblooms/storefront-backend/pkg/config"
	"github.com/sisterblooms/storefront-backend/pkg/kv"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:     "test-secret",
		Issuer:     "sister-blooms",
		TTL:        24 * time.Hour,
		CookieName: "sb_session",
		Secure:     true,
	}
}

type captured struct {
	sessionID string
	tabID     string
}

func captureHandler(out *captured) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out.sessionID = SessionIDFromContext(r.Context())
		out.tabID = TabIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestSessionIssuesTokenWhenMissing(t *testing.T) {
	var got captured
	h := Session(testSessionConfig(), logger.Nop())(captureHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(TabHeader, "tab-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	token := rec.Header().Get(SessionHeader)
	require.NotEmpty(t, token)

	claims, err := pkgAuth.ParseGuestToken(testSessionConfig(), token)
	require.NoError(t, err)
	assert.Equal(t, claims.SessionID.String(), got.sessionID)
	assert.Equal(t, "tab-1", got.tabID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sb_session", cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestSessionKeepsValidToken(t *testing.T) {
	cfg := testSessionConfig()
	sid := uuid.New()
	token, _, err := pkgAuth.MintGuestToken(cfg, time.Now(), sid)
	require.NoError(t, err)

	var got captured
	h := Session(cfg, nil)(captureHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, sid.String(), got.sessionID)
	assert.Equal(t, token, rec.Header().Get(SessionHeader))
	assert.Empty(t, rec.Result().Cookies(), "a fresh token is not reissued")
	assert.Empty(t, got.tabID)
}

func TestSessionHeaderWinsOverCookie(t *testing.T) {
	cfg := testSessionConfig()
	headerSID, cookieSID := uuid.New(), uuid.New()
	headerToken, _, err := pkgAuth.MintGuestToken(cfg, time.Now(), headerSID)
	require.NoError(t, err)
	cookieToken, _, err := pkgAuth.MintGuestToken(cfg, time.Now(), cookieSID)
	require.NoError(t, err)

	var got captured
	h := Session(cfg, nil)(captureHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, headerToken)
	req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: cookieToken})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, headerSID.String(), got.sessionID)
}

func TestSessionRenewsAgingTokenWithSameSession(t *testing.T) {
	cfg := testSessionConfig()
	sid := uuid.New()
	issued := time.Now().Add(-18 * time.Hour)
	token, _, err := pkgAuth.MintGuestToken(cfg, issued, sid)
	require.NoError(t, err)

	var got captured
	h := Session(cfg, nil)(captureHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, sid.String(), got.sessionID)
	renewed := rec.Header().Get(SessionHeader)
	require.NotEqual(t, token, renewed)
	claims, err := pkgAuth.ParseGuestToken(cfg, renewed)
	require.NoError(t, err)
	assert.Equal(t, sid, claims.SessionID)
}

func TestSessionReplacesForgedToken(t *testing.T) {
	cfg := testSessionConfig()
	other := cfg
	other.Secret = "someone-else"
	forged, _, err := pkgAuth.MintGuestToken(other, time.Now(), uuid.New())
	require.NoError(t, err)

	var got captured
	h := Session(cfg, logger.Nop())(captureHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, forged)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.NotEmpty(t, got.sessionID)
	assert.NotEqual(t, forged, rec.Header().Get(SessionHeader))
}

func TestSessionFailsWithoutSecret(t *testing.T) {
	cfg := testSessionConfig()
	cfg.Secret = ""

	called := false
	h := Session(cfg, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type stubLimiter struct {
	allow  bool
	err    error
	scopes []string
}

func (s *stubLimiter) FixedWindowAllow(_ context.Context, scope string, _ int64, _ time.Duration) (bool, int64, error) {
	s.scopes = append(s.scopes, scope)
	return s.allow, 3, s.err
}

func TestSessionRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	withSession := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
		return req.WithContext(WithSessionID(req.Context(), "sid-1"))
	}

	t.Run("nil limiter passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SessionRateLimit("checkout", 2, time.Minute, nil, nil)(ok).ServeHTTP(rec, withSession())
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("allowed", func(t *testing.T) {
		lim := &stubLimiter{allow: true}
		rec := httptest.NewRecorder()
		SessionRateLimit("checkout", 2, time.Minute, lim, nil)(ok).ServeHTTP(rec, withSession())
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"checkout:sid-1"}, lim.scopes)
	})

	t.Run("blocked", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SessionRateLimit("checkout", 2, time.Minute, &stubLimiter{}, logger.Nop())(ok).ServeHTTP(rec, withSession())
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("limiter failure", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SessionRateLimit("checkout", 2, time.Minute, &stubLimiter{err: errors.New("redis down")}, nil)(ok).ServeHTTP(rec, withSession())
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("missing session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
		SessionRateLimit("checkout", 2, time.Minute, &stubLimiter{allow: true}, nil)(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequestIDPropagates(t *testing.T) {
	h := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(rec.Header().Get(requestIDHeader))
	assert.NoError(t, err)
}

func TestLoggingKeepsFlusher(t *testing.T) {
	var flushable bool
	h := Logging(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, flushable = w.(http.Flusher)
		w.WriteHeader(http.StatusAccepted)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, flushable)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRecovererWritesInternalError(t *testing.T) {
	h := Recoverer(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("wilted")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTabIDUsesOrigin(t *testing.T) {
	ctx := kv.WithOrigin(context.Background(), "tab-9")
	assert.Equal(t, "tab-9", TabIDFromContext(ctx))
	assert.Empty(t, SessionIDFromContext(context.Background()))
}
