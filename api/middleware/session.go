package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sisterblooms/storefront-backend/api/responses"
	pkgAuth "github.com/sisterblooms/storefront-backend/pkg/auth"
	"github.com/sisterblooms/storefront-backend/pkg/config"
	pkgerrors "github.com/sisterblooms/storefront-backend/pkg/errors"
	"github.com/sisterblooms/storefront-backend/pkg/kv"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
)

const (
	// SessionHeader carries the guest token for clients that do not keep cookies.
	SessionHeader = "X-Session-Token"
	// TabHeader identifies the browser tab so it is not told about its own writes.
	TabHeader = "X-Tab-Id"
)

// Session resolves the shopper's guest session from the token header or
// cookie. Missing, invalid and half-expired tokens are replaced; the current
// token is always echoed back in the header.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return sessionWithClock(cfg, logg, time.Now)
}

func sessionWithClock(cfg config.SessionConfig, logg *logger.Logger, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := readToken(r, cfg.CookieName)

			sessionID := uuid.Nil
			reissue := true
			if token != "" {
				claims, err := pkgAuth.ParseGuestToken(cfg, token)
				switch {
				case err != nil:
					if logg != nil {
						logg.Debug(logg.WithField(ctx, "reason", err.Error()), "session.token.rejected")
					}
				default:
					sessionID = claims.SessionID
					reissue = pkgAuth.ShouldRenew(claims, now())
				}
			}

			if reissue {
				signed, claims, err := pkgAuth.MintGuestToken(cfg, now(), sessionID)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue session"))
					return
				}
				sessionID = claims.SessionID
				token = signed
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    signed,
					Path:     "/",
					Expires:  claims.ExpiresAt.Time,
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(SessionHeader, token)

			sid := sessionID.String()
			ctx = WithSessionID(ctx, sid)
			if tab := strings.TrimSpace(r.Header.Get(TabHeader)); tab != "" {
				ctx = kv.WithOrigin(ctx, tab)
			}
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sid)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func readToken(r *http.Request, cookieName string) string {
	if raw := strings.TrimSpace(r.Header.Get(SessionHeader)); raw != "" {
		return raw
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}
