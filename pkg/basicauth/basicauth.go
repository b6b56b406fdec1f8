// Package basicauth provides HTTP Basic Authentication middleware backed by
// a credential store. Hosts that embed the store wrap their handlers with
// Authenticate and read the verified identity back from the request context.
package basicauth

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"

	"github.com/marmos91/htstore/internal/logger"
	"github.com/marmos91/htstore/pkg/store"
)

// DefaultRealm is used when Authenticate is given an empty realm.
const DefaultRealm = "htstore"

// contextKey is unexported so only this package can set the identity.
type contextKey struct{}

var identityContextKey = contextKey{}

// Identity is the verified caller attached to the request context.
type Identity struct {
	Username string
	Groups   []string
}

// Member reports whether the identity belongs to the given group.
func (id *Identity) Member(group string) bool {
	return id != nil && slices.Contains(id.Groups, group)
}

// FromContext returns the identity set by Authenticate, or nil when the
// request did not pass through the middleware.
func FromContext(ctx context.Context) *Identity {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return id
}

// Authenticate returns middleware that verifies HTTP Basic credentials
// against a. Requests without credentials, or with credentials the store
// rejects, receive 401 with a WWW-Authenticate challenge for realm; store
// failures map to 503 so a transient file problem is not mistaken for a bad
// password. On success the identity is attached to the request context.
func Authenticate(a store.Authenticator, realm string) func(http.Handler) http.Handler {
	if realm == "" {
		realm = DefaultRealm
	}
	challenge := fmt.Sprintf("Basic realm=%q, charset=\"UTF-8\"", realm)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w, challenge)
				return
			}

			lc := logger.NewLogContext("basic_auth").WithUsername(username)
			lc.ClientIP = clientIP(r)
			ctx := logger.WithContext(r.Context(), lc)

			groups, ok, err := a.Authenticate(ctx, username, password)
			if err != nil {
				logger.ErrorCtx(ctx, "basic auth store failure", logger.Err(err))
				http.Error(w, "authentication unavailable", http.StatusServiceUnavailable)
				return
			}
			if !ok {
				logger.DebugCtx(ctx, "basic auth rejected",
					slog.Float64(logger.KeyDurationMs, lc.DurationMs()))
				unauthorized(w, challenge)
				return
			}

			ctx = context.WithValue(ctx, identityContextKey, &Identity{
				Username: username,
				Groups:   groups,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientIP extracts the host portion of the request's remote address.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RequireGroup returns middleware that allows only identities belonging to
// group. It must run after Authenticate: a request with no identity gets
// 401, one with the wrong groups gets 403.
func RequireGroup(group string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := FromContext(r.Context())
			if id == nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			if !id.Member(group) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// unauthorized writes the 401 challenge response.
func unauthorized(w http.ResponseWriter, challenge string) {
	w.Header().Set("WWW-Authenticate", challenge)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
