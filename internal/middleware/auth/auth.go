// Package auth resolves the authenticated owner of a request. Identity is
// asserted by an identity-aware proxy through a trusted header; requests
// without it are rejected.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	applog "fintrack/internal/log"
)

type ownerKey struct{}

// MaxOwnerLength bounds the accepted owner identifier.
const MaxOwnerLength = 256

// WithOwner returns a copy of ctx carrying ownerID.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext returns the owner stored by the middleware.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerKey{}).(string)
	return owner, ok && owner != ""
}

// ParseOwner trims and validates a header value.
func ParseOwner(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > MaxOwnerLength {
		return "", false
	}
	for _, r := range v {
		if unicode.IsControl(r) {
			return "", false
		}
	}
	return v, true
}

// Middleware reads the owner from header. When it is missing or malformed
// onMissing answers the request; by default with 401.
func Middleware(header string, onMissing func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, ok := ParseOwner(r.Header.Get(header))
			if !ok {
				slog.DebugContext(r.Context(), "Request without owner",
					applog.FieldComponent, applog.ComponentAuth,
					"header", header,
					"path", r.URL.Path)
				if onMissing != nil {
					onMissing(w, r)
				} else {
					http.Error(w, "unauthenticated", http.StatusUnauthorized)
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}
