package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// Principal is the authenticated caller derived from the access token.
type Principal struct {
	UserID string
	Name   string
	Roles  []string
}

type principalKeyType struct{}

var principalKey principalKeyType

func contextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func principalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

var publicPaths = []string{
	"/api/auth/register",
	"/api/auth/login",
	"/api/auth/refresh",
	"/metrics",
	"/healthz",
	"/",
}

// optionalAuthPaths are readable anonymously but honor a bearer token when
// one is supplied, so owners see their own unapproved content.
var optionalAuthPrefixes = []string{
	"/api/properties",
	"/api/images/",
}

// withAuth authenticates requests with a bearer token. Public paths pass
// through untouched; optional-auth paths get a principal attached when a
// valid token is present but never reject; everything else requires a token.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		optional := isOptionalAuthPath(r.URL.Path, r.Method)

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			if optional {
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := a.tokens.ValidateAccessToken(token)
		if err != nil {
			if optional {
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := contextWithPrincipal(r.Context(), &Principal{
			UserID: claims.Subject,
			Name:   claims.Name,
			Roles:  claims.Roles,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

func isOptionalAuthPath(path string, method string) bool {
	if method != http.MethodGet {
		return false
	}
	for _, prefix := range optionalAuthPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
