package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

type ctxKey string

const ownerIDKey ctxKey = "ownerID"

// IdentityResolver extracts the authenticated owner ID from a request.
// Credential verification happens upstream (gateway or reverse proxy);
// the resolver only has to read the identity it forwarded.
type IdentityResolver interface {
	ResolveOwner(r *http.Request) (string, error)
}

// HeaderIdentityResolver reads the owner ID from a trusted request header.
type HeaderIdentityResolver struct {
	// Header is the header name carrying the owner ID. Defaults to X-User-ID.
	Header string
}

// ResolveOwner implements IdentityResolver.
func (h *HeaderIdentityResolver) ResolveOwner(r *http.Request) (string, error) {
	name := h.Header
	if name == "" {
		name = "X-User-ID"
	}
	owner := strings.TrimSpace(r.Header.Get(name))
	if owner == "" {
		return "", huma.Error401Unauthorized("missing owner identity")
	}
	return owner, nil
}

// GetOwnerID returns the owner ID stored in the request context.
func GetOwnerID(ctx context.Context) (string, error) {
	ownerID, ok := ctx.Value(ownerIDKey).(string)
	if !ok || ownerID == "" {
		return "", huma.Error401Unauthorized("authentication required")
	}
	return ownerID, nil
}

func setOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// identityMiddleware resolves the caller's owner ID and stores it in the
// request context. Requests without a resolvable identity are rejected.
// Health and docs endpoints stay open.
func (s *Server) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isOpenPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		ownerID, err := s.identity.ResolveOwner(r)
		if err != nil {
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(setOwnerID(r.Context(), ownerID)))
	})
}

func isOpenPath(path string) bool {
	switch path {
	case "/healthz", "/openapi.json", "/openapi.yaml", "/docs", "/schemas":
		return true
	}
	return strings.HasPrefix(path, "/schemas/")
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"code":"UNAUTHORIZED","message":"authentication required"}`))
}
