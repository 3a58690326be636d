package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/agritrack/internal/common"
	"github.com/dmitrijs2005/agritrack/internal/logging"
	"github.com/dmitrijs2005/agritrack/internal/server/auth"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Gate authorizes requests carrying a bearer token. The identity it
// establishes is the only one handlers may act as.
type Gate struct {
	tokens      TokenVerifier
	revocations RevocationChecker
	logger      logging.Logger
}

// NewGate returns a Gate. revocations may be nil, in which case logged-out
// tokens stay valid until they expire.
func NewGate(tokens TokenVerifier, revocations RevocationChecker, l logging.Logger) *Gate {
	return &Gate{tokens: tokens, revocations: revocations, logger: l.With("module", "gate")}
}

// Authorize extracts and verifies the bearer token of r.
func (g *Gate) Authorize(r *http.Request) (*auth.Identity, error) {
	token, err := bearerToken(r)
	if err != nil {
		return nil, err
	}

	id, err := g.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	if g.revocations != nil && id.TokenID != "" {
		revoked, err := g.revocations.IsRevoked(r.Context(), id.TokenID)
		if err != nil {
			return nil, fmt.Errorf("%w: revocation check: %v", common.ErrStorage, err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: revoked", common.ErrInvalidToken)
		}
	}
	return id, nil
}

// Middleware rejects unauthorized requests and passes the identity to next
// through the request context.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Authorize(r)
		if err != nil {
			respondWithError(w, r, g.logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get(common.AuthorizationHeaderName))
	if header == "" {
		return "", common.ErrAuthMissing
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", fmt.Errorf("%w: malformed authorization header", common.ErrInvalidToken)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.ErrAuthMissing
	}
	return token, nil
}
