package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/agritrack/internal/common"
	"github.com/dmitrijs2005/agritrack/internal/logging"
	"github.com/dmitrijs2005/agritrack/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithAuth(header string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/forecast/get-allTypes", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	return r
}

func TestAuthorize(t *testing.T) {
	tokens := auth.NewTokenService([]byte(testSecret), time.Hour)
	other := auth.NewTokenService([]byte("other-secret"), time.Hour)
	expired := auth.NewTokenService([]byte(testSecret), time.Nanosecond)

	good, err := tokens.Issue("1", "a@b.c", "farmer")
	require.NoError(t, err)
	forged, err := other.Issue("1", "a@b.c", "admin")
	require.NoError(t, err)
	old, err := expired.Issue("1", "a@b.c", "farmer")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	gate := NewGate(tokens, nil, logging.Nop())

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"missing header", "", common.ErrAuthMissing},
		{"empty bearer", "Bearer ", common.ErrAuthMissing},
		{"wrong scheme", "Basic " + good, common.ErrInvalidToken},
		{"no scheme", good, common.ErrInvalidToken},
		{"garbage", "Bearer not.a.jwt", common.ErrInvalidToken},
		{"other secret", "Bearer " + forged, common.ErrInvalidToken},
		{"expired", "Bearer " + old, common.ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := gate.Authorize(requestWithAuth(tt.header))
			assert.Nil(t, id)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	id, err := gate.Authorize(requestWithAuth("bearer " + good))
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", id.Email)
	assert.Equal(t, "farmer", id.Role)
}

func TestAuthorize_Revoked(t *testing.T) {
	tokens := auth.NewTokenService([]byte(testSecret), time.Hour)
	tok, err := tokens.Issue("1", "a@b.c", "farmer")
	require.NoError(t, err)
	id, err := tokens.Verify(tok)
	require.NoError(t, err)

	revs := &fakeRevocationList{revoked: map[string]bool{id.TokenID: true}}
	gate := NewGate(tokens, revs, logging.Nop())

	_, err = gate.Authorize(requestWithAuth("Bearer " + tok))
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	revs.revoked = map[string]bool{}
	revs.err = errors.New("redis down")
	_, err = gate.Authorize(requestWithAuth("Bearer " + tok))
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestMiddleware_PassesIdentity(t *testing.T) {
	tokens := auth.NewTokenService([]byte(testSecret), time.Hour)
	tok, err := tokens.Issue("9", "owner@b.c", "admin")
	require.NoError(t, err)

	var got *auth.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	h := NewGate(tokens, nil, logging.Nop()).Middleware(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithAuth("Bearer "+tok))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "owner@b.c", got.Email)
	assert.Equal(t, "admin", got.Role)
}

func TestMiddleware_RejectsWithReason(t *testing.T) {
	tokens := auth.NewTokenService([]byte(testSecret), time.Hour)
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	h := NewGate(tokens, nil, logging.Nop()).Middleware(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithAuth(""))
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authorization token missing.","code":"missing"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithAuth("Bearer junk"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"invalid"`)
}
