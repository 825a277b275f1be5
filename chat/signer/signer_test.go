package signer

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshchat/meshchat-go-sdk/chat/session"
)

func newRequest(t *testing.T) *http.Request {
	req, err := http.NewRequest("POST", "http://chat.example.com/v1/sessions", nil)
	require.NoError(t, err)
	return req
}

func TestNonceSignerSignsAuthenticatedRequest(t *testing.T) {
	req := newRequest(t)
	err := NonceSigner{}.Sign(context.Background(), &SigningContext{
		Request:        req,
		State:          session.State{AffinityID: "aff-1", AuthNonce: "n1"},
		Token:          "token-123",
		RequestID:      "req-1",
		SessionHeaders: []string{HeaderAuthNonce, HeaderSessionAffinity},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer token-123", req.Header.Get(HeaderAuthorization))
	assert.Equal(t, "req-1", req.Header.Get(HeaderRequestID))
	assert.Equal(t, "n1", req.Header.Get(HeaderAuthNonce))
	assert.Equal(t, "aff-1", req.Header.Get(HeaderSessionAffinity))
}

func TestNonceSignerSkipsHeadersOutsideList(t *testing.T) {
	req := newRequest(t)
	err := NonceSigner{}.Sign(context.Background(), &SigningContext{
		Request: req,
		State:   session.State{AffinityID: "aff-1", AuthNonce: "n1"},
	})
	require.NoError(t, err)

	assert.Empty(t, req.Header.Get(HeaderAuthNonce))
	assert.Empty(t, req.Header.Get(HeaderSessionAffinity))
	assert.Empty(t, req.Header.Get(HeaderAuthorization))
}

func TestNonceSignerOmitsUnassignedAffinity(t *testing.T) {
	req := newRequest(t)
	err := NonceSigner{}.Sign(context.Background(), &SigningContext{
		Request:        req,
		State:          session.State{AuthNonce: "n1"},
		SessionHeaders: []string{HeaderAuthNonce, HeaderSessionAffinity},
	})
	require.NoError(t, err)

	assert.Equal(t, "n1", req.Header.Get(HeaderAuthNonce))
	_, present := req.Header[HeaderSessionAffinity]
	assert.False(t, present)
}

func TestNonceSignerRefreshesRotatedNonce(t *testing.T) {
	req := newRequest(t)
	s := NonceSigner{}

	sign := func(state session.State) {
		err := s.Sign(context.Background(), &SigningContext{
			Request:        req,
			State:          state,
			SessionHeaders: []string{HeaderAuthNonce},
		})
		require.NoError(t, err)
	}

	sign(session.State{AuthNonce: "n1"})
	assert.Equal(t, "n1", req.Header.Get(HeaderAuthNonce))

	// Re-signing the request for a retry overwrites, not appends.
	sign(session.State{AuthNonce: "n2"})
	assert.Equal(t, "n2", req.Header.Get(HeaderAuthNonce))
	assert.Len(t, req.Header.Values(HeaderAuthNonce), 1)
}
