// Package signer attaches authentication material to outgoing requests:
// the bearer token, the rotating auth nonce and the session affinity id.
package signer

import (
	"context"
	"net/http"

	"github.com/meshchat/meshchat-go-sdk/chat/session"
)

// Wire header names of the chat service's authentication contract.
const (
	HeaderAuthorization   = "Authorization"
	HeaderRequestID       = "X-Meshchat-Request-Id"
	HeaderAuthNonce       = "X-Meshchat-Auth-Nonce"
	HeaderSessionAffinity = "X-Meshchat-Session-Affinity"
)

// SigningContext is the signing state of one attempt. The dispatcher builds
// a fresh one per attempt with a fresh session snapshot, so a nonce rotated
// by a previous attempt's response is always picked up.
type SigningContext struct {
	Request *http.Request

	// State is the session snapshot taken immediately before this attempt.
	State session.State

	// Token is the bearer token for authenticated operations; empty for
	// unauthenticated ones.
	Token string

	// RequestID is reused across every attempt of one logical call.
	RequestID string

	// SessionHeaders lists which session headers the operation carries.
	// Headers outside this list are left untouched.
	SessionHeaders []string
}

type Signer interface {
	Sign(ctx context.Context, signingCtx *SigningContext) error
}

// NonceSigner implements the nonce-echo scheme: every attempt presents the
// latest committed nonce and, once assigned, the session affinity id.
type NonceSigner struct{}

func (NonceSigner) Sign(ctx context.Context, signingCtx *SigningContext) error {
	request := signingCtx.Request

	if signingCtx.Token != "" {
		request.Header.Set(HeaderAuthorization, "Bearer "+signingCtx.Token)
	}
	if signingCtx.RequestID != "" {
		request.Header.Set(HeaderRequestID, signingCtx.RequestID)
	}

	for _, name := range signingCtx.SessionHeaders {
		switch name {
		case HeaderAuthNonce:
			request.Header.Set(HeaderAuthNonce, signingCtx.State.AuthNonce)
		case HeaderSessionAffinity:
			if signingCtx.State.AffinityID != "" {
				request.Header.Set(HeaderSessionAffinity, signingCtx.State.AffinityID)
			}
		}
	}

	return nil
}
