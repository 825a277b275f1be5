package chat

import (
	"time"

	"github.com/meshchat/meshchat-go-sdk/chat/retry"
	"github.com/meshchat/meshchat-go-sdk/chat/signer"
)

// Logical operation names. The catalog is fixed; each name maps to its own
// timeout and retry policy in defaultOperationProfiles.
const (
	OpGetChatConfig      = "GetChatConfig"
	OpGetAuthToken       = "GetAuthToken"
	OpInitSession        = "InitSession"
	OpReconnectSession   = "ReconnectSession"
	OpCreateConversation = "CreateConversation"
	OpSendMessage        = "SendMessage"
	OpSendEvent          = "SendEvent"
	OpGetTranscript      = "GetTranscript"
	OpLookupConversation = "LookupConversation"
	OpCloseSession       = "CloseSession"
)

const (
	contentTypeJSON = "application/json"

	defaultTranscriptPageSize int32 = 15
	maxTranscriptPageSize     int32 = 100
)

// sessionHeaders are refreshed from the session store before every attempt
// of authenticated operations.
var sessionHeaders = []string{
	signer.HeaderAuthNonce,
	signer.HeaderSessionAffinity,
}

// operationProfile couples one operation's attempt timeout with its retry
// policy.
type operationProfile struct {
	Timeout time.Duration
	Policy  retry.Policy
}

func newProfile(timeout time.Duration, maxAttempts int, backoff time.Duration, retryOn429 bool, authed bool) operationProfile {
	return operationProfile{
		Timeout: timeout,
		Policy: retry.NewPolicy(func(p *retry.Policy) {
			p.MaxAttempts = maxAttempts
			p.Backoff = backoff
			p.RetryOn429 = retryOn429
			if authed {
				p.HeaderOverwrites = sessionHeaders
			}
		}),
	}
}

// defaultOperationProfiles returns the static operation catalog. Callers may
// override timeouts via Config but cannot add unknown operations.
func defaultOperationProfiles() map[string]operationProfile {
	return map[string]operationProfile{
		OpGetChatConfig:      newProfile(5*time.Second, 3, 500*time.Millisecond, false, false),
		OpGetAuthToken:       newProfile(8*time.Second, 4, 750*time.Millisecond, true, false),
		OpInitSession:        newProfile(10*time.Second, 2, time.Second, true, true),
		OpReconnectSession:   newProfile(5*time.Second, 2, 500*time.Millisecond, false, true),
		OpCreateConversation: newProfile(10*time.Second, 2, time.Second, true, true),
		OpSendMessage:        newProfile(8*time.Second, 2, 500*time.Millisecond, true, true),
		OpSendEvent:          newProfile(5*time.Second, 1, 500*time.Millisecond, false, true),
		OpGetTranscript:      newProfile(8*time.Second, 3, 500*time.Millisecond, true, true),
		OpLookupConversation: newProfile(5*time.Second, 2, 500*time.Millisecond, false, true),
		OpCloseSession:       newProfile(5*time.Second, 3, 500*time.Millisecond, false, true),
	}
}
