package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshchat/meshchat-go-sdk/chat/retry"
	"github.com/meshchat/meshchat-go-sdk/chat/signer"
	"github.com/meshchat/meshchat-go-sdk/chat/telemetry"
)

func testSetupMockServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func testClient(t *testing.T, endpoint string, optFns ...func(*Options)) *Client {
	t.Helper()
	cfg := LoadDefaultConfig().WithEndpoint(endpoint)
	optFns = append([]func(*Options){testFastRetries}, optFns...)
	client, err := NewClient(cfg, optFns...)
	require.NoError(t, err)
	return client
}

// testFastRetries shrinks every backoff so retry tests stay quick.
func testFastRetries(o *Options) {
	for name, profile := range o.OperationProfiles {
		profile.Policy.Backoff = 5 * time.Millisecond
		o.OperationProfiles[name] = profile
	}
}

// requestRecorder captures per-attempt request data under a lock.
type requestRecorder struct {
	mu         sync.Mutex
	nonces     []string
	requestIDs []string
	affinities []string
	count      int
}

func (r *requestRecorder) record(req *http.Request) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nonces = append(r.nonces, req.Header.Get(signer.HeaderAuthNonce))
	r.requestIDs = append(r.requestIDs, req.Header.Get(signer.HeaderRequestID))
	r.affinities = append(r.affinities, req.Header.Get(signer.HeaderSessionAffinity))
	r.count++
	return r.count
}

func (r *requestRecorder) snapshot() requestRecorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return requestRecorder{
		nonces:     append([]string{}, r.nonces...),
		requestIDs: append([]string{}, r.requestIDs...),
		affinities: append([]string{}, r.affinities...),
		count:      r.count,
	}
}

func TestRetrySequence429ThenSuccess(t *testing.T) {
	rec := &requestRecorder{}
	server := testSetupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := rec.record(r)
		if n <= 2 {
			w.WriteHeader(429)
			w.Write([]byte(`{"code":"Throttled","message":"slow down"}`))
			return
		}
		w.WriteHeader(200)
		w.Write([]byte(`{"messageId":"m-1","absoluteTime":"2026-08-29T10:00:00Z"}`))
	})

	// SendMessage retries on 429 with maxAttempts 2: attempts 429, 429, 200.
	client := testClient(t, server.URL)
	result, err := client.SendMessage(context.Background(), &SendMessageRequest{
		ParticipantToken: Ptr("tok"),
		ConversationId:   Ptr("conv-1"),
		Content:          Ptr("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "m-1", ToString(result.MessageId))
	assert.Equal(t, 3, rec.snapshot().count)
	assert.Equal(t, 3, result.OpMetadata.Get(OpMetaKeyAttempts))
}

func TestNoRetryOn429WithoutOptIn(t *testing.T) {
	rec := &requestRecorder{}
	server := testSetupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.WriteHeader(429)
		w.Write([]byte(`{"code":"Throttled","message":"slow down"}`))
	})

	// GetChatConfig has retry budget left but does not retry 429.
	client := testClient(t, server.URL)
	_, err := client.GetChatConfig(context.Background(), nil)
	require.Error(t, err)

	var serr *ServiceError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 429, serr.StatusCode)
	assert.Equal(t, "Throttled", serr.Code)
	assert.Equal(t, 1, rec.snapshot().count)
}

func TestMaxAttemptsHardCeiling(t *testing.T) {
	rec := &requestRecorder{}
	server := testSetupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.WriteHeader(500)
		w.Write([]byte(`{"code":"InternalError","message":"boom"}`))
	})

	// CloseSession allows 3 retries: exactly 4 requests, then the last
	// classified failure surfaces.
	client := testClient(t, server.URL)
	_, err := client.CloseSession(context.Background(), &CloseSessionRequest{
		ParticipantToken: Ptr("tok"),
	})
	require.Error(t, err)
	assert.Equal(t, 4, rec.snapshot().count)

	var oerr *OperationError
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, OpCloseSession, oerr.OperationName)
	var serr *ServiceError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 500, serr.StatusCode)
}

func TestRotatedNoncePresentedOnRetry(t *testing.T) {
	rec := &requestRecorder{}
	server := testSetupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := rec.record(r)
		if n == 1 {
			// Failing response still rotates the nonce.
			w.Header().Set(signer.HeaderAuthNonce, "n2")
			w.WriteHeader(500)
			w.Write([]byte(`{"code":"InternalError","message":"boom"}`))
			return
		}
		w.WriteHeader(200)
		w.Write([]byte(`{"messageId":"m-1"}`))
	})

	client := testClient(t, server.URL)
	_, err := client.SendMessage(context.Background(), &SendMessageRequest{
		ParticipantToken: Ptr("tok"),
		ConversationId:   Ptr("conv-1"),
		Content:          Ptr("hello"),
	})
	require.NoError(t, err)

	got := rec.snapshot()
	require.Equal(t, 2, got.count)
	assert.NotEqual(t, "n2", got.nonces[0])
	assert.Equal(t, "n2", got.nonces[1])
	assert.Equal(t, "n2", client.SessionState().AuthNonce)
}

func TestHeaderRefreshIdempotentWithoutRotation(t *testing.T) {
	rec := &requestRecorder{}
	server := testSetupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := rec.record(r)
		if n == 1 {
			w.WriteHeader(502)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte(`{"messageId":"m-1"}`))
	})

	client := testClient(t, server.URL)
	_, err := client.SendMessage(context.Background(), &SendMessageRequest{
		ParticipantToken: Ptr("tok"),
		ConversationId:   Ptr("conv-1"),
		Content:          Ptr("hello"),
	})
	require.NoError(t, err)

	got := rec.snapshot()
	require.Equal(t, 2, got.count)
	assert.Equal(t, got.nonces[0], got.nonces[1])
}

func TestRequestIDReusedAcrossAttempts(t *testing.T) {
	rec := &requestRecorder{}
	server := testSetupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := rec.record(r)
		if n < 3 {
			w.WriteHeader(503)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte(`{}`))
	})

	client := testClient(t, server.URL)
	_, err := client.CloseSession(context.Background(), &CloseSessionRequest{
		ParticipantToken: Ptr("tok"),
		RequestCommon:    RequestCommon{RequestID: Ptr("caller-id-1")},
	})
	require.NoError(t, err)

	got := rec.snapshot()
	require.Equal(t, 3, got.count)
	for _, id := range got.requestIDs {
		assert.Equal(t, "caller-id-1", id)
	}
}

func TestGeneratedRequestIDStableWithinCall(t *testing.T) {
	rec := &requestRecorder{}
	server := testSetupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := rec.record(r)
		if n == 1 {
			w.WriteHeader(500)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte(`{}`))
	})

	client := testClient(t, server.URL)
	_, err := client.CloseSession(context.Background(), &CloseSessionRequest{
		ParticipantToken: Ptr("tok"),
	})
	require.NoError(t, err)

	got := rec.snapshot()
	require.Equal(t, 2, got.count)
	assert.NotEmpty(t, got.requestIDs[0])
	assert.Equal(t, got.requestIDs[0], got.requestIDs[1])
}

func TestAffinityThreadedThroughSubsequentCalls(t *testing.T) {
	rec := &requestRecorder{}
	server := testSetupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		switch r.URL.Path {
		case "/v1/sessions":
			w.Header().Set(signer.HeaderSessionAffinity, "aff-7")
			w.WriteHeader(200)
			w.Write([]byte(`{"sessionId":"s-1"}`))
		default:
			w.WriteHeader(200)
			w.Write([]byte(`{"messageId":"m-1"}`))
		}
	})

	client := testClient(t, server.URL)
	_, err := client.InitSession(context.Background(), &InitSessionRequest{
		ParticipantToken: Ptr("tok"),
	})
	require.NoError(t, err)
	assert.Equal(t, "aff-7", client.SessionState().AffinityID)

	_, err = client.SendMessage(context.Background(), &SendMessageRequest{
		ParticipantToken: Ptr("tok"),
		ConversationId:   Ptr("conv-1"),
		Content:          Ptr("hi"),
	})
	require.NoError(t, err)

	got := rec.snapshot()
	require.Equal(t, 2, got.count)
	assert.Empty(t, got.affinities[0])
	assert.Equal(t, "aff-7", got.affinities[1])
}

func TestTimeoutNormalizedAndRetriedUntilExhausted(t *testing.T) {
	rec := &requestRecorder{}
	server := testSetupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
		w.Write([]byte(`{}`))
	})

	client := testClient(t, server.URL, func(o *Options) {
		profile := o.OperationProfiles[OpCloseSession]
		profile.Timeout = 20 * time.Millisecond
		o.OperationProfiles[OpCloseSession] = profile
	})
	_, err := client.CloseSession(context.Background(), &CloseSessionRequest{
		ParticipantToken: Ptr("tok"),
	})
	require.Error(t, err)

	var cerr *ClientError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, ErrCodeRequestTimeout, cerr.Code)
	assert.Contains(t, cerr.Error(), requestTimeoutMessage)
	assert.True(t, cerr.Timeout())

	// Timeouts are retryable: all attempts were spent.
	assert.Equal(t, 4, rec.snapshot().count)
}

func TestCallerCancellationStopsRetries(t *testing.T) {
	rec := &requestRecorder{}
	server := testSetupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.WriteHeader(500)
	})

	ctx, cancel := context.WithCancel(context.Background())
	client := testClient(t, server.URL, func(o *Options) {
		profile := o.OperationProfiles[OpCloseSession]
		profile.Policy.Backoff = 30 * time.Millisecond
		o.OperationProfiles[OpCloseSession] = profile
	})

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := client.CloseSession(ctx, &CloseSessionRequest{
		ParticipantToken: Ptr("tok"),
	})
	require.Error(t, err)

	var canceled *CanceledError
	assert.True(t, errors.As(err, &canceled))
	assert.Less(t, rec.snapshot().count, 4)
}

func TestClientWideRetryerOverride(t *testing.T) {
	rec := &requestRecorder{}
	server := testSetupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.WriteHeader(500)
	})

	cfg := LoadDefaultConfig().
		WithEndpoint(server.URL).
		WithRetryer(retry.NopRetryer{})
	client, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = client.CloseSession(context.Background(), &CloseSessionRequest{
		ParticipantToken: Ptr("tok"),
	})
	require.Error(t, err)
	assert.Equal(t, 1, rec.snapshot().count)
}

type captureSink struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (s *captureSink) Emit(event telemetry.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *captureSink) all() []telemetry.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]telemetry.Event{}, s.events...)
}

func TestTelemetryEventsPerAttempt(t *testing.T) {
	rec := &requestRecorder{}
	server := testSetupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := rec.record(r)
		if n == 1 {
			w.WriteHeader(500)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte(`{"messageId":"m-1"}`))
	})

	sink := &captureSink{}
	cfg := LoadDefaultConfig().
		WithEndpoint(server.URL).
		WithTelemetrySink(sink)
	client, err := NewClient(cfg, testFastRetries)
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), &SendMessageRequest{
		ParticipantToken: Ptr("tok"),
		ConversationId:   Ptr("conv-1"),
		Content:          Ptr("hello"),
	})
	require.NoError(t, err)

	events := sink.all()
	require.Len(t, events, 2)
	assert.Equal(t, 0, events[0].Attempt)
	assert.Equal(t, 1, events[1].Attempt)
	assert.Equal(t, 500, events[0].StatusCode)
	assert.Equal(t, 200, events[1].StatusCode)
	assert.NotEmpty(t, events[0].Error)
	assert.Empty(t, events[1].Error)
	assert.Equal(t, events[0].RequestID, events[1].RequestID)
	assert.Equal(t, "***", events[0].SanitizedHeaders["Authorization"])
}

func TestUnknownOperationRejected(t *testing.T) {
	server := testSetupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	})
	client := testClient(t, server.URL)

	_, err := client.invokeOperation(context.Background(), &OperationInput{
		OpName: "NoSuchOperation",
		Method: "GET",
		Path:   "/",
	}, nil)
	require.Error(t, err)
	var cerr *ClientError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, ErrCodeBadRequest, cerr.Code)
}
