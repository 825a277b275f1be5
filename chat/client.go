package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meshchat/meshchat-go-sdk/chat/retry"
	"github.com/meshchat/meshchat-go-sdk/chat/session"
	"github.com/meshchat/meshchat-go-sdk/chat/signer"
	"github.com/meshchat/meshchat-go-sdk/chat/telemetry"
	"github.com/meshchat/meshchat-go-sdk/chat/transport"
)

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// metadata key for the number of attempts dispatched for a call.
type attemptsKey struct{}

// OpMetaKeyAttempts reads the attempt count from a result's OpMetadata.
var OpMetaKeyAttempts = attemptsKey{}

type Options struct {
	Endpoint *url.URL

	Retryer retry.Retryer

	Signer signer.Signer

	HttpClient HTTPClient

	SessionStore *session.Store

	TelemetrySink telemetry.Sink

	RequestIDProvider func() string

	OperationProfiles map[string]operationProfile

	UserAgent string
}

func (c Options) Copy() Options {
	to := c
	return to
}

// Client is a chat service client. All methods are safe for concurrent use;
// the session store is the only state shared between calls.
type Client struct {
	options Options
}

func NewClient(cfg *Config, optFns ...func(*Options)) (*Client, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	options := Options{
		Retryer:           cfg.Retryer,
		Signer:            cfg.Signer,
		TelemetrySink:     cfg.TelemetrySink,
		RequestIDProvider: cfg.RequestIDProvider,
	}
	resolveEndpoint(cfg, &options)
	resolveHTTPClient(cfg, &options)
	resolveSigner(cfg, &options)
	resolveSessionStore(cfg, &options)
	resolveTelemetry(cfg, &options)
	resolveRequestIDProvider(cfg, &options)
	resolveOperationProfiles(cfg, &options)
	resolveUserAgent(cfg, &options)

	for _, fn := range optFns {
		fn(&options)
	}

	return &Client{
		options: options,
	}, nil
}

func resolveEndpoint(cfg *Config, o *Options) {
	endpoint := *cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	o.Endpoint, _ = url.Parse(endpoint)
}

func resolveHTTPClient(cfg *Config, o *Options) {
	if cfg.HttpClient != nil {
		o.HttpClient = cfg.HttpClient
		return
	}

	o.HttpClient = &http.Client{
		Transport: transport.NewTransport(&transport.Config{
			ConnectTimeout:     cfg.ConnectTimeout,
			ReadWriteTimeout:   cfg.ReadWriteTimeout,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		}),
	}
}

func resolveSigner(cfg *Config, o *Options) {
	if o.Signer != nil {
		return
	}
	o.Signer = signer.NonceSigner{}
}

func resolveSessionStore(cfg *Config, o *Options) {
	o.SessionStore = session.NewStore()
}

func resolveTelemetry(cfg *Config, o *Options) {
	if o.TelemetrySink != nil {
		return
	}
	o.TelemetrySink = telemetry.NoopSink{}
}

func resolveRequestIDProvider(cfg *Config, o *Options) {
	if o.RequestIDProvider != nil {
		return
	}
	o.RequestIDProvider = uuid.NewString
}

func resolveOperationProfiles(cfg *Config, o *Options) {
	profiles := defaultOperationProfiles()
	for name, timeout := range cfg.OperationTimeouts {
		profile := profiles[name]
		profile.Timeout = timeout
		profiles[name] = profile
	}
	o.OperationProfiles = profiles
}

func resolveUserAgent(cfg *Config, o *Options) {
	o.UserAgent = defaultUserAgent()
	if cfg.UserAgent != nil {
		o.UserAgent = o.UserAgent + "/" + *cfg.UserAgent
	}
}

// SessionState returns the current session snapshot, mainly for diagnostics.
func (c *Client) SessionState() session.State {
	return c.options.SessionStore.Snapshot()
}

func (c *Client) invokeOperation(ctx context.Context, input *OperationInput, optFns []func(*Options)) (output *OperationOutput, err error) {
	if err = validateInput(input); err != nil {
		return nil, err
	}

	options := c.options.Copy()
	for _, fn := range optFns {
		fn(&options)
	}

	profile, ok := options.OperationProfiles[input.OpName]
	if !ok {
		return nil, &ClientError{
			Code:    ErrCodeBadRequest,
			Message: fmt.Sprintf("unknown operation, %s", input.OpName),
		}
	}

	if input.RequestID == "" {
		input.RequestID = options.RequestIDProvider()
	}

	for tries := 0; ; tries++ {
		output, err = c.sendAttempt(ctx, input, &options, profile, tries)
		if err == nil {
			output.OpMetadata.Set(OpMetaKeyAttempts, tries+1)
			break
		}

		if isContextError(ctx, &err) {
			err = &CanceledError{Err: err}
			break
		}

		decision := profile.Policy.Evaluate(tries, err)
		if options.Retryer != nil {
			decision = retryerDecision(options.Retryer, tries, err, decision)
		}
		if !decision.Retry {
			break
		}

		// The next attempt re-reads decision.RefreshHeaders from the
		// session store: sendAttempt snapshots and re-signs every time.
		if serr := sleepWithContext(ctx, decision.Delay); serr != nil {
			err = &CanceledError{Err: serr}
			break
		}
	}

	if err != nil {
		return output, &OperationError{
			OperationName: input.OpName,
			Err:           err,
		}
	}

	return output, nil
}

// retryerDecision lets a client-wide Retryer replace the per-operation
// classification and delay. Header refresh still follows the operation's
// policy.
func retryerDecision(r retry.Retryer, attempt int, err error, decision retry.Decision) retry.Decision {
	decision.Retry = false
	if attempt >= r.MaxAttempts() || !r.IsErrorRetryable(err) {
		return decision
	}
	delay, derr := r.RetryDelay(attempt, err)
	if derr != nil {
		return decision
	}
	decision.Retry = true
	decision.Delay = delay
	return decision
}

// sendAttempt performs one physical attempt: fresh request, fresh session
// snapshot, fresh signing. Any session headers on the response are committed
// to the store before the failure is classified, so a retry on any call
// already sees the corrected values.
func (c *Client) sendAttempt(ctx context.Context, input *OperationInput, opts *Options, profile operationProfile, attempt int) (*OperationOutput, error) {
	request, err := c.buildRequest(ctx, input, opts)
	if err != nil {
		return nil, err
	}

	snapshot := opts.SessionStore.Snapshot()
	signingCtx := &signer.SigningContext{
		Request:        request,
		State:          snapshot,
		Token:          input.Token,
		RequestID:      input.RequestID,
		SessionHeaders: profile.Policy.HeaderOverwrites,
	}
	if err = opts.Signer.Sign(ctx, signingCtx); err != nil {
		return nil, err
	}

	attemptCtx := ctx
	if profile.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, profile.Timeout)
		defer cancel()
	}
	request = request.WithContext(attemptCtx)

	event := telemetry.Event{
		RequestID:        input.RequestID,
		Operation:        input.OpName,
		Method:           input.Method,
		Path:             input.Path,
		Attempt:          attempt,
		SanitizedPayload: telemetry.SanitizePayload(input.Body),
		SanitizedHeaders: telemetry.SanitizeHeaders(request.Header),
	}

	start := time.Now()
	response, doErr := opts.HttpClient.Do(request)
	event.ElapsedMs = time.Since(start).Milliseconds()

	if response != nil {
		commitSessionState(opts.SessionStore, response.Header)
		event.StatusCode = response.StatusCode
	}

	if doErr != nil {
		cerr := classifyTransportError(doErr)
		event.Error = cerr.Error()
		opts.TelemetrySink.Emit(event)
		return nil, cerr
	}

	body, readErr := readResponseBody(response)
	if readErr != nil {
		cerr := classifyTransportError(readErr)
		event.Error = cerr.Error()
		opts.TelemetrySink.Emit(event)
		return nil, cerr
	}

	if response.StatusCode/100 != 2 {
		target := fmt.Sprintf("%s %s", request.Method, request.URL)
		serr := serviceErrorFromResponse(response.StatusCode, target, input.RequestID, body)
		event.Error = serr.Error()
		opts.TelemetrySink.Emit(event)
		return nil, serr
	}

	opts.TelemetrySink.Emit(event)

	return &OperationOutput{
		Input:      input,
		Status:     response.Status,
		StatusCode: response.StatusCode,
		Headers:    response.Header,
		Body:       body,
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, input *OperationInput, opts *Options) (*http.Request, error) {
	if opts.Endpoint == nil {
		return nil, errors.New("Endpoint is nil")
	}

	strUrl := opts.Endpoint.Scheme + "://" + opts.Endpoint.Host + input.Path

	if len(input.Parameters) > 0 {
		var buf bytes.Buffer
		for k, v := range input.Parameters {
			if buf.Len() > 0 {
				buf.WriteByte('&')
			}
			buf.WriteString(url.QueryEscape(k))
			if len(v) > 0 {
				buf.WriteString("=" + strings.Replace(url.QueryEscape(v), "+", "%20", -1))
			}
		}
		strUrl += "?" + buf.String()
	}

	var body io.Reader
	if len(input.Body) > 0 {
		body = bytes.NewReader(input.Body)
	}

	request, err := http.NewRequestWithContext(ctx, input.Method, strUrl, body)
	if err != nil {
		return nil, err
	}

	for k, v := range input.Headers {
		if len(k) > 0 && len(v) > 0 {
			request.Header.Set(k, v)
		}
	}
	request.Header.Set("User-Agent", opts.UserAgent)
	request.Header.Set("Accept", contentTypeJSON)

	return request, nil
}

func readResponseBody(response *http.Response) ([]byte, error) {
	if response.Body == nil {
		return nil, nil
	}
	defer response.Body.Close()
	return io.ReadAll(response.Body)
}

// classifyTransportError folds transport failures into the two client-side
// kinds the retry policy understands. Timeouts get one normalized message
// no matter how the transport reported them.
func classifyTransportError(err error) *ClientError {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &ClientError{
			Code:    ErrCodeRequestTimeout,
			Message: requestTimeoutMessage,
			Err:     err,
		}
	}
	return &ClientError{
		Code:    ErrCodeNetworkError,
		Message: "network error",
		Err:     err,
	}
}

func commitSessionState(store *session.Store, headers http.Header) {
	var partial session.Partial
	if v := headers.Get(signer.HeaderSessionAffinity); v != "" {
		partial.AffinityID = &v
	}
	if v := headers.Get(signer.HeaderAuthNonce); v != "" {
		partial.AuthNonce = &v
	}
	if partial.AffinityID != nil || partial.AuthNonce != nil {
		store.Commit(partial)
	}
}

// marshalInput merges the request's common fields into the operation input
// and serializes the payload, when present, as the JSON body.
func (c *Client) marshalInput(request any, input *OperationInput, payload any) error {
	if r, ok := request.(RequestCommonInterface); ok {
		headers, parameters, requestID := r.GetCommonFields()
		for k, v := range headers {
			if input.Headers == nil {
				input.Headers = map[string]string{}
			}
			input.Headers[k] = v
		}
		for k, v := range parameters {
			if input.Parameters == nil {
				input.Parameters = map[string]string{}
			}
			input.Parameters[k] = v
		}
		if requestID != nil {
			input.RequestID = *requestID
		}
	}

	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return &ClientError{Code: ErrCodeBadRequest, Message: "marshal request body", Err: err}
		}
		input.Body = body
		if input.Headers == nil {
			input.Headers = map[string]string{}
		}
		input.Headers["Content-Type"] = contentTypeJSON
	}

	return validateInput(input)
}

type outputHandler func(result any, output *OperationOutput) error

func (c *Client) unmarshalOutput(result any, output *OperationOutput, handlers ...outputHandler) error {
	for _, h := range handlers {
		if err := h(result, output); err != nil {
			return err
		}
	}
	if r, ok := result.(ResultCommonInterface); ok {
		r.CopyIn(output.Status, output.StatusCode, output.Headers, output.OpMetadata)
	}
	return nil
}

func unmarshalBodyJSON(result any, output *OperationOutput) error {
	if len(output.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(output.Body, result); err != nil {
		return &ClientError{Code: ErrCodeUnmarshalFail, Message: "parse response body", Err: err}
	}
	return nil
}

func discardBody(result any, output *OperationOutput) error {
	return nil
}

// requireContentBody rejects 200 responses with no usable content. An empty
// 200 is a server-side contract violation, not a transient fault, so it is
// surfaced as a failure instead of being retried.
func requireContentBody(result any, output *OperationOutput) error {
	if isEmptyBody(output.Body) {
		return &ClientError{
			Code:    ErrCodeEmptyResponse,
			Message: "response returned no content",
		}
	}
	return nil
}

func (c *Client) toClientError(err error, code string, output *OperationOutput) error {
	if err == nil {
		return nil
	}
	var ce *ClientError
	if errors.As(err, &ce) {
		return err
	}
	return &ClientError{
		Code:    code,
		Message: "execute api fail",
		Err:     err,
	}
}
