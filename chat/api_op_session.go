package chat

import (
	"context"
	"net/http"
)

type InitSessionRequest struct {
	// ParticipantToken obtained from GetAuthToken. Required.
	ParticipantToken *string `json:"-"`

	// DisplayName shown to the agent. Optional.
	DisplayName *string `json:"displayName,omitempty"`

	// Locale of the participant. Optional.
	Locale *string `json:"locale,omitempty"`

	RequestCommon
}

type InitSessionResult struct {
	// SessionId of the established live-chat session.
	SessionId *string `json:"sessionId"`

	// ConversationId when the server created one eagerly.
	ConversationId *string `json:"conversationId"`

	ResultCommon
}

// InitSession establishes the live-chat session. The response usually
// carries the session affinity header; the client threads it through all
// subsequent requests.
func (c *Client) InitSession(ctx context.Context, request *InitSessionRequest, optFns ...func(*Options)) (*InitSessionResult, error) {
	var err error
	if request == nil {
		request = &InitSessionRequest{}
	}
	if request.ParticipantToken == nil {
		return nil, NewErrParamRequired("ParticipantToken")
	}
	input := &OperationInput{
		OpName: OpInitSession,
		Method: "POST",
		Path:   "/v1/sessions",
		Token:  *request.ParticipantToken,
	}
	if err = c.marshalInput(request, input, request); err != nil {
		return nil, err
	}

	output, err := c.invokeOperation(ctx, input, optFns)
	if err != nil {
		return nil, err
	}

	result := &InitSessionResult{}
	if err = c.unmarshalOutput(result, output, unmarshalBodyJSON); err != nil {
		return nil, c.toClientError(err, ErrCodeUnmarshalFail, output)
	}

	return result, err
}

type ReconnectSessionRequest struct {
	// ParticipantToken of the session to resume. Required.
	ParticipantToken *string `json:"-"`

	// ConversationId to reconnect to. Optional; defaults to the token's
	// most recent conversation.
	ConversationId *string

	RequestCommon
}

type ReconnectSessionResult struct {
	// Found is false when no reconnectable session exists. That is a
	// defined negative result, not an error.
	Found bool `json:"-"`

	SessionId      *string `json:"sessionId"`
	ConversationId *string `json:"conversationId"`

	ResultCommon
}

// ReconnectSession resumes an interrupted session. A 204 response means no
// reconnectable session exists; the call resolves with Found=false and is
// not retried.
func (c *Client) ReconnectSession(ctx context.Context, request *ReconnectSessionRequest, optFns ...func(*Options)) (*ReconnectSessionResult, error) {
	var err error
	if request == nil {
		request = &ReconnectSessionRequest{}
	}
	if request.ParticipantToken == nil {
		return nil, NewErrParamRequired("ParticipantToken")
	}
	input := &OperationInput{
		OpName: OpReconnectSession,
		Method: "GET",
		Path:   "/v1/sessions/reconnect",
		Token:  *request.ParticipantToken,
	}
	if request.ConversationId != nil {
		input.Parameters = map[string]string{
			"conversationId": *request.ConversationId,
		}
	}
	if err = c.marshalInput(request, input, nil); err != nil {
		return nil, err
	}

	output, err := c.invokeOperation(ctx, input, optFns)
	if err != nil {
		return nil, err
	}

	result := &ReconnectSessionResult{}
	if output.StatusCode == http.StatusNoContent {
		if err = c.unmarshalOutput(result, output, discardBody); err != nil {
			return nil, c.toClientError(err, ErrCodeUnmarshalFail, output)
		}
		return result, nil
	}

	if err = c.unmarshalOutput(result, output, unmarshalBodyJSON); err != nil {
		return nil, c.toClientError(err, ErrCodeUnmarshalFail, output)
	}
	result.Found = true

	return result, err
}

type CloseSessionRequest struct {
	// ParticipantToken of the session to close. Required.
	ParticipantToken *string `json:"-"`

	RequestCommon
}

type CloseSessionResult struct {
	ResultCommon
}

// CloseSession ends the live-chat session.
func (c *Client) CloseSession(ctx context.Context, request *CloseSessionRequest, optFns ...func(*Options)) (*CloseSessionResult, error) {
	var err error
	if request == nil {
		request = &CloseSessionRequest{}
	}
	if request.ParticipantToken == nil {
		return nil, NewErrParamRequired("ParticipantToken")
	}
	input := &OperationInput{
		OpName: OpCloseSession,
		Method: "POST",
		Path:   "/v1/sessions/close",
		Token:  *request.ParticipantToken,
	}
	if err = c.marshalInput(request, input, nil); err != nil {
		return nil, err
	}

	output, err := c.invokeOperation(ctx, input, optFns)
	if err != nil {
		return nil, err
	}

	result := &CloseSessionResult{}
	if err = c.unmarshalOutput(result, output, discardBody); err != nil {
		return nil, c.toClientError(err, ErrCodeUnmarshalFail, output)
	}

	return result, err
}
