package chat

import (
	"context"
	"errors"
	"net/http"
)

type CreateConversationRequest struct {
	// ParticipantToken of the active session. Required.
	ParticipantToken *string `json:"-"`

	// Subject of the conversation. Optional.
	Subject *string `json:"subject,omitempty"`

	// Attributes forwarded to routing. Optional.
	Attributes map[string]string `json:"attributes,omitempty"`

	RequestCommon
}

type CreateConversationResult struct {
	ConversationId *string `json:"conversationId"`

	ResultCommon
}

func (c *Client) CreateConversation(ctx context.Context, request *CreateConversationRequest, optFns ...func(*Options)) (*CreateConversationResult, error) {
	var err error
	if request == nil {
		request = &CreateConversationRequest{}
	}
	if request.ParticipantToken == nil {
		return nil, NewErrParamRequired("ParticipantToken")
	}
	input := &OperationInput{
		OpName: OpCreateConversation,
		Method: "POST",
		Path:   "/v1/conversations",
		Token:  *request.ParticipantToken,
	}
	if err = c.marshalInput(request, input, request); err != nil {
		return nil, err
	}

	output, err := c.invokeOperation(ctx, input, optFns)
	if err != nil {
		return nil, err
	}

	result := &CreateConversationResult{}
	if err = c.unmarshalOutput(result, output, unmarshalBodyJSON); err != nil {
		return nil, c.toClientError(err, ErrCodeUnmarshalFail, output)
	}

	return result, err
}

type LookupConversationRequest struct {
	// ParticipantToken of the active session. Required.
	ParticipantToken *string `json:"-"`

	// ConversationId to look up. Required.
	ConversationId *string

	RequestCommon
}

type LookupConversationResult struct {
	// Found is false when the conversation does not exist.
	Found bool `json:"-"`

	ConversationId *string `json:"conversationId"`
	State          *string `json:"state"`
	Subject        *string `json:"subject"`

	ResultCommon
}

// LookupConversation checks whether a conversation exists. For backward
// compatibility a 404 resolves to an empty result, not an error.
func (c *Client) LookupConversation(ctx context.Context, request *LookupConversationRequest, optFns ...func(*Options)) (*LookupConversationResult, error) {
	var err error
	if request == nil {
		request = &LookupConversationRequest{}
	}
	if request.ParticipantToken == nil {
		return nil, NewErrParamRequired("ParticipantToken")
	}
	if request.ConversationId == nil {
		return nil, NewErrParamRequired("ConversationId")
	}
	input := &OperationInput{
		OpName: OpLookupConversation,
		Method: "GET",
		Path:   "/v1/conversations/" + *request.ConversationId,
		Token:  *request.ParticipantToken,
	}
	if err = c.marshalInput(request, input, nil); err != nil {
		return nil, err
	}

	output, err := c.invokeOperation(ctx, input, optFns)
	if err != nil {
		var serr *ServiceError
		if errors.As(err, &serr) && serr.StatusCode == http.StatusNotFound {
			return &LookupConversationResult{}, nil
		}
		return nil, err
	}

	result := &LookupConversationResult{}
	if err = c.unmarshalOutput(result, output, unmarshalBodyJSON); err != nil {
		return nil, c.toClientError(err, ErrCodeUnmarshalFail, output)
	}
	result.Found = true

	return result, err
}

type SendMessageRequest struct {
	// ParticipantToken of the active session. Required.
	ParticipantToken *string `json:"-"`

	// ConversationId the message belongs to. Required.
	ConversationId *string `json:"-"`

	// ContentType of the message body. Defaults to text/plain.
	ContentType ContentType `json:"contentType"`

	// Content of the message. Required.
	Content *string `json:"content"`

	RequestCommon
}

type SendMessageResult struct {
	MessageId *string `json:"messageId"`

	// AbsoluteTime the server recorded for the message, RFC 3339.
	AbsoluteTime *string `json:"absoluteTime"`

	ResultCommon
}

func (c *Client) SendMessage(ctx context.Context, request *SendMessageRequest, optFns ...func(*Options)) (*SendMessageResult, error) {
	var err error
	if request == nil {
		request = &SendMessageRequest{}
	}
	if request.ParticipantToken == nil {
		return nil, NewErrParamRequired("ParticipantToken")
	}
	if request.ConversationId == nil {
		return nil, NewErrParamRequired("ConversationId")
	}
	if request.Content == nil {
		return nil, NewErrParamRequired("Content")
	}
	if request.ContentType == "" {
		request.ContentType = ContentTypePlainText
	}
	input := &OperationInput{
		OpName: OpSendMessage,
		Method: "POST",
		Path:   "/v1/conversations/" + *request.ConversationId + "/messages",
		Token:  *request.ParticipantToken,
	}
	if err = c.marshalInput(request, input, request); err != nil {
		return nil, err
	}

	output, err := c.invokeOperation(ctx, input, optFns)
	if err != nil {
		return nil, err
	}

	result := &SendMessageResult{}
	if err = c.unmarshalOutput(result, output, unmarshalBodyJSON); err != nil {
		return nil, c.toClientError(err, ErrCodeUnmarshalFail, output)
	}

	return result, err
}

type SendEventRequest struct {
	// ParticipantToken of the active session. Required.
	ParticipantToken *string `json:"-"`

	// ConversationId the event belongs to. Required.
	ConversationId *string `json:"-"`

	// Kind of the event. Required.
	Kind EventKind `json:"kind"`

	RequestCommon
}

type SendEventResult struct {
	EventId *string `json:"eventId"`

	ResultCommon
}

func (c *Client) SendEvent(ctx context.Context, request *SendEventRequest, optFns ...func(*Options)) (*SendEventResult, error) {
	var err error
	if request == nil {
		request = &SendEventRequest{}
	}
	if request.ParticipantToken == nil {
		return nil, NewErrParamRequired("ParticipantToken")
	}
	if request.ConversationId == nil {
		return nil, NewErrParamRequired("ConversationId")
	}
	if request.Kind == "" {
		return nil, NewErrParamRequired("Kind")
	}
	input := &OperationInput{
		OpName: OpSendEvent,
		Method: "POST",
		Path:   "/v1/conversations/" + *request.ConversationId + "/events",
		Token:  *request.ParticipantToken,
	}
	if err = c.marshalInput(request, input, request); err != nil {
		return nil, err
	}

	output, err := c.invokeOperation(ctx, input, optFns)
	if err != nil {
		return nil, err
	}

	result := &SendEventResult{}
	if err = c.unmarshalOutput(result, output, unmarshalBodyJSON); err != nil {
		return nil, c.toClientError(err, ErrCodeUnmarshalFail, output)
	}

	return result, err
}
