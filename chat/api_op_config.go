package chat

import (
	"context"

	"github.com/tidwall/gjson"
)

type GetChatConfigRequest struct {
	// Locale requested for widget strings, e.g. "en-US". Optional.
	Locale *string

	RequestCommon
}

type GetChatConfigResult struct {
	// Region hosting the chat deployment.
	Region *string `json:"region"`

	// Features enabled for this deployment.
	Features []string `json:"features"`

	// PollIntervalMs suggested to transcript pollers.
	PollIntervalMs *int64 `json:"pollIntervalMs"`

	ResultCommon
}

// GetChatConfig fetches the deployment configuration. Unauthenticated; the
// first call of a session bootstrap.
func (c *Client) GetChatConfig(ctx context.Context, request *GetChatConfigRequest, optFns ...func(*Options)) (*GetChatConfigResult, error) {
	var err error
	if request == nil {
		request = &GetChatConfigRequest{}
	}
	input := &OperationInput{
		OpName: OpGetChatConfig,
		Method: "GET",
		Path:   "/v1/config",
	}
	if request.Locale != nil {
		input.Parameters = map[string]string{
			"locale": *request.Locale,
		}
	}
	if err = c.marshalInput(request, input, nil); err != nil {
		return nil, err
	}

	output, err := c.invokeOperation(ctx, input, optFns)
	if err != nil {
		return nil, err
	}

	result := &GetChatConfigResult{}
	if err = c.unmarshalOutput(result, output, unmarshalBodyJSON); err != nil {
		return nil, c.toClientError(err, ErrCodeUnmarshalFail, output)
	}

	return result, err
}

type GetAuthTokenRequest struct {
	// DeploymentKey identifies the chat deployment. Required.
	DeploymentKey *string `json:"deploymentKey"`

	// ConversationId resumes an existing conversation's token. Optional.
	ConversationId *string `json:"conversationId,omitempty"`

	RequestCommon
}

type GetAuthTokenResult struct {
	// Token is the bearer token for all authenticated operations.
	Token *string `json:"token"`

	// ExpiresAt is the token expiry in RFC 3339 form.
	ExpiresAt *string `json:"expiresAt"`

	ResultCommon
}

// GetAuthToken exchanges a deployment key for a participant token. A 200
// response without a token is a contract violation and fails with
// ErrCodeEmptyResponse rather than being retried.
func (c *Client) GetAuthToken(ctx context.Context, request *GetAuthTokenRequest, optFns ...func(*Options)) (*GetAuthTokenResult, error) {
	var err error
	if request == nil {
		request = &GetAuthTokenRequest{}
	}
	if request.DeploymentKey == nil {
		return nil, NewErrParamRequired("DeploymentKey")
	}
	input := &OperationInput{
		OpName: OpGetAuthToken,
		Method: "POST",
		Path:   "/v1/auth/token",
	}
	if err = c.marshalInput(request, input, request); err != nil {
		return nil, err
	}

	output, err := c.invokeOperation(ctx, input, optFns)
	if err != nil {
		return nil, err
	}

	result := &GetAuthTokenResult{}
	if err = c.unmarshalOutput(result, output, requireContentBody, unmarshalBodyJSON); err != nil {
		return nil, c.toClientError(err, ErrCodeUnmarshalFail, output)
	}

	if !gjson.GetBytes(output.Body, "token").Exists() || ToString(result.Token) == "" {
		return nil, &ClientError{
			Code:    ErrCodeEmptyResponse,
			Message: "token response carried no token",
		}
	}

	return result, err
}
