package chat

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type StartSessionRequest struct {
	// DeploymentKey identifies the chat deployment. Required.
	DeploymentKey *string

	// DisplayName shown to the agent. Optional.
	DisplayName *string

	// Locale requested for configuration and the participant. Optional.
	Locale *string
}

type StartSessionResult struct {
	Config  *GetChatConfigResult
	Token   *GetAuthTokenResult
	Session *InitSessionResult
}

// StartSession runs the session bootstrap in one call: configuration fetch
// and token acquisition in parallel, then session initialization with the
// obtained token.
func (c *Client) StartSession(ctx context.Context, request *StartSessionRequest, optFns ...func(*Options)) (*StartSessionResult, error) {
	if request == nil {
		request = &StartSessionRequest{}
	}
	if request.DeploymentKey == nil {
		return nil, NewErrParamRequired("DeploymentKey")
	}

	result := &StartSessionResult{}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		config, err := c.GetChatConfig(groupCtx, &GetChatConfigRequest{
			Locale: request.Locale,
		}, optFns...)
		if err != nil {
			return err
		}
		result.Config = config
		return nil
	})
	group.Go(func() error {
		token, err := c.GetAuthToken(groupCtx, &GetAuthTokenRequest{
			DeploymentKey: request.DeploymentKey,
		}, optFns...)
		if err != nil {
			return err
		}
		result.Token = token
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	session, err := c.InitSession(ctx, &InitSessionRequest{
		ParticipantToken: result.Token.Token,
		DisplayName:      request.DisplayName,
		Locale:           request.Locale,
	}, optFns...)
	if err != nil {
		return nil, err
	}
	result.Session = session

	return result, nil
}
