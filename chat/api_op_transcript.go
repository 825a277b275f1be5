package chat

import (
	"context"
	"strconv"
)

type TranscriptItem struct {
	MessageId    *string     `json:"messageId"`
	Participant  *string     `json:"participant"`
	ContentType  ContentType `json:"contentType"`
	Content      *string     `json:"content"`
	AbsoluteTime *string     `json:"absoluteTime"`
}

type GetTranscriptRequest struct {
	// ParticipantToken of the active session. Required.
	ParticipantToken *string

	// ConversationId the transcript belongs to. Required.
	ConversationId *string

	// Cursor of the page to fetch. Empty for the first page.
	Cursor *string

	// MaxResults per page, capped at 100. Defaults to 15.
	MaxResults int32

	// SortOrder of items within a page.
	SortOrder TranscriptSortOrder

	RequestCommon
}

type GetTranscriptResult struct {
	Items []TranscriptItem `json:"items"`

	// NextCursor is empty on the last page.
	NextCursor *string `json:"nextCursor"`

	ResultCommon
}

func (c *Client) GetTranscript(ctx context.Context, request *GetTranscriptRequest, optFns ...func(*Options)) (*GetTranscriptResult, error) {
	var err error
	if request == nil {
		request = &GetTranscriptRequest{}
	}
	if request.ParticipantToken == nil {
		return nil, NewErrParamRequired("ParticipantToken")
	}
	if request.ConversationId == nil {
		return nil, NewErrParamRequired("ConversationId")
	}

	maxResults := request.MaxResults
	if maxResults <= 0 {
		maxResults = defaultTranscriptPageSize
	}
	if maxResults > maxTranscriptPageSize {
		maxResults = maxTranscriptPageSize
	}

	input := &OperationInput{
		OpName: OpGetTranscript,
		Method: "GET",
		Path:   "/v1/conversations/" + *request.ConversationId + "/transcript",
		Token:  *request.ParticipantToken,
		Parameters: map[string]string{
			"maxResults": strconv.Itoa(int(maxResults)),
		},
	}
	if request.Cursor != nil && *request.Cursor != "" {
		input.Parameters["cursor"] = *request.Cursor
	}
	if request.SortOrder != "" {
		input.Parameters["sortOrder"] = string(request.SortOrder)
	}
	if err = c.marshalInput(request, input, nil); err != nil {
		return nil, err
	}

	output, err := c.invokeOperation(ctx, input, optFns)
	if err != nil {
		return nil, err
	}

	result := &GetTranscriptResult{}
	if err = c.unmarshalOutput(result, output, unmarshalBodyJSON); err != nil {
		return nil, c.toClientError(err, ErrCodeUnmarshalFail, output)
	}

	return result, err
}
