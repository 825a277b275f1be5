package chat

import (
	"context"
	"fmt"
)

// TranscriptPaginator walks a conversation transcript page by page.
type TranscriptPaginator struct {
	options PaginatorOptions
	client  *Client
	request *GetTranscriptRequest

	cursor    *string
	firstPage bool
	isTruncated bool
}

type PaginatorOptions struct {
	// Limit of items per page.
	Limit int32
}

func NewTranscriptPaginator(c *Client, request *GetTranscriptRequest, optFns ...func(*PaginatorOptions)) *TranscriptPaginator {
	if request == nil {
		request = &GetTranscriptRequest{}
	}

	options := PaginatorOptions{
		Limit: request.MaxResults,
	}
	for _, fn := range optFns {
		fn(&options)
	}

	return &TranscriptPaginator{
		options:   options,
		client:    c,
		request:   request,
		cursor:    request.Cursor,
		firstPage: true,
	}
}

// HasNext reports whether there are more pages to fetch.
func (p *TranscriptPaginator) HasNext() bool {
	return p.firstPage || p.isTruncated
}

// NextPage fetches the next transcript page.
func (p *TranscriptPaginator) NextPage(ctx context.Context, optFns ...func(*Options)) (*GetTranscriptResult, error) {
	if !p.HasNext() {
		return nil, fmt.Errorf("no more pages available")
	}

	request := *p.request
	request.Cursor = p.cursor
	if p.options.Limit > 0 {
		request.MaxResults = p.options.Limit
	}

	result, err := p.client.GetTranscript(ctx, &request, optFns...)
	if err != nil {
		return nil, err
	}

	p.firstPage = false
	p.cursor = result.NextCursor
	p.isTruncated = result.NextCursor != nil && *result.NextCursor != ""

	return result, nil
}
