package chat

// ContentType is the media type of a conversation message.
type ContentType string

const (
	ContentTypePlainText ContentType = "text/plain"
	ContentTypeMarkdown  ContentType = "text/markdown"
)

// EventKind identifies a non-message conversation event.
type EventKind string

const (
	EventKindTyping      EventKind = "typing"
	EventKindMessageRead EventKind = "message-read"
	EventKindJoined      EventKind = "participant-joined"
	EventKindLeft        EventKind = "participant-left"
)

// TranscriptSortOrder controls the direction of transcript pages.
type TranscriptSortOrder string

const (
	TranscriptSortAscending  TranscriptSortOrder = "ascending"
	TranscriptSortDescending TranscriptSortOrder = "descending"
)
