package chat

import (
	"net/http"
)

// OperationMetadata carries auxiliary per-call information, such as the
// number of attempts dispatched, on operation results.
type OperationMetadata struct {
	values map[any][]any
}

func (m OperationMetadata) Get(key any) any {
	if m.values == nil {
		return nil
	}
	v := m.values[key]
	if len(v) == 0 {
		return nil
	}
	return v[0]
}

func (m OperationMetadata) Values(key any) []any {
	if m.values == nil {
		return nil
	}
	return m.values[key]
}

func (m *OperationMetadata) Add(key, value any) {
	if m.values == nil {
		m.values = map[any][]any{}
	}
	m.values[key] = append(m.values[key], value)
}

func (m *OperationMetadata) Set(key, value any) {
	if m.values == nil {
		m.values = map[any][]any{}
	}
	m.values[key] = []any{value}
}

func (m OperationMetadata) Has(key any) bool {
	if m.values == nil {
		return false
	}
	_, ok := m.values[key]
	return ok
}

type RequestCommon struct {
	// Extra headers merged into the request.
	Headers map[string]string `json:"-"`

	// Extra query parameters merged into the request.
	Parameters map[string]string `json:"-"`

	// RequestID is the idempotent identifier of the logical call. Retries
	// of the same call reuse it on every attempt. Generated when empty.
	RequestID *string `json:"-"`
}

type RequestCommonInterface interface {
	GetCommonFields() (map[string]string, map[string]string, *string)
}

func (r *RequestCommon) GetCommonFields() (map[string]string, map[string]string, *string) {
	return r.Headers, r.Parameters, r.RequestID
}

type ResultCommon struct {
	Status     string
	StatusCode int
	Headers    http.Header
	OpMetadata OperationMetadata
}

type ResultCommonInterface interface {
	CopyIn(status string, statusCode int, headers http.Header, meta OperationMetadata)
}

func (r *ResultCommon) CopyIn(status string, statusCode int, headers http.Header, meta OperationMetadata) {
	r.Status = status
	r.StatusCode = statusCode
	r.Headers = headers
	r.OpMetadata = meta
}

type OperationInput struct {
	OpName     string
	Method     string
	Path       string
	Headers    map[string]string
	Parameters map[string]string
	Body       []byte

	// Token is the bearer token for authenticated operations.
	Token string

	// RequestID reused across all attempts of this call.
	RequestID string

	OpMetadata OperationMetadata
}

type OperationOutput struct {
	Input *OperationInput

	Status     string
	StatusCode int
	Headers    http.Header
	Body       []byte

	OpMetadata OperationMetadata
}
