package chat

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Client-side error codes.
const (
	ErrCodeRequestTimeout = "RequestTimeout"
	ErrCodeNetworkError   = "NetworkError"
	ErrCodeEmptyResponse  = "EmptyResponse"
	ErrCodeBadRequest     = "BadRequest"
	ErrCodeUnmarshalFail  = "UnmarshalOutputFail"
)

// requestTimeoutMessage is the single user-facing timeout text, regardless
// of how the underlying transport signaled the timeout. Downstream consumers
// key off this message.
const requestTimeoutMessage = "request timed out"

// ServiceError is a non-2xx response from the chat service.
type ServiceError struct {
	StatusCode    int
	Code          string
	Message       string
	RequestID     string
	RequestTarget string
	Snapshot      []byte
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf(
		"operation error %s: %s, status code: %d, request id: %s",
		e.RequestTarget, e.Code, e.StatusCode, e.RequestID)
}

func (e *ServiceError) HTTPStatusCode() int {
	return e.StatusCode
}

// ClientError is a failure produced on the client side: a timeout, a
// transport failure, or a response that violates the service contract.
type ClientError struct {
	Code    string
	Message string
	Err     error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("client error %s: %s, %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("client error %s: %s", e.Code, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// Timeout lets retry classification and net-style checks recognize the
// normalized timeout failure.
func (e *ClientError) Timeout() bool {
	return e.Code == ErrCodeRequestTimeout
}

// Temporary marks transport-level failures as retryable.
func (e *ClientError) Temporary() bool {
	return e.Code == ErrCodeNetworkError
}

// OperationError wraps any failure leaving an operation call with the
// operation's name.
type OperationError struct {
	OperationName string
	Err           error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation error %s: %v", e.OperationName, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

type CanceledError struct {
	Err error
}

func (e *CanceledError) Error() string {
	return fmt.Sprintf("canceled, %v", e.Err)
}

func (e *CanceledError) Unwrap() error {
	return e.Err
}

func (e *CanceledError) Canceled() bool {
	return true
}

// serviceErrorFromResponse builds a ServiceError from a non-2xx response.
// The service reports errors as {"code": "...", "message": "..."}; responses
// that do not parse keep the raw body as a snapshot.
func serviceErrorFromResponse(statusCode int, requestTarget, requestID string, body []byte) *ServiceError {
	se := &ServiceError{
		StatusCode:    statusCode,
		Code:          "BadErrorResponse",
		RequestID:     requestID,
		RequestTarget: requestTarget,
		Snapshot:      body,
	}
	if gjson.ValidBytes(body) {
		if v := gjson.GetBytes(body, "code"); v.Exists() {
			se.Code = v.String()
		}
		if v := gjson.GetBytes(body, "message"); v.Exists() {
			se.Message = v.String()
		}
	}
	return se
}
