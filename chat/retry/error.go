package retry

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
)

// httpStatusError is implemented by errors carrying an HTTP status code,
// without this package importing the error's defining package.
type httpStatusError interface {
	HTTPStatusCode() int
}

// timeoutError matches net.Error style timeouts and the SDK's own
// request-timeout error.
type timeoutError interface {
	Timeout() bool
}

type temporaryError interface {
	Temporary() bool
}

var retriableErrors = []error{
	io.EOF,
	io.ErrUnexpectedEOF,
}

var retriableErrorStrings = []string{
	"use of closed network connection",
	"unexpected EOF reading trailer",
	"transport connection broken",
	"server closed idle connection",
	"connection reset by peer",
	"tls: use of closed connection",
}

// Retryable is the default attempt-failure classification: retry timeouts,
// transport-level network errors and 5xx responses; retry 429 only when the
// operation opted in; never retry other client errors.
func Retryable(err error, retryOn429 bool) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var se httpStatusError
	if errors.As(err, &se) {
		return RetryableStatus(se.HTTPStatusCode(), retryOn429)
	}

	var te timeoutError
	if errors.As(err, &te) && te.Timeout() {
		return true
	}
	var tmp temporaryError
	if errors.As(err, &tmp) && tmp.Temporary() {
		return true
	}

	// Anything the transport failed to deliver is a network error.
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}

	for _, retriable := range retriableErrors {
		if errors.Is(err, retriable) {
			return true
		}
	}

	errString := err.Error()
	for _, phrase := range retriableErrorStrings {
		if strings.Contains(errString, phrase) {
			return true
		}
	}

	return false
}

// RetryableStatus reports whether an HTTP status code is worth retrying.
func RetryableStatus(statusCode int, retryOn429 bool) bool {
	switch {
	case statusCode >= 500:
		return true
	case statusCode == 408:
		return true
	case statusCode == 429:
		return retryOn429
	default:
		return false
	}
}
