// Package telemetry defines the per-attempt event the SDK emits and the
// sanitization applied before any payload or header reaches a sink.
package telemetry

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const masked = "***"

// Event describes one physical attempt of one logical operation.
type Event struct {
	RequestID        string
	Operation        string
	Method           string
	Path             string
	StatusCode       int
	Attempt          int
	ElapsedMs        int64
	Error            string
	SanitizedPayload string
	SanitizedHeaders map[string]string
}

// Sink receives attempt events. Implementations are provided by the caller
// and must be safe for concurrent use.
type Sink interface {
	Emit(event Event)
}

// NoopSink discards all events.
type NoopSink struct{}

func (NoopSink) Emit(Event) {}

// secretHeaders are masked before an event is emitted. Matched
// case-insensitively.
var secretHeaders = []string{
	"Authorization",
	"X-Meshchat-Auth-Nonce",
	"Cookie",
	"Set-Cookie",
}

// secretFields are JSON document paths masked in request payloads.
var secretFields = []string{
	"token",
	"participantToken",
	"authNonce",
}

// SanitizeHeaders flattens h into a map with secret values masked.
func SanitizeHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for key, values := range h {
		if len(values) == 0 {
			continue
		}
		if isSecretHeader(key) {
			out[key] = masked
		} else {
			out[key] = values[0]
		}
	}
	return out
}

func isSecretHeader(name string) bool {
	for _, s := range secretHeaders {
		if strings.EqualFold(name, s) {
			return true
		}
	}
	return false
}

// SanitizePayload masks secret fields in a JSON payload. Non-JSON payloads
// are dropped entirely rather than logged raw.
func SanitizePayload(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !gjson.ValidBytes(body) {
		return masked
	}
	out := body
	for _, field := range secretFields {
		if gjson.GetBytes(out, field).Exists() {
			out, _ = sjson.SetBytes(out, field, masked)
		}
	}
	return string(out)
}
