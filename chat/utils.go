package chat

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/tidwall/gjson"
)

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}

// ToString dereferences p, returning the zero value when nil.
func ToString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func sleepWithContext(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return nil
	}
	t := time.NewTimer(dur)
	defer t.Stop()

	select {
	case <-t.C:
		break
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

func isContextError(ctx context.Context, perr *error) bool {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if *perr == nil {
			*perr = ctxErr
		}
		return true
	}
	return false
}

// isEmptyBody reports whether a 200 response carried no usable content:
// nothing at all, or a bare JSON object/array with no members.
func isEmptyBody(body []byte) bool {
	if len(body) == 0 {
		return true
	}
	if !gjson.ValidBytes(body) {
		return false
	}
	parsed := gjson.ParseBytes(body)
	if parsed.IsObject() || parsed.IsArray() {
		empty := true
		parsed.ForEach(func(_, _ gjson.Result) bool {
			empty = false
			return false
		})
		return empty
	}
	return false
}

func defaultUserAgent() string {
	return fmt.Sprintf("meshchat-go-sdk/%s (%s/%s;%s)", Version(), runtime.GOOS,
		runtime.GOARCH, runtime.Version())
}
