package chat

import (
	"fmt"
)

const (
	major = "1"
	minor = "2"
	patch = "0"
)

// Version returns the semantic version of the SDK.
func Version() string {
	return fmt.Sprintf("%s.%s.%s", major, minor, patch)
}
