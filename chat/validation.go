package chat

import (
	"fmt"
	"net/url"
	"strings"
)

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return NewErrParamNull("config")
	}
	if cfg.Endpoint == nil || strings.TrimSpace(*cfg.Endpoint) == "" {
		return NewErrParamRequired("Endpoint")
	}
	endpoint := *cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return NewErrParamInvalid("Endpoint")
	}

	known := defaultOperationProfiles()
	for name, timeout := range cfg.OperationTimeouts {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("operation timeout for unknown operation %q", name)
		}
		if timeout <= 0 {
			return fmt.Errorf("operation timeout for %q must be positive", name)
		}
	}

	return nil
}

func validateInput(input *OperationInput) error {
	if input == nil {
		return NewErrParamNull("OperationInput")
	}
	if input.OpName == "" {
		return NewErrParamRequired("OperationInput.OpName")
	}
	if input.Method == "" {
		return NewErrParamRequired("OperationInput.Method")
	}
	return nil
}

func NewErrParamRequired(field string) error {
	return &ClientError{
		Code:    ErrCodeBadRequest,
		Message: fmt.Sprintf("missing required field, %s", field),
	}
}

func NewErrParamNull(field string) error {
	return &ClientError{
		Code:    ErrCodeBadRequest,
		Message: fmt.Sprintf("null field, %s", field),
	}
}

func NewErrParamInvalid(field string) error {
	return &ClientError{
		Code:    ErrCodeBadRequest,
		Message: fmt.Sprintf("invalid field, %s", field),
	}
}
