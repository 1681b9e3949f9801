package provider

import (
	"errors"
	"net"
	"strings"

	openai "github.com/openai/openai-go"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrEmptyResponse     = errors.New("empty completion")
	ErrNoBackend         = errors.New("no backend configured")
)

// FailureClass is a coarse label for a failed completion, used in logs.
type FailureClass string

const (
	FailureQuota      FailureClass = "quota"
	FailureConnection FailureClass = "connection"
	FailureAuth       FailureClass = "auth"
	FailureEmpty      FailureClass = "empty"
	FailureOther      FailureClass = "other"
)

// Classify maps a backend error onto a FailureClass. A nil error yields "".
func Classify(err error) FailureClass {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyResponse):
		return FailureEmpty
	case isAuthError(err):
		return FailureAuth
	case isQuotaError(err):
		return FailureQuota
	case isConnectionError(err):
		return FailureConnection
	default:
		return FailureOther
	}
}

func isAuthError(err error) bool {
	if errors.Is(err, ErrMissingCredential) {
		return true
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return containsAny(err.Error(), "api key not valid", "permission_denied", "unauthorized")
}

func isQuotaError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
		return true
	}
	return containsAny(err.Error(),
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"resource_exhausted",
	)
}

func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return containsAny(err.Error(),
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	)
}

func containsAny(s string, indicators ...string) bool {
	s = strings.ToLower(s)
	for _, indicator := range indicators {
		if strings.Contains(s, indicator) {
			return true
		}
	}
	return false
}
