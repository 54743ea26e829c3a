package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type ErrorKind string

const (
	KindTimeout       ErrorKind = "timeout"
	KindConnection    ErrorKind = "connection"
	KindRateLimit     ErrorKind = "rate_limit"
	KindAuth          ErrorKind = "auth"
	KindServer        ErrorKind = "server"
	KindBadRequest    ErrorKind = "bad_request"
	KindContentFilter ErrorKind = "content_filter"
	KindEmptyResponse ErrorKind = "empty_response"
	KindCanceled      ErrorKind = "canceled"
	KindUnknown       ErrorKind = "unknown"
)

// TechnicalError is a failed model call. It says nothing about the quality
// of the candidate being evaluated.
type TechnicalError struct {
	Kind  ErrorKind
	Model string
	Err   error
}

func (e *TechnicalError) Error() string {
	return fmt.Sprintf("%s call to %s: %v", e.Kind, e.Model, e.Err)
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

// Wrap classifies err and attaches the model id.
func Wrap(model string, err error) *TechnicalError {
	var terr *TechnicalError
	if errors.As(err, &terr) {
		return terr
	}
	return &TechnicalError{Kind: Classify(err), Model: model, Err: err}
}

// Classify maps an error from a model call to a kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var terr *TechnicalError
	if errors.As(err, &terr) {
		return terr.Kind
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if strings.Contains(apiErr.Message, "content_filter") || strings.Contains(apiErr.Message, "jailbreak") {
			return KindContentFilter
		}
		return kindForStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return kindForStatus(reqErr.HTTPStatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnection
	}

	return KindUnknown
}

func kindForStatus(code int) ErrorKind {
	switch {
	case code == http.StatusTooManyRequests:
		return KindRateLimit
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return KindTimeout
	case code >= 500:
		return KindServer
	case code >= 400:
		return KindBadRequest
	}
	return KindUnknown
}
