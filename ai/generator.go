package ai

import (
	"context"
	"errors"
)

// ErrUpstream marks a failure of the text-generation service.
var ErrUpstream = errors.New("text generation failed")

// Generator turns a prompt into text. Implementations make one fresh call
// per invocation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// upstreamError keeps the provider's message as-is while matching ErrUpstream.
type upstreamError struct {
	cause error
}

func (e *upstreamError) Error() string { return e.cause.Error() }

func (e *upstreamError) Unwrap() error { return e.cause }

func (e *upstreamError) Is(target error) bool { return target == ErrUpstream }

// Upstream wraps err so errors.Is(err, ErrUpstream) holds. The message is
// unchanged.
func Upstream(err error) error {
	if err == nil || errors.Is(err, ErrUpstream) {
		return err
	}
	return &upstreamError{cause: err}
}

type disabledGenerator struct{}

var errNotConfigured = errors.New("text generation is not configured")

func (disabledGenerator) Generate(context.Context, string) (string, error) {
	return "", Upstream(errNotConfigured)
}
