package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidPrompt   = errors.New("invalid prompt")
	ErrNoScript        = errors.New("no script produced")
	ErrNoCandidates    = errors.New("no search candidates")
	ErrRetryExhausted  = errors.New("retry attempts exhausted")
	ErrPollDeadline    = errors.New("operation poll deadline exceeded")
	ErrNoMediaLocator  = errors.New("no media locator returned")
	ErrProviderFailure = errors.New("provider failure")
)
