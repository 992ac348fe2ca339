package practice

import "errors"

var (
	ErrNotStarted = errors.New("practice session has not been started")

	ErrAlreadyStarted = errors.New("practice session has already been started")

	ErrNoCurrentWord = errors.New("practice session has no current word")

	ErrActionUnavailable = errors.New("action is not available for the current word")

	ErrAlreadyAnswered = errors.New("current word has already been answered")

	ErrNothingToRetry = errors.New("current word has no recorded answer to retry")

	ErrRetryUnsupported = errors.New("mode does not support trying again")

	ErrUnknownOption = errors.New("option is not one of the presented choices")
)
