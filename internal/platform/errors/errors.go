package apperrors

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrNoOpenNight    = errors.New("no open night")
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")
	ErrClosed         = errors.New("coordinator closed")
)
