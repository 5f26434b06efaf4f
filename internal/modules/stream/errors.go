package stream

import "errors"

var (
	ErrVideoNotFound       = errors.New("video not found")
	ErrTokenMismatch       = errors.New("playback token does not match video")
	ErrExtractionFailed    = errors.New("failed to extract a playable stream")
	ErrUpstreamUnavailable = errors.New("upstream media host unavailable")
)
