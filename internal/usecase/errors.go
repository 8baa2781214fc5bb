package usecase

import "errors"

var (
	ErrMatchIDRequired       = errors.New("match id is required")
	ErrInvalidMatchID        = errors.New("invalid match id")
	ErrNoMatchesFound        = errors.New("no matches found")
	ErrNotFound              = errors.New("resource not found")
	ErrUpstreamFetch         = errors.New("upstream fetch failed")
	ErrParseStructure        = errors.New("unexpected document structure")
	ErrPersistence           = errors.New("persistence failure")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
)
