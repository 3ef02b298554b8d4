package model

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrFeedFetch        = errors.New("feed fetch failed")
	ErrInvalidVote      = errors.New("vote delta must be +1 or -1")
	ErrCycleRunning     = errors.New("refresh cycle already running")
	ErrStopped          = errors.New("scheduler stopped")
)
